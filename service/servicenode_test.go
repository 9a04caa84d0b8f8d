package service

import (
	"net"
	"testing"

	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/atcsecure/dcrutilitynode/svcnode"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t int64 }

func (c *fakeClock) Now() int64 { return c.t }

type fakeChain struct{}

func (fakeChain) IsInitialBlockDownload() bool { return false }
func (fakeChain) Output(op wire.OutPoint) (dcrutil.Amount, string, bool, error) {
	return svcnode.CollateralAmount, "Dstest", true, nil
}
func (fakeChain) Unspent(op wire.OutPoint) (bool, error)       { return true, nil }
func (fakeChain) Confirmations(op wire.OutPoint) (int64, error) { return svcnode.MinConfirmations, nil }

func testOutPoint(seed byte) wire.OutPoint {
	var h chainhash.Hash
	h[0] = seed
	return wire.OutPoint{Hash: h, Index: 0, Tree: 0}
}

func testPriv(seed byte) *secp256k1.PrivateKey {
	var raw [32]byte
	raw[31] = seed
	return secp256k1.PrivKeyFromBytes(raw[:])
}

func newTestServiceNode(t *testing.T, clock *fakeClock) *ServiceNode {
	t.Helper()
	return New(svcnode.Services{
		Chain: fakeChain{},
		Clock: clock,
	})
}

func TestServiceNodePingRequiresStart(t *testing.T) {
	clock := &fakeClock{t: 1000}
	sn := newTestServiceNode(t, clock)

	priv := testPriv(1)
	sn.Init(priv, testOutPoint(1), snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999})

	// Ping before any observed start is a no-op, not an error.
	require.NoError(t, sn.Ping())
	require.False(t, sn.IsStarted())
}

func TestServiceNodeObserveStartThenPing(t *testing.T) {
	clock := &fakeClock{t: 1000}
	sn := newTestServiceNode(t, clock)

	priv := testPriv(1)
	txIn := testOutPoint(1)
	addr := snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999}
	sn.Init(priv, txIn, addr)

	start := &snwire.StartMessage{
		TimeField:       900,
		TxIn:            txIn,
		InetAddr:        addr,
		WalletPublicKey: priv.PubKey(),
		SharedPublicKey: priv.PubKey(),
	}
	require.NoError(t, start.Sign(priv))

	require.NoError(t, sn.observeStart(start))
	require.True(t, sn.IsStarted())

	require.NoError(t, sn.Ping())

	e, ok := sn.LookupByTxIn(txIn)
	require.True(t, ok)
	require.Equal(t, clock.t, e.LastPing)
}

func TestServiceNodeObserveStop(t *testing.T) {
	clock := &fakeClock{t: 1000}
	sn := newTestServiceNode(t, clock)

	priv := testPriv(1)
	txIn := testOutPoint(1)
	addr := snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999}
	sn.Init(priv, txIn, addr)

	start := &snwire.StartMessage{
		TimeField:       900,
		TxIn:            txIn,
		InetAddr:        addr,
		WalletPublicKey: priv.PubKey(),
		SharedPublicKey: priv.PubKey(),
	}
	require.NoError(t, start.Sign(priv))
	require.NoError(t, sn.observeStart(start))

	stop := &snwire.StopMessage{
		TimeField:       950,
		TxIn:            txIn,
		InetAddr:        addr,
		SharedPublicKey: priv.PubKey(),
	}
	require.NoError(t, stop.Sign(priv))
	require.NoError(t, sn.observeStop(stop))

	require.False(t, sn.IsStarted())
}
