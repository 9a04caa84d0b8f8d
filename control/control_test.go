package control

import (
	"net"
	"testing"

	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/atcsecure/dcrutilitynode/svcnode"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t int64 }

func (c *fakeClock) Now() int64 { return c.t }

type fakeChain struct{ ibd bool }

func (f *fakeChain) IsInitialBlockDownload() bool { return f.ibd }
func (f *fakeChain) Output(op wire.OutPoint) (dcrutil.Amount, string, bool, error) {
	return svcnode.CollateralAmount, "Dstest", true, nil
}
func (f *fakeChain) Unspent(op wire.OutPoint) (bool, error) { return true, nil }
func (f *fakeChain) Confirmations(op wire.OutPoint) (int64, error) {
	return svcnode.MinConfirmations, nil
}

type fakeWallet struct {
	coins  []svcnode.Coin
	pubKey *secp256k1.PublicKey
	locked map[wire.OutPoint]bool
}

func newFakeWallet(coins []svcnode.Coin, pubKey *secp256k1.PublicKey) *fakeWallet {
	return &fakeWallet{coins: coins, pubKey: pubKey, locked: make(map[wire.OutPoint]bool)}
}

func (w *fakeWallet) IsLocked() bool                  { return false }
func (w *fakeWallet) AvailableCoins() ([]svcnode.Coin, error) { return w.coins, nil }
func (w *fakeWallet) PublicKeyForAddress(addr string) (*secp256k1.PublicKey, error) {
	return w.pubKey, nil
}
func (w *fakeWallet) LockOutPoint(op wire.OutPoint)   { w.locked[op] = true }
func (w *fakeWallet) UnlockOutPoint(op wire.OutPoint) { delete(w.locked, op) }

func testPriv(seed byte) *secp256k1.PrivateKey {
	var raw [32]byte
	raw[31] = seed
	return secp256k1.PrivKeyFromBytes(raw[:])
}

func newTestControlNode(t *testing.T, clock *fakeClock, wallet svcnode.Wallet) *ControlNode {
	t.Helper()
	return New(svcnode.Services{
		Chain:  &fakeChain{},
		Wallet: wallet,
		Clock:  clock,
	})
}

func TestRegisterSlaveRejectsDuplicateAlias(t *testing.T) {
	c := newTestControlNode(t, &fakeClock{t: 1000}, nil)
	shared := testPriv(1)
	addr := snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999}

	require.NoError(t, c.RegisterSlave("alice", "Dsalice", shared, addr))
	require.Error(t, c.RegisterSlave("alice", "Dsalice", shared, addr))
}

func TestStartSlaveNodeFullFlow(t *testing.T) {
	walletPriv := testPriv(2)
	txIn := wire.OutPoint{Index: 0}
	coins := []svcnode.Coin{{
		OutPoint:      txIn,
		Amount:        svcnode.CollateralAmount,
		Address:       "Dsalice",
		Confirmations: svcnode.MinConfirmations,
	}}
	wallet := newFakeWallet(coins, walletPriv.PubKey())
	clock := &fakeClock{t: 1000}
	c := newTestControlNode(t, clock, wallet)

	shared := testPriv(1)
	addr := snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999}
	require.NoError(t, c.RegisterSlave("alice", "Dsalice", shared, addr))

	require.NoError(t, c.StartSlaveNode("alice", walletPriv))

	slave, ok := c.SlaveByAlias("alice")
	require.True(t, ok)
	require.Equal(t, svcnode.StateProcessingStart, slave.State)

	// Starting again while processing is rejected.
	require.ErrorIs(t, c.StartSlaveNode("alice", walletPriv), svcnode.ErrStillProcessing)
}

func TestStartSlaveNodeUnknownAlias(t *testing.T) {
	c := newTestControlNode(t, &fakeClock{t: 1000}, newFakeWallet(nil, nil))
	require.ErrorIs(t, c.StartSlaveNode("ghost", testPriv(1)), svcnode.ErrUnknownAlias)
}

func TestSweepStuckProcessingRevertsAfterTimeout(t *testing.T) {
	walletPriv := testPriv(2)
	txIn := wire.OutPoint{Index: 0}
	coins := []svcnode.Coin{{
		OutPoint:      txIn,
		Amount:        svcnode.CollateralAmount,
		Address:       "Dsalice",
		Confirmations: svcnode.MinConfirmations,
	}}
	wallet := newFakeWallet(coins, walletPriv.PubKey())
	clock := &fakeClock{t: 1000}
	c := newTestControlNode(t, clock, wallet)

	shared := testPriv(1)
	addr := snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999}
	require.NoError(t, c.RegisterSlave("alice", "Dsalice", shared, addr))
	require.NoError(t, c.StartSlaveNode("alice", walletPriv))

	clock.t += int64(maxProcessingTime) + 1
	c.SweepStuckProcessing()

	slave, ok := c.SlaveByAlias("alice")
	require.True(t, ok)
	require.Equal(t, svcnode.StateStopped, slave.State)
}
