package snwire

import (
	"net"
	"testing"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/wire"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T, seed byte) (*secp256k1.PrivateKey, *secp256k1.PublicKey) {
	t.Helper()
	var raw [32]byte
	raw[31] = seed
	priv := secp256k1.PrivKeyFromBytes(raw[:])
	return priv, priv.PubKey()
}

func testOutPoint(seed byte) wire.OutPoint {
	var h chainhash.Hash
	h[0] = seed
	return wire.OutPoint{Hash: h, Index: 0, Tree: 0}
}

func TestStartMessageSigningString(t *testing.T) {
	_, walletPub := testKey(t, 1)
	_, sharedPub := testKey(t, 2)

	m := &StartMessage{
		TimeField:       1234,
		TxIn:            testOutPoint(9),
		InetAddr:        InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999},
		WalletPublicKey: walletPub,
		SharedPublicKey: sharedPub,
	}

	want := "snstrt" + "1234" + "127.0.0.1:39999" +
		pubKeyString(walletPub) + pubKeyString(sharedPub)
	require.Equal(t, want, m.MessageString())
}

func TestStopMessageSigningString(t *testing.T) {
	_, sharedPub := testKey(t, 2)
	op := testOutPoint(9)

	m := &StopMessage{
		TimeField:       555,
		TxIn:            op,
		InetAddr:        InetAddress{IP: net.ParseIP("10.0.0.5"), Port: 39998},
		SharedPublicKey: sharedPub,
	}

	want := "snstop" + "555" + txInString(op) + "10.0.0.5:39998" + pubKeyString(sharedPub)
	require.Equal(t, want, m.MessageString())
}

func TestPingMessageSigningString(t *testing.T) {
	_, sharedPub := testKey(t, 3)
	op := testOutPoint(4)

	m := &PingMessage{
		TimeField:       1,
		TxIn:            op,
		InetAddr:        InetAddress{IP: net.ParseIP("1.2.3.4"), Port: 1},
		SharedPublicKey: sharedPub,
	}

	want := "snping" + "1" + txInString(op) + "1.2.3.4:1" + pubKeyString(sharedPub)
	require.Equal(t, want, m.MessageString())
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pub := testKey(t, 7)

	m := &StartMessage{
		TimeField:       100,
		TxIn:            testOutPoint(1),
		InetAddr:        InetAddress{IP: net.ParseIP("8.8.8.8"), Port: 39999},
		WalletPublicKey: pub,
		SharedPublicKey: pub,
	}

	require.NoError(t, m.Sign(priv))

	ok, err := m.Verify(pub)
	require.NoError(t, err)
	require.True(t, ok)

	// A different key must not verify.
	_, otherPub := testKey(t, 8)
	ok, err = m.Verify(otherPub)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	priv, pub := testKey(t, 11)

	start := &StartMessage{
		TimeField:       42,
		TxIn:            testOutPoint(2),
		InetAddr:        InetAddress{IP: net.ParseIP("192.168.1.1"), Port: 39999},
		WalletPublicKey: pub,
		SharedPublicKey: pub,
		Count:           -1,
		Index:           0,
	}
	require.NoError(t, start.Sign(priv))

	payload, err := EncodeMessage(start)
	require.NoError(t, err)

	var decoded StartMessage
	require.NoError(t, DecodeMessage(&decoded, payload))

	require.Equal(t, start.TimeField, decoded.TimeField)
	require.Equal(t, start.TxIn, decoded.TxIn)
	require.Equal(t, start.InetAddr.String(), decoded.InetAddr.String())
	require.Equal(t, start.Count, decoded.Count)
	require.Equal(t, start.Index, decoded.Index)
	require.Equal(t, start.Signature, decoded.Signature)
	require.Equal(t, start.MessageString(), decoded.MessageString())

	stop := &StopMessage{
		TimeField:       43,
		TxIn:            testOutPoint(3),
		InetAddr:        InetAddress{IP: net.ParseIP("::1"), Port: 39998},
		SharedPublicKey: pub,
	}
	require.NoError(t, stop.Sign(priv))
	payload, err = EncodeMessage(stop)
	require.NoError(t, err)
	var decodedStop StopMessage
	require.NoError(t, DecodeMessage(&decodedStop, payload))
	require.Equal(t, stop.MessageString(), decodedStop.MessageString())

	ping := &PingMessage{
		TimeField:       44,
		TxIn:            testOutPoint(4),
		InetAddr:        InetAddress{IP: net.ParseIP("172.16.0.1"), Port: 1},
		SharedPublicKey: pub,
	}
	require.NoError(t, ping.Sign(priv))
	payload, err = EncodeMessage(ping)
	require.NoError(t, err)
	var decodedPing PingMessage
	require.NoError(t, DecodeMessage(&decodedPing, payload))
	require.Equal(t, ping.MessageString(), decodedPing.MessageString())

	info := &GetInfoMessage{TxIn: testOutPoint(5)}
	payload, err = EncodeMessage(info)
	require.NoError(t, err)
	var decodedInfo GetInfoMessage
	require.NoError(t, DecodeMessage(&decodedInfo, payload))
	require.Equal(t, info.TxIn, decodedInfo.TxIn)

	list := &GetListMessage{}
	payload, err = EncodeMessage(list)
	require.NoError(t, err)
	var decodedList GetListMessage
	require.NoError(t, DecodeMessage(&decodedList, payload))
}

func TestCompareDedupSemantics(t *testing.T) {
	a := &GetInfoMessage{TxIn: testOutPoint(1)}
	b := &GetInfoMessage{TxIn: testOutPoint(1)}
	c := &GetInfoMessage{TxIn: testOutPoint(2)}

	require.True(t, a.Compare(b))
	require.False(t, a.Compare(c))

	require.True(t, (&GetListMessage{}).Compare(&GetListMessage{}))

	// Signed types never dedup via Compare.
	start := &StartMessage{}
	require.False(t, start.Compare(start))
	stop := &StopMessage{}
	require.False(t, stop.Compare(stop))
	ping := &PingMessage{}
	require.False(t, ping.Compare(ping))
}
