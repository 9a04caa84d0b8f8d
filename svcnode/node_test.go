package svcnode

import (
	"net"
	"testing"

	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t int64 }

func (c *fakeClock) Now() int64 { return c.t }

func newTestNode(t *testing.T, chain ChainReader, clock Clock) *UtilityNode {
	t.Helper()
	return NewUtilityNode(Services{
		Chain:   chain,
		Wallet:  nil,
		Peers:   nil,
		AddrMgr: nil,
		Clock:   clock,
	})
}

func signedStart(t *testing.T, seed byte, timeField int64) *snwire.StartMessage {
	t.Helper()
	priv := testKey(t, seed)
	m := &snwire.StartMessage{
		TimeField:       timeField,
		TxIn:            testOutPoint(t, seed),
		InetAddr:        snwire.InetAddress{IP: net.IPv4(127, 0, 0, seed), Port: 39999},
		WalletPublicKey: priv.PubKey(),
		SharedPublicKey: priv.PubKey(),
		Count:           snwire.UnsolicitedCount,
	}
	require.NoError(t, m.Sign(priv))
	return m
}

func TestProcessMessageAdmitsNewStart(t *testing.T) {
	n := newTestNode(t, validChain(), &fakeClock{t: 1000})
	m := signedStart(t, 1, 500)

	_, relay, err := n.ProcessMessage("peer1", m)
	require.NoError(t, err)
	require.True(t, relay)

	e, ok := n.LookupByTxIn(m.TxIn)
	require.True(t, ok)
	require.True(t, e.IsStarted())
}

func TestProcessMessageRejectsStaleStart(t *testing.T) {
	n := newTestNode(t, validChain(), &fakeClock{t: 1000})
	m := signedStart(t, 1, 500)

	_, relay, err := n.ProcessMessage("peer1", m)
	require.NoError(t, err)
	require.True(t, relay)

	replay := signedStart(t, 1, 500)
	_, relay, err = n.ProcessMessage("peer1", replay)
	require.NoError(t, err)
	require.False(t, relay)
}

// TestProcessMessageNewStartWithZeroCountIsNotRelayed pins down spec.md's
// boundary case: count = -1 on a new entry triggers relay, count = 0 (a
// requested, not broadcast, copy) does not.
func TestProcessMessageNewStartWithZeroCountIsNotRelayed(t *testing.T) {
	n := newTestNode(t, validChain(), &fakeClock{t: 1000})
	priv := testKey(t, 1)
	m := &snwire.StartMessage{
		TimeField:       500,
		TxIn:            testOutPoint(t, 1),
		InetAddr:        snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999},
		WalletPublicKey: priv.PubKey(),
		SharedPublicKey: priv.PubKey(),
		Count:           0,
	}
	require.NoError(t, m.Sign(priv))

	_, relay, err := n.ProcessMessage("peer1", m)
	require.NoError(t, err)
	require.False(t, relay)

	e, ok := n.LookupByTxIn(m.TxIn)
	require.True(t, ok)
	require.True(t, e.IsStarted())
}

// TestProcessMessageStartUpdateAlwaysRelays confirms an in-place update of
// an already-known entry is relayed regardless of its count field, since
// the update itself implies gossip propagation.
func TestProcessMessageStartUpdateAlwaysRelays(t *testing.T) {
	n := newTestNode(t, validChain(), &fakeClock{t: 1000})
	first := signedStart(t, 1, 500)
	_, relay, err := n.ProcessMessage("peer1", first)
	require.NoError(t, err)
	require.True(t, relay)

	priv := testKey(t, 1)
	update := &snwire.StartMessage{
		TimeField:       600,
		TxIn:            testOutPoint(t, 1),
		InetAddr:        snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999},
		WalletPublicKey: priv.PubKey(),
		SharedPublicKey: priv.PubKey(),
		Count:           0,
	}
	require.NoError(t, update.Sign(priv))

	_, relay, err = n.ProcessMessage("peer1", update)
	require.NoError(t, err)
	require.True(t, relay)
}

func TestProcessMessageStartThenStop(t *testing.T) {
	clock := &fakeClock{t: 1000}
	n := newTestNode(t, validChain(), clock)
	priv := testKey(t, 1)
	start := &snwire.StartMessage{
		TimeField:       500,
		TxIn:            testOutPoint(t, 1),
		InetAddr:        snwire.InetAddress{IP: net.ParseIP("127.0.0.1"), Port: 39999},
		WalletPublicKey: priv.PubKey(),
		SharedPublicKey: priv.PubKey(),
		Count:           snwire.UnsolicitedCount,
	}
	require.NoError(t, start.Sign(priv))
	_, relay, err := n.ProcessMessage("peer1", start)
	require.NoError(t, err)
	require.True(t, relay)

	stop := &snwire.StopMessage{
		TimeField:       600,
		TxIn:            start.TxIn,
		InetAddr:        start.InetAddr,
		SharedPublicKey: priv.PubKey(),
	}
	require.NoError(t, stop.Sign(priv))

	_, relay, err = n.ProcessMessage("peer1", stop)
	require.NoError(t, err)
	require.True(t, relay)

	e, ok := n.LookupByTxIn(start.TxIn)
	require.True(t, ok)
	require.False(t, e.IsStarted())
}

func TestProcessMessageGetInfoThrottling(t *testing.T) {
	n := newTestNode(t, validChain(), &fakeClock{t: 1000})
	m := signedStart(t, 1, 500)
	_, _, err := n.ProcessMessage("peer1", m)
	require.NoError(t, err)

	req := &snwire.GetInfoMessage{TxIn: m.TxIn}
	reply, relay, err := n.ProcessMessage("peer2", req)
	require.NoError(t, err)
	require.False(t, relay)
	require.NotNil(t, reply)

	// A second identical request from the same peer is throttled.
	reply, relay, err = n.ProcessMessage("peer2", req)
	require.NoError(t, err)
	require.False(t, relay)
	require.Nil(t, reply)
}

func TestStartHookCanVeto(t *testing.T) {
	n := newTestNode(t, validChain(), &fakeClock{t: 1000})
	n.StartHook = func(e *ServiceNodeEntry, m *snwire.StartMessage, isNew bool) bool {
		return false
	}
	m := signedStart(t, 1, 500)

	_, relay, err := n.ProcessMessage("peer1", m)
	require.NoError(t, err)
	require.False(t, relay)

	_, ok := n.LookupByTxIn(m.TxIn)
	require.False(t, ok)
}

func TestSweepExpiredTransitionsStaleEntries(t *testing.T) {
	clock := &fakeClock{t: 1000}
	n := newTestNode(t, validChain(), clock)
	m := signedStart(t, 1, 500)
	_, _, err := n.ProcessMessage("peer1", m)
	require.NoError(t, err)

	clock.t = 1000 + int64(ExpirationWindow.Seconds()) + 1
	n.SweepExpired()

	e, ok := n.LookupByTxIn(m.TxIn)
	require.True(t, ok)
	require.False(t, e.IsStarted())

	clock.t += int64(RemovalWindow.Seconds()) + 1
	n.SweepExpired()
	_, ok = n.LookupByTxIn(m.TxIn)
	require.False(t, ok)
}

type fakePeer struct {
	addr        string
	misbehaving []int
	pushed      []snwire.Message
}

func (p *fakePeer) Address() string       { return p.addr }
func (p *fakePeer) ProtocolVersion() int32 { return MinProtocolVersion }
func (p *fakePeer) Misbehaving(points int) { p.misbehaving = append(p.misbehaving, points) }
func (p *fakePeer) PushMessage(cmd snwire.Command, msg snwire.Message) error {
	p.pushed = append(p.pushed, msg)
	return nil
}

type fakePeerSet struct{ peers []*fakePeer }

func (s *fakePeerSet) ForEach(fn func(Peer)) {
	for _, p := range s.peers {
		fn(p)
	}
}

func TestRepeatedBadSignatureBansPeer(t *testing.T) {
	peer := &fakePeer{addr: "peer1"}
	peers := &fakePeerSet{peers: []*fakePeer{peer}}
	n := NewUtilityNode(Services{
		Chain: validChain(),
		Peers: peers,
		Clock: &fakeClock{t: 1000},
	})

	m := signedStart(t, 1, 500)
	m.Signature[0] ^= 0xff // corrupt the signature: provable malice, 100 points

	for i := 0; i < int(BanThreshold/100)+1; i++ {
		_, relay, err := n.ProcessMessage("peer1", m)
		require.NoError(t, err)
		require.False(t, relay)
	}

	require.Equal(t, uint32(100*(int(BanThreshold/100)+1)), n.BanScores.Score("peer1"))
	require.NotEmpty(t, peer.misbehaving)
}

// TestHandleGetListFansOutAndStillRepliesOnDedup exercises spec.md's
// worked example: a repeated snlist from the same peer within the record
// TTL is scored and not relayed, but the requester still gets the list.
func TestHandleGetListFansOutAndStillRepliesOnDedup(t *testing.T) {
	peer := &fakePeer{addr: "peer1"}
	peers := &fakePeerSet{peers: []*fakePeer{peer}}
	n := NewUtilityNode(Services{
		Chain: validChain(),
		Peers: peers,
		Clock: &fakeClock{t: 1000},
	})

	for _, seed := range []byte{1, 2} {
		_, _, err := n.ProcessMessage("other", signedStart(t, seed, 500))
		require.NoError(t, err)
	}

	req := &snwire.GetListMessage{}
	_, relay, err := n.ProcessMessage("peer1", req)
	require.NoError(t, err)
	require.True(t, relay)
	require.Len(t, peer.pushed, 2)
	for i, m := range peer.pushed {
		sm := m.(*snwire.StartMessage)
		require.Equal(t, int32(2), sm.Count)
		require.Equal(t, int32(i), sm.Index)
	}

	_, relay, err = n.ProcessMessage("peer1", req)
	require.NoError(t, err)
	require.False(t, relay)
	require.Len(t, peer.pushed, 4)
	require.Equal(t, uint32(repeatedRequestPoints), n.BanScores.Score("peer1"))
}

// TestSyncServiceNodeListGating exercises the IBD, cooldown, and per-peer
// dedup gates spec.md §4.1 places on the periodic outbound sync.
func TestSyncServiceNodeListGating(t *testing.T) {
	peerA := &fakePeer{addr: "peerA"}
	peerB := &fakePeer{addr: "peerB"}
	peers := &fakePeerSet{peers: []*fakePeer{peerA, peerB}}
	clock := &fakeClock{t: 1000}
	chain := validChain()
	n := NewUtilityNode(Services{
		Chain: chain,
		Peers: peers,
		Clock: clock,
	})

	chain.ibd = true
	require.NoError(t, n.SyncServiceNodeList())
	require.Empty(t, peerA.pushed)
	require.Empty(t, peerB.pushed)

	chain.ibd = false
	require.NoError(t, n.SyncServiceNodeList())
	require.Len(t, peerA.pushed, 1)
	require.Len(t, peerB.pushed, 1)

	// Within SyncCooldown, a second call sends nothing more.
	require.NoError(t, n.SyncServiceNodeList())
	require.Len(t, peerA.pushed, 1)
	require.Len(t, peerB.pushed, 1)

	// Past the cooldown, both peers still have an outstanding (unanswered)
	// request record from the first sync (GetListRecordTTL is 4h), so
	// neither gets a second send.
	clock.t += int64(SyncCooldown.Seconds()) + 1
	require.NoError(t, n.SyncServiceNodeList())
	require.Len(t, peerA.pushed, 1)
	require.Len(t, peerB.pushed, 1)
}
