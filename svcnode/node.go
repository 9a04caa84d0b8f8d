package svcnode

import (
	"sync"

	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/wire"
)

// StartHook lets a role (ServiceNode, ControlNode) intercept an
// about-to-be-admitted StartMessage before it is written into the
// registry, replacing the original C++ CServiceNode::StartServiceNode
// virtual-override chain with an explicit strategy field, per the
// "Virtual dispatch" redesign flag. It returns false to veto admission
// (e.g. ControlNode suppressing the echo loop of its own broadcast).
type StartHook func(e *ServiceNodeEntry, m *snwire.StartMessage, isNew bool) bool

// StopHook is the snstop analogue of StartHook.
type StopHook func(e *ServiceNodeEntry, m *snwire.StopMessage) bool

// UtilityNode is the shared core of the overlay: message validation,
// registry maintenance, and relay. ServiceNode and ControlNode embed a
// UtilityNode and customize it via Services and the Start/StopHook fields
// rather than through type-checked role branches (the "IsServiceNode /
// IsControlNode" redesign flag).
//
// All registry, record-store, and lock-set mutation is serialized through
// mu: Registry and recordStore are not internally thread-safe by design
// (spec.md §5's "single discipline" requirement), so every exported method
// here takes mu before touching them.
type UtilityNode struct {
	mu sync.Mutex

	services Services

	registry *Registry
	records  *recordStore
	locks    *LockSet

	// StartHook/StopHook, when non-nil, run after built-in validation but
	// before the entry is committed, and may veto admission.
	StartHook StartHook
	StopHook  StopHook

	// UpdateLocks reconciles the wallet lock set with the registry after
	// any mutation. Defaults to DefaultUpdateLocks; ControlNode overrides
	// it to also cover in-flight processing entries.
	UpdateLocks UpdateLocksFunc

	// BanScores tracks per-peer misbehavior across every rejected
	// message, so the transport layer can decide when to disconnect a
	// peer without this package needing a handle back into PeerSet.
	BanScores *BanScoreTracker

	// lastSync and syncAttempts track SyncServiceNodeList's own cooldown
	// and retry budget (spec.md §4.1's SyncCooldown/MaxSyncAttempts).
	lastSync     int64
	syncAttempts int

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewUtilityNode constructs a UtilityNode bound to services.
func NewUtilityNode(services Services) *UtilityNode {
	return &UtilityNode{
		services:    services,
		registry:    NewRegistry(),
		records:     newRecordStore(),
		locks:       NewLockSet(),
		UpdateLocks: DefaultUpdateLocks,
		BanScores:   NewBanScoreTracker(),
		shutdown:    make(chan struct{}),
	}
}

// Registry exposes the live registry for read-mostly callers (rpcutility's
// listservicenodes). Callers must not mutate returned entries directly.
func (n *UtilityNode) Registry() *Registry {
	return n.registry
}

func (n *UtilityNode) now() int64 {
	return n.services.Clock.Now()
}

// Now returns the node's current network-adjusted time, exposed for roles
// (service, control) that need to stamp locally-originated messages.
func (n *UtilityNode) Now() int64 {
	return n.now()
}

// Test is a liveness/sanity probe for the RPC layer, mirroring
// CUtilityNode::Test / CControlNode::Test.
func (n *UtilityNode) Test() string {
	return "finished"
}

// repeatedRequestPoints is the ban score for a sninfo/snlist request
// repeated before its record's TTL has elapsed.
const repeatedRequestPoints = 5

// misbehaved scores err's ban points (per the misbehaviorScore taxonomy)
// against peerAddress. peerAddress is empty for locally-originated messages
// (AdmitLocalStart/AdmitLocalStop), which are never scored since there is
// no remote peer to penalize.
func (n *UtilityNode) misbehaved(peerAddress string, err error) {
	n.addBanScore(peerAddress, misbehaviorScore(err))
}

// addBanScore applies points against peerAddress and, once its accumulated
// score crosses BanThreshold, reports it to the transport via
// Peer.Misbehaving.
func (n *UtilityNode) addBanScore(peerAddress string, points int) {
	if peerAddress == "" || n.BanScores == nil || points == 0 {
		return
	}
	score := n.BanScores.Add(peerAddress, uint32(points))
	if score < BanThreshold || n.services.Peers == nil {
		return
	}
	n.services.Peers.ForEach(func(p Peer) {
		if p.Address() == peerAddress {
			p.Misbehaving(int(score))
		}
	})
}

func (n *UtilityNode) runUpdateLocks() {
	if n.services.Wallet == nil || n.UpdateLocks == nil {
		return
	}
	n.UpdateLocks(n.services.Wallet, n.locks, n.registry.All())
}

// ProcessMessage dispatches an inbound message from peerAddress to the
// appropriate handler, per spec.md §4.1's single entry point. It returns
// an optional reply message (for sninfo; a snlist request is answered by
// pushing the started entries straight to the requesting peer) and whether
// the message should be relayed onward to other peers.
func (n *UtilityNode) ProcessMessage(peerAddress string, msg snwire.Message) (reply snwire.Message, relay bool, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch m := msg.(type) {
	case *snwire.StartMessage:
		_, relay := n.handleStart(peerAddress, m)
		return nil, relay, nil
	case *snwire.StopMessage:
		return nil, n.handleStop(peerAddress, m), nil
	case *snwire.PingMessage:
		return nil, n.handlePing(peerAddress, m), nil
	case *snwire.GetInfoMessage:
		return n.handleGetInfo(peerAddress, m)
	case *snwire.GetListMessage:
		return nil, n.handleGetList(peerAddress, m), nil
	default:
		return nil, false, ErrUnknownCommand
	}
}

// handleStart implements spec.md §4.1's snstrt path: admit against
// GetServiceNode's fallback chain (txIn, then inetAddress/sharedPublicKey/
// walletPublicKey), run the role's StartHook, reconcile locks, and report
// whether the message was admitted and whether it should be relayed onward:
// an unsolicited broadcast (m.Count == snwire.UnsolicitedCount) always is,
// and so is any in-place update of an existing entry; a requested copy of a
// brand new entry (m.Count == 0) is admitted but not relayed.
func (n *UtilityNode) handleStart(peerAddress string, m *snwire.StartMessage) (admitted, relay bool) {
	existing, found := n.registry.Find(m.TxIn, m.InetAddr, sharedKeyHex(m.SharedPublicKey), walletKeyHex(m.WalletPublicKey))

	var lastSigTime int64
	if found {
		lastSigTime = existing.SignatureTime
	}

	skipCollateral := found && existing.State.IsProcessing()
	if err := validateStartMessage(n.services.Chain, m, lastSigTime, n.now(), skipCollateral); err != nil {
		log.Debugf("rejecting snstrt from %s for %s: %v", peerAddress, m.TxIn, err)
		n.misbehaved(peerAddress, err)
		return false, false
	}

	isNew := !found
	entry := existing
	if isNew {
		entry = newEntryFromStart(m, n.now())
	}

	if n.StartHook != nil && !n.StartHook(entry, m, isNew) {
		return false, false
	}

	if isNew {
		n.registry.Add(entry)
	} else {
		oldTxIn := entry.TxIn
		oldAddr, oldShared, oldWallet := entry.InetAddr.String(), sharedKeyHex(entry.SharedPublicKey), walletKeyHex(entry.WalletPublicKey)
		entry.applyStart(m, n.now())
		n.registry.reindexAfterAddrOrKeyChange(entry, oldTxIn, oldAddr, oldShared, oldWallet)
	}

	n.runUpdateLocks()
	return true, m.Count == snwire.UnsolicitedCount || !isNew
}

// handleStop implements the snstop path: validate against the existing
// entry's wallet key (the same key that signs snstrt — spec.md §3
// invariant 5), mark it stopped, run the role's StopHook, and relay.
func (n *UtilityNode) handleStop(peerAddress string, m *snwire.StopMessage) bool {
	entry, found := n.registry.ByTxIn(m.TxIn)
	if !found {
		log.Debugf("rejecting snstop from %s for unknown %s", peerAddress, m.TxIn)
		return false
	}

	if err := validateStopMessage(m, entry.WalletPublicKey, entry.SignatureTime, n.now()); err != nil {
		log.Debugf("rejecting snstop from %s for %s: %v", peerAddress, m.TxIn, err)
		n.misbehaved(peerAddress, err)
		return false
	}

	if n.StopHook != nil && !n.StopHook(entry, m) {
		return false
	}

	entry.State = StateStopped
	entry.LastStop = m.TimeField
	entry.TimeStopped = n.now()
	entry.SignatureTime = m.TimeField

	n.runUpdateLocks()
	return true
}

// handlePing implements the snping path: refresh LastPing on an existing
// entry, and, only when the entry has not been updated within UpdateWindow,
// also refresh LastSeen and report the ping for relay; a ping inside the
// window is accepted but not relayed. A ping for an unknown txIn triggers no state
// change here; the caller (peer transport layer) is expected to issue a
// GetInfoMessage for it, per spec.md §4.1 step 8.
func (n *UtilityNode) handlePing(peerAddress string, m *snwire.PingMessage) bool {
	entry, found := n.registry.ByTxIn(m.TxIn)
	if !found {
		return false
	}

	lastPingTime := entry.LastPing
	if lastPingTime < entry.SignatureTime {
		lastPingTime = entry.SignatureTime
	}
	if err := validatePingMessage(m, entry.SharedPublicKey, lastPingTime, n.now()); err != nil {
		log.Debugf("rejecting snping from %s for %s: %v", peerAddress, m.TxIn, err)
		n.misbehaved(peerAddress, err)
		return false
	}

	entry.LastPing = m.TimeField
	if entry.IsUpdatedWithin(n.now(), int64(UpdateWindow.Seconds())) {
		return false
	}
	entry.LastSeen = n.now()
	return true
}

// handleGetInfo implements the sninfo path: answer with the entry's last
// StartMessage if known, subject to request-record throttling.
func (n *UtilityNode) handleGetInfo(peerAddress string, m *snwire.GetInfoMessage) (snwire.Message, bool, error) {
	if n.records.HasRequestRecord(peerAddress, m) {
		n.addBanScore(peerAddress, repeatedRequestPoints)
		return nil, false, nil
	}
	n.records.RecordRequest(peerAddress, m, n.now())

	entry, found := n.registry.ByTxIn(m.TxIn)
	if !found {
		return nil, true, nil
	}
	reply := entry.ToStartMessage()
	n.records.RecordResponse(peerAddress, reply, n.now())
	return reply, false, nil
}

// handleGetList implements the snlist path: dedup per peer, but unlike
// sninfo a throttled repeat still gets the list sent back (only with a ban
// score penalty and no relay onward), per spec.md §8's dedup example.
func (n *UtilityNode) handleGetList(peerAddress string, m *snwire.GetListMessage) bool {
	duplicate := n.records.HasRequestRecord(peerAddress, m)
	if duplicate {
		n.addBanScore(peerAddress, repeatedRequestPoints)
	} else {
		n.records.RecordRequest(peerAddress, m, n.now())
	}
	n.sendServiceNodeList(peerAddress)
	return !duplicate
}

// startedEntriesLocked returns every currently-started entry's StartMessage
// with Count/Index recomputed to the current list's length and position (the
// serviceNodeCount/index fields a snlist reply must carry), rather than
// echoing each entry's stale stored values from its own last snstrt. Callers
// must already hold mu.
func (n *UtilityNode) startedEntriesLocked() []*snwire.StartMessage {
	all := n.registry.All()
	out := make([]*snwire.StartMessage, 0, len(all))
	for _, e := range all {
		if e.IsStarted() {
			out = append(out, e.ToStartMessage())
		}
	}
	for i, m := range out {
		m.Count = int32(len(out))
		m.Index = int32(i)
	}
	return out
}

// StartedEntries returns every currently-started entry's StartMessage,
// exposed for callers outside the message-processing path (e.g. rpcutility).
func (n *UtilityNode) StartedEntries() []*snwire.StartMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.startedEntriesLocked()
}

// pushToPeer resolves peerAddress against the connected peer set and sends
// msg to it directly, as opposed to RelayMessage's flood to everyone else.
func (n *UtilityNode) pushToPeer(peerAddress string, msg snwire.Message) {
	if n.services.Peers == nil {
		return
	}
	n.services.Peers.ForEach(func(p Peer) {
		if p.Address() != peerAddress {
			return
		}
		if err := p.PushMessage(msg.Command(), msg); err != nil {
			log.Debugf("push to %s failed: %v", p.Address(), err)
		}
	})
}

// sendServiceNodeList pushes one snstrt per started entry to peerAddress,
// the fan-out HandleGetList owes the requester.
func (n *UtilityNode) sendServiceNodeList(peerAddress string) {
	for _, m := range n.startedEntriesLocked() {
		n.pushToPeer(peerAddress, m)
	}
}

// RelayMessage pushes msg to every connected peer other than the one
// identified by exceptAddress (the peer the message was received from, if
// any), implementing the overlay's flood-fill relay.
func (n *UtilityNode) RelayMessage(msg snwire.Message, exceptAddress string) {
	if n.services.Peers == nil {
		return
	}
	n.services.Peers.ForEach(func(p Peer) {
		if p.Address() == exceptAddress {
			return
		}
		if p.ProtocolVersion() < MinProtocolVersion {
			return
		}
		if err := p.PushMessage(msg.Command(), msg); err != nil {
			log.Debugf("relay to %s failed: %v", p.Address(), err)
		}
	})
}

// SweepExpired walks the registry and transitions any started entry whose
// LastSeen has aged past ExpirationWindow to stopped, and removes any
// stopped entry whose TimeStopped has aged past RemovalWindow. Intended to
// be called periodically by the timer loop (timers.go).
func (n *UtilityNode) SweepExpired() {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	for _, e := range n.registry.All() {
		switch e.State {
		case StateStarted:
			if !e.IsUpdatedWithin(now, int64(ExpirationWindow.Seconds())) {
				e.State = StateStopped
				e.TimeStopped = now
			}
		case StateStopped:
			if e.TimeStopped != 0 && now-e.TimeStopped > int64(RemovalWindow.Seconds()) {
				n.registry.Remove(e.TxIn)
			}
		}
	}
	n.records.Clean(now)
	n.runUpdateLocks()
}

// SyncServiceNodeList issues a GetListMessage to every connected peer that
// doesn't already have one outstanding, to bootstrap the registry on startup
// or refresh it after prolonged disconnection, per spec.md §4.1's
// sync-on-connect behavior. It is a no-op while the chain is in initial
// block download, when no peers are connected, before SyncCooldown has
// elapsed since the last sync, and once MaxSyncAttempts has been reached.
func (n *UtilityNode) SyncServiceNodeList() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.services.Chain != nil && n.services.Chain.IsInitialBlockDownload() {
		return nil
	}
	if n.services.Peers == nil {
		return nil
	}
	now := n.now()
	if n.lastSync != 0 && now-n.lastSync < int64(SyncCooldown.Seconds()) {
		return nil
	}
	if n.syncAttempts >= MaxSyncAttempts {
		return nil
	}

	req := &snwire.GetListMessage{}
	sent := false
	n.services.Peers.ForEach(func(p Peer) {
		if n.records.HasRequestRecord(p.Address(), req) {
			return
		}
		if err := p.PushMessage(snwire.CmdGetList, req); err != nil {
			log.Debugf("sync snlist to %s failed: %v", p.Address(), err)
			return
		}
		n.records.RecordRequest(p.Address(), req, now)
		sent = true
	})
	if !sent {
		return nil
	}
	n.lastSync = now
	n.syncAttempts++
	return nil
}

// AdmitLocalStart is the entry point used by ServiceNode/ControlNode to
// inject a locally-originated, already-signed StartMessage (rather than one
// received over the wire), e.g. after a control node signs a new slave's
// snstrt. It runs the same validation and hook pipeline as a remote message,
// then relays it to every peer.
func (n *UtilityNode) AdmitLocalStart(m *snwire.StartMessage) error {
	n.mu.Lock()
	admitted, _ := n.handleStart("", m)
	n.mu.Unlock()

	if !admitted {
		return ErrBadSignature
	}
	n.RelayMessage(m, "")
	return nil
}

// AdmitLocalStop is the snstop analogue of AdmitLocalStart.
func (n *UtilityNode) AdmitLocalStop(m *snwire.StopMessage) error {
	n.mu.Lock()
	admitted := n.handleStop("", m)
	n.mu.Unlock()

	if !admitted {
		return ErrBadSignature
	}
	n.RelayMessage(m, "")
	return nil
}

// LookupByWalletKey resolves a wallet public key to its registry entry, used
// by control-node alias resolution.
func (n *UtilityNode) LookupByWalletKey(pk *secp256k1.PublicKey) (*ServiceNodeEntry, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.ByWalletKey(walletKeyHex(pk))
}

// LookupByTxIn resolves a collateral outpoint to its registry entry.
func (n *UtilityNode) LookupByTxIn(op wire.OutPoint) (*ServiceNodeEntry, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.ByTxIn(op)
}
