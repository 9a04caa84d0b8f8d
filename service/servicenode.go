// Package service implements the service-node role: a utility node that
// owns a single shared identity delegated to it by a control node, and
// keeps that identity alive on the overlay with periodic snping
// heartbeats, per spec.md §4.2.
package service

import (
	"sync"
	"time"

	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/atcsecure/dcrutilitynode/svcnode"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/wire"
)

// pingInterval is how often a started identity reissues snping, chosen
// well inside svcnode.UpdateWindow so a single dropped heartbeat doesn't
// cause peers to treat the entry as stale.
const pingInterval = svcnode.UpdateWindow / 2

// ServiceNode wraps a svcnode.UtilityNode with the single delegated
// identity a CServiceNode owns in the original design: one shared keypair,
// bound to one collateral outpoint and advertised address, that this
// process pings on a timer once started.
type ServiceNode struct {
	*svcnode.UtilityNode

	mu sync.Mutex

	sharedPrivateKey *secp256k1.PrivateKey
	sharedPublicKey  *secp256k1.PublicKey
	txIn             wire.OutPoint
	inetAddr         snwire.InetAddress
	signatureTime    int64
	started          bool

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New constructs a ServiceNode bound to services, holding no identity yet;
// Init must be called before Start/Stop/Ping do anything useful.
func New(services svcnode.Services) *ServiceNode {
	return &ServiceNode{
		UtilityNode: svcnode.NewUtilityNode(services),
		shutdown:    make(chan struct{}),
	}
}

// Init binds the delegated shared identity: the private key a control node
// handed this process, and the collateral/address it was told to advertise.
// It mirrors CServiceNode::Init's strSharedPrivateKey parsing, but takes an
// already-parsed key since key-encoding concerns belong to rpcutility/cmd.
func (s *ServiceNode) Init(sharedPriv *secp256k1.PrivateKey, txIn wire.OutPoint, addr snwire.InetAddress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sharedPrivateKey = sharedPriv
	s.sharedPublicKey = sharedPriv.PubKey()
	s.txIn = txIn
	s.inetAddr = addr
}

// IsStarted reports whether this process currently believes its identity is
// live on the overlay.
func (s *ServiceNode) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// observeStart locally admits a StartMessage for our own identity (signed
// by whoever holds the wallet key — the control node that delegated this
// identity to us), marking us started going forward.
func (s *ServiceNode) observeStart(m *snwire.StartMessage) error {
	if err := s.UtilityNode.AdmitLocalStart(m); err != nil {
		return err
	}
	s.mu.Lock()
	s.signatureTime = m.TimeField
	s.started = true
	s.mu.Unlock()
	return nil
}

// observeStop locally admits a StopMessage for our own identity.
func (s *ServiceNode) observeStop(m *snwire.StopMessage) error {
	if err := s.UtilityNode.AdmitLocalStop(m); err != nil {
		return err
	}
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return nil
}

// Ping issues a fresh snping for the delegated identity, signed with the
// shared private key, and relays it to every peer. It mirrors
// CServiceNode::GetPingMessage + Ping.
func (s *ServiceNode) Ping() error {
	s.mu.Lock()
	if !s.started || s.sharedPrivateKey == nil {
		s.mu.Unlock()
		return nil
	}
	txIn, addr, priv := s.txIn, s.inetAddr, s.sharedPrivateKey
	s.mu.Unlock()

	m := &snwire.PingMessage{
		TimeField:       s.UtilityNode.Now(),
		TxIn:            txIn,
		InetAddr:        addr,
		SharedPublicKey: priv.PubKey(),
	}
	if err := m.Sign(priv); err != nil {
		return err
	}

	if _, _, err := s.UtilityNode.ProcessMessage("", m); err != nil {
		return err
	}
	s.UtilityNode.RelayMessage(m, "")
	return nil
}

// Start launches the background ping loop alongside the embedded
// UtilityNode's own expiry/record-sweep loop.
func (s *ServiceNode) Start() {
	s.UtilityNode.Start()
	s.wg.Add(1)
	go s.pingLoop()
}

// Stop halts the ping loop and the embedded UtilityNode's sweep loop.
func (s *ServiceNode) Stop() {
	close(s.shutdown)
	s.wg.Wait()
	s.UtilityNode.Stop()
}

func (s *ServiceNode) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Ping(); err != nil {
				log.Warnf("service node ping failed: %v", err)
			}
		case <-s.shutdown:
			return
		}
	}
}
