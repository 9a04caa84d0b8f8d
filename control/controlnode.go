package control

import (
	"crypto/rand"
	"sync"

	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/atcsecure/dcrutilitynode/svcnode"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
)

// maxProcessingTime bounds how long a slave may sit in StateProcessingStart
// or StateProcessingStop before maintenance.go reverts it, in case its own
// echoed snstrt/snstop is lost or delayed past svcnode.UpdateWindow.
const maxProcessingTime = 10 * 60 // seconds

// ControlNode is the operator-facing role: it owns a set of named slave
// identities and the wallet/chain collaborators needed to fund and sign
// them, per spec.md §4.3. It embeds svcnode.UtilityNode for the shared
// gossip/registry machinery and wires StartHook/UpdateLocks to the
// loop-suppression and extra-collateral-locking behavior the original
// CControlNode overrides provided (per the "Virtual dispatch" redesign
// flag: these are function fields, not a subclass override chain).
type ControlNode struct {
	*svcnode.UtilityNode

	mu       sync.Mutex
	slaves   map[string]*SlaveNodeInfo
	services svcnode.Services

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New constructs a ControlNode bound to services. The StartHook and
// UpdateLocks fields of the embedded UtilityNode are wired to this node's
// own methods so the standard message path stays aware of the slave table.
func New(svc svcnode.Services) *ControlNode {
	c := &ControlNode{
		UtilityNode: svcnode.NewUtilityNode(svc),
		slaves:      make(map[string]*SlaveNodeInfo),
		services:    svc,
		shutdown:    make(chan struct{}),
	}
	c.UtilityNode.StartHook = c.acceptStartMessage
	c.UtilityNode.UpdateLocks = c.updateLocks
	return c
}

// GenerateSharedKey returns a freshly generated secp256k1 private key for
// delegation to a new service node, mirroring
// CControlNode::GenerateSharedKey.
func GenerateSharedKey() (*secp256k1.PrivateKey, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return nil, err
	}
	return secp256k1.PrivKeyFromBytes(raw[:]), nil
}

// RegisterSlave adds a new named slave identity to the control node's
// table. alias must be unique; walletAddress is the address whose private
// key will sign this slave's snstrt/snstop on its behalf.
func (c *ControlNode) RegisterSlave(alias, walletAddress string, sharedPriv *secp256k1.PrivateKey, addr snwire.InetAddress) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.slaves[alias]; ok {
		return svcnode.ErrAliasExists
	}
	if c.services.ChainParams != nil {
		if err := svcnode.ValidateWalletAddress(walletAddress, c.services.ChainParams); err != nil {
			return err
		}
	}
	c.slaves[alias] = newSlaveNodeInfo(alias, walletAddress, sharedPriv, addr)
	return nil
}

// Aliases returns every registered slave's alias, mirroring
// CControlNode::GetSlaveAliases.
func (c *ControlNode) Aliases() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.slaves))
	for alias := range c.slaves {
		out = append(out, alias)
	}
	return out
}

// SlaveByAlias returns the slave record for alias, mirroring
// CControlNode::GetSlaveNode(alias).
func (c *ControlNode) SlaveByAlias(alias string) (*SlaveNodeInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slaves[alias]
	return s, ok
}

// slaveBySharedKey finds a slave by its shared public key, mirroring
// CControlNode::GetSlaveNode(CPubKey). Caller must hold c.mu.
func (c *ControlNode) slaveBySharedKey(pk *secp256k1.PublicKey) (*SlaveNodeInfo, bool) {
	hex := svcnode.PublicKeyHex(pk)
	for _, s := range c.slaves {
		if svcnode.PublicKeyHex(s.SharedPublicKey) == hex {
			return s, true
		}
	}
	return nil, false
}

// acceptStartMessage implements the StartHook: a snstrt whose
// sharedPublicKey matches one of our own slaves is only re-admitted if the
// entry hasn't been updated recently, suppressing the echo of our own
// broadcast from re-triggering local state churn, mirroring
// CControlNode::AcceptStartMessage.
func (c *ControlNode) acceptStartMessage(e *svcnode.ServiceNodeEntry, m *snwire.StartMessage, isNew bool) bool {
	c.mu.Lock()
	slave, isOurs := c.slaveBySharedKey(m.SharedPublicKey)
	c.mu.Unlock()

	if !isOurs {
		return true
	}

	if !isNew && e.IsUpdatedWithin(c.UtilityNode.Now(), int64(svcnode.UpdateWindow.Seconds())) {
		return false
	}

	c.mu.Lock()
	slave.State = svcnode.StateStarted
	slave.SignatureTime = m.TimeField
	c.mu.Unlock()
	return true
}

// updateLocks implements the UpdateLocksFunc override: it runs the default
// started-entry locking, then additionally locks any slave's resolved
// collateral outpoint even while that slave's entry is mid-processing (not
// yet StateStarted), mirroring CControlNode::UpdateLocks.
func (c *ControlNode) updateLocks(wallet svcnode.Wallet, locks *svcnode.LockSet, entries []*svcnode.ServiceNodeEntry) {
	svcnode.DefaultUpdateLocks(wallet, locks, entries)

	coins, err := wallet.AvailableCoins()
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, slave := range c.slaves {
		if err := slave.updateTxIn(coins); err != nil {
			continue
		}
		if !locks.IsLocked(slave.TxIn) {
			wallet.LockOutPoint(slave.TxIn)
			locks.Lock(slave.TxIn)
		}
	}
}
