package control

import (
	"github.com/atcsecure/dcrutilitynode/svcnode"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
)

// StartSlaveNode activates the named slave: resolves its current collateral
// and wallet key, signs a fresh StartMessage with walletPriv (the private
// key controlling the slave's WalletAddress), marks the slave
// StateProcessingStart, and relays the message to every peer, mirroring
// CControlNode::StartSlaveNode. The slave moves to StateStarted when the
// relayed message comes back from a peer and acceptStartMessage sees it.
func (c *ControlNode) StartSlaveNode(alias string, walletPriv *secp256k1.PrivateKey) error {
	if c.services.Chain != nil && c.services.Chain.IsInitialBlockDownload() {
		return svcnode.ErrChainSyncing
	}

	c.mu.Lock()
	slave, ok := c.slaves[alias]
	c.mu.Unlock()
	if !ok {
		return svcnode.ErrUnknownAlias
	}

	if slave.State.IsProcessing() {
		return svcnode.ErrStillProcessing
	}
	if slave.State == svcnode.StateStarted {
		return svcnode.ErrAlreadyStarted
	}

	coins, err := c.services.Wallet.AvailableCoins()
	if err != nil {
		return err
	}
	if err := slave.updateTxIn(coins); err != nil {
		return err
	}
	if err := slave.updateWalletPublicKey(c.services.Wallet); err != nil {
		return err
	}

	now := c.UtilityNode.Now()
	msg, err := slave.startMessage(walletPriv, now)
	if err != nil {
		return err
	}

	c.mu.Lock()
	slave.SignatureTime = now
	slave.LastSeen = now
	slave.State = svcnode.StateProcessingStart
	slave.ProcessingStartTime = now
	c.mu.Unlock()

	c.UtilityNode.RelayMessage(msg, "")
	return nil
}

// StopSlaveNode deactivates the named slave, mirroring
// CControlNode::StopSlaveNode.
func (c *ControlNode) StopSlaveNode(alias string, walletPriv *secp256k1.PrivateKey) error {
	if c.services.Chain != nil && c.services.Chain.IsInitialBlockDownload() {
		return svcnode.ErrChainSyncing
	}

	c.mu.Lock()
	slave, ok := c.slaves[alias]
	c.mu.Unlock()
	if !ok {
		return svcnode.ErrUnknownAlias
	}

	if slave.State.IsProcessing() {
		return svcnode.ErrStillProcessing
	}
	if slave.State != svcnode.StateStarted {
		return svcnode.ErrNotStarted
	}

	now := c.UtilityNode.Now()
	msg, err := slave.stopMessage(walletPriv, now)
	if err != nil {
		return err
	}

	c.mu.Lock()
	slave.State = svcnode.StateProcessingStop
	slave.ProcessingStartTime = now
	c.mu.Unlock()

	return c.UtilityNode.AdmitLocalStop(msg)
}

// SweepStuckProcessing reverts any slave that has sat in
// StateProcessingStart/StateProcessingStop for more than maxProcessingTime
// without its echo being observed, mirroring the intent of the commented
// CControlNode::UpdateSlaveNodeList in the original source (never wired up
// there; wired here so a lost echo doesn't wedge a slave forever).
func (c *ControlNode) SweepStuckProcessing() {
	now := c.UtilityNode.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, slave := range c.slaves {
		if !slave.State.IsProcessing() {
			continue
		}
		if now-slave.ProcessingStartTime <= int64(maxProcessingTime) {
			continue
		}
		switch slave.State {
		case svcnode.StateProcessingStart:
			slave.State = svcnode.StateStopped
		case svcnode.StateProcessingStop:
			slave.State = svcnode.StateStarted
		}
	}
}
