// Package control implements the control-node role: the operator-facing
// side of the overlay that owns a set of named "slave" service node
// identities, starts and stops them on command, and delegates their shared
// keys, per spec.md §4.3.
package control

import (
	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/atcsecure/dcrutilitynode/svcnode"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
)

// SlaveNodeInfo is the control node's local bookkeeping record for one
// named service node identity, extending svcnode.ServiceNodeEntry with the
// operator-assigned alias, wallet address, and the shared private key this
// process holds custody of (mirroring CSlaveNodeInfo).
type SlaveNodeInfo struct {
	svcnode.ServiceNodeEntry

	Alias               string
	WalletAddress       string
	SharedPrivateKey    *secp256k1.PrivateKey
	ProcessingStartTime int64
}

// newSlaveNodeInfo constructs a fresh, never-started slave record. txIn is
// resolved later by updateTxIn once the operator starts it.
func newSlaveNodeInfo(alias, walletAddress string, sharedPriv *secp256k1.PrivateKey, addr snwire.InetAddress) *SlaveNodeInfo {
	return &SlaveNodeInfo{
		ServiceNodeEntry: svcnode.ServiceNodeEntry{
			InetAddr:        addr,
			SharedPublicKey: sharedPriv.PubKey(),
			Count:           snwire.UnsolicitedCount,
			Index:           snwire.UnsolicitedCount,
			State:           svcnode.StateStopped,
		},
		Alias:            alias,
		WalletAddress:    walletAddress,
		SharedPrivateKey: sharedPriv,
	}
}

// updateTxIn resolves the slave's collateral outpoint from the wallet's
// current coin set, mirroring CSlaveNodeInfo::UpdateTxIn/FindTxIn: the coin
// must pay exactly svcnode.CollateralAmount to WalletAddress and have at
// least svcnode.MinConfirmations confirmations.
func (s *SlaveNodeInfo) updateTxIn(coins []svcnode.Coin) error {
	for _, c := range coins {
		if c.Amount != svcnode.CollateralAmount {
			continue
		}
		if c.Address != s.WalletAddress {
			continue
		}
		if c.Confirmations < svcnode.MinConfirmations {
			return svcnode.ErrInsufficientConfirmations
		}
		s.TxIn = c.OutPoint
		return nil
	}
	return svcnode.ErrNoCollateralFound
}

// updateWalletPublicKey resolves the slave's wallet public key from
// WalletAddress via the wallet collaborator, mirroring
// CSlaveNodeInfo::UpdateWalletPublicKey.
func (s *SlaveNodeInfo) updateWalletPublicKey(wallet svcnode.Wallet) error {
	pk, err := wallet.PublicKeyForAddress(s.WalletAddress)
	if err != nil {
		return err
	}
	if pk == nil {
		return svcnode.ErrInvalidAddress
	}
	s.WalletPublicKey = pk
	return nil
}

// startMessage builds and signs the StartMessage this slave advertises,
// mirroring CSlaveNodeInfo::GetStartMessage. walletPriv is the wallet
// private key controlling WalletPublicKey, supplied by the caller since key
// custody for the wallet-side key belongs to the wallet collaborator, not
// this record.
func (s *SlaveNodeInfo) startMessage(walletPriv *secp256k1.PrivateKey, now int64) (*snwire.StartMessage, error) {
	m := &snwire.StartMessage{
		TimeField:       now,
		TxIn:            s.TxIn,
		InetAddr:        s.InetAddr,
		WalletPublicKey: s.WalletPublicKey,
		SharedPublicKey: s.SharedPublicKey,
		Count:           snwire.UnsolicitedCount,
		Index:           snwire.UnsolicitedCount,
	}
	if err := m.Sign(walletPriv); err != nil {
		return nil, svcnode.ErrSignFailed
	}
	ok, err := m.Verify(s.WalletPublicKey)
	if err != nil || !ok {
		return nil, svcnode.ErrBadSignature
	}
	return m, nil
}

// stopMessage builds and signs the StopMessage this slave broadcasts,
// mirroring CSlaveNodeInfo::GetStopMessage.
func (s *SlaveNodeInfo) stopMessage(walletPriv *secp256k1.PrivateKey, now int64) (*snwire.StopMessage, error) {
	m := &snwire.StopMessage{
		TimeField:       now,
		TxIn:            s.TxIn,
		InetAddr:        s.InetAddr,
		SharedPublicKey: s.SharedPublicKey,
	}
	if err := m.Sign(walletPriv); err != nil {
		return nil, svcnode.ErrSignFailed
	}
	ok, err := m.Verify(s.WalletPublicKey)
	if err != nil || !ok {
		return nil, svcnode.ErrBadSignature
	}
	return m, nil
}
