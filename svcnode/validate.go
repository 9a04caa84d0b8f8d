package svcnode

import (
	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/wire"
	goerrors "github.com/go-errors/errors"
)

// validateAddress rejects unroutable advertisements: the zero IP or a zero
// port. It does not attempt to resolve or dial the address, and nothing
// else in this module dials it either.
func validateAddress(addr snwire.InetAddress) error {
	if addr.IP == nil || addr.IP.IsUnspecified() {
		return ErrInvalidAddress
	}
	if addr.Port == 0 {
		return ErrInvalidAddress
	}
	return nil
}

// validatePubKey rejects a nil key or one that doesn't carry a valid
// compressed serialization (ParsePubKey having already been applied by the
// wire decoder; this re-checks length/shape for keys constructed in code).
func validatePubKey(pk *secp256k1.PublicKey) error {
	if pk == nil {
		return ErrInvalidKey
	}
	if len(pk.SerializeCompressed()) != 33 {
		return ErrInvalidKey
	}
	return nil
}

// validateTimestamp enforces the monotonic-timestamp and future-tolerance
// rules of spec.md §4.1 step 6: msgTime must be strictly newer than
// lastSignatureTime, and not more than FutureTimeTolerance ahead of now.
func validateTimestamp(msgTime, lastSignatureTime, now int64) error {
	if msgTime > now+int64(FutureTimeTolerance.Seconds()) {
		return ErrFutureTimestamp
	}
	if msgTime <= lastSignatureTime {
		return ErrStaleTimestamp
	}
	return nil
}

// validateCollateral confirms that txIn is a real, unspent output of
// exactly CollateralAmount with at least MinConfirmations confirmations,
// per spec.md §3's collateral-association invariant. Grounded on
// original_source/src/utilitynode.cpp's IsCollateralValid and on
// routing/ann_validation.go's pattern of chain-lookup-then-threshold-check.
// The paying address reported by ChainReader.Output is not compared with
// the message's wallet key.
func validateCollateral(chain ChainReader, op wire.OutPoint) error {
	if chain.IsInitialBlockDownload() {
		return ErrChainSyncing
	}
	amount, _, found, err := chain.Output(op)
	if err != nil {
		return goerrors.WrapPrefix(err, "svcnode: chain.Output", 0)
	}
	if !found {
		return ErrNoCollateralFound
	}
	if amount != CollateralAmount {
		return ErrNoCollateralFound
	}
	unspent, err := chain.Unspent(op)
	if err != nil {
		return goerrors.WrapPrefix(err, "svcnode: chain.Unspent", 0)
	}
	if !unspent {
		return ErrNoCollateralFound
	}
	confs, err := chain.Confirmations(op)
	if err != nil {
		return goerrors.WrapPrefix(err, "svcnode: chain.Confirmations", 0)
	}
	if confs < MinConfirmations {
		return ErrInsufficientConfirmations
	}
	return nil
}

// validateStartMessage runs every structural and semantic check a
// StartMessage must pass before it may update or create a registry entry:
// signature verification, address/key shape, timestamp monotonicity, and
// (unless skipCollateral, used by control nodes locking their own known-good
// collateral) on-chain collateral association.
func validateStartMessage(chain ChainReader, m *snwire.StartMessage, lastSignatureTime, now int64, skipCollateral bool) error {
	if err := validateAddress(m.InetAddr); err != nil {
		return err
	}
	if err := validatePubKey(m.WalletPublicKey); err != nil {
		return err
	}
	if err := validatePubKey(m.SharedPublicKey); err != nil {
		return err
	}
	if err := validateTimestamp(m.TimeField, lastSignatureTime, now); err != nil {
		return err
	}
	ok, err := m.Verify(m.WalletPublicKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadSignature
	}
	if !skipCollateral && chain != nil {
		if err := validateCollateral(chain, m.TxIn); err != nil {
			return err
		}
	}
	return nil
}

// validateStopMessage verifies a StopMessage's signature and timestamp
// against the entry it claims to stop. Collateral need not still be valid
// (the node may already have spent it); only the signature chain matters.
func validateStopMessage(m *snwire.StopMessage, sharedKey *secp256k1.PublicKey, lastSignatureTime, now int64) error {
	if err := validateTimestamp(m.TimeField, lastSignatureTime, now); err != nil {
		return err
	}
	ok, err := m.Verify(sharedKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}

// validatePingMessage verifies a PingMessage's signature and timestamp
// against the entry it claims to refresh.
func validatePingMessage(m *snwire.PingMessage, sharedKey *secp256k1.PublicKey, lastSignatureTime, now int64) error {
	if err := validateTimestamp(m.TimeField, lastSignatureTime, now); err != nil {
		return err
	}
	ok, err := m.Verify(sharedKey)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}
