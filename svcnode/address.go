package svcnode

import (
	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/txscript/v4"
	"github.com/decred/dcrd/txscript/v4/stdaddr"
)

// ValidateWalletAddress decodes addr under params and confirms it is a
// standard pay-to-pubkey-hash address — the only script shape the overlay
// accepts for collateral and operator wallet addresses, mirroring
// CBitcoinAddress::IsValid()'s implicit P2PKH assumption in
// original_source's CSlaveNodeInfo::Init.
func ValidateWalletAddress(addr string, params *chaincfg.Params) error {
	a, err := stdaddr.DecodeAddress(addr, params)
	if err != nil {
		return ErrInvalidAddress
	}
	version, script := a.PaymentScript()
	if txscript.GetScriptClass(version, script, true) != txscript.PubKeyHashTy {
		return ErrInvalidAddress
	}
	return nil
}
