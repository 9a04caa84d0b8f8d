package svcnode

import (
	"encoding/hex"
	"fmt"

	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/wire"
)

// ServiceNodeEntry is one row of the replicated registry: the authoritative,
// in-memory view of a single service node identity, keyed by its collateral
// outpoint. See spec.md §3 for the invariants every mutation must preserve.
type ServiceNodeEntry struct {
	TxIn            wire.OutPoint
	InetAddr        snwire.InetAddress
	WalletPublicKey *secp256k1.PublicKey
	SharedPublicKey *secp256k1.PublicKey
	Signature       []byte
	SignatureTime   int64

	LastPing    int64
	LastStart   int64
	LastStop    int64
	LastSeen    int64
	TimeStopped int64

	// Count and Index carry optional ranking hints from the last
	// accepted snstrt. Count's sentinel -1 means "unsolicited broadcast,
	// please relay" (snwire.UnsolicitedCount).
	Count int32
	Index int32

	State State
}

// newEntryFromStart builds a fresh entry from an admitted StartMessage. It
// does not validate the message; callers must do so first.
func newEntryFromStart(m *snwire.StartMessage, now int64) *ServiceNodeEntry {
	return &ServiceNodeEntry{
		TxIn:            m.TxIn,
		InetAddr:        m.InetAddr,
		WalletPublicKey: m.WalletPublicKey,
		SharedPublicKey: m.SharedPublicKey,
		Signature:       m.Signature,
		SignatureTime:   m.TimeField,
		LastStart:       m.TimeField,
		LastSeen:        now,
		Count:           m.Count,
		Index:           m.Index,
		State:           StateStarted,
	}
}

// applyStart mutates e in place from an admitted, newer StartMessage,
// preserving invariant 2 (LastStart >= SignatureTime).
func (e *ServiceNodeEntry) applyStart(m *snwire.StartMessage, now int64) {
	e.TxIn = m.TxIn
	e.InetAddr = m.InetAddr
	e.WalletPublicKey = m.WalletPublicKey
	e.SharedPublicKey = m.SharedPublicKey
	e.Signature = m.Signature
	e.SignatureTime = m.TimeField
	e.LastStart = m.TimeField
	e.LastSeen = now
	e.Count = m.Count
	e.Index = m.Index
	e.State = StateStarted
}

// IsUpdatedWithin reports whether LastSeen is within window seconds of now.
func (e *ServiceNodeEntry) IsUpdatedWithin(now int64, window int64) bool {
	return now-e.LastSeen < window
}

// IsStarted reports whether the entry is currently considered live.
func (e *ServiceNodeEntry) IsStarted() bool {
	return e.State == StateStarted
}

// walletKeyHex and sharedKeyHex are the secondary-index keys used by
// Registry; defined here so entry.go and registry.go agree on the exact
// encoding.
func walletKeyHex(pk *secp256k1.PublicKey) string {
	if pk == nil {
		return ""
	}
	return hex.EncodeToString(pk.SerializeCompressed())
}

func sharedKeyHex(pk *secp256k1.PublicKey) string {
	return walletKeyHex(pk)
}

// PublicKeyHex renders pk the same way the registry's secondary indices do,
// exported so other roles (control) can compare keys against entries
// without reaching into unexported registry internals.
func PublicKeyHex(pk *secp256k1.PublicKey) string {
	return walletKeyHex(pk)
}

// ToStartMessage synthesizes the StartMessage this entry would have last
// produced, used by HandleGetInfo/HandleGetList to answer requests without
// re-deriving a signature (the stored Signature/SignatureTime are reused
// verbatim, exactly as the entry last had them verified).
func (e *ServiceNodeEntry) ToStartMessage() *snwire.StartMessage {
	return &snwire.StartMessage{
		TimeField:       e.SignatureTime,
		TxIn:            e.TxIn,
		InetAddr:        e.InetAddr,
		WalletPublicKey: e.WalletPublicKey,
		SharedPublicKey: e.SharedPublicKey,
		Count:           e.Count,
		Index:           e.Index,
		Signature:       e.Signature,
	}
}

// String renders a one-line summary of the entry (with keys and timestamps
// added if extensive), used by rpcutility's listservicenodes.
func (e *ServiceNodeEntry) String(extensive bool) string {
	if !extensive {
		return fmt.Sprintf("%s %s %s", snwire.OutPointString(e.TxIn), e.InetAddr.String(), e.State)
	}
	return fmt.Sprintf(
		"txIn=%s addr=%s wallet=%s shared=%s state=%s lastSeen=%d lastStart=%d lastStop=%d lastPing=%d signatureTime=%d",
		snwire.OutPointString(e.TxIn), e.InetAddr.String(),
		walletKeyHex(e.WalletPublicKey), sharedKeyHex(e.SharedPublicKey),
		e.State, e.LastSeen, e.LastStart, e.LastStop, e.LastPing, e.SignatureTime,
	)
}
