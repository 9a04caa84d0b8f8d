package svcnode

import "github.com/decred/dcrd/wire"

// LockSet tracks which outpoints are reserved as service node collateral
// and must not be spent by the local wallet. It mirrors the wallet's own
// LockOutPoint/UnlockOutPoint calls so the registry and wallet stay in
// sync even across restarts, per spec.md §3's "lock set" invariant.
type LockSet struct {
	locked map[wire.OutPoint]struct{}
}

// NewLockSet returns an empty lock set.
func NewLockSet() *LockSet {
	return &LockSet{locked: make(map[wire.OutPoint]struct{})}
}

// Lock marks op as reserved.
func (l *LockSet) Lock(op wire.OutPoint) {
	l.locked[op] = struct{}{}
}

// Unlock clears op's reservation.
func (l *LockSet) Unlock(op wire.OutPoint) {
	delete(l.locked, op)
}

// IsLocked reports whether op is currently reserved.
func (l *LockSet) IsLocked(op wire.OutPoint) bool {
	_, ok := l.locked[op]
	return ok
}

// All returns every locked outpoint.
func (l *LockSet) All() []wire.OutPoint {
	out := make([]wire.OutPoint, 0, len(l.locked))
	for op := range l.locked {
		out = append(out, op)
	}
	return out
}

// UpdateLocksFunc reconciles the wallet's lock set against the registry's
// live entries. The default implementation (DefaultUpdateLocks) locks every
// started entry's collateral and unlocks everything else; ControlNode
// overrides this via UtilityNode.UpdateLocks to also lock collateral for
// slaves that are mid-start/mid-stop, per the StartHook redesign flag.
type UpdateLocksFunc func(wallet Wallet, locks *LockSet, entries []*ServiceNodeEntry)

// DefaultUpdateLocks locks the collateral of every started entry and
// unlocks everything else, the plain service-node behavior.
func DefaultUpdateLocks(wallet Wallet, locks *LockSet, entries []*ServiceNodeEntry) {
	wanted := make(map[wire.OutPoint]struct{}, len(entries))
	for _, e := range entries {
		if e.IsStarted() {
			wanted[e.TxIn] = struct{}{}
		}
	}
	for op := range wanted {
		if !locks.IsLocked(op) {
			wallet.LockOutPoint(op)
			locks.Lock(op)
		}
	}
	for _, op := range locks.All() {
		if _, ok := wanted[op]; !ok {
			wallet.UnlockOutPoint(op)
			locks.Unlock(op)
		}
	}
}
