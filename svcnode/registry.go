package svcnode

import (
	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/decred/dcrd/wire"
)

// Registry is the authoritative in-memory service node table. Per the
// "Shared-pointer registry with back-pointers" redesign flag, it is an
// arena — a slice of entries plus a primary index on txIn and secondary
// indices on inetAddress/sharedPublicKey/walletPublicKey — rather than a
// web of shared pointers. All lookups go through the indices; entries are
// never passed around by raw slice position.
//
// Registry itself holds no lock: callers (UtilityNode) serialize all access
// through a single mutex, per spec.md §5's "single discipline" requirement.
type Registry struct {
	arena []*ServiceNodeEntry
	free  []int

	byTxIn      map[wire.OutPoint]int
	byAddr      map[string]int
	bySharedKey map[string]int
	byWalletKey map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byTxIn:      make(map[wire.OutPoint]int),
		byAddr:      make(map[string]int),
		bySharedKey: make(map[string]int),
		byWalletKey: make(map[string]int),
	}
}

// insertAt places e in a free arena slot, reusing one freed by Remove when
// available, and returns the slot.
func (r *Registry) insertAt(e *ServiceNodeEntry) int {
	var idx int
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
		r.arena[idx] = e
	} else {
		idx = len(r.arena)
		r.arena = append(r.arena, e)
	}
	return idx
}

func (r *Registry) indexEntry(idx int, e *ServiceNodeEntry) {
	r.byTxIn[e.TxIn] = idx
	if addr := e.InetAddr.String(); addr != "" {
		r.byAddr[addr] = idx
	}
	if key := sharedKeyHex(e.SharedPublicKey); key != "" {
		r.bySharedKey[key] = idx
	}
	if key := walletKeyHex(e.WalletPublicKey); key != "" {
		r.byWalletKey[key] = idx
	}
}

func (r *Registry) unindexEntry(e *ServiceNodeEntry) {
	delete(r.byTxIn, e.TxIn)
	delete(r.byAddr, e.InetAddr.String())
	delete(r.bySharedKey, sharedKeyHex(e.SharedPublicKey))
	delete(r.byWalletKey, walletKeyHex(e.WalletPublicKey))
}

// Add inserts a brand new entry, keyed by e.TxIn. It is the caller's
// responsibility to ensure no entry with this txIn already exists
// (invariant 1: the registry is a set keyed by txIn).
func (r *Registry) Add(e *ServiceNodeEntry) {
	idx := r.insertAt(e)
	r.indexEntry(idx, e)
}

// Remove deletes the entry for txIn, if any, returning it.
func (r *Registry) Remove(txIn wire.OutPoint) (*ServiceNodeEntry, bool) {
	idx, ok := r.byTxIn[txIn]
	if !ok {
		return nil, false
	}
	e := r.arena[idx]
	r.unindexEntry(e)
	r.arena[idx] = nil
	r.free = append(r.free, idx)
	return e, true
}

// reindexAfterAddrOrKeyChange refreshes the indices for e after one of its
// indexed fields (TxIn/InetAddr/SharedPublicKey/WalletPublicKey) has changed
// in place, given the values it held before the change. TxIn can move when
// handleStart admits an update matched via Find's address/key fallback
// rather than by txIn itself.
func (r *Registry) reindexAfterAddrOrKeyChange(e *ServiceNodeEntry, oldTxIn wire.OutPoint, oldAddr, oldShared, oldWallet string) {
	idx, ok := r.byTxIn[oldTxIn]
	if !ok {
		return
	}
	if oldTxIn != e.TxIn {
		delete(r.byTxIn, oldTxIn)
		r.byTxIn[e.TxIn] = idx
	}
	if oldAddr != "" {
		delete(r.byAddr, oldAddr)
	}
	if oldShared != "" {
		delete(r.bySharedKey, oldShared)
	}
	if oldWallet != "" {
		delete(r.byWalletKey, oldWallet)
	}
	if addr := e.InetAddr.String(); addr != "" {
		r.byAddr[addr] = idx
	}
	if key := sharedKeyHex(e.SharedPublicKey); key != "" {
		r.bySharedKey[key] = idx
	}
	if key := walletKeyHex(e.WalletPublicKey); key != "" {
		r.byWalletKey[key] = idx
	}
}

// ByTxIn looks up an entry by its primary key.
func (r *Registry) ByTxIn(txIn wire.OutPoint) (*ServiceNodeEntry, bool) {
	idx, ok := r.byTxIn[txIn]
	if !ok {
		return nil, false
	}
	return r.arena[idx], true
}

// ByAddr looks up an entry by its inet address.
func (r *Registry) ByAddr(addr snwire.InetAddress) (*ServiceNodeEntry, bool) {
	idx, ok := r.byAddr[addr.String()]
	if !ok {
		return nil, false
	}
	return r.arena[idx], true
}

// BySharedKey looks up an entry by its shared public key.
func (r *Registry) BySharedKey(hexKey string) (*ServiceNodeEntry, bool) {
	idx, ok := r.bySharedKey[hexKey]
	if !ok {
		return nil, false
	}
	return r.arena[idx], true
}

// ByWalletKey looks up an entry by its wallet public key.
func (r *Registry) ByWalletKey(hexKey string) (*ServiceNodeEntry, bool) {
	idx, ok := r.byWalletKey[hexKey]
	if !ok {
		return nil, false
	}
	return r.arena[idx], true
}

// Find implements the GetServiceNode(message) fallback chain of spec.md
// §4.1 step 9: look up by txIn first, then by any of inetAddress,
// sharedPublicKey, or walletPublicKey.
func (r *Registry) Find(txIn wire.OutPoint, addr snwire.InetAddress, sharedKey, walletKey string) (*ServiceNodeEntry, bool) {
	if e, ok := r.ByTxIn(txIn); ok {
		return e, true
	}
	if e, ok := r.ByAddr(addr); ok {
		return e, true
	}
	if sharedKey != "" {
		if e, ok := r.BySharedKey(sharedKey); ok {
			return e, true
		}
	}
	if walletKey != "" {
		if e, ok := r.ByWalletKey(walletKey); ok {
			return e, true
		}
	}
	return nil, false
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	return len(r.byTxIn)
}

// All returns a snapshot slice of every live entry, in arena order. The
// slice is safe to range over without further locking, but the entries it
// points to are still shared state — callers must not mutate them outside
// the UtilityNode's single-mutex discipline.
func (r *Registry) All() []*ServiceNodeEntry {
	out := make([]*ServiceNodeEntry, 0, r.Len())
	for _, e := range r.arena {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
