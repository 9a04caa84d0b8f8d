package svcnode

import (
	"sync"

	"github.com/decred/dcrd/connmgr"
)

// BanScoreTracker accumulates per-peer misbehavior scores using the same
// decaying DynamicBanScore the host chain's P2P layer uses, so a transport
// implementing Peer.Misbehaving can share one banning policy across every
// protocol it serves rather than inventing its own for this overlay.
type BanScoreTracker struct {
	mu     sync.Mutex
	scores map[string]*connmgr.DynamicBanScore
}

// NewBanScoreTracker returns an empty tracker.
func NewBanScoreTracker() *BanScoreTracker {
	return &BanScoreTracker{scores: make(map[string]*connmgr.DynamicBanScore)}
}

// Add applies points of transient misbehavior against peerAddress and
// returns the peer's resulting total score.
func (t *BanScoreTracker) Add(peerAddress string, points uint32) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	score, ok := t.scores[peerAddress]
	if !ok {
		score = new(connmgr.DynamicBanScore)
		t.scores[peerAddress] = score
	}
	return score.Increase(0, points)
}

// Score returns peerAddress's current ban score without modifying it.
func (t *BanScoreTracker) Score(peerAddress string) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	score, ok := t.scores[peerAddress]
	if !ok {
		return 0
	}
	return score.Int()
}

// Reset clears peerAddress's accumulated score, e.g. on reconnection.
func (t *BanScoreTracker) Reset(peerAddress string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.scores, peerAddress)
}
