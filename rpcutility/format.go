// Package rpcutility implements the five operator-facing commands the
// original bitcoind-style JSON-RPC dispatch table exposed for the overlay:
// generatesharedkey, startservicenodes, stopservicenodes, listservicenodes,
// and test. Here they are plain Go functions returning a string (with an
// error where the command can fail) rather than json_spirit::Value, since
// this module has no RPC server of its own — cmd/snctl reaches the commands
// over JSON-RPC through the host node's server.
package rpcutility

import (
	"fmt"
	"time"
)

// ReadableTimeSpan renders the duration between t (a Unix timestamp) and
// now as a short human string like "3m12s ago", mirroring the original's
// GetReadableTimeSpan helper used to render lastSeen/lastPing in
// listservicenodes. A zero t (never observed) renders as "never".
func ReadableTimeSpan(t, now int64) string {
	if t == 0 {
		return "never"
	}
	d := time.Duration(now-t) * time.Second
	if d < 0 {
		return "in the future"
	}
	return fmt.Sprintf("%s ago", d.Round(time.Second))
}
