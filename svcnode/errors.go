package svcnode

import "errors"

// misbehaviorScore maps a validation failure to the ban score points it
// carries, per spec.md §7's "Peer misbehavior" taxonomy: provable malice
// (forged signature, malformed shape) is scored heavily; conditions that
// could plausibly be an honest race (a collateral spend not yet seen by
// this node, a confirmation count still catching up) are scored lightly or
// not at all. Errors outside this table (I/O failures, IBD) are never peer
// misbehavior and score 0.
func misbehaviorScore(err error) int {
	switch {
	case errors.Is(err, ErrBadSignature),
		errors.Is(err, ErrInvalidAddress),
		errors.Is(err, ErrInvalidKey):
		return 100
	case errors.Is(err, ErrInsufficientConfirmations):
		return 20
	case errors.Is(err, ErrNoCollateralFound):
		return 10
	case errors.Is(err, ErrFutureTimestamp), errors.Is(err, ErrStaleTimestamp):
		return 5
	default:
		return 0
	}
}

// Operator-facing error taxonomy. These are returned by the control-node
// RPC layer (rpcutility) and by the validation helpers below; they are
// compared with errors.Is, never with string matching, per spec.md §7.
var (
	// ErrNotControlNode is returned by any control-only operation invoked
	// on a node that doesn't hold wallet/chain services.
	ErrNotControlNode = errors.New("svcnode: not a control node")

	// ErrChainSyncing is returned when the chain is still in initial block
	// download and collateral can't yet be verified.
	ErrChainSyncing = errors.New("svcnode: chain is syncing")

	// ErrWalletLocked is returned when a signing operation needs an
	// unlocked wallet.
	ErrWalletLocked = errors.New("svcnode: wallet is locked")

	// ErrUnknownAlias is returned when an operator command names an alias
	// that has no SlaveNodeInfo entry.
	ErrUnknownAlias = errors.New("svcnode: unknown alias")

	// ErrAliasExists is returned when registering a new slave under an
	// alias that's already taken.
	ErrAliasExists = errors.New("svcnode: alias already registered")

	// ErrAlreadyStarted is returned by StartSlaveNode on an entry that is
	// already StateStarted.
	ErrAlreadyStarted = errors.New("svcnode: service node already started")

	// ErrNotStarted is returned by StopSlaveNode on an entry that is
	// already StateStopped.
	ErrNotStarted = errors.New("svcnode: service node not started")

	// ErrStillProcessing is returned when a start/stop is requested while
	// the previous one hasn't been observed yet.
	ErrStillProcessing = errors.New("svcnode: previous start/stop still processing")

	// ErrNoCollateralFound is returned when the wallet has no coin
	// matching the required collateral amount for an alias.
	ErrNoCollateralFound = errors.New("svcnode: no matching collateral output found")

	// ErrInsufficientConfirmations is returned when the collateral output
	// exists but hasn't reached MinConfirmations.
	ErrInsufficientConfirmations = errors.New("svcnode: collateral has insufficient confirmations")

	// ErrInvalidAddress is returned when a message's advertised address
	// fails validation (unspecified IP, zero port, etc).
	ErrInvalidAddress = errors.New("svcnode: invalid network address")

	// ErrInvalidKey is returned when a message carries a key that doesn't
	// parse as a valid secp256k1 public key.
	ErrInvalidKey = errors.New("svcnode: invalid public key")

	// ErrConnectFailed reports a failed connection to an advertised
	// address. No operation in this module dials advertised addresses or
	// returns it.
	ErrConnectFailed = errors.New("svcnode: connection to advertised address failed")

	// ErrSignFailed is returned when signing a message fails, typically
	// because the wallet can't produce a signature for the requested key.
	ErrSignFailed = errors.New("svcnode: signing failed")

	// ErrFutureTimestamp is returned when a message's signing time is too
	// far ahead of the local clock to be plausible.
	ErrFutureTimestamp = errors.New("svcnode: message timestamp too far in the future")

	// ErrStaleTimestamp is returned when a message's signing time is not
	// newer than the entry's last accepted timestamp (replay/out-of-order).
	ErrStaleTimestamp = errors.New("svcnode: message timestamp not newer than current record")

	// ErrBadSignature is returned when signature verification fails.
	ErrBadSignature = errors.New("svcnode: signature verification failed")

	// ErrUnknownCommand is returned by ProcessMessage for a message whose
	// Command() doesn't match any known dispatch.
	ErrUnknownCommand = errors.New("svcnode: unknown message command")
)
