package svcnode

import (
	"time"

	"github.com/decred/dcrd/dcrutil/v4"
)

// Protocol version gates and the sentinel that disables them, mirroring
// UTILITYNODE_MIN_PROTOVERSION / UTILITYNODE_REQ_PROTOVERSION.
const (
	// MinProtocolVersion is the lowest peer protocol version RelayMessage
	// forwards messages to; ProcessMessage does no version check.
	MinProtocolVersion int32 = 6014

	// NoRequiredProtocolVersion mirrors UTILITYNODE_REQ_PROTOVERSION's -1.
	// There is no exact-match protocol version gate, and nothing reads this
	// value.
	NoRequiredProtocolVersion int32 = -1
)

// Collateral and confirmation requirements, mirroring
// CONTROLNODE_COINS_REQUIRED / CONTROLNODE_MIN_CONFIRMATIONS.
const (
	// MinConfirmations is the minimum confirmation depth a collateral
	// outpoint must have before a fresh (never-before-seen) identity is
	// admitted.
	MinConfirmations int64 = 60
)

// CollateralAmount is the exact amount (in atoms) the output a txIn refers
// to must carry to qualify as a service node's collateral.
var CollateralAmount = 2500 * dcrutil.AtomsPerCoin

// BanThreshold is the accumulated DynamicBanScore past which a peer is
// disconnected, matching dcrd peer package's own default.
const BanThreshold uint32 = 100

// Network service ports, mirroring SERVICENODE_MAINNET_PORT /
// SERVICENODE_TESTNET_PORT.
const (
	MainNetPort uint16 = 39999
	TestNetPort uint16 = 39998
)

// Timing parameters governing gossip cadence, entry expiration, and
// eviction, mirroring the SERVICENODE_SECONDS_BETWEEN_* macros and the
// spec's explicit "5 minute sync cooldown" clarification.
const (
	// UpdateWindow is "hasn't been updated within" window used by
	// handlePing's relay-suppression check and by ControlNode's
	// AcceptStartMessage loop-suppression override.
	UpdateWindow = 4 * time.Minute

	// ExpirationWindow is how long a Started entry may go without being
	// seen before SweepExpired demotes it to Stopped.
	ExpirationWindow = 1 * time.Hour

	// RemovalWindow is how long a Stopped entry may sit before
	// SweepExpired evicts it (slaves are exempt, per
	// ServiceNodeEntry invariant 4).
	RemovalWindow = 1 * time.Hour

	// SyncCooldown is the minimum spacing between SyncServiceNodeList
	// broadcasts.
	SyncCooldown = 5 * time.Minute

	// MaxSyncAttempts bounds SyncServiceNodeList's retry count before it
	// gives up until the next process restart's worth of progress.
	MaxSyncAttempts = 3

	// FutureTimeTolerance is the clock-skew allowance for signed
	// messages: a message timestamped more than this far in the future
	// is rejected outright.
	FutureTimeTolerance = 1 * time.Hour

	// AddrManagerTimePenalty backdates a freshly admitted service node's
	// address manager entry, mirroring SERVICENODE_TIME_PENALTY, so it
	// isn't immediately treated as a fresh, highly-trusted address.
	AddrManagerTimePenalty = 2 * time.Hour
)

// Record TTLs for the request/response dedup lists, per spec.md §4.1:
// "sninfo: 5 min-1h range; snlist: 1-4h; others: 1h default".
const (
	GetInfoRecordTTL = 1 * time.Hour
	GetListRecordTTL = 4 * time.Hour
	DefaultRecordTTL = 1 * time.Hour
)
