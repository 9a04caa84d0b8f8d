package svcnode

import (
	"time"

	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/wire"
)

// Clock abstracts the host's network-adjusted clock (GetAdjustedTime in
// spec.md §6), so tests can control "now" deterministically.
type Clock interface {
	// Now returns the current network-adjusted Unix time, in seconds.
	Now() int64
}

// Coin is a single spendable output as reported by the wallet, used by
// control.ControlNode.UpdateTxIn to locate collateral.
type Coin struct {
	OutPoint      wire.OutPoint
	Amount        dcrutil.Amount
	Address       string
	Confirmations int64
}

// ChainReader is the out-of-scope block/transaction store and mempool
// collaborator, consumed as described in spec.md §6.
type ChainReader interface {
	// IsInitialBlockDownload reports whether the chain is still
	// syncing; several operations (admission, sync, RPC) refuse to run
	// while this holds.
	IsInitialBlockDownload() bool

	// Output returns the amount and paying address of the output
	// referenced by op, and whether it exists in the confirmed chain or
	// mempool, spent or not; spentness is reported by Unspent. found is
	// false if op doesn't exist at all (never mined, never in the mempool).
	Output(op wire.OutPoint) (amount dcrutil.Amount, address string, found bool, err error)

	// Unspent reports whether op is unspent per the mempool and chain
	// (a double-spend/"already spent" race is distinguished by Output
	// still finding the output when called directly afterwards).
	Unspent(op wire.OutPoint) (bool, error)

	// Confirmations returns the confirmation depth of the transaction
	// containing op's referenced output. Zero means unconfirmed.
	Confirmations(op wire.OutPoint) (int64, error)
}

// Wallet is the out-of-scope wallet collaborator: key storage, signing,
// coin enumeration, and input locking, consumed as described in spec.md §6.
type Wallet interface {
	// IsLocked reports whether the wallet requires an unlock before any
	// signing or coin-selection operation can proceed.
	IsLocked() bool

	// AvailableCoins returns the wallet's spendable outputs, used by
	// UpdateTxIn to locate an unlocked collateral payment.
	AvailableCoins() ([]Coin, error)

	// PublicKeyForAddress returns the public key controlling addr, used
	// by UpdateWalletPublicKey.
	PublicKeyForAddress(addr string) (*secp256k1.PublicKey, error)

	// LockOutPoint marks op ineligible for coin selection so an operator
	// spend can't invalidate a running service node out from under it.
	LockOutPoint(op wire.OutPoint)

	// UnlockOutPoint reverses LockOutPoint.
	UnlockOutPoint(op wire.OutPoint)
}

// Peer is a single connected remote node, the minimal slice of the
// out-of-scope P2P transport this overlay needs.
type Peer interface {
	// Address is the peer's dialable network address, used as the key
	// for per-peer request/response dedup records.
	Address() string

	// ProtocolVersion is the peer's negotiated protocol version, checked
	// against MinProtocolVersion by RelayMessage (not by ProcessMessage).
	ProtocolVersion() int32

	// PushMessage queues msg for delivery to this peer under cmd.
	PushMessage(cmd snwire.Command, msg snwire.Message) error

	// Misbehaving reports points of misbehavior against this peer to the
	// transport's ban-score accounting.
	Misbehaving(points int)
}

// PeerSet is the out-of-scope transport's connected-peer table
// (vNodes/cs_vNodes in spec.md §6).
type PeerSet interface {
	// ForEach calls fn once for every currently connected peer, under
	// whatever lock the transport uses to guard its peer table.
	ForEach(fn func(Peer))

	// Connect dials addr, returning the resulting Peer, or an error if
	// the dial fails or times out.
	Connect(addr snwire.InetAddress, timeout time.Duration) (Peer, error)
}

// AddrManager is the out-of-scope address manager collaborator.
type AddrManager interface {
	// Add records addr as having been seen via source, backdated by
	// penalty (SERVICENODE_TIME_PENALTY).
	Add(addr snwire.InetAddress, source snwire.InetAddress, penalty time.Duration)
}

// Services bundles every out-of-scope collaborator a UtilityNode needs.
// Per the "Global mutable singleton" redesign flag, this is constructed
// once and threaded explicitly through every constructor and the timer
// loop — there is no package-level pNodeMain/pwalletMain equivalent.
type Services struct {
	Chain   ChainReader
	Wallet  Wallet
	Peers   PeerSet
	AddrMgr AddrManager
	Clock   Clock

	// ChainParams selects the network (mainnet/testnet/simnet) used to
	// decode and validate operator-supplied wallet addresses.
	ChainParams *chaincfg.Params
}
