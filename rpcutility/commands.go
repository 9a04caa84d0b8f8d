package rpcutility

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/atcsecure/dcrutilitynode/control"
	"github.com/atcsecure/dcrutilitynode/svcnode"
	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
)

// Signer resolves the private key controlling a wallet address, supplied by
// the host process's unlocked wallet. It is kept separate from
// svcnode.Wallet because exposing private key material is a concern only
// the RPC layer's caller (an unlocked, operator-trusted wallet) should
// carry — the gossip core never needs it.
type Signer interface {
	PrivateKeyForAddress(addr string) (*secp256k1.PrivateKey, error)
}

// GenerateSharedKey implements the "generatesharedkey" command: it
// generates a fresh secp256k1 key and returns the hex encoding of its raw
// 32-byte serialization (not a WIF string), ready to hand to a service node
// operator for Init. Only valid when node
// is a control node, mirroring generatesharedkey's IsControlNode(pNodeMain)
// guard.
func GenerateSharedKey(node *control.ControlNode) (string, error) {
	if node == nil {
		return "", svcnode.ErrNotControlNode
	}
	priv, err := control.GenerateSharedKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(priv.Serialize()), nil
}

// StartServiceNodes implements "startservicenodes [alias...]": with no
// aliases, starts every registered slave; otherwise starts exactly the
// named ones. Mirrors startservicenodes/startservicenode.
func StartServiceNodes(node *control.ControlNode, wallet svcnode.Wallet, signer Signer, aliases []string) (string, error) {
	if node == nil {
		return "", svcnode.ErrNotControlNode
	}
	if wallet.IsLocked() {
		return "Wallet needs to be unlocked", nil
	}

	if len(aliases) == 0 {
		aliases = node.Aliases()
		if len(aliases) == 0 {
			return "no registered slave service nodes", nil
		}
	}

	var sb strings.Builder
	for _, alias := range aliases {
		sb.WriteString(startOne(node, signer, alias))
	}
	return sb.String(), nil
}

func startOne(node *control.ControlNode, signer Signer, alias string) string {
	slave, ok := node.SlaveByAlias(alias)
	if !ok {
		return fmt.Sprintf("Service node %s not found\n", alias)
	}

	priv, err := signer.PrivateKeyForAddress(slave.WalletAddress)
	if err != nil {
		return fmt.Sprintf("Service node %s failed to start - %v\n", alias, err)
	}

	if err := node.StartSlaveNode(alias, priv); err != nil {
		return fmt.Sprintf("Service node %s failed to start - %v\n", alias, err)
	}
	return fmt.Sprintf("Service node %s succesfully started\n", alias)
}

// StopServiceNodes implements "stopservicenodes [alias...]".
func StopServiceNodes(node *control.ControlNode, wallet svcnode.Wallet, signer Signer, aliases []string) (string, error) {
	if node == nil {
		return "", svcnode.ErrNotControlNode
	}
	if wallet.IsLocked() {
		return "Wallet needs to be unlocked", nil
	}

	if len(aliases) == 0 {
		aliases = node.Aliases()
		if len(aliases) == 0 {
			return "no registered slave service nodes", nil
		}
	}

	var sb strings.Builder
	for _, alias := range aliases {
		sb.WriteString(stopOne(node, signer, alias))
	}
	return sb.String(), nil
}

func stopOne(node *control.ControlNode, signer Signer, alias string) string {
	slave, ok := node.SlaveByAlias(alias)
	if !ok {
		return fmt.Sprintf("Service node %s not found\n", alias)
	}

	priv, err := signer.PrivateKeyForAddress(slave.WalletAddress)
	if err != nil {
		return fmt.Sprintf("Service node %s failed to stop - %v\n", alias, err)
	}

	if err := node.StopSlaveNode(alias, priv); err != nil {
		return fmt.Sprintf("Service node %s failed to stop - %v\n", alias, err)
	}
	return fmt.Sprintf("Service node %s succesfully stopped\n", alias)
}

// ListServiceNodes implements "listservicenodes [extensive]": renders every
// entry in the registry, one per line. extensive mirrors the original
// ToString(extensive) flag; when set, each entry is followed by a full
// go-spew dump of its fields, which is useful for diagnosing registry state
// a terse summary line would hide.
func ListServiceNodes(node *svcnode.UtilityNode, now int64, extensive bool) string {
	entries := node.Registry().All()

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String(extensive))
		sb.WriteString(fmt.Sprintf(" lastSeen=%s lastPing=%s\n",
			ReadableTimeSpan(e.LastSeen, now), ReadableTimeSpan(e.LastPing, now)))
		if extensive {
			spew.Fdump(&sb, e)
		}
	}
	return sb.String()
}

// Test implements the "test" command.
func Test(node *svcnode.UtilityNode) string {
	return node.Test()
}
