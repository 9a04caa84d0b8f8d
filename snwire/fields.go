package snwire

import (
	"encoding/hex"
	"io"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/wire"
)

// pubKeyString renders a compressed public key as lowercase hex, the
// "walletPub.toString()" / "sharedPub.toString()" of the canonical signing
// strings in spec.md §4.4.
func pubKeyString(pk *secp256k1.PublicKey) string {
	if pk == nil {
		return ""
	}
	return hex.EncodeToString(pk.SerializeCompressed())
}

// txInString renders an outpoint as "hash-index", the "txIn.toString()" of
// the canonical signing strings.
func txInString(op wire.OutPoint) string {
	return OutPointString(op)
}

// OutPointString renders an outpoint as "hash-index", exported for use by
// callers (e.g. registry secondary indices, RPC rendering) that need the
// exact same identity string the signing code uses.
func OutPointString(op wire.OutPoint) string {
	return op.Hash.String() + "-" + strconv.FormatUint(uint64(op.Index), 10)
}

// decTime renders a Unix timestamp in decimal, the "dec(time)" of the
// canonical signing strings.
func decTime(t int64) string {
	return strconv.FormatInt(t, 10)
}

func writePubKey(w io.Writer, pk *secp256k1.PublicKey) error {
	var b []byte
	if pk != nil {
		b = pk.SerializeCompressed()
	}
	return writeVarBytes(w, b)
}

func readPubKey(r io.Reader) (*secp256k1.PublicKey, error) {
	b, err := readVarBytes(r, 65)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	return secp256k1.ParsePubKey(b)
}
