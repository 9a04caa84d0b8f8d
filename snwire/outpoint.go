package snwire

import (
	"io"

	"github.com/decred/dcrd/wire"
)

// writeOutPoint and readOutPoint encode/decode a wire.OutPoint using the
// same field order (hash, index, tree) the chain's own transaction inputs
// use; unlike a transaction's fixed-width fields, index and tree are written
// as varints.
func writeOutPoint(w io.Writer, op wire.OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, wireEncodingVersion, uint64(op.Index)); err != nil {
		return err
	}
	return wire.WriteVarInt(w, wireEncodingVersion, uint64(op.Tree))
}

func readOutPoint(r io.Reader) (wire.OutPoint, error) {
	var op wire.OutPoint
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return op, err
	}
	index, err := wire.ReadVarInt(r, wireEncodingVersion)
	if err != nil {
		return op, err
	}
	tree, err := wire.ReadVarInt(r, wireEncodingVersion)
	if err != nil {
		return op, err
	}
	op.Index = uint32(index)
	op.Tree = int8(tree)
	return op, nil
}
