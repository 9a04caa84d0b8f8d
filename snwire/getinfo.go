package snwire

import (
	"io"

	"github.com/decred/dcrd/wire"
)

// GetInfoMessage is the wire form of "sninfo": a request for the current
// StartMessage of a single txIn, sent when a peer observes activity (e.g. a
// PingMessage) for a txIn it doesn't yet know about.
type GetInfoMessage struct {
	TxIn wire.OutPoint
}

// Command implements Message.
func (m *GetInfoMessage) Command() Command { return CmdGetInfo }

// Time implements Message. sninfo carries no timestamp of its own; it is
// unsigned and deduped by content, not by the monotonic-time rule.
func (m *GetInfoMessage) Time() int64 { return 0 }

// Encode implements Message.
func (m *GetInfoMessage) Encode(w io.Writer) error {
	return writeOutPoint(w, m.TxIn)
}

// Decode implements Message.
func (m *GetInfoMessage) Decode(r io.Reader) error {
	op, err := readOutPoint(r)
	if err != nil {
		return err
	}
	m.TxIn = op
	return nil
}

// Compare reports true iff other is also a GetInfoMessage for the same
// txIn, per the Message dedup design note.
func (m *GetInfoMessage) Compare(other Message) bool {
	o, ok := other.(*GetInfoMessage)
	if !ok {
		return false
	}
	return m.TxIn == o.TxIn
}
