package snwire

import "io"

// GetListMessage is the wire form of "snlist": a request for one
// StartMessage per currently-started entry in the registry.
type GetListMessage struct{}

// Command implements Message.
func (m *GetListMessage) Command() Command { return CmdGetList }

// Time implements Message. snlist carries no payload at all.
func (m *GetListMessage) Time() int64 { return 0 }

// Encode implements Message; snlist has an empty body.
func (m *GetListMessage) Encode(w io.Writer) error { return nil }

// Decode implements Message; snlist has an empty body.
func (m *GetListMessage) Decode(r io.Reader) error { return nil }

// Compare reports true for any other GetListMessage, per the Message dedup
// design note ("both snlist").
func (m *GetListMessage) Compare(other Message) bool {
	_, ok := other.(*GetListMessage)
	return ok
}
