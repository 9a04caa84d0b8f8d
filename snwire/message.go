// Package snwire implements the five-message gossip wire protocol of the
// utility-node overlay: sninfo, snlist, snping, snstrt, snstop. Each type
// knows how to (de)serialize itself, produce the canonical string an
// accompanying signature covers, and whether it should be relayed or
// deduplicated against a peer's recent message record.
package snwire

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/decred/dcrd/wire"
)

// wireEncodingVersion is the protocol version passed to the dcrd wire
// primitives used for (de)serializing message payloads. The overlay's own
// version gate (UTILITYNODE_MIN_PROTOVERSION and friends) is independent of
// this and lives in svcnode.
const wireEncodingVersion = 0

// Message is the common contract every gossip message satisfies.
type Message interface {
	// Command identifies the wire command this message carries.
	Command() Command

	// Time returns the message's own timestamp field.
	Time() int64

	// Encode serializes the message body (not including the command
	// string, which is carried by the transport's framing).
	Encode(w io.Writer) error

	// Decode deserializes the message body from r.
	Decode(r io.Reader) error

	// Compare reports whether m and other should be considered the same
	// request for request/response dedup purposes. Per design: only
	// sninfo (same txIn) and snlist (always) are deduped this way; signed
	// message types always return false here, since their dedup is
	// handled by the timestamp-monotonicity rule instead.
	Compare(other Message) bool
}

// InetAddress is an IP+port pair carried in snstrt/snstop/snping, and used
// verbatim (via String) in the canonical signing strings of §4.4.
type InetAddress struct {
	IP   net.IP
	Port uint16
}

// String renders the address as "ip:port", the exact form used inside the
// canonical signing strings.
func (a InetAddress) String() string {
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(int(a.Port)))
}

// Encode writes the address as a 16-byte IPv6(-mapped) address followed by
// the port as a varint.
func (a InetAddress) Encode(w io.Writer) error {
	var ip [16]byte
	copy(ip[:], a.IP.To16())
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}
	return wire.WriteVarInt(w, wireEncodingVersion, uint64(a.Port))
}

// Decode reads an address previously written by Encode.
func (a *InetAddress) Decode(r io.Reader) error {
	var ip [16]byte
	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}
	port, err := wire.ReadVarInt(r, wireEncodingVersion)
	if err != nil {
		return err
	}
	if port > 0xffff {
		return fmt.Errorf("snwire: invalid port %d", port)
	}
	a.IP = net.IP(append([]byte(nil), ip[:]...))
	a.Port = uint16(port)
	return nil
}

// writeVarBytes writes a varint-length-prefixed blob, the chain's standard
// encoding for variable-length fields.
func writeVarBytes(w io.Writer, b []byte) error {
	return wire.WriteVarBytes(w, wireEncodingVersion, b)
}

// readVarBytes reads a varint-length-prefixed blob previously written by
// writeVarBytes, capped at maxLen to bound a malicious peer's payload.
func readVarBytes(r io.Reader, maxLen uint32) ([]byte, error) {
	return wire.ReadVarBytes(r, wireEncodingVersion, maxLen, "snwire field")
}

// EncodeMessage serializes m into a single buffer, prefixed by nothing — the
// command string itself is carried by the transport, not the payload.
func EncodeMessage(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMessage deserializes payload into m.
func DecodeMessage(m Message, payload []byte) error {
	return m.Decode(bytes.NewReader(payload))
}
