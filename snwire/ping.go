package snwire

import (
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/wire"
)

// PingMessage is the wire form of "snping": a liveness heartbeat signed by
// the ephemeral shared key delegated to the service node.
type PingMessage struct {
	TimeField       int64
	TxIn            wire.OutPoint
	InetAddr        InetAddress
	SharedPublicKey *secp256k1.PublicKey
	Signature       []byte
}

// Command implements Message.
func (m *PingMessage) Command() Command { return CmdPing }

// Time implements Message.
func (m *PingMessage) Time() int64 { return m.TimeField }

// MessageString returns the canonical string that Sign/Verify operate over:
// "snping" || dec(time) || txIn.toString() || inetAddr.toString() ||
// sharedPub.toString().
func (m *PingMessage) MessageString() string {
	return string(CmdPing) +
		decTime(m.TimeField) +
		txInString(m.TxIn) +
		m.InetAddr.String() +
		pubKeyString(m.SharedPublicKey)
}

// Sign signs the message with the shared private key.
func (m *PingMessage) Sign(priv *secp256k1.PrivateKey) error {
	sig, err := Sign(priv, m.MessageString())
	if err != nil {
		return err
	}
	m.Signature = sig
	return nil
}

// Verify reports whether Signature is a valid signature over MessageString
// under pubKey (the entry's sharedPublicKey).
func (m *PingMessage) Verify(pubKey *secp256k1.PublicKey) (bool, error) {
	return Verify(pubKey, m.MessageString(), m.Signature)
}

// Encode implements Message.
func (m *PingMessage) Encode(w io.Writer) error {
	if err := wire.WriteVarInt(w, wireEncodingVersion, uint64(m.TimeField)); err != nil {
		return err
	}
	if err := writeOutPoint(w, m.TxIn); err != nil {
		return err
	}
	if err := m.InetAddr.Encode(w); err != nil {
		return err
	}
	if err := writePubKey(w, m.SharedPublicKey); err != nil {
		return err
	}
	return writeVarBytes(w, m.Signature)
}

// Decode implements Message.
func (m *PingMessage) Decode(r io.Reader) error {
	t, err := wire.ReadVarInt(r, wireEncodingVersion)
	if err != nil {
		return err
	}
	m.TimeField = int64(t)

	if m.TxIn, err = readOutPoint(r); err != nil {
		return err
	}
	if err := m.InetAddr.Decode(r); err != nil {
		return err
	}
	if m.SharedPublicKey, err = readPubKey(r); err != nil {
		return err
	}
	m.Signature, err = readVarBytes(r, 65)
	return err
}

// Compare always returns false; see StartMessage.Compare.
func (m *PingMessage) Compare(other Message) bool {
	return false
}
