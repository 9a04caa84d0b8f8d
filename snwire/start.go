package snwire

import (
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/wire"
)

// UnsolicitedCount is the sentinel value of Count that marks a StartMessage
// as an original broadcast eligible for flood relay, per the "Sentinel
// count = -1" glossary entry.
const UnsolicitedCount = -1

// StartMessage is the wire form of "snstrt": an announcement or renewal of a
// service node identity, signed by the wallet key controlling the
// collateral outpoint.
type StartMessage struct {
	TimeField       int64
	TxIn            wire.OutPoint
	InetAddr        InetAddress
	WalletPublicKey *secp256k1.PublicKey
	SharedPublicKey *secp256k1.PublicKey
	Count           int32
	Index           int32
	Signature       []byte
}

// Command implements Message.
func (m *StartMessage) Command() Command { return CmdStart }

// Time implements Message.
func (m *StartMessage) Time() int64 { return m.TimeField }

// MessageString returns the canonical string that Sign/Verify operate over:
// "snstrt" || dec(time) || inetAddr.toString() || walletPub.toString() ||
// sharedPub.toString().
func (m *StartMessage) MessageString() string {
	return string(CmdStart) +
		decTime(m.TimeField) +
		m.InetAddr.String() +
		pubKeyString(m.WalletPublicKey) +
		pubKeyString(m.SharedPublicKey)
}

// Sign signs the message with the wallet private key corresponding to
// WalletPublicKey, storing the signature on the message.
func (m *StartMessage) Sign(priv *secp256k1.PrivateKey) error {
	sig, err := Sign(priv, m.MessageString())
	if err != nil {
		return err
	}
	m.Signature = sig
	return nil
}

// Verify reports whether Signature is a valid signature over MessageString
// under pubKey.
func (m *StartMessage) Verify(pubKey *secp256k1.PublicKey) (bool, error) {
	return Verify(pubKey, m.MessageString(), m.Signature)
}

// Encode implements Message.
func (m *StartMessage) Encode(w io.Writer) error {
	if err := wire.WriteVarInt(w, wireEncodingVersion, uint64(m.TimeField)); err != nil {
		return err
	}
	if err := writeOutPoint(w, m.TxIn); err != nil {
		return err
	}
	if err := m.InetAddr.Encode(w); err != nil {
		return err
	}
	if err := writePubKey(w, m.WalletPublicKey); err != nil {
		return err
	}
	if err := writePubKey(w, m.SharedPublicKey); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, wireEncodingVersion, uint64(int64(m.Count))); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, wireEncodingVersion, uint64(int64(m.Index))); err != nil {
		return err
	}
	return writeVarBytes(w, m.Signature)
}

// Decode implements Message.
func (m *StartMessage) Decode(r io.Reader) error {
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
	if m.WalletPublicKey, err = readPubKey(r); err != nil {
		return err
	}
	if m.SharedPublicKey, err = readPubKey(r); err != nil {
		return err
	}
	count, err := wire.ReadVarInt(r, wireEncodingVersion)
	if err != nil {
		return err
	}
	m.Count = int32(int64(count))
	index, err := wire.ReadVarInt(r, wireEncodingVersion)
	if err != nil {
		return err
	}
	m.Index = int32(int64(index))
	m.Signature, err = readVarBytes(r, 65)
	return err
}

// Compare always returns false: signed message types are never
// record-deduped, per the "Message dedup" design note — their replay
// protection comes from the monotonic-timestamp rule instead.
func (m *StartMessage) Compare(other Message) bool {
	return false
}
