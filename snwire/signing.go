package snwire

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/dcrec/secp256k1/v3/ecdsa"
	"github.com/decred/dcrd/wire"
)

// messageMagic is prepended to every signed-message digest, the same
// "magic-prefixed hash" trick the host chain uses for `signmessage`: it
// stops a signature produced for this overlay from also being a valid
// signature over an unrelated wallet message, and vice-versa.
var messageMagic = []byte("UtilityNode Signed Message:\n")

// signatureHash computes SHA256d(varint-len(magic) || magic ||
// varint-len(msg) || msg), the digest that Sign/Verify operate over.
func signatureHash(msg string) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarBytes(&buf, wireEncodingVersion, messageMagic); err != nil {
		return nil, err
	}
	if err := wire.WriteVarBytes(&buf, wireEncodingVersion, []byte(msg)); err != nil {
		return nil, err
	}

	first := sha256.Sum256(buf.Bytes())
	second := sha256.Sum256(first[:])
	return second[:], nil
}

// Sign produces a 65-byte recoverable compact signature over msg using priv.
func Sign(priv *secp256k1.PrivateKey, msg string) ([]byte, error) {
	digest, err := signatureHash(msg)
	if err != nil {
		return nil, err
	}
	return ecdsa.SignCompact(priv, digest, true), nil
}

// Verify recovers the public key that produced sig over msg and reports
// whether its hash-160 matches pubKey's, per spec.md §4.4: "verification
// recovers the public key and compares its hash-160 to the claimed key's
// hash-160".
func Verify(pubKey *secp256k1.PublicKey, msg string, sig []byte) (bool, error) {
	if len(sig) != 65 {
		return false, fmt.Errorf("snwire: signature must be 65 bytes, got %d", len(sig))
	}

	digest, err := signatureHash(msg)
	if err != nil {
		return false, err
	}

	recovered, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return false, nil
	}

	return hash160Equal(recovered, pubKey), nil
}

// hash160Equal compares the RIPEMD160(SHA256(.)) digest of two compressed
// public keys, the "pubkey-hash" identity the host chain addresses are built
// from.
func hash160Equal(a, b *secp256k1.PublicKey) bool {
	return bytes.Equal(Hash160(a.SerializeCompressed()), Hash160(b.SerializeCompressed()))
}
