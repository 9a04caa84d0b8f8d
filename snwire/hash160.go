package snwire

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // standard hash160 construction
)

// Hash160 computes RIPEMD160(SHA256(b)), the pubkey-hash that Verify
// compares between the recovered and the claimed public keys.
func Hash160(b []byte) []byte {
	sha := sha256.Sum256(b)
	ripe := ripemd160.New()
	ripe.Write(sha[:])
	return ripe.Sum(nil)
}
