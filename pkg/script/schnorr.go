package script

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// SchnorrVerifier is the default Verifier, checking Schnorr signatures over
// secp256k1 the way the rest of the stack signs transactions.
type SchnorrVerifier struct{}

// Verify checks a Schnorr signature against a 32-byte hash and a compressed
// public key. Returns false on any parse error.
func (SchnorrVerifier) Verify(hash, signature, publicKey []byte) bool {
	pubKey, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(hash, pubKey)
}
