package domain

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// keyHashSize is the ledger's key-hash width (blake2b-224).
const keyHashSize = 28

// keyEnvelope is the text envelope wallets export signing keys in.
type keyEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CborHex     string `json:"cborHex"`
}

// SigningKey is the ed25519 key behind a payment or stake credential.
type SigningKey struct {
	priv ed25519.PrivateKey
}

var ErrBadSigningKey = errors.New("malformed signing key")

// ParseSigningKeyJSON loads a signing key from its JSON text envelope.
// The cborHex field wraps the 32-byte seed in a CBOR byte string.
func ParseSigningKeyJSON(raw string) (*SigningKey, error) {
	var env keyEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrBadSigningKey, err)
	}

	wrapped, err := hex.DecodeString(env.CborHex)
	if err != nil {
		return nil, fmt.Errorf("%w: cborHex: %v", ErrBadSigningKey, err)
	}

	var seed []byte
	if err := cbor.Unmarshal(wrapped, &seed); err != nil {
		return nil, fmt.Errorf("%w: cborHex payload: %v", ErrBadSigningKey, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes, want %d", ErrBadSigningKey, len(seed), ed25519.SeedSize)
	}

	return &SigningKey{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign signs a message, normally a transaction body hash.
func (k *SigningKey) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}

// VerificationKey returns the 32-byte public key.
func (k *SigningKey) VerificationKey() []byte {
	return k.priv.Public().(ed25519.PublicKey)
}

// Hash returns the blake2b-224 hash of the verification key, the form
// key credentials take on the ledger.
func (k *SigningKey) Hash() []byte {
	return KeyHash(k.VerificationKey())
}

// KeyHash computes the blake2b-224 digest of a verification key.
func KeyHash(vkey []byte) []byte {
	h, err := blake2b.New(keyHashSize, nil)
	if err != nil {
		panic(err)
	}
	h.Write(vkey)
	return h.Sum(nil)
}
