// Package domain models Cardano transactions at the level the bot needs:
// CBOR decode, body hashing, witness assembly, and pre-submit validation.
package domain

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Body map keys defined by the ledger CDDL.
const (
	bodyKeyRequiredSigners = 14
	bodyKeyNetworkID       = 15
)

// Transaction is the on-wire transaction: a four-element CBOR array of
// body, witness set, validity flag, and auxiliary data. Body and witness
// set are kept as raw CBOR so re-encoding never perturbs the bytes that
// were hashed and signed.
type Transaction struct {
	_             struct{} `cbor:",toarray"`
	Body          cbor.RawMessage
	WitnessSet    cbor.RawMessage
	IsValid       bool
	AuxiliaryData cbor.RawMessage
}

// transactionBody carries the only body fields the bot inspects. Unknown
// keys are ignored on decode.
type transactionBody struct {
	RequiredSigners [][]byte `cbor:"14,keyasint,omitempty"`
	NetworkID       *uint8   `cbor:"15,keyasint,omitempty"`
}

// VKeyWitness is a [verification key, signature] pair.
type VKeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

// WitnessSet holds the vkey witnesses the bot contributes. Encoded as the
// CBOR map {0: [[vkey, signature], ...]} the aggregator expects.
type WitnessSet struct {
	VKeyWitnesses []VKeyWitness `cbor:"0,keyasint,omitempty"`
}

var (
	ErrMalformedTransaction = errors.New("malformed transaction CBOR")
	ErrNoWitnesses          = errors.New("transaction has no vkey witnesses")
)

// ParseTransaction decodes a hex-encoded transaction.
func ParseTransaction(txHex string) (*Transaction, error) {
	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	var tx Transaction
	if err := cbor.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	if len(tx.Body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedTransaction)
	}
	return &tx, nil
}

// BodyHash is the blake2b-256 digest of the raw body bytes. Witnesses
// sign this digest, and it doubles as the transaction id.
func (t *Transaction) BodyHash() [32]byte {
	return blake2b.Sum256(t.Body)
}

// ID is the hex transaction hash.
func (t *Transaction) ID() string {
	h := t.BodyHash()
	return hex.EncodeToString(h[:])
}

// RequiredSigners returns the key hashes the body declares as mandatory
// signers, if any.
func (t *Transaction) RequiredSigners() ([][]byte, error) {
	var body transactionBody
	if err := cbor.Unmarshal(t.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrMalformedTransaction, err)
	}
	return body.RequiredSigners, nil
}

// NetworkID returns the body's network id tag, or nil when the body does
// not carry one.
func (t *Transaction) NetworkID() (*uint8, error) {
	var body transactionBody
	if err := cbor.Unmarshal(t.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrMalformedTransaction, err)
	}
	return body.NetworkID, nil
}

// Witnesses decodes the transaction's vkey witnesses.
func (t *Transaction) Witnesses() ([]VKeyWitness, error) {
	if len(t.WitnessSet) == 0 {
		return nil, nil
	}
	var ws WitnessSet
	if err := cbor.Unmarshal(t.WitnessSet, &ws); err != nil {
		return nil, fmt.Errorf("%w: witness set: %v", ErrMalformedTransaction, err)
	}
	return ws.VKeyWitnesses, nil
}

// Bytes re-encodes the transaction for submission.
func (t *Transaction) Bytes() ([]byte, error) {
	return cbor.Marshal(t)
}

// NewWitnessSet signs the body hash with each key.
func NewWitnessSet(bodyHash []byte, keys ...*SigningKey) WitnessSet {
	var ws WitnessSet
	for _, key := range keys {
		if key == nil {
			continue
		}
		ws.VKeyWitnesses = append(ws.VKeyWitnesses, VKeyWitness{
			VKey:      key.VerificationKey(),
			Signature: key.Sign(bodyHash),
		})
	}
	return ws
}

// Hex encodes the witness set as hex CBOR for the aggregator's co-signing
// endpoint.
func (ws WitnessSet) Hex() (string, error) {
	raw, err := cbor.Marshal(ws)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// MissingSigners compares the body's required signers against the
// witnesses present and returns the key hashes with no matching witness.
func MissingSigners(required [][]byte, witnesses []VKeyWitness) []string {
	present := make(map[string]bool, len(witnesses))
	for _, w := range witnesses {
		present[hex.EncodeToString(KeyHash(w.VKey))] = true
	}

	var missing []string
	for _, r := range required {
		h := hex.EncodeToString(r)
		if !present[h] {
			missing = append(missing, h)
		}
	}
	return missing
}
