package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Default linear fee parameters (lovelace = MinFeeA * size + MinFeeB).
const (
	DefaultMinFeeA = 44
	DefaultMinFeeB = 155381
)

// witnessSizeEstimate pads the fee calculation for the vkey witnesses
// that are not part of the body yet when the fee is computed.
const witnessSizeEstimate = 200

// minChangeLovelace is the smallest change output worth creating; change
// below it is folded into the fee.
const minChangeLovelace = 1_000_000

const policyIDHexLen = 56

// UTxO is an unspent output at the wallet address.
type UTxO struct {
	TxHash   string
	Index    uint32
	Lovelace uint64
	// Assets maps unit (policy id + asset name, hex) to quantity.
	Assets map[string]uint64
}

// FeeParams are the ledger's linear fee coefficients.
type FeeParams struct {
	MinFeeA uint64
	MinFeeB uint64
}

// DefaultFeeParams returns mainnet's current coefficients, used when the
// indexer's protocol parameters are unavailable.
func DefaultFeeParams() FeeParams {
	return FeeParams{MinFeeA: DefaultMinFeeA, MinFeeB: DefaultMinFeeB}
}

// PaymentSpec describes a native-asset payment: TokenQuantity of
// TokenUnit plus Lovelace (the min-ADA rider) to Recipient, change back
// to Sender.
type PaymentSpec struct {
	Sender        Address
	Recipient     Address
	TokenUnit     string
	TokenQuantity uint64
	Lovelace      uint64
	TTL           uint64
	Fee           FeeParams
}

var ErrInsufficientFunds = errors.New("wallet cannot fund payment")

type txInput struct {
	_      struct{} `cbor:",toarray"`
	TxHash []byte
	Index  uint32
}

type paymentBody struct {
	Inputs  []txInput         `cbor:"0,keyasint"`
	Outputs []cbor.RawMessage `cbor:"1,keyasint"`
	Fee     uint64            `cbor:"2,keyasint"`
	TTL     uint64            `cbor:"3,keyasint,omitempty"`
}

// BuildPayment selects inputs from the wallet's UTxOs and constructs an
// unsigned transaction paying the spec. Input selection is greedy:
// token-bearing outputs first until the token quantity is covered, then
// pure-ADA outputs until lovelace covers the rider, the fee, and change.
func BuildPayment(spec PaymentSpec, utxos []UTxO) (*Transaction, error) {
	if spec.TokenQuantity == 0 {
		return nil, fmt.Errorf("%w: zero token quantity", ErrInsufficientFunds)
	}
	if spec.Fee == (FeeParams{}) {
		spec.Fee = DefaultFeeParams()
	}

	selected, totals, err := selectInputs(spec, utxos)
	if err != nil {
		return nil, err
	}

	inputs := make([]txInput, 0, len(selected))
	for _, u := range selected {
		txid, err := hex.DecodeString(u.TxHash)
		if err != nil {
			return nil, fmt.Errorf("utxo %s: %w", u.TxHash, err)
		}
		inputs = append(inputs, txInput{TxHash: txid, Index: u.Index})
	}

	paymentOut, err := encodeOutput(spec.Recipient, spec.Lovelace, map[string]uint64{
		spec.TokenUnit: spec.TokenQuantity,
	})
	if err != nil {
		return nil, err
	}

	// First pass with a zero fee to measure the body, second pass with
	// the real fee and the final change output.
	changeAssets := remainingAssets(totals.assets, spec.TokenUnit, spec.TokenQuantity)
	draftChange, err := encodeOutput(spec.Sender, totals.lovelace-spec.Lovelace, changeAssets)
	if err != nil {
		return nil, err
	}

	draft, err := cbor.Marshal(paymentBody{
		Inputs:  inputs,
		Outputs: []cbor.RawMessage{paymentOut, draftChange},
		TTL:     spec.TTL,
	})
	if err != nil {
		return nil, err
	}

	fee := spec.Fee.MinFeeA*uint64(len(draft)+witnessSizeEstimate) + spec.Fee.MinFeeB
	if totals.lovelace < spec.Lovelace+fee {
		return nil, fmt.Errorf("%w: need %d lovelace, have %d", ErrInsufficientFunds, spec.Lovelace+fee, totals.lovelace)
	}

	change := totals.lovelace - spec.Lovelace - fee
	outputs := []cbor.RawMessage{paymentOut}
	if change >= minChangeLovelace || len(changeAssets) > 0 {
		if change < minChangeLovelace && len(changeAssets) > 0 {
			return nil, fmt.Errorf("%w: change output below minimum with %d lovelace", ErrInsufficientFunds, change)
		}
		changeOut, err := encodeOutput(spec.Sender, change, changeAssets)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, changeOut)
	} else {
		fee += change
	}

	body, err := cbor.Marshal(paymentBody{
		Inputs:  inputs,
		Outputs: outputs,
		Fee:     fee,
		TTL:     spec.TTL,
	})
	if err != nil {
		return nil, err
	}

	emptyWitnesses, err := cbor.Marshal(WitnessSet{})
	if err != nil {
		return nil, err
	}

	return &Transaction{
		Body:       body,
		WitnessSet: emptyWitnesses,
		IsValid:    true,
	}, nil
}

type inputTotals struct {
	lovelace uint64
	assets   map[string]uint64
}

func selectInputs(spec PaymentSpec, utxos []UTxO) ([]UTxO, inputTotals, error) {
	// Deterministic selection order: token-bearing outputs first, then
	// by descending lovelace.
	sorted := make([]UTxO, len(utxos))
	copy(sorted, utxos)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Assets[spec.TokenUnit], sorted[j].Assets[spec.TokenUnit]
		if (ti > 0) != (tj > 0) {
			return ti > 0
		}
		return sorted[i].Lovelace > sorted[j].Lovelace
	})

	totals := inputTotals{assets: make(map[string]uint64)}
	var selected []UTxO

	// Lovelace needed on top of the token: the output rider, a fee
	// allowance, and room for a change output.
	lovelaceTarget := spec.Lovelace + spec.Fee.MinFeeB + minChangeLovelace

	for _, u := range sorted {
		tokenCovered := totals.assets[spec.TokenUnit] >= spec.TokenQuantity
		adaCovered := totals.lovelace >= lovelaceTarget
		if tokenCovered && adaCovered {
			break
		}
		if tokenCovered && u.Assets[spec.TokenUnit] > 0 && u.Lovelace == 0 {
			continue
		}

		selected = append(selected, u)
		totals.lovelace += u.Lovelace
		for unit, qty := range u.Assets {
			totals.assets[unit] += qty
		}
	}

	if totals.assets[spec.TokenUnit] < spec.TokenQuantity {
		return nil, totals, fmt.Errorf("%w: token balance %d below %d",
			ErrInsufficientFunds, totals.assets[spec.TokenUnit], spec.TokenQuantity)
	}
	if totals.lovelace < lovelaceTarget {
		return nil, totals, fmt.Errorf("%w: lovelace balance %d below %d",
			ErrInsufficientFunds, totals.lovelace, lovelaceTarget)
	}
	return selected, totals, nil
}

func remainingAssets(totals map[string]uint64, spentUnit string, spentQty uint64) map[string]uint64 {
	out := make(map[string]uint64)
	for unit, qty := range totals {
		if unit == spentUnit {
			qty -= spentQty
		}
		if qty > 0 {
			out[unit] = qty
		}
	}
	return out
}

// encodeOutput encodes a [address, value] output, where value is either
// a bare coin or [coin, multiasset].
func encodeOutput(addr Address, lovelace uint64, assets map[string]uint64) (cbor.RawMessage, error) {
	if len(assets) == 0 {
		return cbor.Marshal([]any{addr.Bytes(), lovelace})
	}

	multi := make(map[cbor.ByteString]map[cbor.ByteString]uint64)
	for unit, qty := range assets {
		if len(unit) < policyIDHexLen {
			return nil, fmt.Errorf("asset unit %q too short", unit)
		}
		policy, err := hex.DecodeString(unit[:policyIDHexLen])
		if err != nil {
			return nil, fmt.Errorf("asset unit %q: %w", unit, err)
		}
		name, err := hex.DecodeString(unit[policyIDHexLen:])
		if err != nil {
			return nil, fmt.Errorf("asset unit %q: %w", unit, err)
		}

		policyKey := cbor.ByteString(policy)
		if multi[policyKey] == nil {
			multi[policyKey] = make(map[cbor.ByteString]uint64)
		}
		multi[policyKey][cbor.ByteString(name)] = qty
	}

	return cbor.Marshal([]any{addr.Bytes(), []any{lovelace, multi}})
}
