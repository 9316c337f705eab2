// Package asset provides a type-safe model for the assets the bot trades.
// The core uses big.Int for exact on-ledger representation.
// decimal.Decimal is only used at boundaries (venue APIs, parsing, display).
package asset

import "fmt"

// AssetID uniquely identifies a Cardano asset by policy id and hex-encoded
// asset name. For the native coin (ADA / lovelace) both are empty.
// This is the TRUE identity - not the symbol.
type AssetID struct {
	policyID  string
	assetName string // hex-encoded
}

// NativeAssetID is the identity of the ledger's native coin.
var NativeAssetID = AssetID{}

// NewTokenAssetID creates an AssetID for a native-script token.
func NewTokenAssetID(policyID, assetNameHex string) AssetID {
	if policyID == "" {
		panic("token policy id cannot be empty - use NativeAssetID for the native coin")
	}
	return AssetID{
		policyID:  policyID,
		assetName: assetNameHex,
	}
}

// NewOffLedgerAssetID creates an AssetID for off-ledger units such as the
// quote currencies on the exchange. It reuses the policy field as a
// namespaced tag so identities never collide with on-ledger tokens.
func NewOffLedgerAssetID(symbol string) AssetID {
	return AssetID{
		policyID:  "offledger",
		assetName: symbol,
	}
}

// PolicyID returns the minting policy id (empty for the native coin).
func (id AssetID) PolicyID() string {
	return id.policyID
}

// AssetName returns the hex-encoded asset name (empty for the native coin).
func (id AssetID) AssetName() string {
	return id.assetName
}

// Unit returns the Blockfrost/DexHunter unit string: policy id concatenated
// with the hex asset name, or the empty string for the native coin.
func (id AssetID) Unit() string {
	if id.IsNative() || id.IsOffLedger() {
		return ""
	}
	return id.policyID + id.assetName
}

// IsNative returns true if this is the ledger's native coin.
func (id AssetID) IsNative() bool {
	return id.policyID == "" && id.assetName == ""
}

// IsToken returns true if this is a native-script token.
func (id AssetID) IsToken() bool {
	return id.policyID != "" && id.policyID != "offledger"
}

// IsOffLedger returns true if this asset only exists on the exchange side.
func (id AssetID) IsOffLedger() bool {
	return id.policyID == "offledger"
}

// String returns a human-readable representation.
func (id AssetID) String() string {
	if id.IsNative() {
		return "native"
	}
	if id.IsOffLedger() {
		return fmt.Sprintf("offledger:%s", id.assetName)
	}
	return fmt.Sprintf("%s.%s", id.policyID, id.assetName)
}

// Equals compares two AssetIDs for equality.
func (id AssetID) Equals(other AssetID) bool {
	return id.policyID == other.policyID && id.assetName == other.assetName
}
