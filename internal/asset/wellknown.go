package asset

// SHARDS token identity on mainnet.
const (
	PolicyIDSHARDS  = "ea153b5d4864af15a1079a94a0e2486d6376fa28aafad272d15b243a"
	AssetNameSHARDS = "0014df10536861726473" // hex for the on-chain asset name
)

// Well-known AssetIDs
var (
	IDADA    = NativeAssetID
	IDSHARDS = NewTokenAssetID(PolicyIDSHARDS, AssetNameSHARDS)
	IDUSDT   = NewOffLedgerAssetID("USDT")
)

// Well-known Assets (pre-created instances)
var (
	ADA    = NewAssetWithName(IDADA, "ADA", "Cardano", 6)
	SHARDS = NewAssetWithName(IDSHARDS, "SHARDS", "Shards", 6)
	USDT   = NewAssetWithName(IDUSDT, "USDT", "Tether USD", 6)
)

// DefaultRegistry returns a registry pre-populated with well-known assets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ADA)
	r.Register(SHARDS)
	r.Register(USDT)
	return r
}

// MustNewToken creates a native-script token asset.
// Convenience for registering custom tokens from configuration.
func MustNewToken(policyID, assetNameHex, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(policyID, assetNameHex)
	return NewAssetWithName(id, symbol, name, decimals)
}
