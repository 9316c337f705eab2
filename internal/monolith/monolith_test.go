package monolith

import (
	"testing"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/asset"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/config"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

func TestNew_RegistersConfiguredAssets(t *testing.T) {
	cfg := &config.Config{}
	cfg.Trading.BaseCurrency = "SHARDS"
	cfg.Trading.TokenPolicyID = asset.PolicyIDSHARDS
	cfg.Trading.TokenAssetName = asset.AssetNameSHARDS

	mono, err := New(cfg, logger.Nop(), clock.Real{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	reg := mono.AssetRegistry()

	native, ok := reg.GetNative()
	if !ok || native.Symbol() != "ADA" {
		t.Fatalf("native coin missing from registry: %v %v", native, ok)
	}

	// Module factories resolve the traded token by its configured symbol
	// and use the registry's unit string for ledger-side identity.
	token, ok := reg.GetBySymbol(cfg.Trading.BaseCurrency)
	if !ok {
		t.Fatal("configured token missing from registry")
	}
	if got, want := token.Unit(), asset.PolicyIDSHARDS+asset.AssetNameSHARDS; got != want {
		t.Errorf("token unit = %s, want %s", got, want)
	}

	if mono.Services().Get("assetRegistry").(*asset.Registry) != reg {
		t.Error("service registry must expose the same asset registry")
	}
}
