package asset_test

import (
	"math/big"
	"testing"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/asset"
	"github.com/shopspring/decimal"
)

func TestAmount_Basic(t *testing.T) {
	// 1 ADA = 1e6 lovelace
	oneADA := asset.NewAmount(asset.ADA, big.NewInt(1_000_000))

	if oneADA.IsZero() {
		t.Error("expected non-zero amount")
	}

	d := oneADA.ToDecimal()
	if !d.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", d.String())
	}

	if oneADA.String() != "1 ADA" {
		t.Errorf("expected '1 ADA', got '%s'", oneADA.String())
	}
}

func TestAmount_Add(t *testing.T) {
	one := asset.NewAmountFromInt64(asset.SHARDS, 1_000_000)
	two := asset.NewAmountFromInt64(asset.SHARDS, 2_000_000)

	sum, err := one.Add(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Raw().Cmp(big.NewInt(3_000_000)) != 0 {
		t.Errorf("expected 3000000, got %s", sum.Raw())
	}
}

func TestAmount_AddMismatchedAssets(t *testing.T) {
	ada := asset.NewAmountFromInt64(asset.ADA, 1)
	shards := asset.NewAmountFromInt64(asset.SHARDS, 1)

	if _, err := ada.Add(shards); err == nil {
		t.Error("expected error adding different assets")
	}
}

func TestAmount_SubNegativeResult(t *testing.T) {
	one := asset.NewAmountFromInt64(asset.ADA, 1)
	two := asset.NewAmountFromInt64(asset.ADA, 2)

	if _, err := one.Sub(two); err != asset.ErrNegativeResult {
		t.Errorf("expected ErrNegativeResult, got %v", err)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantRaw int64
		wantErr bool
	}{
		{"whole", "500", 500_000_000, false},
		{"fractional", "1.5", 1_500_000, false},
		{"smallest unit", "0.000001", 1, false},
		{"too many decimals", "0.0000001", 0, true},
		{"negative", "-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.input)
			amt, err := asset.ParseDecimal(asset.SHARDS, d)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if amt.Raw().Cmp(big.NewInt(tt.wantRaw)) != 0 {
				t.Errorf("expected %d, got %s", tt.wantRaw, amt.Raw())
			}
		})
	}
}

func TestAssetID_Unit(t *testing.T) {
	if asset.IDADA.Unit() != "" {
		t.Errorf("native unit should be empty, got %q", asset.IDADA.Unit())
	}

	want := asset.PolicyIDSHARDS + asset.AssetNameSHARDS
	if asset.IDSHARDS.Unit() != want {
		t.Errorf("expected %s, got %s", want, asset.IDSHARDS.Unit())
	}
}

func TestRegistry_GetByUnit(t *testing.T) {
	r := asset.DefaultRegistry()

	a, ok := r.GetByUnit(asset.IDSHARDS.Unit())
	if !ok {
		t.Fatal("SHARDS not found by unit")
	}
	if a.Symbol() != "SHARDS" {
		t.Errorf("expected SHARDS, got %s", a.Symbol())
	}

	if _, ok := r.GetByUnit(""); ok {
		t.Error("native coin must not be addressable by empty unit")
	}
}
