package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateSpread(t *testing.T) {
	tests := []struct {
		name        string
		cex         string
		dex         string
		wantPercent string
	}{
		{"cex higher", "1.02", "1.00", "2"},
		{"dex higher", "0.98", "1.00", "-2"},
		{"equal", "1.00", "1.00", "0"},
		{"zero dex", "1.00", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := CalculateSpread(d(tt.cex), d(tt.dex))
			if !s.Percent.Equal(d(tt.wantPercent)) {
				t.Errorf("percent = %s, want %s", s.Percent, tt.wantPercent)
			}
		})
	}
}

func TestSpread_Direction(t *testing.T) {
	threshold := d("1.0")

	tests := []struct {
		name string
		cex  string
		dex  string
		want Direction
	}{
		{"cex rich beyond threshold", "1.02", "1.00", DirectionDEXToCEX},
		{"dex rich beyond threshold", "0.98", "1.00", DirectionCEXToDEX},
		{"exactly at threshold", "1.01", "1.00", DirectionNone},
		{"exactly at negative threshold", "0.99", "1.00", DirectionNone},
		{"just past threshold", "1.0101", "1.00", DirectionDEXToCEX},
		{"just past negative threshold", "0.9899", "1.00", DirectionCEXToDEX},
		{"inside band", "1.005", "1.00", DirectionNone},
		{"zero cex", "0", "1.00", DirectionNone},
		{"zero dex", "1.00", "0", DirectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSpread(d(tt.cex), d(tt.dex)).Direction(threshold)
			if got != tt.want {
				t.Errorf("direction = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	opp, ok := Detect(d("1.05"), d("1.00"), d("1.0"))
	if !ok {
		t.Fatal("expected an opportunity")
	}
	if opp.Direction != DirectionDEXToCEX {
		t.Errorf("direction = %s, want %s", opp.Direction, DirectionDEXToCEX)
	}
	if !opp.Spread.Percent.Equal(d("5")) {
		t.Errorf("percent = %s, want 5", opp.Spread.Percent)
	}

	if _, ok := Detect(d("1.001"), d("1.00"), d("1.0")); ok {
		t.Error("expected no opportunity inside the band")
	}

	// Landing exactly on the threshold must not trade.
	if opp, ok := Detect(d("1.01"), d("1.00"), d("1.0")); ok || opp.Direction != DirectionNone {
		t.Errorf("expected no opportunity on the threshold, got %s", opp.Direction)
	}
}
