// Package domain contains the core domain types for the pricing context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venue identifies where a price was observed.
type Venue string

const (
	VenueCEX Venue = "cex"
	VenueDEX Venue = "dex"
)

// PricePoint is a single observed price, quoted in the ledger's native
// coin per token.
type PricePoint struct {
	Venue      Venue
	Price      decimal.Decimal
	ObservedAt time.Time
}

// NewPricePoint creates a new price observation.
func NewPricePoint(venue Venue, price decimal.Decimal, observedAt time.Time) PricePoint {
	return PricePoint{
		Venue:      venue,
		Price:      price,
		ObservedAt: observedAt,
	}
}

// IsValid reports whether the price is usable for spread evaluation.
func (p PricePoint) IsValid() bool {
	return p.Price.IsPositive()
}

// Age returns how old the observation is relative to now.
func (p PricePoint) Age(now time.Time) time.Duration {
	return now.Sub(p.ObservedAt)
}

// Snapshot pairs one CEX and one DEX observation taken in the same tick.
type Snapshot struct {
	CEX PricePoint
	DEX PricePoint
}

// IsComplete reports whether both venues produced a usable price.
func (s Snapshot) IsComplete() bool {
	return s.CEX.IsValid() && s.DEX.IsValid()
}
