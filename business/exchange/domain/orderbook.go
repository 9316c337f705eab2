package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Level is one price level of the book.
type Level struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Orderbook is a snapshot of the visible book for one symbol.
type Orderbook struct {
	Symbol    string
	Asks      []Level
	Bids      []Level
	Timestamp time.Time
}

// HasDepth reports whether the book can absorb a taker order of the given
// quantity at or better than the limit price. Buys consume asks priced at
// or below the limit; sells consume bids priced at or above it.
func (o *Orderbook) HasDepth(side Side, quantity, limitPrice decimal.Decimal) bool {
	var levels []Level
	if side == SideBuy {
		levels = o.Asks
	} else {
		levels = o.Bids
	}

	available := decimal.Zero
	for _, lvl := range levels {
		match := (side == SideBuy && lvl.Price.LessThanOrEqual(limitPrice)) ||
			(side == SideSell && lvl.Price.GreaterThanOrEqual(limitPrice))
		if !match {
			continue
		}
		available = available.Add(lvl.Quantity)
		if available.GreaterThanOrEqual(quantity) {
			return true
		}
	}
	return false
}

// CanAbsorb reports whether the visible side of the book holds at least
// the given quantity at any price. Market orders take whatever is there,
// so the whole side counts.
func (o *Orderbook) CanAbsorb(side Side, quantity decimal.Decimal) bool {
	levels := o.Bids
	if side == SideBuy {
		levels = o.Asks
	}

	available := decimal.Zero
	for _, lvl := range levels {
		available = available.Add(lvl.Quantity)
		if available.GreaterThanOrEqual(quantity) {
			return true
		}
	}
	return false
}

// AvailableAt returns the depth matchable at or better than the limit price.
func (o *Orderbook) AvailableAt(side Side, limitPrice decimal.Decimal) decimal.Decimal {
	var levels []Level
	if side == SideBuy {
		levels = o.Asks
	} else {
		levels = o.Bids
	}

	available := decimal.Zero
	for _, lvl := range levels {
		if (side == SideBuy && lvl.Price.LessThanOrEqual(limitPrice)) ||
			(side == SideSell && lvl.Price.GreaterThanOrEqual(limitPrice)) {
			available = available.Add(lvl.Quantity)
		}
	}
	return available
}
