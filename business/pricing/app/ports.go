// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/shopspring/decimal"
)

// CEXQuoteProvider supplies exchange prices for the traded pairs.
type CEXQuoteProvider interface {
	// LastPrice returns the last trade price for a symbol (e.g. "SHARDSUSDT").
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// DEXQuoteProvider supplies aggregator prices from the ledger side.
type DEXQuoteProvider interface {
	// AveragePrice returns the average execution price for swapping
	// tokenIn into tokenOut, quoted as tokenOut per tokenIn.
	AveragePrice(ctx context.Context, tokenIn, tokenOut string) (decimal.Decimal, error)
}
