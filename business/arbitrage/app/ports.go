// Package app contains the arbitrage orchestrator and its ports.
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/domain"
	exchange "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/domain"
	pricing "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/domain"
	transfer "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/transfer/app"
)

// Oracle resolves the current cross-venue opportunity.
type Oracle interface {
	Evaluate(ctx context.Context, thresholdPct decimal.Decimal) (pricing.Opportunity, bool, error)
	PairPrice(ctx context.Context) (decimal.Decimal, error)
}

// Orders is the CEX order lifecycle surface.
type Orders interface {
	Place(ctx context.Context, req exchange.NewOrderRequest) (*exchange.Order, error)
	AwaitFill(ctx context.Context, orderID int64, symbol string, timeout time.Duration) error
	Status(ctx context.Context, orderID int64, symbol string) (exchange.OrderStatus, error)
	Cancel(ctx context.Context, orderID int64, symbol string) error
}

// Liquidity verifies book depth before capital is committed, posting
// resting liquidity as a fallback.
type Liquidity interface {
	Ensure(ctx context.Context, symbol string, side exchange.Side, quantity, price decimal.Decimal) error
}

// Ledger is the DEX leg surface.
type Ledger interface {
	ExecuteSwap(ctx context.Context, amountIn decimal.Decimal, sell bool) (string, error)
	AwaitConfirmation(ctx context.Context, txHash string, timeout time.Duration) error
	TokenBalance(ctx context.Context) (decimal.Decimal, error)
}

// Transfers moves the asset between the venue and the ledger wallet.
type Transfers interface {
	WithdrawToLedger(ctx context.Context, currency string, amount decimal.Decimal, address string, onPending transfer.PendingFunc) (string, error)
	DepositToExchange(ctx context.Context, currency string, quantity decimal.Decimal, onPending transfer.PendingFunc) (string, error)
}

// VenueWallet is the venue wallet surface needed for balance gates and
// withdrawal reconciliation.
type VenueWallet interface {
	Balance(ctx context.Context, currency string) (exchange.Balance, error)
	TransactionStatus(ctx context.Context, transactionID string) (string, int, error)
}

// StateStore persists the durable state document.
type StateStore interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, state *domain.State) error
}
