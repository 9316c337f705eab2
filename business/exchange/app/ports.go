// Package app contains application services and port definitions for the exchange context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/domain"
)

// TradingClient is the venue port for order management.
type TradingClient interface {
	// PlaceOrder submits a new order and returns the venue's view of it.
	PlaceOrder(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error)

	// OrderStatus resolves the current status of an order, checking the
	// active book first and recent history second. A missing order
	// resolves to StatusNotFound, not an error.
	OrderStatus(ctx context.Context, orderID int64, symbol string) (domain.OrderStatus, error)

	// CancelOrder removes an active order from the book.
	CancelOrder(ctx context.Context, orderID int64, symbol string) error

	// Orderbook fetches the visible book for a symbol.
	Orderbook(ctx context.Context, symbol string) (*domain.Orderbook, error)
}

// WalletClient is the venue port for balances and transfers.
type WalletClient interface {
	// Balance returns the wallet balance for a currency.
	Balance(ctx context.Context, currency string) (domain.Balance, error)

	// Withdraw starts a crypto withdrawal and returns the venue's
	// transaction id.
	Withdraw(ctx context.Context, currency string, amount decimal.Decimal, address string) (string, error)

	// TransactionStatus returns the status of a wallet transaction and the
	// on-chain confirmation count when the venue reports one.
	TransactionStatus(ctx context.Context, transactionID string) (string, int, error)

	// DepositAddress returns the venue's deposit address for a currency.
	DepositAddress(ctx context.Context, currency string) (string, error)
}
