// Package domain contains the core domain types for the exchange context.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the side of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType is the execution type of an order.
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// TimeInForce controls how long an order stays on the book.
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
)

// OrderStatus is the exchange-reported lifecycle state of an order.
type OrderStatus string

const (
	StatusNew             OrderStatus = "new"
	StatusPartiallyFilled OrderStatus = "partiallyFilled"
	StatusFilled          OrderStatus = "filled"
	StatusCanceled        OrderStatus = "canceled"
	StatusExpired         OrderStatus = "expired"
	StatusSuspended       OrderStatus = "suspended"

	// StatusNotFound means the order is in neither the active book nor
	// recent history.
	StatusNotFound OrderStatus = "not_found"
)

// IsTerminal reports whether the status can no longer change.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusExpired:
		return true
	}
	return false
}

// IsFailure reports whether the status terminally failed to fill.
func (s OrderStatus) IsFailure() bool {
	switch s {
	case StatusCanceled, StatusExpired:
		return true
	}
	return false
}

// Order is an exchange order as reported by the venue.
type Order struct {
	ID            int64
	ClientOrderID string
	Symbol        string
	Side          Side
	Type          OrderType
	TimeInForce   TimeInForce
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	CumQuantity   decimal.Decimal
	Status        OrderStatus
	PostOnly      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewClientOrderID derives the idempotency id used for all bot orders.
func NewClientOrderID(now time.Time) string {
	return fmt.Sprintf("bot_%d", now.UnixMilli())
}

// NewOrderRequest is the order placement command.
type NewOrderRequest struct {
	Symbol        string
	Side          Side
	Type          OrderType
	TimeInForce   TimeInForce
	Quantity      decimal.Decimal
	Price         decimal.Decimal // zero for market orders
	PostOnly      bool
	ClientOrderID string
}

// Validate checks the request before it reaches the wire.
func (r NewOrderRequest) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("order: empty symbol")
	}
	if r.Side != SideBuy && r.Side != SideSell {
		return fmt.Errorf("order: invalid side %q", r.Side)
	}
	if !r.Quantity.IsPositive() {
		return fmt.Errorf("order: quantity must be positive")
	}
	if r.Type == OrderTypeLimit && !r.Price.IsPositive() {
		return fmt.Errorf("order: limit order needs a positive price")
	}
	return nil
}
