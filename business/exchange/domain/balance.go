package domain

import "github.com/shopspring/decimal"

// Balance is the exchange wallet balance for one currency.
type Balance struct {
	Currency  string
	Available decimal.Decimal
	Reserved  decimal.Decimal
}

// Total returns available plus reserved funds.
func (b Balance) Total() decimal.Decimal {
	return b.Available.Add(b.Reserved)
}

// CanCover reports whether the available funds cover the given amount.
func (b Balance) CanCover(amount decimal.Decimal) bool {
	return b.Available.GreaterThanOrEqual(amount)
}
