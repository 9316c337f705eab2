package gleec

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Venue error codes surfaced by the private API.
const (
	errCodeInsufficientFunds = 20001
	errCodeWithdrawalLimit   = 20003
	errCodeValidation        = 10001
)

type errorEnvelope struct {
	Error struct {
		Code        int    `json:"code"`
		Message     string `json:"message"`
		Description string `json:"description"`
	} `json:"error"`
}

func (e errorEnvelope) String() string {
	if e.Error.Description != "" {
		return fmt.Sprintf("%s: %s (code %d)", e.Error.Message, e.Error.Description, e.Error.Code)
	}
	return fmt.Sprintf("%s (code %d)", e.Error.Message, e.Error.Code)
}

type orderPayload struct {
	ID            int64           `json:"id"`
	ClientOrderID string          `json:"client_order_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Status        string          `json:"status"`
	Type          string          `json:"type"`
	TimeInForce   string          `json:"time_in_force"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	QuantityCum   decimal.Decimal `json:"quantity_cumulative"`
	PostOnly      bool            `json:"post_only"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

type placeOrderRequest struct {
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Quantity      string `json:"quantity"`
	Type          string `json:"type"`
	TimeInForce   string `json:"timeInForce,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
	Price         string `json:"price,omitempty"`
	PostOnly      bool   `json:"post_only,omitempty"`
}

// bookLevel is a [price, quantity] pair in the venue's book payload.
type bookLevel [2]decimal.Decimal

func (l *bookLevel) UnmarshalJSON(data []byte) error {
	var raw [2]json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	price, err := decimal.NewFromString(raw[0].String())
	if err != nil {
		return fmt.Errorf("book level price: %w", err)
	}
	qty, err := decimal.NewFromString(raw[1].String())
	if err != nil {
		return fmt.Errorf("book level quantity: %w", err)
	}
	l[0], l[1] = price, qty
	return nil
}

type orderbookPayload struct {
	Ask       []bookLevel `json:"ask"`
	Bid       []bookLevel `json:"bid"`
	Timestamp string      `json:"timestamp"`
}

type balancePayload struct {
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
	Reserved  decimal.Decimal `json:"reserved"`
}

type withdrawPayload struct {
	ID string `json:"id"`
}

type transactionPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Native struct {
		Hash          string `json:"hash"`
		Confirmations int    `json:"confirmations"`
	} `json:"native"`
}

type depositAddressPayload struct {
	Currency string `json:"currency"`
	Address  string `json:"address"`
}
