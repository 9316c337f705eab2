package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func book() *Orderbook {
	return &Orderbook{
		Symbol: "SHARDSUSDT",
		Asks: []Level{
			{Price: d("0.050"), Quantity: d("200")},
			{Price: d("0.051"), Quantity: d("300")},
			{Price: d("0.055"), Quantity: d("1000")},
		},
		Bids: []Level{
			{Price: d("0.049"), Quantity: d("150")},
			{Price: d("0.048"), Quantity: d("400")},
			{Price: d("0.040"), Quantity: d("5000")},
		},
	}
}

func TestOrderbook_HasDepth(t *testing.T) {
	tests := []struct {
		name     string
		side     Side
		quantity string
		limit    string
		want     bool
	}{
		{"buy covered by first two asks", SideBuy, "500", "0.051", true},
		{"buy needs deeper level above limit", SideBuy, "501", "0.051", false},
		{"buy covered when limit raised", SideBuy, "501", "0.055", true},
		{"sell covered by top bids", SideSell, "550", "0.048", true},
		{"sell not covered at strict limit", SideSell, "200", "0.049", false},
		{"sell exact quantity boundary", SideSell, "150", "0.049", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := book().HasDepth(tt.side, d(tt.quantity), d(tt.limit))
			if got != tt.want {
				t.Errorf("HasDepth(%s, %s, %s) = %v, want %v",
					tt.side, tt.quantity, tt.limit, got, tt.want)
			}
		})
	}
}

func TestOrderbook_CanAbsorb(t *testing.T) {
	tests := []struct {
		name     string
		side     Side
		quantity string
		want     bool
	}{
		{"buy within total ask depth", SideBuy, "400", true},
		{"buy exact total ask depth", SideBuy, "1500", true},
		{"buy beyond total ask depth", SideBuy, "1501", false},
		{"sell within total bid depth", SideSell, "5550", true},
		{"sell beyond total bid depth", SideSell, "5551", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := book().CanAbsorb(tt.side, d(tt.quantity))
			if got != tt.want {
				t.Errorf("CanAbsorb(%s, %s) = %v, want %v", tt.side, tt.quantity, got, tt.want)
			}
		})
	}
}

func TestOrderbook_AvailableAt(t *testing.T) {
	got := book().AvailableAt(SideBuy, d("0.051"))
	if !got.Equal(d("500")) {
		t.Errorf("AvailableAt = %s, want 500", got)
	}

	got = book().AvailableAt(SideSell, d("0.048"))
	if !got.Equal(d("550")) {
		t.Errorf("AvailableAt = %s, want 550", got)
	}
}

func TestNewOrderRequest_Validate(t *testing.T) {
	valid := NewOrderRequest{
		Symbol:   "SHARDSUSDT",
		Side:     SideBuy,
		Type:     OrderTypeLimit,
		Quantity: d("500"),
		Price:    d("0.05"),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*NewOrderRequest)
	}{
		{"empty symbol", func(r *NewOrderRequest) { r.Symbol = "" }},
		{"bad side", func(r *NewOrderRequest) { r.Side = "hold" }},
		{"zero quantity", func(r *NewOrderRequest) { r.Quantity = decimal.Zero }},
		{"limit without price", func(r *NewOrderRequest) { r.Price = decimal.Zero }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	for _, s := range []OrderStatus{StatusFilled, StatusCanceled, StatusExpired} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []OrderStatus{StatusNew, StatusPartiallyFilled, StatusSuspended, StatusNotFound} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if StatusFilled.IsFailure() {
		t.Error("filled is not a failure")
	}
	if !StatusExpired.IsFailure() {
		t.Error("expired is a failure")
	}
}
