package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

// scriptedClient returns statuses in sequence, repeating the last one.
type scriptedClient struct {
	statuses  []domain.OrderStatus
	calls     int
	cancelled []int64
	placed    []domain.NewOrderRequest
	book      *domain.Orderbook
}

func (c *scriptedClient) PlaceOrder(_ context.Context, req domain.NewOrderRequest) (*domain.Order, error) {
	c.placed = append(c.placed, req)
	return &domain.Order{
		ID:            int64(1000 + len(c.placed)),
		ClientOrderID: req.ClientOrderID,
		Symbol:        req.Symbol,
		Side:          req.Side,
		Quantity:      req.Quantity,
		Status:        domain.StatusNew,
	}, nil
}

func (c *scriptedClient) OrderStatus(context.Context, int64, string) (domain.OrderStatus, error) {
	i := c.calls
	c.calls++
	if i >= len(c.statuses) {
		i = len(c.statuses) - 1
	}
	return c.statuses[i], nil
}

func (c *scriptedClient) CancelOrder(_ context.Context, orderID int64, _ string) error {
	c.cancelled = append(c.cancelled, orderID)
	return nil
}

func (c *scriptedClient) Orderbook(context.Context, string) (*domain.Orderbook, error) {
	if c.book != nil {
		return c.book, nil
	}
	// A book deep enough that pre-submission depth checks always pass.
	return &domain.Orderbook{
		Asks: []domain.Level{{
			Price:    decimal.RequireFromString("0.000001"),
			Quantity: decimal.RequireFromString("1000000000"),
		}},
		Bids: []domain.Level{{
			Price:    decimal.RequireFromString("1000000"),
			Quantity: decimal.RequireFromString("1000000000"),
		}},
	}, nil
}

func newManager(client TradingClient) (*OrderManager, *clock.Fake) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	return NewOrderManager(client, clk, logger.Nop()), clk
}

func TestAwaitFill_FillsAfterPolls(t *testing.T) {
	client := &scriptedClient{statuses: []domain.OrderStatus{
		domain.StatusNew,
		domain.StatusPartiallyFilled,
		domain.StatusFilled,
	}}
	m, clk := newManager(client)

	if err := m.AwaitFill(context.Background(), 1, "SHARDSUSDT", 10*time.Minute); err != nil {
		t.Fatalf("AwaitFill failed: %v", err)
	}

	// Two sleeps before the filled poll: 2s then 3s.
	if len(clk.Sleeps) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(clk.Sleeps))
	}
	if clk.Sleeps[0] != 2*time.Second || clk.Sleeps[1] != 3*time.Second {
		t.Errorf("unexpected backoff sequence: %v", clk.Sleeps)
	}
	if len(client.cancelled) != 0 {
		t.Error("no cancel expected on fill")
	}
}

func TestAwaitFill_BackoffMonotoneAndCapped(t *testing.T) {
	client := &scriptedClient{statuses: []domain.OrderStatus{domain.StatusSuspended}}
	m, clk := newManager(client)

	err := m.AwaitFill(context.Background(), 1, "SHARDSUSDT", 24*time.Hour)
	if !apperror.HasCode(err, apperror.CodeConfirmationTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}

	prev := time.Duration(0)
	for i, s := range clk.Sleeps {
		if s < prev {
			t.Errorf("sleep %d shrank: %v after %v", i, s, prev)
		}
		if s > 10*time.Second {
			t.Errorf("sleep %d exceeds cap: %v", i, s)
		}
		prev = s
	}
	if len(clk.Sleeps) != 30 {
		t.Errorf("expected 30 attempts, got %d", len(clk.Sleeps))
	}
	if len(client.cancelled) != 1 {
		t.Errorf("expected cancel after exhaustion, got %d", len(client.cancelled))
	}
}

func TestAwaitFill_TerminalFailure(t *testing.T) {
	client := &scriptedClient{statuses: []domain.OrderStatus{domain.StatusCanceled}}
	m, _ := newManager(client)

	err := m.AwaitFill(context.Background(), 1, "SHARDSUSDT", time.Minute)
	if !apperror.HasCode(err, apperror.CodeOrderRejected) {
		t.Errorf("expected CodeOrderRejected, got %v", err)
	}
}

func TestAwaitFill_NotFoundBeforeFirstRead(t *testing.T) {
	// Propagation lag: not_found first, then the order shows up and fills.
	client := &scriptedClient{statuses: []domain.OrderStatus{
		domain.StatusNotFound,
		domain.StatusNotFound,
		domain.StatusNew,
		domain.StatusFilled,
	}}
	m, _ := newManager(client)

	if err := m.AwaitFill(context.Background(), 1, "SHARDSUSDT", time.Minute); err != nil {
		t.Errorf("early not_found must not fail the wait: %v", err)
	}
}

func TestAwaitFill_NotFoundAfterObserved(t *testing.T) {
	client := &scriptedClient{statuses: []domain.OrderStatus{
		domain.StatusNew,
		domain.StatusNotFound,
	}}
	m, _ := newManager(client)

	err := m.AwaitFill(context.Background(), 1, "SHARDSUSDT", time.Minute)
	if !apperror.HasCode(err, apperror.CodeOrderNotFound) {
		t.Errorf("expected CodeOrderNotFound, got %v", err)
	}
}

func TestAwaitFill_StuckInNewCancels(t *testing.T) {
	client := &scriptedClient{statuses: []domain.OrderStatus{domain.StatusNew}}
	m, _ := newManager(client)

	err := m.AwaitFill(context.Background(), 7, "SHARDSUSDT", time.Hour)
	if !apperror.HasCode(err, apperror.CodeOrderRejected) {
		t.Fatalf("expected CodeOrderRejected, got %v", err)
	}
	if len(client.cancelled) != 1 || client.cancelled[0] != 7 {
		t.Errorf("expected order 7 cancelled, got %v", client.cancelled)
	}
}

func TestPlace_StampsClientOrderID(t *testing.T) {
	client := &scriptedClient{statuses: []domain.OrderStatus{domain.StatusFilled}}
	m, clk := newManager(client)

	order, err := m.Place(context.Background(), domain.NewOrderRequest{
		Symbol:   "SHARDSUSDT",
		Side:     domain.SideBuy,
		Type:     domain.OrderTypeLimit,
		Quantity: decimal.RequireFromString("500"),
		Price:    decimal.RequireFromString("0.05"),
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	want := domain.NewClientOrderID(clk.Now())
	if order.ClientOrderID != want {
		t.Errorf("client order id = %s, want %s", order.ClientOrderID, want)
	}
}

func TestPlace_MarketOrderRejectedOnThinBook(t *testing.T) {
	client := &scriptedClient{
		statuses: []domain.OrderStatus{domain.StatusNew},
		book: &domain.Orderbook{
			Asks: []domain.Level{{
				Price:    decimal.RequireFromString("0.05"),
				Quantity: decimal.RequireFromString("100"),
			}},
		},
	}
	m, _ := newManager(client)

	_, err := m.Place(context.Background(), domain.NewOrderRequest{
		Symbol:   "SHARDSUSDT",
		Side:     domain.SideBuy,
		Type:     domain.OrderTypeMarket,
		Quantity: decimal.RequireFromString("500"),
	})
	if !apperror.HasCode(err, apperror.CodeOrderRejected) {
		t.Fatalf("expected CodeOrderRejected, got %v", err)
	}
	if len(client.placed) != 0 {
		t.Error("order must not reach the venue when the book is thin")
	}
}

func TestPlace_MarketOrderSweepsWholeSide(t *testing.T) {
	// Depth spread across levels worse than any limit would match still
	// absorbs a market order.
	client := &scriptedClient{
		statuses: []domain.OrderStatus{domain.StatusNew},
		book: &domain.Orderbook{
			Asks: []domain.Level{
				{Price: decimal.RequireFromString("0.05"), Quantity: decimal.RequireFromString("200")},
				{Price: decimal.RequireFromString("0.09"), Quantity: decimal.RequireFromString("400")},
			},
		},
	}
	m, _ := newManager(client)

	if _, err := m.Place(context.Background(), domain.NewOrderRequest{
		Symbol:   "SHARDSUSDT",
		Side:     domain.SideBuy,
		Type:     domain.OrderTypeMarket,
		Quantity: decimal.RequireFromString("500"),
	}); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if len(client.placed) != 1 {
		t.Errorf("expected 1 placed order, got %d", len(client.placed))
	}
}

func TestPlace_RejectsInvalidRequest(t *testing.T) {
	m, _ := newManager(&scriptedClient{statuses: []domain.OrderStatus{domain.StatusNew}})

	_, err := m.Place(context.Background(), domain.NewOrderRequest{})
	if !apperror.HasCode(err, apperror.CodeInvalidInput) {
		t.Errorf("expected CodeInvalidInput, got %v", err)
	}
}
