package app

import (
	"context"
	"time"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

// Fill-wait polling parameters.
const (
	initialPollDelay = 2 * time.Second
	maxPollDelay     = 10 * time.Second
	pollBackoff      = 1.5
	maxPollAttempts  = 30

	// An order sitting unfilled in "new" past this window is cancelled.
	newStatusTimeout = 60 * time.Second
)

// OrderManager places orders and tracks them to a terminal state.
type OrderManager struct {
	client TradingClient
	clock  clock.Clock
	logger logger.LoggerInterface
}

// NewOrderManager creates an OrderManager.
func NewOrderManager(client TradingClient, clk clock.Clock, log logger.LoggerInterface) *OrderManager {
	return &OrderManager{
		client: client,
		clock:  clk,
		logger: log,
	}
}

// Place validates and submits an order, stamping a fresh client order id
// when the request carries none. Taker orders get a final depth check
// right before submission: liquidity may have moved since the cycle's
// earlier check, and a thin book at this point rejects the order rather
// than letting it rest unfilled.
func (m *OrderManager) Place(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error) {
	if req.ClientOrderID == "" {
		req.ClientOrderID = domain.NewClientOrderID(m.clock.Now())
	}
	if err := req.Validate(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, "order validation")
	}

	if !req.PostOnly {
		book, err := m.client.Orderbook(ctx, req.Symbol)
		if err != nil {
			return nil, err
		}
		// Market orders sweep the book, so the whole side counts; limit
		// orders only match at or better than their price.
		enough := book.CanAbsorb(req.Side, req.Quantity)
		if req.Type == domain.OrderTypeLimit {
			enough = book.HasDepth(req.Side, req.Quantity, req.Price)
		}
		if !enough {
			return nil, apperror.New(apperror.CodeOrderRejected,
				apperror.WithContext("book depth moved below order size before submission"))
		}
	}

	order, err := m.client.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	m.logger.Info(ctx, "order created",
		"order_id", order.ID,
		"client_order_id", order.ClientOrderID,
		"symbol", order.Symbol,
		"side", string(order.Side),
		"quantity", order.Quantity.String())

	return order, nil
}

// AwaitFill polls the order until it fills or terminally fails. Polling
// backs off from 2s by a factor of 1.5 up to 10s, for at most 30 attempts
// inside the overall timeout. An order stuck in "new" past its own window
// is cancelled. A not_found status only fails the wait after an earlier
// poll saw the order; before that it can be venue-side propagation lag.
// On timeout the order is cancelled before the error returns.
func (m *OrderManager) AwaitFill(ctx context.Context, orderID int64, symbol string, timeout time.Duration) error {
	start := m.clock.Now()
	delay := initialPollDelay

	var (
		sawOrder     bool
		newSince     time.Time
		haveNewSince bool
	)

	for attempts := 0; attempts < maxPollAttempts; attempts++ {
		if m.clock.Now().Sub(start) >= timeout {
			break
		}

		status, err := m.client.OrderStatus(ctx, orderID, symbol)
		if err != nil {
			m.logger.Warn(ctx, "order status poll failed", "order_id", orderID, "error", err)
		} else {
			m.logger.Debug(ctx, "order status", "order_id", orderID, "status", string(status))

			switch {
			case status == domain.StatusFilled:
				return nil

			case status.IsFailure():
				return apperror.New(apperror.CodeOrderRejected,
					apperror.WithContext("order "+string(status)),
					apperror.WithMessage("order terminally failed before filling"))

			case status == domain.StatusNew:
				sawOrder = true
				if !haveNewSince {
					newSince = m.clock.Now()
					haveNewSince = true
				} else if m.clock.Now().Sub(newSince) > newStatusTimeout {
					m.logger.Warn(ctx, "order stuck in new status, cancelling", "order_id", orderID)
					if cancelErr := m.Cancel(ctx, orderID, symbol); cancelErr == nil {
						return apperror.New(apperror.CodeOrderRejected,
							apperror.WithContext("order cancelled after stalling in new status"))
					}
				}

			case status == domain.StatusNotFound:
				if sawOrder {
					return apperror.New(apperror.CodeOrderNotFound,
						apperror.WithContext("order disappeared after being observed"))
				}

			default:
				sawOrder = true
			}
		}

		if err := m.clock.Sleep(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * pollBackoff)
		if delay > maxPollDelay {
			delay = maxPollDelay
		}
	}

	// Best effort: do not leave the unfilled order on the book.
	if err := m.Cancel(ctx, orderID, symbol); err != nil {
		m.logger.Warn(ctx, "failed to cancel timed-out order", "order_id", orderID, "error", err)
	}

	return apperror.New(apperror.CodeConfirmationTimeout,
		apperror.WithContext("order fill wait timed out"))
}

// PlaceAndAwait places an order and waits for it to fill.
func (m *OrderManager) PlaceAndAwait(ctx context.Context, req domain.NewOrderRequest, timeout time.Duration) (*domain.Order, error) {
	order, err := m.Place(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := m.AwaitFill(ctx, order.ID, order.Symbol, timeout); err != nil {
		return order, err
	}

	order.Status = domain.StatusFilled
	return order, nil
}

// Cancel removes an active order from the book.
func (m *OrderManager) Cancel(ctx context.Context, orderID int64, symbol string) error {
	if err := m.client.CancelOrder(ctx, orderID, symbol); err != nil {
		return err
	}
	m.logger.Info(ctx, "order cancelled", "order_id", orderID)
	return nil
}

// Status exposes the raw venue status for reconciliation.
func (m *OrderManager) Status(ctx context.Context, orderID int64, symbol string) (domain.OrderStatus, error) {
	return m.client.OrderStatus(ctx, orderID, symbol)
}
