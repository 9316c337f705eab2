package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

// Liquidity provisioning parameters. When the book is thin the bot posts
// a resting maker order at a slight discount and waits for organic fills
// before retrying the taker trade.
var (
	liquiditySizeFactor = decimal.NewFromInt(2)
	buySideDiscount     = decimal.RequireFromString("0.99")
	sellSidePremium     = decimal.RequireFromString("1.01")
)

const liquidityFillWait = 30 * time.Second

// LiquidityService checks book depth and posts maker liquidity when the
// book cannot absorb the trade.
type LiquidityService struct {
	client TradingClient
	orders *OrderManager
	clock  clock.Clock
	logger logger.LoggerInterface
}

// NewLiquidityService creates a LiquidityService.
func NewLiquidityService(client TradingClient, orders *OrderManager, clk clock.Clock, log logger.LoggerInterface) *LiquidityService {
	return &LiquidityService{
		client: client,
		orders: orders,
		clock:  clk,
		logger: log,
	}
}

// HasDepth reports whether the visible book can absorb a taker order of
// the given size at or better than the limit price.
func (s *LiquidityService) HasDepth(ctx context.Context, symbol string, side domain.Side, quantity, price decimal.Decimal) (bool, error) {
	book, err := s.client.Orderbook(ctx, symbol)
	if err != nil {
		return false, err
	}

	ok := book.HasDepth(side, quantity, price)
	if !ok {
		s.logger.Warn(ctx, "insufficient book depth",
			"symbol", symbol,
			"side", string(side),
			"quantity", quantity.String(),
			"price", price.String(),
			"available", book.AvailableAt(side, price).String())
	}
	return ok, nil
}

// Ensure verifies depth and, when the book is thin, posts a double-size
// post-only maker order shaded off the target price, then waits for fills.
// Returns an error when liquidity still cannot be arranged.
func (s *LiquidityService) Ensure(ctx context.Context, symbol string, side domain.Side, quantity, price decimal.Decimal) error {
	ok, err := s.HasDepth(ctx, symbol, side, quantity, price)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// A buy needs sell-side depth below the target; a sell needs bids above it.
	makerPrice := price.Mul(sellSidePremium)
	if side == domain.SideBuy {
		makerPrice = price.Mul(buySideDiscount)
	}

	req := domain.NewOrderRequest{
		Symbol:      symbol,
		Side:        domain.SideSell,
		Type:        domain.OrderTypeLimit,
		TimeInForce: domain.TimeInForceGTC,
		Quantity:    quantity.Mul(liquiditySizeFactor),
		Price:       makerPrice,
		PostOnly:    true,
	}

	if _, err := s.orders.Place(ctx, req); err != nil {
		return apperror.Wrap(err, apperror.CodeInsufficientLiquidity, "failed to post maker liquidity")
	}

	s.logger.Info(ctx, "posted maker liquidity, waiting for fills",
		"symbol", symbol,
		"quantity", req.Quantity.String(),
		"price", makerPrice.String())

	return s.clock.Sleep(ctx, liquidityFillWait)
}
