// Package gleec provides exchange market-data access for the pricing context.
package gleec

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/httpclient"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

const (
	tracerName  = "pricing.gleec"
	httpTimeout = 10 * time.Second
)

// ClientConfig holds configuration for the public market-data client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// TickerClient fetches public tickers over REST. No authentication is
// required for these endpoints.
type TickerClient struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewTickerClient creates a public market-data client.
func NewTickerClient(cfg ClientConfig, log logger.LoggerInterface) (*TickerClient, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.New(
		httpclient.WithProviderName("gleec-public"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTracer(tracer),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &TickerClient{
		client: client,
		logger: log,
		tracer: tracer,
	}, nil
}

type tickerResponse struct {
	Last decimal.Decimal `json:"last"`
	Bid  decimal.Decimal `json:"bid"`
	Ask  decimal.Decimal `json:"ask"`
}

type priceTickerResponse struct {
	Price decimal.Decimal `json:"price"`
}

// LastPrice returns the last trade price for a symbol. The full ticker is
// tried first; symbols that only publish the slim price ticker fall back
// to that endpoint.
func (c *TickerClient) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "gleec.last_price",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	var ticker tickerResponse
	resp, err := c.client.NewRequest().
		SetResult(&ticker).
		Get(ctx, "/public/ticker/"+symbol)

	if err != nil {
		span.RecordError(err)
		return decimal.Zero, apperror.New(apperror.CodeGleecAPIError,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch ticker"))
	}

	if resp.IsSuccess() && ticker.Last.IsPositive() {
		span.SetAttributes(attribute.String("last", ticker.Last.String()))
		return ticker.Last, nil
	}

	var price priceTickerResponse
	resp, err = c.client.NewRequest().
		SetResult(&price).
		Get(ctx, "/public/price/ticker/"+symbol)

	if err != nil {
		span.RecordError(err)
		return decimal.Zero, apperror.New(apperror.CodeGleecAPIError,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch price ticker"))
	}

	if resp.IsError() {
		return decimal.Zero, apperror.New(apperror.CodeGleecAPIError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if !price.Price.IsPositive() {
		return decimal.Zero, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("no usable price for "+symbol))
	}

	c.logger.Debug(ctx, "fetched cex price", "symbol", symbol, "price", price.Price.String())

	return price.Price, nil
}
