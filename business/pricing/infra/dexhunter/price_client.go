// Package dexhunter provides aggregator price access for the pricing context.
package dexhunter

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
	tracerName  = "pricing.dexhunter"
	httpTimeout = 10 * time.Second
)

// ClientConfig holds configuration for the DexHunter price client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PriceClient fetches average swap prices from the DexHunter aggregator.
type PriceClient struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewPriceClient creates a DexHunter price client.
func NewPriceClient(cfg ClientConfig, log logger.LoggerInterface) (*PriceClient, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.New(
		httpclient.WithProviderName("dexhunter"),
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

	return &PriceClient{
		client: client,
		logger: log,
		tracer: tracer,
	}, nil
}

type averagePriceResponse struct {
	AveragePrice decimal.Decimal `json:"averagePrice"`
}

// AveragePrice returns the average execution price for swapping tokenIn
// into tokenOut, quoted as tokenOut per tokenIn.
func (c *PriceClient) AveragePrice(ctx context.Context, tokenIn, tokenOut string) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "dexhunter.average_price",
		trace.WithAttributes(
			attribute.String("token_in", tokenIn),
			attribute.String("token_out", tokenOut),
		),
	)
	defer span.End()

	var result averagePriceResponse
	resp, err := c.client.NewRequest().
		SetResult(&result).
		Get(ctx, fmt.Sprintf("/swap/averagePrice/%s/%s/", tokenIn, tokenOut))

	if err != nil {
		span.RecordError(err)
		return decimal.Zero, apperror.New(apperror.CodeDexHunterAPIError,
			apperror.WithCause(err),
			apperror.WithContext("failed to fetch average price"))
	}

	if resp.IsError() {
		return decimal.Zero, apperror.New(apperror.CodeDexHunterAPIError,
			apperror.WithContext(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.String())))
	}

	if result.AveragePrice.IsZero() {
		return decimal.Zero, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("no averagePrice in response"))
	}

	span.SetAttributes(attribute.String("average_price", result.AveragePrice.String()))

	c.logger.Debug(ctx, "fetched dex average price",
		"token_in", tokenIn,
		"token_out", tokenOut,
		"price", result.AveragePrice.String())

	return result.AveragePrice, nil
}
