// Package dexhunter implements the swap aggregator client for the
// ledger context: estimate, build, and co-sign.
package dexhunter

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/app"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/httpclient"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

const (
	tracerName = "ledger.dexhunter"

	// Co-signing covers relayer-side work and can be slow.
	signTimeout = 30 * time.Second
)

// ClientConfig holds configuration for the DexHunter swap client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SwapClient talks to the DexHunter swap endpoints.
type SwapClient struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewSwapClient creates a DexHunter swap client.
func NewSwapClient(cfg ClientConfig, log logger.LoggerInterface) (*SwapClient, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = signTimeout
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

	return &SwapClient{
		client: client,
		logger: log,
		tracer: tracer,
	}, nil
}

// swapPayload sends numeric fields as JSON numbers, the types the
// aggregator expects.
type swapPayload struct {
	AmountIn     float64 `json:"amount_in"`
	TokenIn      string  `json:"token_in"`
	TokenOut     string  `json:"token_out"`
	Slippage     float64 `json:"slippage"`
	BuyerAddress string  `json:"buyer_address,omitempty"`
}

type cborResponse struct {
	Cbor string `json:"cbor"`
}

type coSignPayload struct {
	Signatures string `json:"Signatures"`
	TxCbor     string `json:"txCbor"`
}

func (c *SwapClient) post(ctx context.Context, path string, body, result any) error {
	resp, err := c.client.NewRequest().
		SetBody(body).
		SetResult(result).
		Post(ctx, path)
	if err != nil {
		return apperror.New(apperror.CodeDexHunterAPIError,
			apperror.WithCause(err),
			apperror.WithContext("aggregator request "+path))
	}
	if resp.IsError() {
		return apperror.New(apperror.CodeDexHunterAPIError,
			apperror.WithContext(fmt.Sprintf("%s: HTTP %d: %s", path, resp.StatusCode, resp.String())))
	}
	return nil
}

// EstimateSwap returns the aggregator's indicative quote for a swap.
func (c *SwapClient) EstimateSwap(ctx context.Context, req app.SwapRequest) (*app.SwapEstimate, error) {
	ctx, span := c.tracer.Start(ctx, "dexhunter.estimate",
		trace.WithAttributes(
			attribute.String("token_in", req.TokenIn),
			attribute.String("token_out", req.TokenOut),
			attribute.String("amount_in", req.AmountIn.String()),
		),
	)
	defer span.End()

	var estimate app.SwapEstimate
	if err := c.post(ctx, "/swap/estimate", swapPayload{
		AmountIn: req.AmountIn.InexactFloat64(),
		TokenIn:  req.TokenIn,
		TokenOut: req.TokenOut,
		Slippage: req.Slippage.InexactFloat64(),
	}, &estimate); err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.logger.Debug(ctx, "swap estimated",
		"total_output", estimate.TotalOutput.String(),
		"net_price", estimate.NetPrice.String())
	return &estimate, nil
}

// BuildSwap requests an unsigned swap transaction and returns its CBOR hex.
func (c *SwapClient) BuildSwap(ctx context.Context, req app.BuildRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "dexhunter.build")
	defer span.End()

	var result cborResponse
	if err := c.post(ctx, "/swap/build", swapPayload{
		AmountIn:     req.AmountIn.InexactFloat64(),
		TokenIn:      req.TokenIn,
		TokenOut:     req.TokenOut,
		Slippage:     req.Slippage.InexactFloat64(),
		BuyerAddress: req.BuyerAddress,
	}, &result); err != nil {
		span.RecordError(err)
		return "", err
	}
	if result.Cbor == "" {
		return "", apperror.New(apperror.CodeDexHunterAPIError,
			apperror.WithContext("no cbor field in build response"))
	}

	c.logger.Debug(ctx, "unsigned swap built", "cbor_chars", len(result.Cbor))
	return result.Cbor, nil
}

// CoSignSwap submits the bot's witness set for counter-signing and
// returns the fully witnessed transaction CBOR.
func (c *SwapClient) CoSignSwap(ctx context.Context, witnessHex, txCbor string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "dexhunter.sign")
	defer span.End()

	var result cborResponse
	if err := c.post(ctx, "/swap/sign", coSignPayload{
		Signatures: witnessHex,
		TxCbor:     txCbor,
	}, &result); err != nil {
		span.RecordError(err)
		return "", err
	}
	if result.Cbor == "" {
		return "", apperror.New(apperror.CodeDexHunterAPIError,
			apperror.WithContext("no cbor field in sign response"))
	}

	c.logger.Debug(ctx, "swap co-signed", "cbor_chars", len(result.Cbor))
	return result.Cbor, nil
}
