// Package blockfrost implements the ledger indexer client.
package blockfrost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/app"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/circuitbreaker"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/httpclient"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/ratelimit"
)

const (
	tracerName  = "ledger.blockfrost"
	httpTimeout = 15 * time.Second

	// lovelaceUnit is the unit string Blockfrost uses for plain ADA.
	lovelaceUnit = "lovelace"

	requestsPerSecond = 10
)

// ClientConfig holds the indexer connection settings.
type ClientConfig struct {
	BaseURL   string
	ProjectID string
	Timeout   time.Duration
}

// Client is the Blockfrost-backed ledger indexer.
type Client struct {
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a Blockfrost client authenticated by project id.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("blockfrost project id missing"))
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)
	client, err := httpclient.New(
		httpclient.WithProviderName("blockfrost"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTracer(tracer),
		httpclient.WithHeaders(map[string]string{
			"project_id": cfg.ProjectID,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client:  client,
		limiter: ratelimit.NewWithBurst(requestsPerSecond, requestsPerSecond),
		breaker: circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("blockfrost")),
		logger:  log,
		tracer:  tracer,
	}, nil
}

type errorEnvelope struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (c *Client) do(ctx context.Context, fn func() (*httpclient.Response, error)) (*httpclient.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.breaker.Execute(fn)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeBlockfrostAPIError, "indexer request")
	}
	return resp, nil
}

func apiError(resp *httpclient.Response) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil && envelope.Message != "" {
		return apperror.New(apperror.CodeBlockfrostAPIError,
			apperror.WithContext(fmt.Sprintf("%s: %s", envelope.Error, envelope.Message)))
	}
	return apperror.New(apperror.CodeBlockfrostAPIError,
		apperror.WithContext(fmt.Sprintf("status %d: %s", resp.StatusCode, resp.String())))
}

// SubmitTransaction posts raw signed transaction bytes to the node and
// returns the transaction hash.
func (c *Client) SubmitTransaction(ctx context.Context, raw []byte) (string, error) {
	ctx, span := c.tracer.Start(ctx, "blockfrost.submit")
	defer span.End()

	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.client.NewRequest().
			SetHeader("Content-Type", "application/cbor").
			SetBody(raw).
			Post(ctx, "/tx/submit")
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if resp.IsError() {
		return "", apperror.Wrap(apiError(resp), apperror.CodeSubmitFailed, "transaction submit")
	}

	// The node answers with the hash as a JSON string.
	var hash string
	if err := json.Unmarshal(resp.Body(), &hash); err != nil || hash == "" {
		return "", apperror.New(apperror.CodeSubmitFailed,
			apperror.WithContext("unexpected submit response: "+resp.String()))
	}
	return hash, nil
}

type txPayload struct {
	BlockHeight *int64 `json:"block_height"`
}

// TransactionHeight looks a transaction up by hash. Blockfrost answers
// 404 until the transaction reaches a block.
func (c *Client) TransactionHeight(ctx context.Context, txHash string) (int64, bool, error) {
	var payload txPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.client.NewRequest().
			SetResult(&payload).
			Get(ctx, "/txs/"+txHash)
	})
	if err != nil {
		return 0, false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return 0, false, nil
	}
	if resp.IsError() {
		return 0, false, apiError(resp)
	}
	if payload.BlockHeight == nil {
		return 0, false, nil
	}
	return *payload.BlockHeight, true, nil
}

type blockPayload struct {
	Height int64  `json:"height"`
	Slot   uint64 `json:"slot"`
}

// LatestBlock returns the chain tip.
func (c *Client) LatestBlock(ctx context.Context) (*app.Block, error) {
	var payload blockPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.client.NewRequest().
			SetResult(&payload).
			Get(ctx, "/blocks/latest")
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &app.Block{Height: payload.Height, Slot: payload.Slot}, nil
}

type amountEntry struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

type addressPayload struct {
	Amount []amountEntry `json:"amount"`
}

// AddressAssets maps asset unit to raw quantity held at the address. An
// address the indexer has never seen holds nothing.
func (c *Client) AddressAssets(ctx context.Context, address string) (map[string]decimal.Decimal, error) {
	var payload addressPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.client.NewRequest().
			SetResult(&payload).
			Get(ctx, "/addresses/"+address)
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return map[string]decimal.Decimal{}, nil
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	assets := make(map[string]decimal.Decimal, len(payload.Amount))
	for _, entry := range payload.Amount {
		qty, err := decimal.NewFromString(entry.Quantity)
		if err != nil {
			return nil, apperror.New(apperror.CodeBlockfrostAPIError,
				apperror.WithContext("bad quantity for unit "+entry.Unit))
		}
		assets[entry.Unit] = assets[entry.Unit].Add(qty)
	}
	return assets, nil
}

type utxoPayload struct {
	TxHash      string        `json:"tx_hash"`
	OutputIndex uint32        `json:"output_index"`
	Amount      []amountEntry `json:"amount"`
}

// AddressUTxOs lists the unspent outputs at the address in the form the
// payment builder consumes.
func (c *Client) AddressUTxOs(ctx context.Context, address string) ([]domain.UTxO, error) {
	var payload []utxoPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.client.NewRequest().
			SetResult(&payload).
			Get(ctx, "/addresses/"+address+"/utxos")
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	utxos := make([]domain.UTxO, 0, len(payload))
	for _, entry := range payload {
		u := domain.UTxO{
			TxHash: entry.TxHash,
			Index:  entry.OutputIndex,
			Assets: make(map[string]uint64),
		}
		for _, amt := range entry.Amount {
			qty, err := strconv.ParseUint(amt.Quantity, 10, 64)
			if err != nil {
				return nil, apperror.New(apperror.CodeBlockfrostAPIError,
					apperror.WithContext("bad quantity in utxo "+entry.TxHash))
			}
			if amt.Unit == lovelaceUnit {
				u.Lovelace = qty
			} else {
				u.Assets[amt.Unit] = qty
			}
		}
		utxos = append(utxos, u)
	}
	return utxos, nil
}
