package gleec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/app"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apm"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/circuitbreaker"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/httpclient"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/ratelimit"
)

// orderHistoryLimit caps the history lookup used as the fallback when an
// order is no longer in the active book.
const orderHistoryLimit = 100

// Config carries the venue connection settings.
type Config struct {
	BaseURL           string
	APIKey            string
	SecretKey         string
	AuthWindowMs      int64
	RequestsPerMinute int
	RequestTimeout    time.Duration
}

// Client is the authenticated venue client. It implements the exchange
// trading and wallet ports over the venue's private REST API.
type Client struct {
	http    httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger  logger.LoggerInterface
}

var (
	_ app.TradingClient = (*Client)(nil)
	_ app.WalletClient  = (*Client)(nil)
)

// NewClient builds a Client from config. All private calls share one rate
// limiter and one circuit breaker.
func NewClient(cfg Config, clk clock.Clock, log logger.LoggerInterface) (*Client, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("exchange credentials missing"))
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 100
	}

	hc, err := httpclient.New(
		httpclient.WithProviderName("gleec"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
		httpclient.WithSigner(NewSigner(cfg.APIKey, cfg.SecretKey, cfg.AuthWindowMs, clk)),
		httpclient.WithTracer(apm.NewTracer("gleec").GetTracer()),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:    hc,
		limiter: ratelimit.PerMinute(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("gleec")),
		logger:  log,
	}, nil
}

// do runs a request through the rate limiter and circuit breaker.
func (c *Client) do(ctx context.Context, fn func() (*httpclient.Response, error)) (*httpclient.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.breaker.Execute(fn)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeGleecAPIError, "exchange request")
	}
	return resp, nil
}

// apiError decodes the venue error envelope and maps its codes.
func apiError(resp *httpclient.Response) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil || envelope.Error.Code == 0 {
		return apperror.New(apperror.CodeGleecAPIError,
			apperror.WithContext(fmt.Sprintf("status %d: %s", resp.StatusCode, resp.String())))
	}

	code := apperror.CodeGleecAPIError
	switch envelope.Error.Code {
	case errCodeInsufficientFunds:
		code = apperror.CodeInsufficientBalance
	case errCodeWithdrawalLimit:
		code = apperror.CodeWithdrawalFailed
	case errCodeValidation:
		code = apperror.CodeInvalidInput
	}
	return apperror.New(code, apperror.WithContext(envelope.String()))
}

func toOrder(p orderPayload) *domain.Order {
	return &domain.Order{
		ID:            p.ID,
		ClientOrderID: p.ClientOrderID,
		Symbol:        p.Symbol,
		Side:          domain.Side(p.Side),
		Type:          domain.OrderType(p.Type),
		TimeInForce:   domain.TimeInForce(p.TimeInForce),
		Quantity:      p.Quantity,
		Price:         p.Price,
		CumQuantity:   p.QuantityCum,
		Status:        domain.OrderStatus(p.Status),
		PostOnly:      p.PostOnly,
	}
}

// PlaceOrder submits a new spot order.
func (c *Client) PlaceOrder(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error) {
	payload := placeOrderRequest{
		Symbol:        req.Symbol,
		Side:          string(req.Side),
		Quantity:      req.Quantity.String(),
		Type:          string(req.Type),
		TimeInForce:   string(req.TimeInForce),
		ClientOrderID: req.ClientOrderID,
		PostOnly:      req.PostOnly,
	}
	if !req.Price.IsZero() {
		payload.Price = req.Price.String()
	}

	var result orderPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetBody(payload).
			SetResult(&result).
			Post(ctx, "/spot/order")
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	c.logger.Debug(ctx, "spot order placed",
		"order_id", result.ID,
		"client_order_id", result.ClientOrderID,
		"status", result.Status)
	return toOrder(result), nil
}

// OrderStatus reports the current status of an order. It checks the active
// book first and falls back to order history, since filled and cancelled
// orders leave the active endpoint. Returns StatusNotFound, not an error,
// when the order appears in neither.
func (c *Client) OrderStatus(ctx context.Context, orderID int64, symbol string) (domain.OrderStatus, error) {
	var active orderPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetResult(&active).
			Get(ctx, "/spot/order/"+strconv.FormatInt(orderID, 10))
	})
	if err != nil {
		return "", err
	}
	if resp.IsSuccess() && active.ID == orderID {
		return domain.OrderStatus(active.Status), nil
	}
	if resp.IsError() && resp.StatusCode != http.StatusNotFound {
		return "", apiError(resp)
	}

	var history []orderPayload
	resp, err = c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetQueryParam("symbol", symbol).
			SetQueryParam("limit", strconv.Itoa(orderHistoryLimit)).
			SetResult(&history).
			Get(ctx, "/spot/history/order")
	})
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiError(resp)
	}

	for _, entry := range history {
		if entry.ID == orderID {
			return domain.OrderStatus(entry.Status), nil
		}
	}
	return domain.StatusNotFound, nil
}

// CancelOrder removes an order from the active book. Cancelling an order
// that already left the book is not an error.
func (c *Client) CancelOrder(ctx context.Context, orderID int64, symbol string) error {
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			Delete(ctx, "/spot/order/"+strconv.FormatInt(orderID, 10)+"/"+symbol)
	})
	if err != nil {
		return err
	}
	if resp.IsError() && resp.StatusCode != http.StatusNotFound {
		return apiError(resp)
	}
	return nil
}

// Orderbook fetches the visible book for a symbol.
func (c *Client) Orderbook(ctx context.Context, symbol string) (*domain.Orderbook, error) {
	var payload orderbookPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetResult(&payload).
			Get(ctx, "/public/orderbook/"+symbol)
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	book := &domain.Orderbook{
		Symbol: symbol,
		Asks:   make([]domain.Level, 0, len(payload.Ask)),
		Bids:   make([]domain.Level, 0, len(payload.Bid)),
	}
	for _, lvl := range payload.Ask {
		book.Asks = append(book.Asks, domain.Level{Price: lvl[0], Quantity: lvl[1]})
	}
	for _, lvl := range payload.Bid {
		book.Bids = append(book.Bids, domain.Level{Price: lvl[0], Quantity: lvl[1]})
	}
	if ts, err := time.Parse(time.RFC3339, payload.Timestamp); err == nil {
		book.Timestamp = ts
	}
	return book, nil
}

// Balance reports the available and reserved balance for a currency.
func (c *Client) Balance(ctx context.Context, currency string) (domain.Balance, error) {
	var payload balancePayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetResult(&payload).
			Get(ctx, "/wallet/balance/"+currency)
	})
	if err != nil {
		return domain.Balance{}, err
	}
	if resp.IsError() {
		return domain.Balance{}, apiError(resp)
	}

	return domain.Balance{
		Currency:  currency,
		Available: payload.Available,
		Reserved:  payload.Reserved,
	}, nil
}

// Withdraw requests an auto-committed crypto withdrawal and returns the
// venue transaction id used to track it.
func (c *Client) Withdraw(ctx context.Context, currency string, amount decimal.Decimal, address string) (string, error) {
	var payload withdrawPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetFormBody(map[string]string{
				"currency":    currency,
				"amount":      amount.String(),
				"address":     address,
				"auto_commit": "true",
			}).
			SetResult(&payload).
			Post(ctx, "/wallet/crypto/withdraw")
	})
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiError(resp)
	}
	if payload.ID == "" {
		return "", apperror.New(apperror.CodeWithdrawalFailed,
			apperror.WithContext("withdraw accepted but no transaction id returned"))
	}

	c.logger.Info(ctx, "withdrawal requested",
		"transaction_id", payload.ID,
		"currency", currency,
		"amount", amount.String())
	return payload.ID, nil
}

// TransactionStatus reports a wallet transaction's status and on-chain
// confirmation count. A 404 maps to the NOT_FOUND status rather than an
// error: freshly created withdrawals can lag the transactions endpoint.
func (c *Client) TransactionStatus(ctx context.Context, txID string) (string, int, error) {
	var payload transactionPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetResult(&payload).
			Get(ctx, "/wallet/transactions/"+txID)
	})
	if err != nil {
		return "", 0, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.TransactionStatusNotFound, 0, nil
	}
	if resp.IsError() {
		return "", 0, apiError(resp)
	}
	return payload.Status, payload.Native.Confirmations, nil
}

// DepositAddress returns the venue deposit address for a currency.
func (c *Client) DepositAddress(ctx context.Context, currency string) (string, error) {
	var payload []depositAddressPayload
	resp, err := c.do(ctx, func() (*httpclient.Response, error) {
		return c.http.NewRequest().
			SetQueryParam("currency", currency).
			SetResult(&payload).
			Get(ctx, "/wallet/crypto/address")
	})
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiError(resp)
	}
	if len(payload) == 0 || payload[0].Address == "" {
		return "", apperror.New(apperror.CodeGleecAPIError,
			apperror.WithContext("no deposit address on file for "+currency))
	}
	return payload[0].Address, nil
}
