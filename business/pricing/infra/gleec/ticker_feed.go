package gleec

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/wsconn"
)

// FeedConfig holds configuration for the streaming ticker feed.
type FeedConfig struct {
	WebSocketURL string
	Symbols      []string
	StaleTimeout time.Duration // cached prices older than this fall back to REST
}

type cachedPrice struct {
	price      decimal.Decimal
	observedAt time.Time
}

// TickerFeed streams tickers over WebSocket and keeps the last price per
// symbol. Reads hit the cache; a stale or missing entry falls back to the
// REST client so a dropped socket never stalls the trading loop.
type TickerFeed struct {
	config   FeedConfig
	ws       *wsconn.Client
	fallback *TickerClient
	clock    clock.Clock
	logger   logger.LoggerInterface

	mu     sync.RWMutex
	prices map[string]cachedPrice
}

// NewTickerFeed creates the streaming feed. Connect must be called before
// prices are served from the socket.
func NewTickerFeed(cfg FeedConfig, fallback *TickerClient, clk clock.Clock, log logger.LoggerInterface) (*TickerFeed, error) {
	if cfg.StaleTimeout == 0 {
		cfg.StaleTimeout = 10 * time.Second
	}

	ws, err := wsconn.New(wsconn.DefaultConfig(cfg.WebSocketURL, "gleec-ticker"))
	if err != nil {
		return nil, err
	}

	f := &TickerFeed{
		config:   cfg,
		ws:       ws,
		fallback: fallback,
		clock:    clk,
		logger:   log,
		prices:   make(map[string]cachedPrice),
	}

	ws.OnReconnect(f.subscribe)

	return f, nil
}

// Connect dials the socket and starts consuming ticker notifications.
func (f *TickerFeed) Connect(ctx context.Context) error {
	if err := f.ws.Connect(ctx); err != nil {
		return err
	}

	go f.consume(ctx)
	return nil
}

// Close shuts the socket down.
func (f *TickerFeed) Close() error {
	return f.ws.Close()
}

// LastPrice serves from the stream cache when fresh, otherwise via REST.
func (f *TickerFeed) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	f.mu.RLock()
	cached, ok := f.prices[symbol]
	f.mu.RUnlock()

	if ok && f.clock.Now().Sub(cached.observedAt) < f.config.StaleTimeout {
		return cached.price, nil
	}

	if ok {
		f.logger.Debug(ctx, "ticker cache stale, falling back to REST", "symbol", symbol)
	}

	return f.fallback.LastPrice(ctx, symbol)
}

type subscribeRequest struct {
	Method string          `json:"method"`
	Ch     string          `json:"ch"`
	Params subscribeParams `json:"params"`
	ID     int             `json:"id"`
}

type subscribeParams struct {
	Symbols []string `json:"symbols"`
}

func (f *TickerFeed) subscribe(ctx context.Context) error {
	return f.ws.SendJSON(ctx, subscribeRequest{
		Method: "subscribe",
		Ch:     "ticker/1s",
		Params: subscribeParams{Symbols: f.config.Symbols},
		ID:     1,
	})
}

// tickerNotification is a channel push like:
// {"ch":"ticker/1s","data":{"SHARDSUSDT":{"t":1699000000000,"c":"0.05",...}}}
type tickerNotification struct {
	Ch   string                    `json:"ch"`
	Data map[string]tickerSnapshot `json:"data"`
}

type tickerSnapshot struct {
	Close decimal.Decimal `json:"c"` // last trade price
}

func (f *TickerFeed) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-f.ws.Messages():
			if !ok {
				return
			}
			f.handleMessage(ctx, raw)
		}
	}
}

func (f *TickerFeed) handleMessage(ctx context.Context, raw []byte) {
	var note tickerNotification
	if err := json.Unmarshal(raw, &note); err != nil {
		f.logger.Debug(ctx, "ignoring unparseable frame", "error", err)
		return
	}
	if note.Ch != "ticker/1s" || len(note.Data) == 0 {
		return
	}

	now := f.clock.Now()

	f.mu.Lock()
	for symbol, snap := range note.Data {
		if snap.Close.IsPositive() {
			f.prices[symbol] = cachedPrice{price: snap.Close, observedAt: now}
		}
	}
	f.mu.Unlock()
}
