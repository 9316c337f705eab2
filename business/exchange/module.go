// Package exchange implements the exchange bounded context: order
// execution, book depth, and wallet operations on the CEX venue.
package exchange

import (
	"context"
	"time"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/app"
	exchangeDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/infra/gleec"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/config"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/monolith"
)

// Module implements the exchange bounded context.
type Module struct{}

// RegisterServices registers all exchange services with the DI container.
// One authenticated venue client backs both the trading and wallet ports
// so they share a rate limiter and circuit breaker.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, exchangeDI.TradingClient, func(sr di.ServiceRegistry) app.TradingClient {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clk := sr.Get("clock").(clock.Clock)

		client, err := gleec.NewClient(gleec.Config{
			BaseURL:           cfg.Gleec.BaseURL,
			APIKey:            cfg.Gleec.APIKey,
			SecretKey:         cfg.Gleec.SecretKey,
			AuthWindowMs:      int64(cfg.Gleec.AuthWindowMs),
			RequestsPerMinute: cfg.Gleec.RequestsPerMinute,
		}, clk, log)
		if err != nil {
			panic("failed to create gleec client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, exchangeDI.Wallet, func(sr di.ServiceRegistry) app.WalletClient {
		return exchangeDI.GetTradingClient(sr).(app.WalletClient)
	})

	di.RegisterToken(c, exchangeDI.OrderManager, func(sr di.ServiceRegistry) *app.OrderManager {
		log := sr.Get("logger").(logger.LoggerInterface)
		clk := sr.Get("clock").(clock.Clock)
		return app.NewOrderManager(exchangeDI.GetTradingClient(sr), clk, log)
	})

	di.RegisterToken(c, exchangeDI.LiquidityService, func(sr di.ServiceRegistry) *app.LiquidityService {
		log := sr.Get("logger").(logger.LoggerInterface)
		clk := sr.Get("clock").(clock.Clock)
		return app.NewLiquidityService(
			exchangeDI.GetTradingClient(sr),
			exchangeDI.GetOrderManager(sr),
			clk,
			log,
		)
	})

	return nil
}

// Startup probes the wallet endpoint so bad credentials surface at boot
// instead of mid-cycle.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	wallet := exchangeDI.GetWallet(mono.Services())
	balance, err := wallet.Balance(probeCtx, cfg.Trading.BaseCurrency)
	if err != nil {
		log.Warn(ctx, "exchange wallet probe failed", "error", err)
	} else {
		log.Info(ctx, "exchange wallet reachable",
			"currency", balance.Currency,
			"available", balance.Available.String())
	}

	log.Info(ctx, "exchange module started")
	return nil
}
