// Package arbitrage implements the top-level saga: opportunity
// detection, the trade cycle, and the durable state document that makes
// interrupted cycles recoverable.
package arbitrage

import (
	"context"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/app"
	arbitrageDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/infra/statefile"
	exchangeDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/di"
	ledgerDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/di"
	pricingDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/di"
	transferDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/transfer/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/config"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbitrageDI.StateStore, func(sr di.ServiceRegistry) *statefile.Store {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return statefile.NewStore(cfg.App.StateFile, log)
	})

	di.RegisterToken(c, arbitrageDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clk := sr.Get("clock").(clock.Clock)

		return app.NewOrchestrator(
			pricingDI.GetOracle(sr),
			exchangeDI.GetOrderManager(sr),
			exchangeDI.GetLiquidityService(sr),
			ledgerDI.GetTransactor(sr),
			transferDI.GetCoordinator(sr),
			exchangeDI.GetWallet(sr),
			arbitrageDI.GetStateStore(sr),
			app.OrchestratorConfig{
				PairSymbol:            cfg.Trading.PairSymbol,
				BaseCurrency:          cfg.Trading.BaseCurrency,
				WalletAddress:         cfg.Cardano.Address,
				Quantity:              cfg.Trading.QuantityDecimal(),
				ThresholdPct:          cfg.Trading.ThresholdDecimal(),
				TickInterval:          cfg.Trading.TickInterval,
				OrderFillTimeout:      cfg.Trading.OrderFillTimeout,
				ConfirmTimeout:        cfg.Trading.ConfirmTimeout,
				RequiredConfirmations: cfg.Trading.RequiredConfirmations,
				StalenessWindow:       cfg.Trading.StalenessWindow,
				ForceClearOnStart:     cfg.Trading.ForceClearOnStart,
			},
			clk,
			log,
		)
	})

	return nil
}

// Startup probes the state document so a corrupt or unwritable file
// surfaces at boot. The tick loop itself is driven from main.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	store := arbitrageDI.GetStateStore(mono.Services())
	state, err := store.Load(ctx)
	if err != nil {
		return err
	}
	log.Info(ctx, "arbitrage module started",
		"state_file", store.Path(),
		"pending_operations", state.PendingCount(),
		"completed_transactions", len(state.CompletedTransactions))
	return nil
}
