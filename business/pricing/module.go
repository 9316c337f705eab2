// Package pricing implements the pricing bounded context for CEX/DEX price comparison.
package pricing

import (
	"context"
	"time"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/app"
	pricingDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/infra/dexhunter"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/infra/gleec"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/asset"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/config"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// CEX provider: streaming ticker feed with REST fallback.
	di.RegisterToken(c, pricingDI.CEXProvider, func(sr di.ServiceRegistry) app.CEXQuoteProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clk := sr.Get("clock").(clock.Clock)

		rest, err := gleec.NewTickerClient(gleec.ClientConfig{
			BaseURL: cfg.Gleec.BaseURL,
		}, log)
		if err != nil {
			panic("failed to create gleec ticker client: " + err.Error())
		}

		feed, err := gleec.NewTickerFeed(gleec.FeedConfig{
			WebSocketURL: cfg.Gleec.WebSocketURL,
			Symbols:      []string{cfg.Trading.PairSymbol, cfg.Trading.NativeSymbol},
			StaleTimeout: cfg.Gleec.TickerStale,
		}, rest, clk, log)
		if err != nil {
			panic("failed to create gleec ticker feed: " + err.Error())
		}
		return feed
	})

	// DEX provider: DexHunter aggregator.
	di.RegisterToken(c, pricingDI.DEXProvider, func(sr di.ServiceRegistry) app.DEXQuoteProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := dexhunter.NewPriceClient(dexhunter.ClientConfig{
			BaseURL: cfg.DexHunter.BaseURL,
		}, log)
		if err != nil {
			panic("failed to create dexhunter price client: " + err.Error())
		}
		return client
	})

	// Oracle (public - exposed to other modules).
	di.RegisterToken(c, pricingDI.Oracle, func(sr di.ServiceRegistry) *app.Oracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clk := sr.Get("clock").(clock.Clock)
		reg := sr.Get("assetRegistry").(*asset.Registry)

		native := reg.MustGet(asset.NativeAssetID)
		token, ok := reg.GetBySymbol(cfg.Trading.BaseCurrency)
		if !ok {
			panic("traded token " + cfg.Trading.BaseCurrency + " not in asset registry")
		}

		oracleCfg := app.OracleConfig{
			PairSymbol:   cfg.Trading.PairSymbol,
			NativeSymbol: cfg.Trading.NativeSymbol,
			NativeID:     native.Symbol(),
			TokenID:      token.Unit(),
		}

		return app.NewOracle(
			pricingDI.GetCEXProvider(sr),
			pricingDI.GetDEXProvider(sr),
			oracleCfg,
			clk,
			log,
		)
	})

	return nil
}

// Startup connects the streaming ticker feed. The REST fallback keeps
// prices flowing while a connection attempt is outstanding.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	cex := pricingDI.GetCEXProvider(mono.Services())
	if feed, ok := cex.(*gleec.TickerFeed); ok {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := feed.Connect(connectCtx); err != nil {
			log.Warn(ctx, "ticker feed connection failed, will retry in background", "error", err)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-time.After(5 * time.Second):
						if err := feed.Connect(ctx); err != nil {
							log.Warn(ctx, "ticker feed retry failed", "error", err)
						} else {
							log.Info(ctx, "ticker feed connected")
							return
						}
					}
				}
			}()
		}
	}

	log.Info(ctx, "pricing module started")
	return nil
}
