// Package ledger implements the ledger bounded context: the DEX swap
// leg and native-asset payments on Cardano.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/app"
	ledgerDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/infra/blockfrost"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/infra/dexhunter"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/asset"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/config"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/monolith"
)

// Module implements the ledger bounded context.
type Module struct{}

// RegisterServices registers all ledger services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, ledgerDI.Aggregator, func(sr di.ServiceRegistry) app.Aggregator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := dexhunter.NewSwapClient(dexhunter.ClientConfig{
			BaseURL: cfg.DexHunter.BaseURL,
		}, log)
		if err != nil {
			panic("failed to create dexhunter swap client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, ledgerDI.Indexer, func(sr di.ServiceRegistry) app.Indexer {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := blockfrost.NewClient(blockfrost.ClientConfig{
			BaseURL:   cfg.Blockfrost.BaseURL,
			ProjectID: cfg.Blockfrost.ProjectID,
		}, log)
		if err != nil {
			panic("failed to create blockfrost client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, ledgerDI.Transactor, func(sr di.ServiceRegistry) *app.Transactor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clk := sr.Get("clock").(clock.Clock)
		reg := sr.Get("assetRegistry").(*asset.Registry)

		token, ok := reg.GetBySymbol(cfg.Trading.BaseCurrency)
		if !ok {
			panic("traded token " + cfg.Trading.BaseCurrency + " not in asset registry")
		}

		paymentKey, err := domain.ParseSigningKeyJSON(cfg.Cardano.PaymentSigningKey)
		if err != nil {
			panic("failed to parse payment signing key: " + err.Error())
		}
		var stakeKey *domain.SigningKey
		if cfg.Cardano.StakeSigningKey != "" {
			stakeKey, err = domain.ParseSigningKeyJSON(cfg.Cardano.StakeSigningKey)
			if err != nil {
				panic("failed to parse stake signing key: " + err.Error())
			}
		}

		return app.NewTransactor(
			ledgerDI.GetAggregator(sr),
			ledgerDI.GetIndexer(sr),
			paymentKey,
			stakeKey,
			app.TransactorConfig{
				Address:         cfg.Cardano.Address,
				NetworkID:       cfg.Cardano.NetworkID,
				TokenUnit:       token.Unit(),
				SlippagePct:     decimal.NewFromFloat(cfg.DexHunter.SlippagePct),
				MinUTxOLovelace: uint64(cfg.Cardano.MinUTxOLovelace),
			},
			clk,
			log,
		)
	})

	return nil
}

// Startup verifies the wallet address parses and the indexer answers, so
// a bad project id or address fails at boot.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	addr, err := domain.ParseAddress(cfg.Cardano.Address)
	if err != nil {
		return err
	}
	if addr.NetworkID() != cfg.Cardano.NetworkID {
		log.Warn(ctx, "wallet address network does not match configured network",
			"address_network", addr.NetworkID(),
			"configured_network", cfg.Cardano.NetworkID)
	}

	probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if tip, err := ledgerDI.GetIndexer(mono.Services()).LatestBlock(probeCtx); err != nil {
		log.Warn(ctx, "ledger indexer probe failed", "error", err)
	} else {
		log.Info(ctx, "ledger indexer reachable", "height", tip.Height)
	}

	log.Info(ctx, "ledger module started")
	return nil
}
