// Package transfer implements the transfer bounded context: moving the
// traded asset between the exchange wallet and the on-ledger wallet and
// waiting for each side to acknowledge the funds.
package transfer

import (
	"context"

	"github.com/shopspring/decimal"

	exchangeApp "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/app"
	exchangeDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/di"
	ledgerDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/transfer/app"
	transferDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/transfer/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/config"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/monolith"
)

// walletAdapter narrows the exchange wallet client to the coordinator's
// port, flattening balances to the available figure.
type walletAdapter struct {
	exchangeApp.WalletClient
}

func (a walletAdapter) AvailableBalance(ctx context.Context, currency string) (decimal.Decimal, error) {
	balance, err := a.Balance(ctx, currency)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Available, nil
}

// Module implements the transfer bounded context.
type Module struct{}

// RegisterServices registers all transfer services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, transferDI.Coordinator, func(sr di.ServiceRegistry) *app.Coordinator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clk := sr.Get("clock").(clock.Clock)

		return app.NewCoordinator(
			walletAdapter{WalletClient: exchangeDI.GetWallet(sr)},
			ledgerDI.GetTransactor(sr),
			app.CoordinatorConfig{
				RequiredConfirmations: cfg.Trading.RequiredConfirmations,
				WithdrawalTimeout:     cfg.Trading.WithdrawalTimeout,
				DepositTimeout:        cfg.Trading.DepositTimeout,
			},
			clk,
			log,
		)
	})

	return nil
}

// Startup wires nothing at boot; both venues are probed by their own
// modules.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "transfer module started")
	return nil
}
