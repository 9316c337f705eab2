package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/transfer/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

const (
	// initialWithdrawalDelay gives the venue time to register a fresh
	// withdrawal before the first status poll.
	initialWithdrawalDelay = 2 * time.Second

	// maxNotFoundPolls is how many NOT_FOUND observations are tolerated
	// before the withdrawal is declared lost.
	maxNotFoundPolls = 3

	// depositPollInterval is the gap between deposit balance checks.
	depositPollInterval = 60 * time.Second
)

// Wallet is the venue wallet surface the coordinator drives.
type Wallet interface {
	Withdraw(ctx context.Context, currency string, amount decimal.Decimal, address string) (string, error)
	TransactionStatus(ctx context.Context, txID string) (status string, confirmations int, err error)
	DepositAddress(ctx context.Context, currency string) (string, error)
	AvailableBalance(ctx context.Context, currency string) (decimal.Decimal, error)
}

// AssetSender sends the traded token on-ledger.
type AssetSender interface {
	SendAsset(ctx context.Context, recipient string, quantity decimal.Decimal) (string, error)
}

// PendingFunc is invoked once a transfer is in flight and has an
// identifier worth persisting, before any polling starts.
type PendingFunc func(ctx context.Context, id string)

// CoordinatorConfig carries the transfer polling policy.
type CoordinatorConfig struct {
	RequiredConfirmations int
	WithdrawalTimeout     time.Duration
	DepositTimeout        time.Duration
}

// Coordinator moves the traded asset between the exchange and the
// ledger wallet, polling each side until the transfer lands.
type Coordinator struct {
	wallet Wallet
	sender AssetSender
	cfg    CoordinatorConfig
	clock  clock.Clock
	logger logger.LoggerInterface
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(wallet Wallet, sender AssetSender, cfg CoordinatorConfig, clk clock.Clock, log logger.LoggerInterface) *Coordinator {
	return &Coordinator{
		wallet: wallet,
		sender: sender,
		cfg:    cfg,
		clock:  clk,
		logger: log,
	}
}

// WithdrawToLedger requests a withdrawal to the ledger wallet and polls
// the venue's transaction record until it succeeds with enough on-chain
// confirmations. Failed and RolledBack are terminal; a transaction the
// venue keeps not finding past a few polls is treated as lost. Returns
// the venue transaction id.
func (c *Coordinator) WithdrawToLedger(ctx context.Context, currency string, amount decimal.Decimal, address string, onPending PendingFunc) (string, error) {
	txID, err := c.wallet.Withdraw(ctx, currency, amount, address)
	if err != nil {
		return "", err
	}
	c.logger.Info(ctx, "withdrawal initiated",
		"transaction_id", txID,
		"currency", currency,
		"amount", amount.String())
	if onPending != nil {
		onPending(ctx, txID)
	}

	if err := c.clock.Sleep(ctx, initialWithdrawalDelay); err != nil {
		return txID, err
	}
	return txID, c.awaitWithdrawal(ctx, txID)
}

func (c *Coordinator) awaitWithdrawal(ctx context.Context, txID string) error {
	start := c.clock.Now()
	notFound := 0

	for attempt := 1; ; attempt++ {
		status, confirmations, err := c.wallet.TransactionStatus(ctx, txID)
		if err != nil {
			c.logger.Warn(ctx, "withdrawal status poll failed", "transaction_id", txID, "error", err)
		} else {
			c.logger.Debug(ctx, "withdrawal status",
				"transaction_id", txID,
				"status", status,
				"confirmations", confirmations)

			switch {
			case domain.Succeeded(status, confirmations, c.cfg.RequiredConfirmations):
				c.logger.Info(ctx, "withdrawal confirmed",
					"transaction_id", txID,
					"confirmations", confirmations)
				return nil

			case domain.TerminallyFailed(status):
				code := apperror.CodeWithdrawalFailed
				if status == domain.StatusRolledBack {
					code = apperror.CodeWithdrawalRolledBack
				}
				return apperror.New(code,
					apperror.WithContext("withdrawal ended in status "+status))

			case status == domain.StatusNotFound:
				notFound++
				if notFound > maxNotFoundPolls {
					return apperror.New(apperror.CodeWithdrawalFailed,
						apperror.WithContext("venue lost track of the withdrawal"))
				}
			}
		}

		if c.clock.Now().Sub(start) >= c.cfg.WithdrawalTimeout {
			return apperror.New(apperror.CodeConfirmationTimeout,
				apperror.WithContext("withdrawal not confirmed within timeout"))
		}
		if err := c.clock.Sleep(ctx, domain.Backoff(attempt)); err != nil {
			return err
		}
	}
}

// DepositToExchange sends the asset to the venue's deposit address and
// polls the venue wallet until the balance covers the expected amount.
// Returns the deposit identifier used in the persisted state.
func (c *Coordinator) DepositToExchange(ctx context.Context, currency string, quantity decimal.Decimal, onPending PendingFunc) (string, error) {
	address, err := c.wallet.DepositAddress(ctx, currency)
	if err != nil {
		return "", err
	}

	depositID := domain.NewDepositID(currency, c.clock.Now())
	if onPending != nil {
		onPending(ctx, depositID)
	}

	txHash, err := c.sender.SendAsset(ctx, address, quantity)
	if err != nil {
		return depositID, err
	}
	c.logger.Info(ctx, "deposit sent on-ledger",
		"deposit_id", depositID,
		"tx_hash", txHash,
		"quantity", quantity.String())

	return depositID, c.awaitDeposit(ctx, currency, quantity)
}

func (c *Coordinator) awaitDeposit(ctx context.Context, currency string, expected decimal.Decimal) error {
	start := c.clock.Now()
	for {
		available, err := c.wallet.AvailableBalance(ctx, currency)
		if err != nil {
			c.logger.Warn(ctx, "deposit balance poll failed", "currency", currency, "error", err)
		} else if available.GreaterThanOrEqual(expected) {
			c.logger.Info(ctx, "deposit confirmed",
				"currency", currency,
				"available", available.String())
			return nil
		}

		if c.clock.Now().Sub(start) >= c.cfg.DepositTimeout {
			return apperror.New(apperror.CodeDepositTimeout,
				apperror.WithContext("deposit not credited within timeout"))
		}
		if err := c.clock.Sleep(ctx, depositPollInterval); err != nil {
			return err
		}
	}
}
