package app

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/domain"
	exchange "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/domain"
	pricing "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/domain"
	transferdomain "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/transfer/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

// OrchestratorConfig carries the per-run trading policy.
type OrchestratorConfig struct {
	PairSymbol            string
	BaseCurrency          string
	WalletAddress         string
	Quantity              decimal.Decimal
	ThresholdPct          decimal.Decimal
	TickInterval          time.Duration
	OrderFillTimeout      time.Duration
	ConfirmTimeout        time.Duration
	RequiredConfirmations int
	StalenessWindow       time.Duration
	ForceClearOnStart     bool
}

// Orchestrator drives the arbitrage saga: one tick at a time, one trade
// cycle at most, every step transition persisted. All venue access goes
// through injected ports, so within a tick only one external call is
// ever in flight.
type Orchestrator struct {
	oracle    Oracle
	orders    Orders
	liquidity Liquidity
	ledger    Ledger
	transfers Transfers
	wallet    VenueWallet
	store     StateStore

	cfg    OrchestratorConfig
	state  *domain.State
	clock  clock.Clock
	logger logger.LoggerInterface

	tickCounter  metric.Int64Counter
	cycleCounter metric.Int64Counter
}

// NewOrchestrator creates an Orchestrator with injected ports.
func NewOrchestrator(
	oracle Oracle,
	orders Orders,
	liquidity Liquidity,
	ledger Ledger,
	transfers Transfers,
	wallet VenueWallet,
	store StateStore,
	cfg OrchestratorConfig,
	clk clock.Clock,
	log logger.LoggerInterface,
) *Orchestrator {
	meter := otel.Meter("arbitrage.orchestrator")
	ticks, _ := meter.Int64Counter("arbitrage.ticks",
		metric.WithDescription("Completed orchestrator ticks"))
	cycles, _ := meter.Int64Counter("arbitrage.cycles",
		metric.WithDescription("Trade cycles by direction and outcome"))

	return &Orchestrator{
		oracle:       oracle,
		orders:       orders,
		liquidity:    liquidity,
		ledger:       ledger,
		transfers:    transfers,
		wallet:       wallet,
		store:        store,
		cfg:          cfg,
		clock:        clk,
		logger:       log,
		tickCounter:  ticks,
		cycleCounter: cycles,
	}
}

// Run loads the durable state, clears what policy says to clear, sells
// any tokens already sitting in the ledger wallet, then ticks until the
// context is cancelled. On shutdown every tracked operation is
// abandoned in place for the operator to reconcile from venue balances.
func (o *Orchestrator) Run(ctx context.Context) error {
	state, err := o.store.Load(ctx)
	if err != nil {
		return err
	}
	o.state = state

	if o.cfg.ForceClearOnStart {
		if n := o.state.ForceClear(); n > 0 {
			o.logger.Warn(ctx, "force-cleared pending operations on startup", "count", n)
		}
	} else if dropped := o.state.ClearStale(o.clock.Now(), o.cfg.StalenessWindow); len(dropped) > 0 {
		o.logger.Warn(ctx, "abandoned stale pending operations",
			"count", len(dropped),
			"ids", dropped)
	}
	o.saveState(ctx)

	o.sellExistingHoldings(ctx)

	for {
		if err := o.Tick(ctx); err != nil {
			o.logger.Error(ctx, "tick failed", "error", err)
		}
		o.tickCounter.Add(ctx, 1)

		if err := o.clock.Sleep(ctx, o.cfg.TickInterval); err != nil {
			break
		}
	}

	shutdownCtx := context.Background()
	if n := o.state.ForceClear(); n > 0 {
		o.logger.Warn(shutdownCtx, "abandoning pending operations on shutdown", "count", n)
	}
	o.saveState(shutdownCtx)
	return nil
}

// Tick runs one full pass: reconcile tracked operations, finish an
// interrupted cycle if one exists, otherwise look for an opportunity
// and trade it. No new cycle starts while anything is still pending.
func (o *Orchestrator) Tick(ctx context.Context) error {
	if err := o.Reconcile(ctx); err != nil {
		return err
	}

	if o.state.HasPending() {
		o.logger.Info(ctx, "pending operations unresolved, skipping tick",
			"pending", o.state.PendingCount())
		return nil
	}

	if withdrawalID, ok := o.state.UnfinishedDexSell(); ok {
		return o.resumeDexSell(ctx, withdrawalID)
	}

	opp, ok, err := o.oracle.Evaluate(ctx, o.cfg.ThresholdPct)
	if err != nil {
		// Flaky price sources are a normal operating condition.
		o.logger.Warn(ctx, "price unavailable this tick", "error", err)
		return nil
	}
	if !ok {
		o.logger.Debug(ctx, "spread inside threshold",
			"spread_pct", opp.Spread.Percent.StringFixed(4))
		return nil
	}

	return o.executeCycle(ctx, opp)
}

// Reconcile re-queries the venue for every tracked operation and drops
// the ones that reached a terminal state. Running it twice with no
// external change yields the same pending set.
func (o *Orchestrator) Reconcile(ctx context.Context) error {
	changed := false

	for id, entry := range o.state.ActiveOrders {
		if entry.Terminal() {
			delete(o.state.ActiveOrders, id)
			changed = true
			continue
		}
		orderID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			o.logger.Warn(ctx, "dropping garbled order entry", "id", id)
			delete(o.state.ActiveOrders, id)
			changed = true
			continue
		}
		status, err := o.orders.Status(ctx, orderID, entry.Details["symbol"])
		if err != nil {
			o.logger.Warn(ctx, "order reconciliation query failed", "id", id, "error", err)
			continue
		}
		if status.IsTerminal() || status == exchange.StatusNotFound {
			o.logger.Info(ctx, "reconciled order", "id", id, "status", string(status))
			delete(o.state.ActiveOrders, id)
			changed = true
		}
	}

	for id, entry := range o.state.ActiveWithdrawals {
		if entry.Terminal() {
			// A Success entry is the unfinished-cycle marker; leave it.
			continue
		}
		status, confirmations, err := o.wallet.TransactionStatus(ctx, id)
		if err != nil {
			o.logger.Warn(ctx, "withdrawal reconciliation query failed", "id", id, "error", err)
			continue
		}
		switch {
		case transferdomain.Succeeded(status, confirmations, o.cfg.RequiredConfirmations):
			o.logger.Info(ctx, "reconciled withdrawal as confirmed", "id", id)
			o.state.MarkWithdrawalConfirmed(id)
			changed = true
		case transferdomain.TerminallyFailed(status):
			o.logger.Warn(ctx, "reconciled withdrawal as failed", "id", id, "status", status)
			delete(o.state.ActiveWithdrawals, id)
			changed = true
		}
	}

	// Deposits and ledger transactions have no queryable venue id once
	// the process restarts; the staleness window retires them.

	if changed {
		o.saveState(ctx)
	}
	return nil
}

// sellExistingHoldings runs the DEX sell leg at startup when the ledger
// wallet already holds at least a full trade quantity of the token,
// before any new opportunity is evaluated.
func (o *Orchestrator) sellExistingHoldings(ctx context.Context) {
	balance, err := o.ledger.TokenBalance(ctx)
	if err != nil {
		o.logger.Warn(ctx, "startup token balance check failed", "error", err)
		return
	}
	if balance.LessThan(o.cfg.Quantity) {
		return
	}

	o.logger.Info(ctx, "ledger wallet already holds a trade quantity, selling first",
		"balance", balance.String())
	if _, err := o.dexSell(ctx); err != nil {
		o.logger.Error(ctx, "startup sell failed", "error", err)
	}
}

func (o *Orchestrator) resumeDexSell(ctx context.Context, withdrawalID string) error {
	o.logger.Info(ctx, "resuming interrupted cycle: withdrawal confirmed, sell leg missing",
		"withdrawal_id", withdrawalID)

	if _, err := o.dexSell(ctx); err != nil {
		return err
	}
	delete(o.state.ActiveWithdrawals, withdrawalID)
	o.saveState(ctx)
	return nil
}

func (o *Orchestrator) executeCycle(ctx context.Context, opp pricing.Opportunity) error {
	cycle := domain.NewCycle(opp.Direction, o.cfg.Quantity, o.clock.Now())
	o.logger.Info(ctx, "starting trade cycle",
		"direction", opp.Direction.String(),
		"spread_pct", opp.Spread.Percent.StringFixed(4),
		"quantity", o.cfg.Quantity.String())

	var err error
	switch opp.Direction {
	case pricing.DirectionCEXToDEX:
		err = o.buyCexSellDex(ctx, cycle)
	case pricing.DirectionDEXToCEX:
		err = o.buyDexSellCex(ctx, cycle, opp.Spread.DEXPrice)
	}

	outcome := "completed"
	if err != nil {
		cycle.Fail()
		outcome = "failed"
		o.logger.Error(ctx, "trade cycle failed",
			"direction", string(opp.Direction),
			"error", err)
	} else {
		cycle.Complete()
		o.logger.Info(ctx, "trade cycle completed", "direction", string(opp.Direction))
	}
	o.cycleCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", string(opp.Direction)),
		attribute.String("outcome", outcome),
	))
	return err
}

// buyCexSellDex: buy on the CEX where the token is cheap, move it to
// the ledger wallet, sell it on the DEX.
func (o *Orchestrator) buyCexSellDex(ctx context.Context, cycle *domain.Cycle) error {
	pairPrice, err := o.oracle.PairPrice(ctx)
	if err != nil {
		return err
	}

	cycle.Status = domain.CycleAwaitingLiquidity
	if err := o.liquidity.Ensure(ctx, o.cfg.PairSymbol, exchange.SideBuy, o.cfg.Quantity, pairPrice); err != nil {
		return err
	}

	if err := o.marketOrder(ctx, cycle, exchange.SideBuy, domain.LegCEXBuy); err != nil {
		return err
	}

	balance, err := o.wallet.Balance(ctx, o.cfg.BaseCurrency)
	if err != nil {
		return err
	}
	if !balance.CanCover(o.cfg.Quantity) {
		return apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContext("venue balance "+balance.Available.String()+
				" does not cover quantity "+o.cfg.Quantity.String()))
	}

	cycle.Status = domain.CycleAwaitingTransfer
	txID, err := o.transfers.WithdrawToLedger(ctx, o.cfg.BaseCurrency, o.cfg.Quantity, o.cfg.WalletAddress,
		func(ctx context.Context, id string) {
			o.state.TrackWithdrawal(id, o.clock.Now(), map[string]string{
				"currency": o.cfg.BaseCurrency,
				"amount":   o.cfg.Quantity.String(),
			})
			o.saveState(ctx)
		})
	if err != nil {
		return err
	}
	o.state.MarkWithdrawalConfirmed(txID)
	o.saveState(ctx)
	cycle.RecordLeg(domain.LegWithdrawal, txID, o.clock.Now())

	hash, err := o.dexSell(ctx)
	if err != nil {
		return err
	}
	delete(o.state.ActiveWithdrawals, txID)
	o.saveState(ctx)
	cycle.RecordLeg(domain.LegDEXSell, hash, o.clock.Now())
	return nil
}

// buyDexSellCex: buy on the DEX where the token is cheap, deposit it on
// the venue, sell it on the CEX.
func (o *Orchestrator) buyDexSellCex(ctx context.Context, cycle *domain.Cycle, dexPrice decimal.Decimal) error {
	pairPrice, err := o.oracle.PairPrice(ctx)
	if err != nil {
		return err
	}

	cycle.Status = domain.CycleAwaitingLiquidity
	if err := o.liquidity.Ensure(ctx, o.cfg.PairSymbol, exchange.SideSell, o.cfg.Quantity, pairPrice); err != nil {
		return err
	}

	// The swap spends native coin; size the input off the DEX price.
	amountIn := o.cfg.Quantity.Mul(dexPrice)
	hash, err := o.ledger.ExecuteSwap(ctx, amountIn, false)
	if err != nil {
		return err
	}
	o.state.TrackTransfer(hash, o.clock.Now(), map[string]string{"type": string(domain.LegDEXBuy)})
	o.saveState(ctx)

	if err := o.ledger.AwaitConfirmation(ctx, hash, o.cfg.ConfirmTimeout); err != nil {
		return err
	}
	delete(o.state.PendingTransfers, hash)
	o.state.RecordCompleted(hash, string(domain.LegDEXBuy), o.clock.Now(), false)
	o.saveState(ctx)
	cycle.RecordLeg(domain.LegDEXBuy, hash, o.clock.Now())

	cycle.Status = domain.CycleAwaitingTransfer
	depositID, err := o.transfers.DepositToExchange(ctx, o.cfg.BaseCurrency, o.cfg.Quantity,
		func(ctx context.Context, id string) {
			o.state.TrackTransfer(id, o.clock.Now(), map[string]string{
				"type":     string(domain.LegDeposit),
				"currency": o.cfg.BaseCurrency,
			})
			o.saveState(ctx)
		})
	if err != nil {
		return err
	}
	delete(o.state.PendingTransfers, depositID)
	o.saveState(ctx)
	cycle.RecordLeg(domain.LegDeposit, depositID, o.clock.Now())

	return o.marketOrder(ctx, cycle, exchange.SideSell, domain.LegCEXSell)
}

// dexSell swaps a trade quantity of the token back to the native coin
// and waits for block inclusion.
func (o *Orchestrator) dexSell(ctx context.Context) (string, error) {
	hash, err := o.ledger.ExecuteSwap(ctx, o.cfg.Quantity, true)
	if err != nil {
		return "", err
	}
	o.state.TrackTransfer(hash, o.clock.Now(), map[string]string{"type": string(domain.LegDEXSell)})
	o.saveState(ctx)

	if err := o.ledger.AwaitConfirmation(ctx, hash, o.cfg.ConfirmTimeout); err != nil {
		return hash, err
	}
	delete(o.state.PendingTransfers, hash)
	o.state.RecordCompleted(hash, string(domain.LegDEXSell), o.clock.Now(), true)
	o.saveState(ctx)
	return hash, nil
}

// marketOrder places, tracks, and awaits a market order on the CEX.
func (o *Orchestrator) marketOrder(ctx context.Context, cycle *domain.Cycle, side exchange.Side, leg domain.LegKind) error {
	order, err := o.orders.Place(ctx, exchange.NewOrderRequest{
		Symbol:   o.cfg.PairSymbol,
		Side:     side,
		Type:     exchange.OrderTypeMarket,
		Quantity: o.cfg.Quantity,
	})
	if err != nil {
		return err
	}

	id := strconv.FormatInt(order.ID, 10)
	o.state.TrackOrder(id, o.clock.Now(), map[string]string{
		"symbol": o.cfg.PairSymbol,
		"side":   string(side),
	})
	o.saveState(ctx)

	if err := o.orders.AwaitFill(ctx, order.ID, o.cfg.PairSymbol, o.cfg.OrderFillTimeout); err != nil {
		return err
	}
	delete(o.state.ActiveOrders, id)
	o.saveState(ctx)
	cycle.RecordLeg(leg, id, o.clock.Now())
	return nil
}

// State exposes the in-memory document for the health and status
// surfaces. The single-threaded tick loop is the only writer.
func (o *Orchestrator) State() *domain.State {
	return o.state
}

func (o *Orchestrator) saveState(ctx context.Context) {
	if err := o.store.Save(ctx, o.state); err != nil {
		o.logger.Error(ctx, "state persistence failed", "error", err)
	}
}
