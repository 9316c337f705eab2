package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/domain"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apperror"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
)

// OracleConfig holds the symbols and token identity the oracle compares.
type OracleConfig struct {
	PairSymbol   string // token quoted in USDT on the CEX, e.g. "SHARDSUSDT"
	NativeSymbol string // native coin quoted in USDT, e.g. "ADAUSDT"
	NativeID     string // aggregator id of the native coin, e.g. "ADA"
	TokenID      string // policy id + hex asset name
}

// Oracle produces comparable CEX and DEX prices for one token, both
// quoted in the native coin.
type Oracle struct {
	cex    CEXQuoteProvider
	dex    DEXQuoteProvider
	config OracleConfig
	clock  clock.Clock
	logger logger.LoggerInterface
}

// NewOracle creates a pricing Oracle.
func NewOracle(cex CEXQuoteProvider, dex DEXQuoteProvider, cfg OracleConfig, clk clock.Clock, log logger.LoggerInterface) *Oracle {
	return &Oracle{
		cex:    cex,
		dex:    dex,
		config: cfg,
		clock:  clk,
		logger: log,
	}
}

// Snapshot fetches both venue prices. The CEX has no native-coin book for
// the token, so its price is derived by dividing the token's USDT price by
// the native coin's USDT price.
func (o *Oracle) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	cexPrice, err := o.cexPriceInNative(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	avgPrice, err := o.dex.AveragePrice(ctx, o.config.NativeID, o.config.TokenID)
	if err != nil {
		return domain.Snapshot{}, apperror.Wrap(err, apperror.CodePriceUnavailable, "dex average price")
	}
	if !avgPrice.IsPositive() {
		return domain.Snapshot{}, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("dex returned non-positive price"))
	}
	// The aggregator quotes token per native coin; invert so both venues
	// speak native per token.
	dexPrice := decimal.NewFromInt(1).Div(avgPrice)

	now := o.clock.Now()
	snap := domain.Snapshot{
		CEX: domain.NewPricePoint(domain.VenueCEX, cexPrice, now),
		DEX: domain.NewPricePoint(domain.VenueDEX, dexPrice, now),
	}

	o.logger.Debug(ctx, "price snapshot",
		"cex_price", cexPrice.String(),
		"dex_price", dexPrice.String())

	return snap, nil
}

// Evaluate takes a snapshot and resolves the actionable direction, if any.
func (o *Oracle) Evaluate(ctx context.Context, thresholdPct decimal.Decimal) (domain.Opportunity, bool, error) {
	snap, err := o.Snapshot(ctx)
	if err != nil {
		return domain.Opportunity{}, false, err
	}

	opp, ok := domain.Detect(snap.CEX.Price, snap.DEX.Price, thresholdPct)
	if ok {
		o.logger.Info(ctx, "spread cleared threshold",
			"spread_pct", opp.Spread.Percent.StringFixed(4),
			"direction", string(opp.Direction))
	}
	return opp, ok, nil
}

// PairPrice returns the venue's last trade price for the configured pair
// in the pair's own quote currency. Depth checks against the venue book
// need this rather than the native-denominated price.
func (o *Oracle) PairPrice(ctx context.Context) (decimal.Decimal, error) {
	price, err := o.cex.LastPrice(ctx, o.config.PairSymbol)
	if err != nil {
		return decimal.Zero, apperror.Wrap(err, apperror.CodePriceUnavailable, "cex pair price")
	}
	if !price.IsPositive() {
		return decimal.Zero, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("cex returned non-positive price"))
	}
	return price, nil
}

func (o *Oracle) cexPriceInNative(ctx context.Context) (decimal.Decimal, error) {
	tokenUSDT, err := o.cex.LastPrice(ctx, o.config.PairSymbol)
	if err != nil {
		return decimal.Zero, apperror.Wrap(err, apperror.CodePriceUnavailable, "cex token price")
	}

	nativeUSDT, err := o.cex.LastPrice(ctx, o.config.NativeSymbol)
	if err != nil {
		return decimal.Zero, apperror.Wrap(err, apperror.CodePriceUnavailable, "cex native price")
	}

	if !nativeUSDT.IsPositive() || !tokenUSDT.IsPositive() {
		return decimal.Zero, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("cex returned non-positive price"))
	}

	return tokenUSDT.Div(nativeUSDT), nil
}
