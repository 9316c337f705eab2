package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Direction indicates the profitable trade direction for a spread.
type Direction string

const (
	// DirectionDEXToCEX means buy on the DEX, sell on the CEX.
	DirectionDEXToCEX Direction = "DEX_TO_CEX"

	// DirectionCEXToDEX means buy on the CEX, sell on the DEX.
	DirectionCEXToDEX Direction = "CEX_TO_DEX"

	// DirectionNone means the spread does not clear the threshold.
	DirectionNone Direction = "NONE"
)

// String returns a human-readable description of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionDEXToCEX:
		return "DEX → CEX (buy on DEX, sell on CEX)"
	case DirectionCEXToDEX:
		return "CEX → DEX (buy on CEX, sell on DEX)"
	default:
		return "no opportunity"
	}
}

// Spread is the relative difference between CEX and DEX prices.
// Percent is (CEX - DEX) / DEX * 100: positive when the CEX pays more.
type Spread struct {
	CEXPrice decimal.Decimal
	DEXPrice decimal.Decimal
	Percent  decimal.Decimal
}

// CalculateSpread computes the spread between the two venue prices.
func CalculateSpread(cexPrice, dexPrice decimal.Decimal) Spread {
	percent := decimal.Zero
	if dexPrice.IsPositive() {
		percent = cexPrice.Sub(dexPrice).Div(dexPrice).Mul(hundred)
	}

	return Spread{
		CEXPrice: cexPrice,
		DEXPrice: dexPrice,
		Percent:  percent,
	}
}

// Direction resolves the profitable direction against a threshold given
// in percent. A spread strictly above +threshold buys where the token is
// cheap (DEX) and sells where it is rich (CEX); the mirror case runs the
// other way. A spread sitting exactly on the threshold, or anything
// inside the band, is not actionable.
func (s Spread) Direction(thresholdPct decimal.Decimal) Direction {
	if !s.CEXPrice.IsPositive() || !s.DEXPrice.IsPositive() {
		return DirectionNone
	}

	switch {
	case s.Percent.GreaterThan(thresholdPct):
		return DirectionDEXToCEX
	case s.Percent.LessThan(thresholdPct.Neg()):
		return DirectionCEXToDEX
	default:
		return DirectionNone
	}
}

// Opportunity is a spread that cleared the threshold in some direction.
type Opportunity struct {
	Spread    Spread
	Direction Direction
}

// Detect evaluates the spread against the threshold and returns an
// opportunity when one exists.
func Detect(cexPrice, dexPrice, thresholdPct decimal.Decimal) (Opportunity, bool) {
	spread := CalculateSpread(cexPrice, dexPrice)
	dir := spread.Direction(thresholdPct)
	if dir == DirectionNone {
		return Opportunity{Spread: spread, Direction: DirectionNone}, false
	}
	return Opportunity{Spread: spread, Direction: dir}, true
}
