// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing/app"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Oracle = di.NewToken[*app.Oracle]("pricing.Oracle")
)

// Private dependency tokens - internal to pricing module
var (
	CEXProvider = di.NewToken[app.CEXQuoteProvider]("pricing:cexProvider")
	DEXProvider = di.NewToken[app.DEXQuoteProvider]("pricing:dexProvider")
)

// Helper functions for type-safe access
func GetOracle(c di.ServiceRegistry) *app.Oracle {
	return di.GetToken(c, Oracle)
}

func GetCEXProvider(c di.ServiceRegistry) app.CEXQuoteProvider {
	return di.GetToken(c, CEXProvider)
}

func GetDEXProvider(c di.ServiceRegistry) app.DEXQuoteProvider {
	return di.GetToken(c, DEXProvider)
}
