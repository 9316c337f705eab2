// Package di contains dependency injection tokens for the ledger context.
package di

import (
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger/app"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Transactor = di.NewToken[*app.Transactor]("ledger.Transactor")
)

// Private dependency tokens - internal to ledger module
var (
	Aggregator = di.NewToken[app.Aggregator]("ledger:aggregator")
	Indexer    = di.NewToken[app.Indexer]("ledger:indexer")
)

// Helper functions for type-safe access
func GetTransactor(c di.ServiceRegistry) *app.Transactor {
	return di.GetToken(c, Transactor)
}

func GetAggregator(c di.ServiceRegistry) app.Aggregator {
	return di.GetToken(c, Aggregator)
}

func GetIndexer(c di.ServiceRegistry) app.Indexer {
	return di.GetToken(c, Indexer)
}
