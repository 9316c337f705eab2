// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/app"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/infra/statefile"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Orchestrator = di.NewToken[*app.Orchestrator]("arbitrage.Orchestrator")
	StateStore   = di.NewToken[*statefile.Store]("arbitrage.StateStore")
)

// Helper functions for type-safe access
func GetOrchestrator(c di.ServiceRegistry) *app.Orchestrator {
	return di.GetToken(c, Orchestrator)
}

func GetStateStore(c di.ServiceRegistry) *statefile.Store {
	return di.GetToken(c, StateStore)
}
