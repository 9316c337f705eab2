// Package di contains dependency injection tokens for the transfer context.
package di

import (
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/transfer/app"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Coordinator = di.NewToken[*app.Coordinator]("transfer.Coordinator")
)

// Helper functions for type-safe access
func GetCoordinator(c di.ServiceRegistry) *app.Coordinator {
	return di.GetToken(c, Coordinator)
}
