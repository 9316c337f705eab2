// Package di contains dependency injection tokens for the exchange context.
package di

import (
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange/app"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	OrderManager     = di.NewToken[*app.OrderManager]("exchange.OrderManager")
	LiquidityService = di.NewToken[*app.LiquidityService]("exchange.LiquidityService")
	Wallet           = di.NewToken[app.WalletClient]("exchange.Wallet")
)

// Private dependency tokens - internal to exchange module
var (
	TradingClient = di.NewToken[app.TradingClient]("exchange:tradingClient")
)

// Helper functions for type-safe access
func GetOrderManager(c di.ServiceRegistry) *app.OrderManager {
	return di.GetToken(c, OrderManager)
}

func GetLiquidityService(c di.ServiceRegistry) *app.LiquidityService {
	return di.GetToken(c, LiquidityService)
}

func GetWallet(c di.ServiceRegistry) app.WalletClient {
	return di.GetToken(c, Wallet)
}

func GetTradingClient(c di.ServiceRegistry) app.TradingClient {
	return di.GetToken(c, TradingClient)
}
