// Package main is the entry point for the Cardano DEX-CEX arbitrage bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage"
	arbitrageDI "github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/di"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/arbitrage/infra/statefile"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/exchange"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/ledger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/pricing"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/business/transfer"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/apm"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/clock"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/config"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/health"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/logger"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/metrics"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/monolith"
	"github.com/Flux-Point-Studios/Cardano-DEX-CEX-Arbitrage-Bot/internal/pidfile"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	showStatus := flag.Bool("status", false, "Print pending operations and exit")
	forceClear := flag.Bool("force-clear", false, "Abandon all tracked operations on startup")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbbot %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if *showStatus {
		if err := printStatus(ctx, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := run(ctx, *configPath, *forceClear); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, forceClear bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if forceClear {
		cfg.Trading.ForceClearOnStart = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting Cardano DEX-CEX arbitrage bot",
		"version", version,
		"environment", cfg.App.Environment,
		"pair", cfg.Trading.PairSymbol)

	pid, err := pidfile.Write(cfg.App.PidFile)
	if err != nil {
		return fmt.Errorf("another instance appears to be running: %w", err)
	}
	defer pid.Remove()

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		traceProvider = apm.NewTraceProvider(
			apm.WithServiceName(cfg.Telemetry.ServiceName),
			apm.WithProvider(apm.OTLPGRPCProvider, cfg.Telemetry.OTLPEndpoint, nil, log),
		)

		meterProvider, err := metrics.NewMetricProvider(ctx,
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		)
		if err != nil {
			log.Warn(ctx, "metrics disabled", "error", err)
		} else {
			defer meterProvider.Shutdown(context.Background())
			go metrics.ServePrometheusMetrics(cfg.Telemetry.PrometheusPort)
			log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.PrometheusPort)
		}
	} else {
		traceProvider = apm.NewEmptyTraceProvider()
	}
	defer traceProvider.Stop()

	mono, err := monolith.New(cfg, log, clock.Real{})
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}

	// Dependency order: pricing and exchange feed the transfer and
	// arbitrage contexts; ledger sits between them.
	modules := []monolith.Module{
		&pricing.Module{},
		&exchange.Module{},
		&ledger.Module{},
		&transfer.Module{},
		&arbitrage.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	orch := arbitrageDI.GetOrchestrator(mono.Services())

	healthServer := health.NewServer(cfg.Telemetry.HealthPort, version)
	healthServer.RegisterCheck("state_store", func(ctx context.Context) error {
		_, err := arbitrageDI.GetStateStore(mono.Services()).Load(ctx)
		return err
	})
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Telemetry.HealthPort)
	}
	defer healthServer.Stop(context.Background())

	log.Info(ctx, "all modules started, entering tick loop")
	return orch.Run(ctx)
}

// printStatus reports whether an instance is running and what the state
// document has tracked, without touching any venue.
func printStatus(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if pid, alive := pidfile.Running(cfg.App.PidFile); alive {
		fmt.Printf("bot is running (pid %d)\n", pid)
	} else {
		fmt.Println("bot is not running")
	}

	store := statefile.NewStore(cfg.App.StateFile, logger.Nop())
	state, err := store.Load(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("pending operations: %d\n", state.PendingCount())
	fmt.Printf("  active orders:      %d\n", len(state.ActiveOrders))
	fmt.Printf("  pending transfers:  %d\n", len(state.PendingTransfers))
	fmt.Printf("  active withdrawals: %d\n", len(state.ActiveWithdrawals))

	recent := state.RecentCompleted(5)
	fmt.Printf("completed transactions: %d\n", len(state.CompletedTransactions))
	for _, tx := range recent {
		fmt.Printf("  %s  %-10s  dex_sell_completed=%v  %s\n",
			tx.Timestamp.Format("2006-01-02 15:04:05"), tx.Type, tx.DexSellCompleted, tx.TxHash)
	}
	return nil
}
