package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"trading-agent-go/internal/agent"
	"trading-agent-go/internal/binance"
	"trading-agent-go/internal/config"
	"trading-agent-go/internal/database"
	"trading-agent-go/internal/executor"
	"trading-agent-go/internal/logger"
	"trading-agent-go/internal/market"
	tradesignal "trading-agent-go/internal/signal"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded", zap.Int("agents", len(cfg.Agents)))

	// Initialize database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Initialize the Binance REST client and verify connectivity, unless
	// every agent runs fully simulated.
	restClient := binance.NewRestClient(&cfg.Binance, log)
	if needsExchange(cfg.Agents) {
		if _, err := restClient.GetServerTime(context.Background()); err != nil {
			log.Fatal("Failed to connect to Binance API", zap.Error(err))
		}
		log.Info("Successfully connected to Binance API.")
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Build one agent per configuration entry.
	agents := make([]*agent.Agent, 0, len(cfg.Agents))
	starters := make([]func(context.Context) error, 0, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		a, start := buildAgent(&cfg, ac, restClient, db, log)
		agents = append(agents, a)
		starters = append(starters, start)
	}

	api := agent.NewAPIServer(cfg.Server.Port, agents, log)
	api.Start()

	// Run all agents; one failing agent brings the group down so the
	// process never limps along half-trading.
	g, runCtx := errgroup.WithContext(ctx)
	for i, a := range agents {
		a, start := a, starters[i]
		g.Go(func() error {
			if start != nil {
				if err := start(runCtx); err != nil {
					return fmt.Errorf("agent %s: %w", a.ID(), err)
				}
			}
			return a.Run(runCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("Agent group stopped with error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := api.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server", zap.Error(err))
	}

	log.Info("All agents have been shut down.")
}

// buildAgent wires one agent's market data provider, model source, and
// executor from its configuration. The returned start function, when not
// nil, must run before the agent's loop.
func buildAgent(cfg *config.Config, ac config.AgentConfig, restClient *binance.RestClient, db *gorm.DB, log *zap.Logger) (*agent.Agent, func(context.Context) error) {
	alog := logger.ForAgent(log, ac.ID)

	var provider market.Provider
	var start func(context.Context) error
	switch ac.DataSource {
	case config.SourceSim:
		provider = market.NewSimProvider(ac.HistoryLimit, time.Now().UnixNano())
	case config.SourceStream:
		stream := binance.NewKlineStream(&cfg.Binance, ac.Symbol, ac.KlineInterval, alog)
		sp := market.NewStreamProvider(restClient, stream, ac.Symbol, ac.KlineInterval, ac.HistoryLimit, alog)
		provider = sp
		start = sp.Start
	default:
		provider = market.NewKlineProvider(restClient, ac.Symbol, ac.KlineInterval, ac.HistoryLimit)
	}

	var source tradesignal.Source = tradesignal.NopSource{}
	if ac.UseModelPredictions && ac.ModelPath != "" {
		source = tradesignal.NewONNXSource(ac.ModelPath, alog)
	}

	var exec executor.Executor
	if ac.DryRun || ac.DataSource == config.SourceSim {
		exec = executor.NewPaperExecutor(executor.DefaultSuccessRate, time.Now().UnixNano(), alog)
	} else {
		exec = executor.NewBinanceExecutor(restClient, alog)
	}

	return agent.NewAgent(ac, alog, provider, source, exec, db), start
}

// needsExchange reports whether any agent talks to the real exchange.
func needsExchange(agents []config.AgentConfig) bool {
	for _, ac := range agents {
		if ac.DataSource != config.SourceSim || !ac.DryRun {
			return true
		}
	}
	return false
}
