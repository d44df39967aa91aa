// Package agent implements the autonomous trading decision engine: a
// per-symbol loop that classifies the market, aggregates signals, sizes
// entries, manages and governs open positions, and accounts for every fill.
package agent

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trading-agent-go/internal/config"
	"trading-agent-go/internal/executor"
	"trading-agent-go/internal/indicator"
	"trading-agent-go/internal/market"
	"trading-agent-go/internal/models"
	"trading-agent-go/internal/signal"
	"trading-agent-go/internal/tracker"
)

// drainTimeout bounds the shutdown work after the run context is cancelled.
const drainTimeout = 30 * time.Second

// Status is the agent state surfaced by the HTTP API.
type Status struct {
	AgentID            string                `json:"agent_id"`
	Symbol             string                `json:"symbol"`
	Running            bool                  `json:"running"`
	StartTime          time.Time             `json:"start_time"`
	Uptime             string                `json:"uptime"`
	Condition          market.Condition      `json:"market_condition"`
	LastRecommendation signal.Recommendation `json:"last_recommendation"`
	Indicators         indicator.Snapshot    `json:"indicators"`
	OpenLots           []Lot                 `json:"open_lots"`
	Metrics            tracker.Metrics       `json:"metrics"`
	LastCycle          time.Time             `json:"last_cycle"`
}

// Agent runs the trading loop for one symbol. All mutable trading state is
// owned by the loop goroutine; the status snapshot is the only shared view.
type Agent struct {
	cfg      config.AgentConfig
	logger   *zap.Logger
	provider market.Provider
	source   signal.Source
	exec     executor.Executor
	db       *gorm.DB

	book     *Book
	sizer    *Sizer
	manager  *Manager
	governor *Governor
	perf     *tracker.Performance

	totalTrades int
	lastPrice   float64
	snapshot    indicator.Snapshot
	startTime   time.Time

	running  atomic.Bool
	statusMu sync.RWMutex
	status   Status
}

// NewAgent wires an agent from its collaborators. The configuration must
// already be validated.
func NewAgent(cfg config.AgentConfig, logger *zap.Logger, provider market.Provider, source signal.Source, exec executor.Executor, db *gorm.DB) *Agent {
	a := &Agent{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		source:   source,
		exec:     exec,
		db:       db,
		book:     NewBook(),
		sizer:    NewSizer(cfg.MaxPositionSize, cfg.RiskTolerance),
		manager:  NewManager(cfg.MinProfitThreshold, cfg.MaxLossThreshold),
		governor: NewGovernor(cfg.MaxLossThreshold, logger),
		perf:     tracker.NewPerformance(cfg.ID, cfg.InitialCapital),
	}
	a.status = Status{
		AgentID: cfg.ID,
		Symbol:  cfg.Symbol,
		Metrics: a.perf.Snapshot(),
	}
	return a
}

// ID returns the agent identifier.
func (a *Agent) ID() string {
	return a.cfg.ID
}

// Run drives the trading loop until ctx is cancelled, then drains: open
// positions are closed, the model state is saved, and the final performance
// report is written. A second Run on the same agent fails.
func (a *Agent) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return fmt.Errorf("agent %s is already running", a.cfg.ID)
	}
	defer a.running.Store(false)

	a.startTime = time.Now()
	a.logger.Info("Starting trading agent",
		zap.String("symbol", a.cfg.Symbol),
		zap.String("mode", a.cfg.Mode),
	)

	if err := a.source.Load(ctx); err != nil {
		// Trade on without the model rather than refusing to start.
		a.logger.Warn("Could not load model, continuing without model signals", zap.Error(err))
		a.source = signal.NopSource{}
	}
	defer a.drain()

	interval := time.Duration(a.cfg.CycleInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info("Starting trading loop", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Stopping trading agent...")
			return nil
		case <-ticker.C:
			if err := a.cycle(ctx); err != nil {
				a.logger.Error("Trading cycle failed", zap.Error(err))
			}
		}
	}
}

// drain performs the shutdown sequence under its own deadline, since the
// run context is already cancelled when it executes.
func (a *Agent) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if a.book.Len() > 0 && a.lastPrice > 0 {
		a.logger.Info("Closing all positions before shutdown", zap.Int("lots", a.book.Len()))
		for _, lot := range a.book.Lots() {
			dec := Decision{
				Action:     signal.ActionSell,
				Size:       lot.Size,
				Price:      a.lastPrice,
				Confidence: 1.0,
				Reasoning:  "Risk management: close all positions",
				LotID:      lot.ID,
			}
			if err := a.execute(ctx, dec); err != nil {
				a.logger.Warn("Close failed during shutdown", zap.Error(err))
			}
		}
		// Rejected closes must not leave phantom positions behind.
		if a.book.Len() > 0 {
			a.logger.Warn("Forcing book closure for unfilled lots", zap.Int("lots", a.book.Len()))
			a.book.CloseAll(a.lastPrice)
		}
	}

	if err := a.source.Save(ctx); err != nil {
		a.logger.Warn("Could not save model state", zap.Error(err))
	}
	if err := a.source.Close(); err != nil {
		a.logger.Warn("Could not close model source", zap.Error(err))
	}

	a.writeReport()
}

// writeReport persists the final performance report and logs it.
func (a *Agent) writeReport() {
	metrics := a.perf.Apply(tracker.Update{
		RealizedPnL:     a.book.RealizedPnL(),
		UnrealizedPnL:   a.book.UnrealizedPnL(a.lastPrice),
		Exposure:        a.book.Exposure(a.lastPrice),
		TotalTrades:     a.totalTrades,
		WinningTrades:   a.book.Wins(),
		ActivePositions: a.book.Len(),
	})

	report := models.PerformanceReport{
		AgentID:        a.cfg.ID,
		Symbol:         a.cfg.Symbol,
		Mode:           a.cfg.Mode,
		Equity:         metrics.Equity,
		RealizedPnL:    metrics.RealizedPnL,
		UnrealizedPnL:  metrics.UnrealizedPnL,
		TotalReturn:    metrics.TotalReturn,
		MaxDrawdown:    metrics.MaxDrawdown,
		TotalTrades:    metrics.TotalTrades,
		WinningTrades:  metrics.WinningTrades,
		WinRate:        metrics.WinRate,
		FinalPositions: metrics.ActivePositions,
	}
	if err := a.db.Create(&report).Error; err != nil {
		a.logger.Error("Failed to save performance report", zap.Error(err))
	}

	a.logger.Info("Performance report",
		zap.Float64("equity", report.Equity),
		zap.Float64("realized_pnl", report.RealizedPnL),
		zap.Float64("total_return", report.TotalReturn),
		zap.Float64("max_drawdown", report.MaxDrawdown),
		zap.Int("total_trades", report.TotalTrades),
		zap.Float64("win_rate", report.WinRate),
		zap.Int("final_positions", report.FinalPositions),
	)
}

// winRate is wins over accepted trades, with an empty record counting as 0.
func (a *Agent) winRate() float64 {
	return float64(a.book.Wins()) / float64(max(a.totalTrades, 1))
}

// Status returns a copy of the latest published state.
func (a *Agent) Status() Status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()

	status := a.status
	status.Running = a.running.Load()
	if status.Running && !a.startTime.IsZero() {
		status.Uptime = time.Since(a.startTime).String()
	}
	return status
}

// publishStatus refreshes the shared snapshot at the end of a cycle.
func (a *Agent) publishStatus(cond market.Condition, rec signal.Recommendation, metrics tracker.Metrics) {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()

	a.status = Status{
		AgentID:            a.cfg.ID,
		Symbol:             a.cfg.Symbol,
		StartTime:          a.startTime,
		Condition:          cond,
		LastRecommendation: rec,
		Indicators:         a.snapshot,
		OpenLots:           a.book.Lots(),
		Metrics:            metrics,
		LastCycle:          time.Now(),
	}
}
