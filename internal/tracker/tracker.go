// Package tracker maintains per-agent performance state: equity, drawdown,
// risk level, and trade counts, exported as Prometheus metrics.
package tracker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricEquity = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trading_agent_equity",
		Help: "Account value including unrealized PnL",
	}, []string{"agent_id"})
	metricRealizedPnL = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trading_agent_realized_pnl",
		Help: "Cumulative realized profit and loss",
	}, []string{"agent_id"})
	metricUnrealizedPnL = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trading_agent_unrealized_pnl",
		Help: "Mark-to-market PnL of open positions",
	}, []string{"agent_id"})
	metricDrawdown = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trading_agent_drawdown",
		Help: "Current drawdown from peak equity, 0..1",
	}, []string{"agent_id"})
	metricRiskLevel = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trading_agent_risk_level",
		Help: "Exposure relative to equity, 0..1",
	}, []string{"agent_id"})
	metricOpenPositions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trading_agent_open_positions",
		Help: "Number of open position lots",
	}, []string{"agent_id"})
	metricTrades = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trading_agent_trades_total",
		Help: "Accepted trades by action",
	}, []string{"agent_id", "action"})
)

func init() {
	prometheus.MustRegister(
		metricEquity, metricRealizedPnL, metricUnrealizedPnL,
		metricDrawdown, metricRiskLevel, metricOpenPositions, metricTrades,
	)
}

// Metrics is a point-in-time snapshot of an agent's performance.
type Metrics struct {
	Equity          float64 `json:"equity"`
	RealizedPnL     float64 `json:"realized_pnl"`
	UnrealizedPnL   float64 `json:"unrealized_pnl"`
	TotalReturn     float64 `json:"total_return"`
	Drawdown        float64 `json:"drawdown"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	RiskLevel       float64 `json:"risk_level"`
	Exposure        float64 `json:"exposure"`
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	WinRate         float64 `json:"win_rate"`
	ActivePositions int     `json:"active_positions"`
}

// Update carries the cycle's raw numbers into the tracker.
type Update struct {
	RealizedPnL     float64
	UnrealizedPnL   float64
	Exposure        float64
	TotalTrades     int
	WinningTrades   int
	ActivePositions int
}

// Performance tracks one agent's equity curve. Peak equity and maximum
// drawdown are maintained across updates and never reset.
type Performance struct {
	agentID        string
	initialCapital float64

	mu          sync.Mutex
	last        Metrics
	peakEquity  float64
	maxDrawdown float64
}

// NewPerformance starts tracking from the initial capital.
func NewPerformance(agentID string, initialCapital float64) *Performance {
	p := &Performance{
		agentID:        agentID,
		initialCapital: initialCapital,
		peakEquity:     initialCapital,
	}
	p.last = Metrics{Equity: initialCapital}
	return p
}

// Apply folds the cycle's numbers into the equity curve and publishes the
// gauges. It returns the resulting snapshot.
func (p *Performance) Apply(u Update) Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	equity := p.initialCapital + u.RealizedPnL + u.UnrealizedPnL
	if equity > p.peakEquity {
		p.peakEquity = equity
	}

	drawdown := 0.0
	if p.peakEquity > 0 {
		drawdown = (p.peakEquity - equity) / p.peakEquity
	}
	if drawdown > p.maxDrawdown {
		p.maxDrawdown = drawdown
	}

	riskLevel := 1.0
	if equity > 0 {
		riskLevel = clamp01(u.Exposure / equity)
	}

	winRate := float64(u.WinningTrades) / float64(max(u.TotalTrades, 1))

	p.last = Metrics{
		Equity:          equity,
		RealizedPnL:     u.RealizedPnL,
		UnrealizedPnL:   u.UnrealizedPnL,
		TotalReturn:     (equity - p.initialCapital) / p.initialCapital,
		Drawdown:        drawdown,
		MaxDrawdown:     p.maxDrawdown,
		RiskLevel:       riskLevel,
		Exposure:        u.Exposure,
		TotalTrades:     u.TotalTrades,
		WinningTrades:   u.WinningTrades,
		WinRate:         winRate,
		ActivePositions: u.ActivePositions,
	}

	labels := prometheus.Labels{"agent_id": p.agentID}
	metricEquity.With(labels).Set(equity)
	metricRealizedPnL.With(labels).Set(u.RealizedPnL)
	metricUnrealizedPnL.With(labels).Set(u.UnrealizedPnL)
	metricDrawdown.With(labels).Set(drawdown)
	metricRiskLevel.With(labels).Set(riskLevel)
	metricOpenPositions.With(labels).Set(float64(u.ActivePositions))

	return p.last
}

// RecordTrade counts an accepted trade in the Prometheus counter.
func (p *Performance) RecordTrade(action string) {
	metricTrades.With(prometheus.Labels{"agent_id": p.agentID, "action": action}).Inc()
}

// AccountValue returns the equity from the latest update.
func (p *Performance) AccountValue() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last.Equity
}

// Drawdown returns the current drawdown from the latest update.
func (p *Performance) Drawdown() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last.Drawdown
}

// RiskLevel returns the current risk level from the latest update.
func (p *Performance) RiskLevel() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last.RiskLevel
}

// Snapshot returns the latest metrics.
func (p *Performance) Snapshot() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
