package agent

import (
	"go.uber.org/zap"

	"trading-agent-go/internal/signal"
)

// highRiskLevel is the risk level above which the book is halved.
const highRiskLevel = 0.8

// Governor is the last line of risk control. It acts on portfolio-level
// measures, independent of any signal confidence.
type Governor struct {
	maxDrawdown float64
	logger      *zap.Logger
}

// NewGovernor creates a governor that flattens the book once drawdown
// exceeds the given limit.
func NewGovernor(maxDrawdown float64, logger *zap.Logger) *Governor {
	return &Governor{maxDrawdown: maxDrawdown, logger: logger}
}

// Review emits forced exits. Risk above highRiskLevel halves every lot;
// drawdown beyond the limit closes everything. Both can fire in the same
// cycle, and the book caps the combined oversell at what is held.
func (g *Governor) Review(riskLevel, drawdown float64, lots []Lot, price float64) []Decision {
	var decisions []Decision

	if riskLevel > highRiskLevel && len(lots) > 0 {
		g.logger.Warn("High risk level detected", zap.Float64("risk_level", riskLevel))
		for _, lot := range lots {
			decisions = append(decisions, Decision{
				Action:     signal.ActionSell,
				Size:       lot.Size * 0.5,
				Price:      price,
				Confidence: 1.0,
				Reasoning:  "Risk management: position reduction",
				LotID:      lot.ID,
			})
		}
	}

	if drawdown > g.maxDrawdown && len(lots) > 0 {
		g.logger.Warn("Maximum drawdown exceeded", zap.Float64("drawdown", drawdown))
		for _, lot := range lots {
			decisions = append(decisions, Decision{
				Action:     signal.ActionSell,
				Size:       lot.Size,
				Price:      price,
				Confidence: 1.0,
				Reasoning:  "Risk management: close all positions",
				LotID:      lot.ID,
			})
		}
	}

	return decisions
}
