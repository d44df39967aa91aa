package agent

import (
	"fmt"

	"trading-agent-go/internal/signal"
)

// Manager emits exit decisions for lots that moved beyond their loss or
// profit bounds.
type Manager struct {
	minProfit float64
	maxLoss   float64
}

// NewManager creates a manager with the configured thresholds, both
// expressed as positive fractions of the entry price.
func NewManager(minProfit, maxLoss float64) *Manager {
	return &Manager{minProfit: minProfit, maxLoss: maxLoss}
}

// Review checks every lot against the current price. A loss beyond the
// threshold closes the whole lot; a profit beyond the threshold takes half.
// The stop loss wins when both could apply. Exits carry full confidence so
// they always execute.
func (m *Manager) Review(lots []Lot, price float64) []Decision {
	var decisions []Decision

	for _, lot := range lots {
		if lot.EntryPrice <= 0 {
			continue
		}
		ratio := (price - lot.EntryPrice) / lot.EntryPrice

		if ratio < -m.maxLoss {
			decisions = append(decisions, Decision{
				Action:     signal.ActionSell,
				Size:       lot.Size,
				Price:      price,
				Confidence: 1.0,
				Reasoning:  fmt.Sprintf("Stop loss triggered: %.2f%%", ratio*100),
				LotID:      lot.ID,
			})
		} else if ratio > m.minProfit {
			decisions = append(decisions, Decision{
				Action:     signal.ActionSell,
				Size:       lot.Size * 0.5,
				Price:      price,
				Confidence: 1.0,
				Reasoning:  fmt.Sprintf("Take profit triggered: %.2f%%", ratio*100),
				LotID:      lot.ID,
			})
		}
	}

	return decisions
}
