package agent

import "trading-agent-go/internal/signal"

// Kelly inputs. Average win and loss are fixed assumptions; the win rate is
// observed. The fraction is capped well below full Kelly for safety.
const (
	kellyAvgWin  = 0.02
	kellyAvgLoss = 0.015
	kellyCap     = 0.25
	kellyFloor   = 0.01
)

// KellyFraction returns the fraction of equity to stake given the observed
// win rate. A win rate at or below 50% returns the floor; otherwise
// f = (b*p - q) / b with b the win/loss odds, clamped to [0, kellyCap].
func KellyFraction(winRate float64) float64 {
	if winRate <= 0.5 {
		return kellyFloor
	}

	b := kellyAvgWin / kellyAvgLoss
	p := winRate
	q := 1 - winRate

	f := (b*p - q) / b
	if f < 0 {
		return 0
	}
	if f > kellyCap {
		return kellyCap
	}
	return f
}

// Sizer computes order sizes from account state and configured limits.
type Sizer struct {
	maxPositionSize float64
	riskTolerance   float64 // percent of equity risked per trade
}

// NewSizer creates a sizer from the configured limits.
func NewSizer(maxPositionSize, riskTolerance float64) *Sizer {
	return &Sizer{
		maxPositionSize: maxPositionSize,
		riskTolerance:   riskTolerance,
	}
}

// Size returns the order size for an entry or exit. Buys take the smallest
// of the configured maximum, the risk-budget size, and the Kelly size.
// Sells are bounded by the held size. A non-positive price sizes to zero.
func (s *Sizer) Size(action signal.Action, price, accountValue, winRate, holdings float64) float64 {
	if price <= 0 {
		return 0
	}

	var size float64
	if action == signal.ActionBuy {
		riskPerTrade := accountValue * (s.riskTolerance / 100)
		riskAdjusted := riskPerTrade / price
		kellyAdjusted := accountValue * KellyFraction(winRate) / price

		size = s.maxPositionSize
		if riskAdjusted < size {
			size = riskAdjusted
		}
		if kellyAdjusted < size {
			size = kellyAdjusted
		}
	} else {
		size = holdings
		if s.maxPositionSize < size {
			size = s.maxPositionSize
		}
	}

	if size < 0 {
		return 0
	}
	return size
}
