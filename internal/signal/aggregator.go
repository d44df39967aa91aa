package signal

import (
	"fmt"
	"strings"

	"trading-agent-go/internal/indicator"
	"trading-agent-go/internal/market"
)

// Action is a trade direction recommendation.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// MinTradeConfidence gates new entries. Recommendations below it leave the
// book untouched; position management and risk checks are not gated.
const MinTradeConfidence = 0.6

// Recommendation is the fused output of one aggregation pass.
type Recommendation struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Aggregate fuses the market condition, the indicator snapshot, and the
// model signals into one recommendation by majority vote.
func Aggregate(cond market.Condition, snap indicator.Snapshot, sigs ModelSignals) Recommendation {
	action := direction(cond, snap, sigs)
	confidence := Confidence(snap, sigs)
	return Recommendation{
		Action:     action,
		Confidence: confidence,
		Reasoning:  reasoning(cond, snap, sigs, confidence),
	}
}

// direction tallies one vote per signal. An absent model signal counts as
// hold, and indicator votes abstain when their inputs are missing.
func direction(cond market.Condition, snap indicator.Snapshot, sigs ModelSignals) Action {
	var buyVotes, sellVotes int

	action := ActionCodeHold
	if sigs.HasAction {
		action = sigs.Action
	}
	switch action {
	case ActionCodeBuy:
		buyVotes++
	case ActionCodeSell:
		sellVotes++
	}

	if len(snap) > 0 {
		rsi := snap.Value(indicator.KeyRSI, 50)
		if rsi < 30 {
			buyVotes++
		} else if rsi > 70 {
			sellVotes++
		}

		macd := snap.Value(indicator.KeyMACD, 0)
		macdSignal := snap.Value(indicator.KeyMACDSignal, 0)
		if macd > macdSignal {
			buyVotes++
		} else if macd < macdSignal {
			sellVotes++
		}

		price := snap.Value(indicator.KeyCurrentPrice, 0)
		sma20 := snap.Value(indicator.KeySMA20, price)
		if price > sma20*1.01 {
			buyVotes++
		} else if price < sma20*0.99 {
			sellVotes++
		}
	}

	switch cond {
	case market.ConditionBull:
		buyVotes++
	case market.ConditionBear:
		sellVotes++
	}

	switch {
	case buyVotes > sellVotes:
		return ActionBuy
	case sellVotes > buyVotes:
		return ActionSell
	default:
		return ActionHold
	}
}

// Confidence scores how much the fused signals can be trusted. Each
// available signal contributes a fixed factor; an RSI outside the
// oversold/overbought band counts as alignment.
func Confidence(snap indicator.Snapshot, sigs ModelSignals) float64 {
	var factors []float64
	if sigs.HasForecast {
		factors = append(factors, 0.7)
	}
	if sigs.HasAction {
		factors = append(factors, 0.6)
	}
	if len(snap) > 0 {
		if rsi := snap.Value(indicator.KeyRSI, 50); rsi > 20 && rsi < 80 {
			factors = append(factors, 0.8)
		} else {
			factors = append(factors, 0.4)
		}
	}
	if len(factors) == 0 {
		return 0.5
	}
	return mean(factors)
}

func reasoning(cond market.Condition, snap indicator.Snapshot, sigs ModelSignals, confidence float64) string {
	reasons := []string{fmt.Sprintf("Market condition: %s", cond)}

	if sigs.HasAction {
		name := "hold"
		switch sigs.Action {
		case ActionCodeSell:
			name = "sell"
		case ActionCodeBuy:
			name = "buy"
		}
		reasons = append(reasons, fmt.Sprintf("RL model suggests: %s", name))
	}

	if len(snap) > 0 {
		rsi := snap.Value(indicator.KeyRSI, 50)
		reasons = append(reasons, fmt.Sprintf("RSI: %.1f", rsi))
		if rsi < 30 {
			reasons = append(reasons, "RSI oversold")
		} else if rsi > 70 {
			reasons = append(reasons, "RSI overbought")
		}
	}

	reasons = append(reasons, fmt.Sprintf("Confidence: %.2f", confidence))
	return strings.Join(reasons, "; ")
}
