package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trading-agent-go/internal/indicator"
	"trading-agent-go/internal/market"
)

func TestAggregateDirection(t *testing.T) {
	testCases := []struct {
		name     string
		cond     market.Condition
		snap     indicator.Snapshot
		sigs     ModelSignals
		expected Action
	}{
		{
			name:     "No signals at all holds",
			cond:     market.ConditionSideways,
			expected: ActionHold,
		},
		{
			name: "Overbought bear market outvotes the model",
			cond: market.ConditionBear,
			snap: indicator.Snapshot{
				indicator.KeyRSI:          75.0,
				indicator.KeyCurrentPrice: 100.0,
			},
			sigs:     ModelSignals{Action: ActionCodeBuy, HasAction: true},
			expected: ActionSell,
		},
		{
			name:     "Bull market and model agree on buy",
			cond:     market.ConditionBull,
			sigs:     ModelSignals{Action: ActionCodeBuy, HasAction: true},
			expected: ActionBuy,
		},
		{
			name: "Oversold in a bull market buys",
			cond: market.ConditionBull,
			snap: indicator.Snapshot{
				indicator.KeyRSI:          25.0,
				indicator.KeyCurrentPrice: 100.0,
			},
			expected: ActionBuy,
		},
		{
			name: "Opposing votes tie into hold",
			cond: market.ConditionBull,
			snap: indicator.Snapshot{
				indicator.KeyRSI:          75.0,
				indicator.KeyCurrentPrice: 100.0,
			},
			expected: ActionHold,
		},
		{
			name: "Rising trend line buys",
			cond: market.ConditionSideways,
			snap: indicator.Snapshot{
				indicator.KeyMACD:         1.5,
				indicator.KeyMACDSignal:   0.5,
				indicator.KeyCurrentPrice: 100.0,
			},
			expected: ActionBuy,
		},
		{
			name: "Price stretched above its average buys",
			cond: market.ConditionSideways,
			snap: indicator.Snapshot{
				indicator.KeyCurrentPrice: 102.0,
				indicator.KeySMA20:        100.0,
			},
			expected: ActionBuy,
		},
		{
			name: "Price sagging below its average sells",
			cond: market.ConditionSideways,
			snap: indicator.Snapshot{
				indicator.KeyCurrentPrice: 98.0,
				indicator.KeySMA20:        100.0,
			},
			expected: ActionSell,
		},
		{
			name: "Missing moving average abstains",
			cond: market.ConditionSideways,
			snap: indicator.Snapshot{
				indicator.KeyCurrentPrice: 102.0,
			},
			expected: ActionHold,
		},
		{
			name:     "Volatile condition casts no vote",
			cond:     market.ConditionVolatile,
			sigs:     ModelSignals{Action: ActionCodeSell, HasAction: true},
			expected: ActionSell,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Aggregate(tc.cond, tc.snap, tc.sigs)
			assert.Equal(t, tc.expected, rec.Action)
		})
	}
}

func TestConfidence(t *testing.T) {
	testCases := []struct {
		name     string
		snap     indicator.Snapshot
		sigs     ModelSignals
		expected float64
	}{
		{
			name:     "No factors defaults to one half",
			expected: 0.5,
		},
		{
			name:     "Forecast alone",
			sigs:     ModelSignals{HasForecast: true},
			expected: 0.7,
		},
		{
			name:     "Action alone",
			sigs:     ModelSignals{HasAction: true},
			expected: 0.6,
		},
		{
			name:     "Forecast and action average",
			sigs:     ModelSignals{HasForecast: true, HasAction: true},
			expected: 0.65,
		},
		{
			name:     "RSI inside the band scores high",
			snap:     indicator.Snapshot{indicator.KeyRSI: 55.0},
			expected: 0.8,
		},
		{
			name:     "RSI at an extreme scores low",
			snap:     indicator.Snapshot{indicator.KeyRSI: 95.0},
			expected: 0.4,
		},
		{
			name:     "All factors together",
			snap:     indicator.Snapshot{indicator.KeyRSI: 55.0},
			sigs:     ModelSignals{HasForecast: true, HasAction: true},
			expected: 0.7,
		},
		{
			name: "Snapshot without RSI falls back to the neutral band",
			// The default RSI of 50 sits inside the band.
			snap:     indicator.Snapshot{indicator.KeyCurrentPrice: 100.0},
			expected: 0.8,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			confidence := Confidence(tc.snap, tc.sigs)
			assert.InDelta(t, tc.expected, confidence, 1e-9)
		})
	}
}

func TestAggregateReasoning(t *testing.T) {
	t.Run("Full trace with an overbought market", func(t *testing.T) {
		// Arrange
		snap := indicator.Snapshot{
			indicator.KeyRSI:          75.0,
			indicator.KeyCurrentPrice: 100.0,
		}
		sigs := ModelSignals{Action: ActionCodeSell, HasAction: true}

		// Act
		rec := Aggregate(market.ConditionBear, snap, sigs)

		// Assert
		assert.Equal(t,
			"Market condition: bear; RL model suggests: sell; RSI: 75.0; RSI overbought; Confidence: 0.70",
			rec.Reasoning,
		)
	})

	t.Run("Minimal trace without signals", func(t *testing.T) {
		// Act
		rec := Aggregate(market.ConditionSideways, nil, ModelSignals{})

		// Assert
		assert.Equal(t, "Market condition: sideways; Confidence: 0.50", rec.Reasoning)
	})

	t.Run("Oversold note appears below thirty", func(t *testing.T) {
		// Arrange
		snap := indicator.Snapshot{indicator.KeyRSI: 25.0}

		// Act
		rec := Aggregate(market.ConditionBull, snap, ModelSignals{})

		// Assert
		assert.Contains(t, rec.Reasoning, "RSI: 25.0")
		assert.Contains(t, rec.Reasoning, "RSI oversold")
	})
}
