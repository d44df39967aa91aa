package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"trading-agent-go/internal/signal"
)

func TestGovernorReview(t *testing.T) {
	governor := NewGovernor(0.05, zap.NewNop())
	lots := []Lot{
		{ID: "a", Size: 4.0, EntryPrice: 100},
		{ID: "b", Size: 2.0, EntryPrice: 105},
	}

	t.Run("Calm portfolio is left alone", func(t *testing.T) {
		// Act
		decisions := governor.Review(0.5, 0.02, lots, 100)

		// Assert
		assert.Empty(t, decisions)
	})

	t.Run("High risk halves every lot", func(t *testing.T) {
		// Act
		decisions := governor.Review(0.9, 0.02, lots, 100)

		// Assert
		assert.Len(t, decisions, 2)
		for i, dec := range decisions {
			assert.Equal(t, signal.ActionSell, dec.Action)
			assert.InDelta(t, lots[i].Size*0.5, dec.Size, 1e-9)
			assert.Equal(t, 1.0, dec.Confidence)
			assert.Equal(t, "Risk management: position reduction", dec.Reasoning)
			assert.Equal(t, lots[i].ID, dec.LotID)
		}
	})

	t.Run("Excessive drawdown closes everything", func(t *testing.T) {
		// Act
		decisions := governor.Review(0.5, 0.10, lots, 100)

		// Assert
		assert.Len(t, decisions, 2)
		for i, dec := range decisions {
			assert.Equal(t, signal.ActionSell, dec.Action)
			assert.InDelta(t, lots[i].Size, dec.Size, 1e-9)
			assert.Equal(t, "Risk management: close all positions", dec.Reasoning)
		}
	})

	t.Run("Both conditions fire together", func(t *testing.T) {
		// Act
		decisions := governor.Review(0.9, 0.10, lots, 100)

		// Assert: halving decisions first, then the full closes. The book
		// caps the combined oversell downstream.
		assert.Len(t, decisions, 4)
		assert.Equal(t, "Risk management: position reduction", decisions[0].Reasoning)
		assert.Equal(t, "Risk management: position reduction", decisions[1].Reasoning)
		assert.Equal(t, "Risk management: close all positions", decisions[2].Reasoning)
		assert.Equal(t, "Risk management: close all positions", decisions[3].Reasoning)
	})

	t.Run("Empty book needs no intervention", func(t *testing.T) {
		// Act
		decisions := governor.Review(0.9, 0.10, nil, 100)

		// Assert
		assert.Empty(t, decisions)
	})

	t.Run("Risk exactly at the threshold holds", func(t *testing.T) {
		// Act
		decisions := governor.Review(0.8, 0.05, lots, 100)

		// Assert
		assert.Empty(t, decisions)
	})
}
