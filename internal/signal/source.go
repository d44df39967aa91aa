// Package signal produces and aggregates trading signals: model inference,
// technical indicator votes, and market condition bias are fused into a
// single recommendation per cycle.
package signal

import (
	"context"

	"trading-agent-go/internal/indicator"
	"trading-agent-go/internal/market"
)

// Model action codes, matching the classifier head ordering.
const (
	ActionCodeSell = 0
	ActionCodeHold = 1
	ActionCodeBuy  = 2
)

// MinModelHistory is the number of price points the model input window
// covers. Shorter histories yield no model signals.
const MinModelHistory = 50

// ModelSignals carries model outputs into aggregation. The Has flags
// distinguish "model abstained" from zero values.
type ModelSignals struct {
	// Forecast is the predicted next price.
	Forecast    float64
	HasForecast bool
	// Action is one of the ActionCode constants.
	Action    int
	HasAction bool
}

// Source produces model signals from the market window. Load is called once
// before the first cycle and Save once at shutdown.
type Source interface {
	Load(ctx context.Context) error
	Signals(ctx context.Context, series market.Series, snap indicator.Snapshot) (ModelSignals, error)
	Save(ctx context.Context) error
	Close() error
}

// NopSource never emits signals. Used when model predictions are disabled or
// no model checkpoint is configured.
type NopSource struct{}

var _ Source = NopSource{}

func (NopSource) Load(context.Context) error { return nil }
func (NopSource) Save(context.Context) error { return nil }
func (NopSource) Close() error               { return nil }

func (NopSource) Signals(context.Context, market.Series, indicator.Snapshot) (ModelSignals, error) {
	return ModelSignals{}, nil
}
