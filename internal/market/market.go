// Package market supplies rolling windows of recent price and volume data.
// Three providers exist: REST polling, websocket streaming with REST
// backfill, and a seeded simulator for dry runs and tests.
package market

import "context"

// Series is a window of recent market data for one symbol, oldest first.
// Prices and Volumes are index-aligned.
type Series struct {
	Prices  []float64
	Volumes []float64
}

// Len returns the number of data points in the window.
func (s Series) Len() int {
	return len(s.Prices)
}

// LastPrice returns the most recent price, or 0 for an empty series.
func (s Series) LastPrice() float64 {
	if len(s.Prices) == 0 {
		return 0
	}
	return s.Prices[len(s.Prices)-1]
}

// Provider yields the latest market window for one symbol.
type Provider interface {
	Latest(ctx context.Context) (Series, error)
}
