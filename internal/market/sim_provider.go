package market

import (
	"context"
	"math/rand"
	"sync"
)

const (
	simBasePrice  = 100.0
	simStepSigma  = 0.02
	simBaseVolume = 5000.0
)

// SimProvider generates a seeded random walk, for dry runs and tests. Each
// Latest call advances the walk by one step.
type SimProvider struct {
	mu      sync.Mutex
	rng     *rand.Rand
	limit   int
	prices  []float64
	volumes []float64
}

var _ Provider = (*SimProvider)(nil)

// NewSimProvider creates a simulator whose window is pre-filled with limit
// points so consumers never observe a cold start.
func NewSimProvider(limit int, seed int64) *SimProvider {
	p := &SimProvider{
		rng:   rand.New(rand.NewSource(seed)),
		limit: limit,
	}
	for i := 0; i < limit; i++ {
		p.step()
	}
	return p
}

// step appends one price/volume point and trims the window.
func (p *SimProvider) step() {
	last := simBasePrice
	if len(p.prices) > 0 {
		last = p.prices[len(p.prices)-1]
	}

	price := last * (1 + p.rng.NormFloat64()*simStepSigma)
	if price < 0.01 {
		price = 0.01
	}
	volume := simBaseVolume * (0.5 + p.rng.Float64())

	p.prices = append(p.prices, price)
	p.volumes = append(p.volumes, volume)
	if len(p.prices) > p.limit {
		p.prices = p.prices[len(p.prices)-p.limit:]
		p.volumes = p.volumes[len(p.volumes)-p.limit:]
	}
}

// Latest advances the walk and returns a copy of the window.
func (p *SimProvider) Latest(ctx context.Context) (Series, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.step()
	series := Series{
		Prices:  make([]float64, len(p.prices)),
		Volumes: make([]float64, len(p.volumes)),
	}
	copy(series.Prices, p.prices)
	copy(series.Volumes, p.volumes)
	return series, nil
}
