package market

import (
	"context"
	"fmt"

	"trading-agent-go/internal/binance"
)

// KlineProvider fetches the window from the Binance REST klines endpoint on
// every call.
type KlineProvider struct {
	client   binance.RestClientInterface
	symbol   string
	interval string
	limit    int
}

var _ Provider = (*KlineProvider)(nil)

// NewKlineProvider creates a REST-polling provider for one symbol.
func NewKlineProvider(client binance.RestClientInterface, symbol, interval string, limit int) *KlineProvider {
	return &KlineProvider{
		client:   client,
		symbol:   symbol,
		interval: interval,
		limit:    limit,
	}
}

// Latest fetches the most recent candles and returns their closes and volumes.
func (p *KlineProvider) Latest(ctx context.Context) (Series, error) {
	klines, err := p.client.GetKlines(ctx, p.symbol, p.interval, p.limit)
	if err != nil {
		return Series{}, fmt.Errorf("failed to fetch klines: %w", err)
	}
	if len(klines) == 0 {
		return Series{}, fmt.Errorf("no klines returned for %s", p.symbol)
	}

	series := Series{
		Prices:  make([]float64, len(klines)),
		Volumes: make([]float64, len(klines)),
	}
	for i, k := range klines {
		series.Prices[i] = k.Close
		series.Volumes[i] = k.Volume
	}
	return series, nil
}
