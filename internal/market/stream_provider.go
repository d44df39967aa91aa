package market

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"trading-agent-go/internal/binance"
)

// StreamProvider keeps a rolling window fed by a kline websocket stream. The
// window is seeded once over REST so consumers see a full history before the
// first streamed candle lands.
type StreamProvider struct {
	client binance.RestClientInterface
	stream *binance.KlineStream
	symbol string
	// interval and limit describe the REST backfill request.
	interval string
	limit    int
	logger   *zap.Logger

	mu      sync.RWMutex
	prices  []float64
	volumes []float64
}

var _ Provider = (*StreamProvider)(nil)

// NewStreamProvider creates a streaming provider. Start must be called before
// Latest returns data.
func NewStreamProvider(client binance.RestClientInterface, stream *binance.KlineStream, symbol, interval string, limit int, logger *zap.Logger) *StreamProvider {
	return &StreamProvider{
		client:   client,
		stream:   stream,
		symbol:   symbol,
		interval: interval,
		limit:    limit,
		logger:   logger,
	}
}

// Start backfills the window over REST and launches the stream. It returns
// after the backfill; the stream keeps running until ctx is cancelled.
func (p *StreamProvider) Start(ctx context.Context) error {
	klines, err := p.client.GetKlines(ctx, p.symbol, p.interval, p.limit)
	if err != nil {
		return fmt.Errorf("failed to backfill %s window: %w", p.symbol, err)
	}

	p.mu.Lock()
	p.prices = make([]float64, 0, p.limit)
	p.volumes = make([]float64, 0, p.limit)
	for _, k := range klines {
		p.prices = append(p.prices, k.Close)
		p.volumes = append(p.volumes, k.Volume)
	}
	p.mu.Unlock()

	p.logger.Info("Backfilled market window",
		zap.String("symbol", p.symbol),
		zap.Int("candles", len(klines)),
	)

	go p.stream.Run(ctx)
	go p.consume()
	return nil
}

// consume appends streamed candles until the stream's channel closes.
func (p *StreamProvider) consume() {
	for k := range p.stream.Events() {
		p.mu.Lock()
		p.prices = append(p.prices, k.Close)
		p.volumes = append(p.volumes, k.Volume)
		if len(p.prices) > p.limit {
			p.prices = p.prices[len(p.prices)-p.limit:]
			p.volumes = p.volumes[len(p.volumes)-p.limit:]
		}
		p.mu.Unlock()
	}
}

// Latest returns a copy of the current window.
func (p *StreamProvider) Latest(ctx context.Context) (Series, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.prices) == 0 {
		return Series{}, fmt.Errorf("stream window for %s is empty, not started or backfill failed", p.symbol)
	}

	series := Series{
		Prices:  make([]float64, len(p.prices)),
		Volumes: make([]float64, len(p.volumes)),
	}
	copy(series.Prices, p.prices)
	copy(series.Volumes, p.volumes)
	return series, nil
}
