package executor

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"
)

// DefaultSuccessRate is the acceptance rate of the simulated venue.
const DefaultSuccessRate = 0.95

// PaperExecutor simulates a venue that accepts most orders. It never places
// real trades.
type PaperExecutor struct {
	successRate float64
	logger      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Executor = (*PaperExecutor)(nil)

// NewPaperExecutor creates a simulated venue with the given acceptance rate
// and a seeded random source.
func NewPaperExecutor(successRate float64, seed int64, logger *zap.Logger) *PaperExecutor {
	return &PaperExecutor{
		successRate: successRate,
		logger:      logger,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Submit draws an acceptance outcome. Rejections are reported without error.
func (e *PaperExecutor) Submit(ctx context.Context, order Order) (bool, error) {
	e.mu.Lock()
	accepted := e.rng.Float64() < e.successRate
	e.mu.Unlock()

	if !accepted {
		e.logger.Warn("Paper venue rejected order",
			zap.String("agent_id", order.AgentID),
			zap.String("action", string(order.Action)),
			zap.Float64("size", order.Size),
		)
		return false, nil
	}

	e.logger.Info("Paper venue accepted order",
		zap.String("agent_id", order.AgentID),
		zap.String("symbol", order.Symbol),
		zap.String("action", string(order.Action)),
		zap.Float64("size", order.Size),
		zap.Float64("price", order.Price),
	)
	return true, nil
}
