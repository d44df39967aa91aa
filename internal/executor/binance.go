package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trading-agent-go/internal/binance"
	"trading-agent-go/internal/signal"
)

// BinanceExecutor places real market orders through the REST client.
type BinanceExecutor struct {
	client binance.RestClientInterface
	logger *zap.Logger
}

var _ Executor = (*BinanceExecutor)(nil)

// NewBinanceExecutor creates an executor backed by the Binance REST API.
func NewBinanceExecutor(client binance.RestClientInterface, logger *zap.Logger) *BinanceExecutor {
	return &BinanceExecutor{client: client, logger: logger}
}

// Submit places a market order. Only buy and sell actions are valid.
func (e *BinanceExecutor) Submit(ctx context.Context, order Order) (bool, error) {
	var side string
	switch order.Action {
	case signal.ActionBuy:
		side = binance.OrderSideBuy
	case signal.ActionSell:
		side = binance.OrderSideSell
	default:
		return false, fmt.Errorf("unsupported order action %q", order.Action)
	}

	resp, err := e.client.CreateOrder(ctx, order.Symbol, side, order.Size)
	if err != nil {
		return false, fmt.Errorf("failed to submit %s order: %w", side, err)
	}
	if resp.Status == "REJECTED" || resp.Status == "EXPIRED" {
		e.logger.Warn("Order rejected by exchange",
			zap.String("agent_id", order.AgentID),
			zap.String("symbol", order.Symbol),
			zap.String("status", resp.Status),
		)
		return false, nil
	}

	return true, nil
}
