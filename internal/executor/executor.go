// Package executor submits orders to a trading venue. The paper executor
// simulates acceptance for dry runs; the Binance executor places real
// market orders.
package executor

import (
	"context"

	"trading-agent-go/internal/signal"
)

// Order is a market order request produced by the decision engine.
type Order struct {
	AgentID    string
	Symbol     string
	Action     signal.Action
	Size       float64
	Price      float64
	Confidence float64
	Reasoning  string
}

// Executor submits orders to a venue. A false accepted without error means
// the venue rejected the order; position state must not change in that case.
type Executor interface {
	Submit(ctx context.Context, order Order) (accepted bool, err error)
}
