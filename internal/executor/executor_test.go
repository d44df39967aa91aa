package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"trading-agent-go/internal/binance"
	"trading-agent-go/internal/signal"
)

// MockRestClient is a mock implementation of the RestClientInterface.
type MockRestClient struct {
	mock.Mock
}

func (m *MockRestClient) GetServerTime(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRestClient) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]binance.Kline, error) {
	args := m.Called(ctx, symbol, interval, limit)
	return args.Get(0).([]binance.Kline), args.Error(1)
}

func (m *MockRestClient) CreateOrder(ctx context.Context, symbol, side string, quantity float64) (*binance.CreateOrderResponse, error) {
	args := m.Called(ctx, symbol, side, quantity)
	return args.Get(0).(*binance.CreateOrderResponse), args.Error(1)
}

func testOrder(action signal.Action) Order {
	return Order{
		AgentID:    "test-agent",
		Symbol:     "BTCUSDT",
		Action:     action,
		Size:       0.5,
		Price:      100.0,
		Confidence: 0.8,
		Reasoning:  "test",
	}
}

func TestPaperExecutorSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Always accepts at rate one", func(t *testing.T) {
		// Arrange
		exec := NewPaperExecutor(1.0, 42, zap.NewNop())

		// Act & Assert
		for i := 0; i < 100; i++ {
			accepted, err := exec.Submit(ctx, testOrder(signal.ActionBuy))
			assert.NoError(t, err)
			assert.True(t, accepted)
		}
	})

	t.Run("Always rejects at rate zero", func(t *testing.T) {
		// Arrange
		exec := NewPaperExecutor(0.0, 42, zap.NewNop())

		// Act & Assert
		for i := 0; i < 100; i++ {
			accepted, err := exec.Submit(ctx, testOrder(signal.ActionSell))
			assert.NoError(t, err)
			assert.False(t, accepted)
		}
	})

	t.Run("Same seed draws the same outcomes", func(t *testing.T) {
		// Arrange
		a := NewPaperExecutor(DefaultSuccessRate, 7, zap.NewNop())
		b := NewPaperExecutor(DefaultSuccessRate, 7, zap.NewNop())

		// Act & Assert
		for i := 0; i < 200; i++ {
			acceptedA, _ := a.Submit(ctx, testOrder(signal.ActionBuy))
			acceptedB, _ := b.Submit(ctx, testOrder(signal.ActionBuy))
			assert.Equal(t, acceptedA, acceptedB)
		}
	})
}

func TestBinanceExecutorSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("Buy maps to a BUY market order", func(t *testing.T) {
		// Arrange
		mockClient := new(MockRestClient)
		mockClient.On("CreateOrder", mock.Anything, "BTCUSDT", binance.OrderSideBuy, 0.5).
			Return(&binance.CreateOrderResponse{Status: "FILLED"}, nil)
		exec := NewBinanceExecutor(mockClient, zap.NewNop())

		// Act
		accepted, err := exec.Submit(ctx, testOrder(signal.ActionBuy))

		// Assert
		assert.NoError(t, err)
		assert.True(t, accepted)
		mockClient.AssertExpectations(t)
	})

	t.Run("Sell maps to a SELL market order", func(t *testing.T) {
		// Arrange
		mockClient := new(MockRestClient)
		mockClient.On("CreateOrder", mock.Anything, "BTCUSDT", binance.OrderSideSell, 0.5).
			Return(&binance.CreateOrderResponse{Status: "FILLED"}, nil)
		exec := NewBinanceExecutor(mockClient, zap.NewNop())

		// Act
		accepted, err := exec.Submit(ctx, testOrder(signal.ActionSell))

		// Assert
		assert.NoError(t, err)
		assert.True(t, accepted)
		mockClient.AssertExpectations(t)
	})

	t.Run("Exchange rejection is not an error", func(t *testing.T) {
		// Arrange
		mockClient := new(MockRestClient)
		mockClient.On("CreateOrder", mock.Anything, "BTCUSDT", binance.OrderSideBuy, 0.5).
			Return(&binance.CreateOrderResponse{Status: "REJECTED"}, nil)
		exec := NewBinanceExecutor(mockClient, zap.NewNop())

		// Act
		accepted, err := exec.Submit(ctx, testOrder(signal.ActionBuy))

		// Assert
		assert.NoError(t, err)
		assert.False(t, accepted)
	})

	t.Run("Transport errors propagate", func(t *testing.T) {
		// Arrange
		mockClient := new(MockRestClient)
		mockClient.On("CreateOrder", mock.Anything, "BTCUSDT", binance.OrderSideSell, 0.5).
			Return((*binance.CreateOrderResponse)(nil), errors.New("timeout"))
		exec := NewBinanceExecutor(mockClient, zap.NewNop())

		// Act
		accepted, err := exec.Submit(ctx, testOrder(signal.ActionSell))

		// Assert
		assert.Error(t, err)
		assert.False(t, accepted)
		assert.Contains(t, err.Error(), "failed to submit SELL order")
	})

	t.Run("Hold is not submittable", func(t *testing.T) {
		// Arrange
		exec := NewBinanceExecutor(new(MockRestClient), zap.NewNop())

		// Act
		accepted, err := exec.Submit(ctx, testOrder(signal.ActionHold))

		// Assert
		assert.Error(t, err)
		assert.False(t, accepted)
	})
}
