package market

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"trading-agent-go/internal/binance"
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

func TestKlineProviderLatest(t *testing.T) {
	t.Run("Maps closes and volumes", func(t *testing.T) {
		// Arrange
		mockClient := new(MockRestClient)
		mockClient.On("GetKlines", mock.Anything, "BTCUSDT", "1m", 3).Return([]binance.Kline{
			{Close: 100.0, Volume: 10.0},
			{Close: 101.0, Volume: 11.0},
			{Close: 102.0, Volume: 12.0},
		}, nil)
		provider := NewKlineProvider(mockClient, "BTCUSDT", "1m", 3)

		// Act
		series, err := provider.Latest(context.Background())

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, []float64{100, 101, 102}, series.Prices)
		assert.Equal(t, []float64{10, 11, 12}, series.Volumes)
		assert.Equal(t, 102.0, series.LastPrice())
		mockClient.AssertExpectations(t)
	})

	t.Run("Propagates client errors", func(t *testing.T) {
		// Arrange
		mockClient := new(MockRestClient)
		mockClient.On("GetKlines", mock.Anything, "BTCUSDT", "1m", 3).
			Return([]binance.Kline(nil), errors.New("network down"))
		provider := NewKlineProvider(mockClient, "BTCUSDT", "1m", 3)

		// Act
		_, err := provider.Latest(context.Background())

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch klines")
	})

	t.Run("Rejects an empty response", func(t *testing.T) {
		// Arrange
		mockClient := new(MockRestClient)
		mockClient.On("GetKlines", mock.Anything, "BTCUSDT", "1m", 3).
			Return([]binance.Kline{}, nil)
		provider := NewKlineProvider(mockClient, "BTCUSDT", "1m", 3)

		// Act
		_, err := provider.Latest(context.Background())

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no klines returned")
	})
}
