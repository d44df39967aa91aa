package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimProviderWindow(t *testing.T) {
	// Arrange
	provider := NewSimProvider(100, 42)
	ctx := context.Background()

	// Act
	series, err := provider.Latest(ctx)

	// Assert: the window is full from the first call and every price is
	// strictly positive.
	assert.NoError(t, err)
	assert.Equal(t, 100, series.Len())
	assert.Len(t, series.Volumes, 100)
	for _, p := range series.Prices {
		assert.Greater(t, p, 0.0)
	}

	// The window never grows past its limit.
	for i := 0; i < 10; i++ {
		series, err = provider.Latest(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 100, series.Len())
	}
}

func TestSimProviderDeterminism(t *testing.T) {
	// Arrange
	ctx := context.Background()
	a := NewSimProvider(50, 7)
	b := NewSimProvider(50, 7)
	c := NewSimProvider(50, 8)

	// Act
	seriesA, _ := a.Latest(ctx)
	seriesB, _ := b.Latest(ctx)
	seriesC, _ := c.Latest(ctx)

	// Assert: the walk is a pure function of the seed.
	assert.Equal(t, seriesA.Prices, seriesB.Prices)
	assert.Equal(t, seriesA.Volumes, seriesB.Volumes)
	assert.NotEqual(t, seriesA.Prices, seriesC.Prices)
}

func TestSimProviderAdvances(t *testing.T) {
	// Arrange
	provider := NewSimProvider(50, 42)
	ctx := context.Background()

	// Act
	first, _ := provider.Latest(ctx)
	second, _ := provider.Latest(ctx)

	// Assert: each call appends a new step.
	assert.NotEqual(t, first.LastPrice(), second.LastPrice())
	// The window slides: the second series starts where the first's
	// second point was.
	assert.Equal(t, first.Prices[1], second.Prices[0])
}

func TestSimProviderReturnsCopies(t *testing.T) {
	// Arrange
	provider := NewSimProvider(50, 42)
	ctx := context.Background()

	// Act: corrupt the returned slice, then fetch again. The next window
	// starts at the corrupted point's position.
	series, _ := provider.Latest(ctx)
	expected := series.Prices[1]
	series.Prices[1] = -1

	next, _ := provider.Latest(ctx)

	// Assert: the provider's own window was untouched.
	assert.Equal(t, expected, next.Prices[0])
}
