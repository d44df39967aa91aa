package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookOpen(t *testing.T) {
	// Arrange
	book := NewBook()

	// Act
	lot := book.Open(1.5, 100.0)

	// Assert
	assert.NotEmpty(t, lot.ID)
	assert.Equal(t, 1.5, lot.Size)
	assert.Equal(t, 100.0, lot.EntryPrice)
	assert.Equal(t, 1, book.Len())
	assert.InDelta(t, 1.5, book.TotalSize(), 1e-9)
}

func TestBookCloseFIFO(t *testing.T) {
	t.Run("Partial close spans two lots", func(t *testing.T) {
		// Arrange: 10 units at 100, then 5 units at 110.
		book := NewBook()
		first := book.Open(10, 100.0)
		second := book.Open(5, 110.0)

		// Act: selling 12 at 120 consumes the first lot and 2 of the second.
		closures, pnl := book.CloseFIFO(12, 120.0)

		// Assert: 10*(120-100) + 2*(120-110) = 220.
		assert.InDelta(t, 220.0, pnl, 1e-9)
		assert.Len(t, closures, 2)
		assert.Equal(t, first.ID, closures[0].LotID)
		assert.InDelta(t, 10.0, closures[0].Size, 1e-9)
		assert.InDelta(t, 200.0, closures[0].PnL, 1e-9)
		assert.Equal(t, second.ID, closures[1].LotID)
		assert.InDelta(t, 2.0, closures[1].Size, 1e-9)
		assert.InDelta(t, 20.0, closures[1].PnL, 1e-9)

		// The second lot survives with its remainder.
		assert.Equal(t, 1, book.Len())
		assert.InDelta(t, 3.0, book.TotalSize(), 1e-9)
		assert.Equal(t, second.ID, book.Lots()[0].ID)
		assert.InDelta(t, 220.0, book.RealizedPnL(), 1e-9)
		assert.Equal(t, 2, book.Wins())
	})

	t.Run("Close caps at available size", func(t *testing.T) {
		// Arrange
		book := NewBook()
		book.Open(2, 100.0)

		// Act
		closures, pnl := book.CloseFIFO(5, 110.0)

		// Assert: only the 2 held units close.
		assert.Len(t, closures, 1)
		assert.InDelta(t, 2.0, closures[0].Size, 1e-9)
		assert.InDelta(t, 20.0, pnl, 1e-9)
		assert.Equal(t, 0, book.Len())
	})

	t.Run("Losing close does not count as a win", func(t *testing.T) {
		// Arrange
		book := NewBook()
		book.Open(1, 100.0)

		// Act
		_, pnl := book.CloseFIFO(1, 90.0)

		// Assert
		assert.InDelta(t, -10.0, pnl, 1e-9)
		assert.Equal(t, 0, book.Wins())
		assert.InDelta(t, -10.0, book.RealizedPnL(), 1e-9)
	})

	t.Run("Close on empty book is a no-op", func(t *testing.T) {
		// Arrange
		book := NewBook()

		// Act
		closures, pnl := book.CloseFIFO(1, 100.0)

		// Assert
		assert.Empty(t, closures)
		assert.Zero(t, pnl)
	})

	t.Run("Float remainder below epsilon closes the lot fully", func(t *testing.T) {
		// Arrange: a close whose size differs from the lot by float noise.
		book := NewBook()
		book.Open(0.1+0.2, 100.0)

		// Act
		_, _ = book.CloseFIFO(0.3, 100.0)

		// Assert: no dust lot is left behind.
		assert.Equal(t, 0, book.Len())
	})
}

func TestBookCloseAll(t *testing.T) {
	// Arrange
	book := NewBook()
	book.Open(1, 100.0)
	book.Open(2, 105.0)

	// Act
	closures, pnl := book.CloseAll(110.0)

	// Assert: 1*10 + 2*5 = 20.
	assert.Len(t, closures, 2)
	assert.InDelta(t, 20.0, pnl, 1e-9)
	assert.Equal(t, 0, book.Len())
	assert.Zero(t, book.TotalSize())
}

func TestBookValuation(t *testing.T) {
	// Arrange
	book := NewBook()
	book.Open(2, 100.0)
	book.Open(1, 110.0)

	// Act & Assert
	assert.InDelta(t, 3*120.0, book.Exposure(120.0), 1e-9)
	// 2*(120-100) + 1*(120-110) = 50.
	assert.InDelta(t, 50.0, book.UnrealizedPnL(120.0), 1e-9)
}

func TestBookLotsReturnsCopies(t *testing.T) {
	// Arrange
	book := NewBook()
	book.Open(1, 100.0)

	// Act: mutating the returned slice must not touch the book.
	lots := book.Lots()
	lots[0].Size = 999

	// Assert
	assert.InDelta(t, 1.0, book.TotalSize(), 1e-9)
}
