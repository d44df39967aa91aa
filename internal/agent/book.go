package agent

import (
	"time"

	"github.com/google/uuid"
)

// sizeEpsilon absorbs float drift in lot arithmetic so a close-all leaves
// the book genuinely empty.
const sizeEpsilon = 1e-9

// Lot is one open position entry.
type Lot struct {
	ID         string    `json:"id"`
	Size       float64   `json:"size"`
	EntryPrice float64   `json:"entry_price"`
	OpenedAt   time.Time `json:"opened_at"`
}

// Closure records one FIFO slice taken from a lot during a sell.
type Closure struct {
	LotID      string
	Size       float64
	EntryPrice float64
	PnL        float64
}

// Book holds the open position lots in entry order and accounts for
// realized PnL. It is not safe for concurrent use; the trading loop owns it
// and readers get copies via the agent's status snapshot.
type Book struct {
	lots     []*Lot
	realized float64
	wins     int
}

// NewBook creates an empty position book.
func NewBook() *Book {
	return &Book{}
}

// Open appends a new lot and returns it.
func (b *Book) Open(size, price float64) Lot {
	lot := &Lot{
		ID:         uuid.NewString(),
		Size:       size,
		EntryPrice: price,
		OpenedAt:   time.Now(),
	}
	b.lots = append(b.lots, lot)
	return *lot
}

// CloseFIFO sells size at price against the oldest lots first. Each slice
// realizes (price - entry) * sliceSize; profitable slices count as wins.
// Requests beyond the held size close what is available. It returns the
// slices taken and the total PnL realized by this call.
func (b *Book) CloseFIFO(size, price float64) ([]Closure, float64) {
	remaining := size
	var closed []Closure
	var realized float64

	kept := b.lots[:0]
	for _, lot := range b.lots {
		if remaining <= sizeEpsilon {
			kept = append(kept, lot)
			continue
		}

		slice := lot.Size
		if slice > remaining+sizeEpsilon {
			slice = remaining
		}

		pnl := (price - lot.EntryPrice) * slice
		realized += pnl
		if pnl > 0 {
			b.wins++
		}
		closed = append(closed, Closure{
			LotID:      lot.ID,
			Size:       slice,
			EntryPrice: lot.EntryPrice,
			PnL:        pnl,
		})
		remaining -= slice

		if lot.Size-slice > sizeEpsilon {
			lot.Size -= slice
			kept = append(kept, lot)
		}
	}
	b.lots = kept
	b.realized += realized

	return closed, realized
}

// CloseAll flattens the book at price.
func (b *Book) CloseAll(price float64) ([]Closure, float64) {
	return b.CloseFIFO(b.TotalSize(), price)
}

// Len returns the number of open lots.
func (b *Book) Len() int {
	return len(b.lots)
}

// TotalSize returns the summed size of all open lots.
func (b *Book) TotalSize() float64 {
	var total float64
	for _, lot := range b.lots {
		total += lot.Size
	}
	return total
}

// Lots returns a copy of the open lots in entry order.
func (b *Book) Lots() []Lot {
	out := make([]Lot, len(b.lots))
	for i, lot := range b.lots {
		out[i] = *lot
	}
	return out
}

// RealizedPnL returns the cumulative realized PnL.
func (b *Book) RealizedPnL() float64 {
	return b.realized
}

// Wins returns the number of profitable closed slices.
func (b *Book) Wins() int {
	return b.wins
}

// UnrealizedPnL marks the open lots to the given price.
func (b *Book) UnrealizedPnL(price float64) float64 {
	var pnl float64
	for _, lot := range b.lots {
		pnl += (price - lot.EntryPrice) * lot.Size
	}
	return pnl
}

// Exposure returns the notional value of the open lots at the given price.
func (b *Book) Exposure(price float64) float64 {
	return b.TotalSize() * price
}
