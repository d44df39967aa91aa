// Package indicator computes the technical indicator snapshot consumed by
// signal aggregation and position sizing.
package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
)

// Snapshot keys. Values carrying these names are surfaced verbatim in the
// status API, so they stay stable.
const (
	KeySMA10         = "sma_10"
	KeySMA20         = "sma_20"
	KeyEMA12         = "ema_12"
	KeyEMA26         = "ema_26"
	KeyMACD          = "macd"
	KeyMACDSignal    = "macd_signal"
	KeyMACDHistogram = "macd_histogram"
	KeyRSI           = "rsi"
	KeyBBUpper       = "bb_upper"
	KeyBBMiddle      = "bb_middle"
	KeyBBLower       = "bb_lower"
	KeyVolumeSMA     = "volume_sma"
	KeyVWAP          = "vwap"
	KeyCurrentPrice  = "current_price"
)

// MinHistory is the minimum number of price points Compute accepts.
const MinHistory = 20

// macdHistory is the history needed for a valid MACD signal line
// (26-period slow EMA plus the 9-period signal EMA minus the shared point).
const macdHistory = 34

// Snapshot maps indicator names to their latest values. Keys whose
// computation is not possible on the given history are absent, so callers
// voting on indicator pairs can abstain instead of comparing garbage.
type Snapshot map[string]float64

// Value returns the named indicator, or def when it is absent.
func (s Snapshot) Value(key string, def float64) float64 {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// Compute derives the full indicator snapshot from aligned price and volume
// histories, oldest first. It requires at least MinHistory prices; longer
// histories unlock the slower indicators (26-EMA, MACD).
func Compute(prices, volumes []float64) (Snapshot, error) {
	if len(prices) < MinHistory {
		return nil, fmt.Errorf("insufficient history: %d prices, need %d", len(prices), MinHistory)
	}

	snap := Snapshot{
		KeyCurrentPrice: prices[len(prices)-1],
	}

	snap.put(KeySMA10, last(talib.Sma(prices, 10)))
	snap.put(KeySMA20, last(talib.Sma(prices, 20)))
	snap.put(KeyEMA12, last(talib.Ema(prices, 12)))
	if len(prices) >= 26 {
		snap.put(KeyEMA26, last(talib.Ema(prices, 26)))
	}
	if len(prices) >= macdHistory {
		macd, signal, hist := talib.Macd(prices, 12, 26, 9)
		snap.put(KeyMACD, last(macd))
		snap.put(KeyMACDSignal, last(signal))
		snap.put(KeyMACDHistogram, last(hist))
	}
	snap.put(KeyRSI, last(talib.Rsi(prices, 14)))

	upper, middle, lower := talib.BBands(prices, 20, 2, 2, talib.SMA)
	snap.put(KeyBBUpper, last(upper))
	snap.put(KeyBBMiddle, last(middle))
	snap.put(KeyBBLower, last(lower))

	if len(volumes) >= 20 {
		snap.put(KeyVolumeSMA, last(talib.Sma(volumes, 20)))
	}
	if v, ok := vwap(prices, volumes, 14); ok {
		snap.put(KeyVWAP, v)
	}

	return snap, nil
}

// put stores a value, dropping NaN and infinities.
func (s Snapshot) put(key string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	s[key] = v
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// vwap is the volume-weighted average price over the trailing window. With
// close-only candles the typical price collapses to the close.
func vwap(prices, volumes []float64, window int) (float64, bool) {
	if len(prices) < window || len(volumes) < window {
		return 0, false
	}
	var pv, v float64
	for i := len(prices) - window; i < len(prices); i++ {
		pv += prices[i] * volumes[i]
		v += volumes[i]
	}
	if v == 0 {
		return 0, false
	}
	return pv / v, true
}
