package signal

import (
	"math"
	"sort"

	"trading-agent-go/internal/indicator"
)

// FeatureSize is the fixed width of the model input vector.
const FeatureSize = 50

// Features builds the model input vector: return statistics over the last
// 50 prices, normalized indicator readings, and volume statistics, zero
// padded to FeatureSize.
func Features(prices, volumes []float64, snap indicator.Snapshot) []float32 {
	features := make([]float64, 0, FeatureSize)

	window := prices
	if len(window) > 50 {
		window = window[len(window)-50:]
	}
	rets := stepReturns(window)
	features = append(features,
		mean(rets),
		popStd(rets),
		minOf(rets),
		maxOf(rets),
		percentile(rets, 25),
		percentile(rets, 75),
	)

	if len(snap) > 0 {
		price := snap.Value(indicator.KeyCurrentPrice, 0)
		sma20 := snap.Value(indicator.KeySMA20, 0)
		smaGap := 0.0
		if denom := snap.Value(indicator.KeySMA20, 1); denom != 0 {
			smaGap = (price - sma20) / denom
		}
		bbSpread := snap.Value(indicator.KeyBBUpper, 1) - snap.Value(indicator.KeyBBLower, 1)
		bbPos := 0.0
		if bbSpread != 0 {
			bbPos = (price - snap.Value(indicator.KeyBBMiddle, 0)) / bbSpread
		}
		features = append(features,
			snap.Value(indicator.KeyRSI, 50)/100,
			smaGap,
			snap.Value(indicator.KeyMACD, 0),
			bbPos,
		)
	}

	if len(volumes) >= 10 {
		tail := volumes[len(volumes)-10:]
		features = append(features, mean(tail), popStd(tail))
	}

	out := make([]float32, FeatureSize)
	for i, f := range features {
		if i >= FeatureSize {
			break
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out[i] = float32(f)
	}
	return out
}

func stepReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// popStd is the population standard deviation.
func popStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// percentile uses linear interpolation between closest ranks.
func percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
