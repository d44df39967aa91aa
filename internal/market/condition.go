package market

import "math"

// Condition labels the broad market regime for one symbol.
type Condition string

const (
	ConditionBull     Condition = "bull"
	ConditionBear     Condition = "bear"
	ConditionSideways Condition = "sideways"
	ConditionVolatile Condition = "volatile"
)

// tradingDaysPerYear annualizes the per-step return volatility.
const tradingDaysPerYear = 252

// Classify determines the market condition from a price history, oldest
// first. Fewer than 20 points always classifies as sideways. A directional
// regime requires both 20-step momentum beyond 5% and agreeing moving-average
// ordering; only then is volatility consulted.
func Classify(prices []float64) Condition {
	if len(prices) < 20 {
		return ConditionSideways
	}

	last := prices[len(prices)-1]
	sma20 := mean(prices[len(prices)-20:])
	window50 := 50
	if len(prices) < window50 {
		window50 = len(prices)
	}
	sma50 := mean(prices[len(prices)-window50:])

	volatility := sampleStd(returns(prices)) * math.Sqrt(tradingDaysPerYear)
	momentum := (last - prices[len(prices)-20]) / prices[len(prices)-20]

	switch {
	case momentum > 0.05 && last > sma20 && sma20 > sma50:
		return ConditionBull
	case momentum < -0.05 && last < sma20 && sma20 < sma50:
		return ConditionBear
	case volatility > 0.3:
		return ConditionVolatile
	default:
		return ConditionSideways
	}
}

// returns computes step-over-step fractional returns.
func returns(prices []float64) []float64 {
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

// sampleStd is the Bessel-corrected standard deviation.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
