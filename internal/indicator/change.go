package indicator

import "math"

// PctChange returns (last - first) / first * 100 over the whole slice.
// NaN when fewer than two prices or the first price is zero.
func PctChange(prices []float64) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return math.NaN()
	}
	first, lastPrice := prices[0], prices[len(prices)-1]
	return (lastPrice - first) / first * 100
}
