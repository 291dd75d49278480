package indicator

// Standard MACD spans
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACDResult holds aligned MACD series. All slices have the same length
// and end at the last input price.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates the MACD line (fast EMA - slow EMA), its signal line
// (EMA of the MACD line) and the histogram (MACD - signal).
// Needs at least slow + signal - 1 prices; returns empty slices otherwise.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	if fast <= 0 || slow <= fast || signal <= 0 || len(prices) < slow+signal-1 {
		return MACDResult{}
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	// fastEMA starts earlier; drop the head so both end on the same bar
	offset := len(fastEMA) - len(slowEMA)
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalLine := EMA(line, signal)
	line = line[len(line)-len(signalLine):]

	hist := make([]float64, len(signalLine))
	for i := range signalLine {
		hist[i] = line[i] - signalLine[i]
	}

	return MACDResult{
		MACD:      line,
		Signal:    signalLine,
		Histogram: hist,
	}
}

// LastMACDDiff returns the most recent histogram value, or NaN when there
// is not enough data.
func LastMACDDiff(prices []float64, fast, slow, signal int) float64 {
	return last(MACD(prices, fast, slow, signal).Histogram)
}
