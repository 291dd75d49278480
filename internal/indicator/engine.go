package indicator

import "github.com/newthinker/gems/internal/core"

// Params configures indicator lookbacks
type Params struct {
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// DefaultParams returns the standard lookbacks (RSI 14, MACD 12/26/9)
func DefaultParams() Params {
	return Params{
		RSIPeriod:  DefaultRSIPeriod,
		MACDFast:   DefaultMACDFast,
		MACDSlow:   DefaultMACDSlow,
		MACDSignal: DefaultMACDSignal,
	}
}

// MinLength is the number of closes needed for every indicator to be defined
func (p Params) MinLength() int {
	n := p.RSIPeriod + 1
	if m := p.MACDSlow + p.MACDSignal - 1; m > n {
		n = m
	}
	return n
}

// Compute derives the indicator set for a close sequence. Indicators that
// need more data than is available come back as NaN.
func Compute(closes []float64, p Params) core.IndicatorSet {
	return core.IndicatorSet{
		LastClose: last(closes),
		RSI:       LastRSI(closes, p.RSIPeriod),
		MACDDiff:  LastMACDDiff(closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
		PctChange: PctChange(closes),
	}
}
