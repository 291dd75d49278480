package core

import (
	"math"
	"time"
)

// Ticker is an opaque symbol known to the data provider
type Ticker = string

// PricePoint is a single daily close
type PricePoint struct {
	Time  time.Time
	Close float64
}

// PriceSeries is a time-ordered close history for one ticker.
// Dates are unique and closes positive; the series may be empty.
type PriceSeries struct {
	Ticker   Ticker
	Interval string // "1d", "1wk"
	Points   []PricePoint
}

// IsEmpty reports whether the series has no points
func (s PriceSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Closes returns the close values in time order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// IndicatorSet holds the derived values for one ticker.
// NaN marks an indicator that could not be computed.
type IndicatorSet struct {
	LastClose float64
	RSI       float64
	MACDDiff  float64
	PctChange float64
}

// Valid reports whether every indicator is a finite number
func (s IndicatorSet) Valid() bool {
	for _, v := range []float64{s.LastClose, s.RSI, s.MACDDiff, s.PctChange} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Fundamentals is a point-in-time read from the provider.
// Every field defaults to zero when the provider omits it:
//   - MarketCap: 0 (counts as small-cap)
//   - AverageVolume: 0
//   - EarningsQuarterlyGrowth: 0 (not positive)
//   - AnalystCount: 0 (counts as low coverage)
type Fundamentals struct {
	MarketCap               float64
	AverageVolume           float64
	EarningsQuarterlyGrowth float64
	AnalystCount            int
}

// Signal is the categorical label assigned by the momentum policy
type Signal string

const (
	SignalBuy   Signal = "Buy"
	SignalWatch Signal = "Watch"
)

// Assessment is the output of a scoring policy for one ticker
type Assessment struct {
	Score  int
	Signal Signal
}

// ReportRow is one line of the watchlist
type ReportRow struct {
	Ticker       Ticker
	Indicators   IndicatorSet
	Fundamentals *Fundamentals // nil when the policy does not use them
	Assessment   Assessment
}

// SkipReason explains why a ticker was left out of the report
type SkipReason string

const (
	SkipFetchFailed      SkipReason = "fetch_failed"
	SkipNoData           SkipReason = "no_data"
	SkipInsufficientData SkipReason = "insufficient_data"
	SkipInvalidIndicator SkipReason = "invalid_indicator"
)

// Outcome is the per-ticker result of the screening pipeline.
// Exactly one of Row or Skip is set.
type Outcome struct {
	Ticker Ticker
	Row    *ReportRow
	Skip   SkipReason
	Err    error
}

// OK reports whether the ticker produced a report row
func (o Outcome) OK() bool {
	return o.Row != nil
}

// Succeeded builds a success outcome
func Succeeded(row ReportRow) Outcome {
	return Outcome{Ticker: row.Ticker, Row: &row}
}

// Skipped builds a skip outcome
func Skipped(ticker Ticker, reason SkipReason, err error) Outcome {
	return Outcome{Ticker: ticker, Skip: reason, Err: err}
}

// Watchlist is the ranked report produced once per run
type Watchlist struct {
	Policy      string
	Rows        []ReportRow
	GeneratedAt time.Time
}
