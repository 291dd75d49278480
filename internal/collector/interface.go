package collector

import (
	"context"
	"slices"

	"github.com/newthinker/gems/internal/core"
)

// Periods and intervals accepted by the history collectors
var (
	SupportedPeriods   = []string{"1mo", "3mo", "6mo", "1y", "2y", "5y"}
	SupportedIntervals = []string{"1d", "1wk"}
)

// ValidPeriod reports whether period is a supported history window
func ValidPeriod(period string) bool {
	return slices.Contains(SupportedPeriods, period)
}

// ValidInterval reports whether interval is a supported bar size
func ValidInterval(interval string) bool {
	return slices.Contains(SupportedIntervals, interval)
}

// Collector defines the interface for market data providers
type Collector interface {
	Name() string

	// FetchHistory returns the cleaned close series for a trailing window.
	// An empty series with a nil error means the provider had no bars.
	FetchHistory(ctx context.Context, ticker core.Ticker, period, interval string) (core.PriceSeries, error)

	// FetchFundamentals returns a snapshot with zero defaults for any
	// field the provider omits.
	FetchFundamentals(ctx context.Context, ticker core.Ticker) (core.Fundamentals, error)
}
