package screener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newthinker/gems/internal/collector"
	"github.com/newthinker/gems/internal/core"
	"github.com/newthinker/gems/internal/indicator"
	"github.com/newthinker/gems/internal/strategy"
	"go.uber.org/zap"
)

// Options configures a screening run
type Options struct {
	Period       string
	Interval     string
	FetchTimeout time.Duration
	Indicators   indicator.Params
}

// DefaultOptions returns six months of daily bars with a 20s fetch bound
func DefaultOptions() Options {
	return Options{
		Period:       "6mo",
		Interval:     "1d",
		FetchTimeout: 20 * time.Second,
		Indicators:   indicator.DefaultParams(),
	}
}

// Recorder receives per-ticker measurements
type Recorder interface {
	RecordOutcome(policy string, ok bool, reason string)
	ObserveFetch(kind string, seconds float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordOutcome(string, bool, string) {}
func (nopRecorder) ObserveFetch(string, float64)       {}

// Screener runs the fetch, compute and assess steps for each ticker in
// order. Tickers share nothing but the result list.
type Screener struct {
	source  collector.Collector
	policy  strategy.Policy
	opts    Options
	status  *Status
	logger  *zap.Logger
	metrics Recorder
	now     func() time.Time
}

// Option configures the Screener
type Option func(*Screener)

// WithStatus sets the human status printer
func WithStatus(s *Status) Option {
	return func(sc *Screener) {
		if s != nil {
			sc.status = s
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(sc *Screener) {
		if l != nil {
			sc.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(sc *Screener) {
		if r != nil {
			sc.metrics = r
		}
	}
}

// WithClock overrides the time source used to stamp the watchlist
func WithClock(now func() time.Time) Option {
	return func(sc *Screener) {
		if now != nil {
			sc.now = now
		}
	}
}

// New creates a Screener
func New(source collector.Collector, policy strategy.Policy, opts Options, options ...Option) *Screener {
	s := &Screener{
		source:  source,
		policy:  policy,
		opts:    opts,
		status:  NewStatus(nil),
		logger:  zap.NewNop(),
		metrics: nopRecorder{},
		now:     time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Run screens every ticker in order and returns the ranked watchlist with
// the per-ticker outcomes. Ticker failures never abort the run; only
// context cancellation does.
func (s *Screener) Run(ctx context.Context, tickers []core.Ticker) (core.Watchlist, []core.Outcome, error) {
	outcomes := make([]core.Outcome, 0, len(tickers))
	rows := make([]core.ReportRow, 0, len(tickers))

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return core.Watchlist{}, outcomes, fmt.Errorf("screening interrupted before %s: %w", ticker, err)
		}

		out := s.Screen(ctx, ticker)
		outcomes = append(outcomes, out)
		s.metrics.RecordOutcome(s.policy.Name(), out.OK(), string(out.Skip))

		if out.OK() {
			rows = append(rows, *out.Row)
		}
	}

	wl := core.Watchlist{
		Policy:      s.policy.Name(),
		Rows:        s.policy.Rank(rows),
		GeneratedAt: s.now(),
	}
	return wl, outcomes, nil
}

// Screen runs the pipeline for one ticker and reports the result on the
// status printer.
func (s *Screener) Screen(ctx context.Context, ticker core.Ticker) core.Outcome {
	out := s.screen(ctx, ticker)
	log := s.logger.With(zap.String("ticker", ticker))

	switch {
	case out.OK():
		s.status.OK("%s %s", ticker, describe(*out.Row))
		log.Debug("ticker screened", zap.Int("score", out.Row.Assessment.Score), zap.String("signal", string(out.Row.Assessment.Signal)))
	case errors.Is(out.Err, core.ErrIndicatorFailed):
		s.status.Error("%s skipped (%s): %v", ticker, out.Skip, out.Err)
		log.Error("ticker skipped", zap.String("reason", string(out.Skip)), zap.Error(out.Err))
	default:
		s.status.Warn("%s skipped (%s): %v", ticker, out.Skip, out.Err)
		log.Warn("ticker skipped", zap.String("reason", string(out.Skip)), zap.Error(out.Err))
	}
	return out
}

func (s *Screener) screen(ctx context.Context, ticker core.Ticker) core.Outcome {
	series, err := s.fetchHistory(ctx, ticker)
	if err != nil {
		if errors.Is(err, core.ErrNoData) {
			return core.Skipped(ticker, core.SkipNoData, err)
		}
		return core.Skipped(ticker, core.SkipFetchFailed, core.WrapError(core.ErrFetchFailed, err))
	}
	if series.IsEmpty() {
		return core.Skipped(ticker, core.SkipNoData, core.ErrNoData)
	}

	closes := series.Closes()
	if need := s.opts.Indicators.MinLength(); len(closes) < need {
		return core.Skipped(ticker, core.SkipInsufficientData,
			core.WrapError(core.ErrInsufficientData, fmt.Errorf("%d closes, need %d", len(closes), need)))
	}

	ind, err := s.compute(closes)
	if err != nil {
		return core.Skipped(ticker, core.SkipInvalidIndicator, err)
	}
	if !ind.Valid() {
		return core.Skipped(ticker, core.SkipInvalidIndicator,
			core.WrapError(core.ErrIndicatorFailed, fmt.Errorf("undefined indicator: rsi=%v macd=%v change=%v", ind.RSI, ind.MACDDiff, ind.PctChange)))
	}

	row := core.ReportRow{Ticker: ticker, Indicators: ind}

	var f core.Fundamentals
	if s.policy.NeedsFundamentals() {
		f, err = s.fetchFundamentals(ctx, ticker)
		if err != nil {
			// missing fundamentals score as zero
			f = core.Fundamentals{}
			s.status.Warn("%s fundamentals unavailable, scoring with zero values: %v", ticker, err)
			s.logger.Warn("fundamentals unavailable", zap.String("ticker", ticker), zap.Error(err))
		}
		row.Fundamentals = &f
	}

	row.Assessment = s.policy.Assess(ind, f)
	return core.Succeeded(row)
}

func (s *Screener) fetchHistory(ctx context.Context, ticker core.Ticker) (core.PriceSeries, error) {
	ctx, cancel := s.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	series, err := s.source.FetchHistory(ctx, ticker, s.opts.Period, s.opts.Interval)
	s.metrics.ObserveFetch("history", time.Since(start).Seconds())
	return series, err
}

func (s *Screener) fetchFundamentals(ctx context.Context, ticker core.Ticker) (core.Fundamentals, error) {
	ctx, cancel := s.fetchContext(ctx)
	defer cancel()

	start := time.Now()
	f, err := s.source.FetchFundamentals(ctx, ticker)
	s.metrics.ObserveFetch("fundamentals", time.Since(start).Seconds())
	return f, err
}

func (s *Screener) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.FetchTimeout)
}

// compute turns a panic in indicator code into an error so a single bad
// series cannot stop the run.
func (s *Screener) compute(closes []float64) (ind core.IndicatorSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.WrapError(core.ErrIndicatorFailed, fmt.Errorf("panic: %v", r))
		}
	}()
	return computeIndicators(closes, s.opts.Indicators), nil
}

// computeIndicators is swapped in tests
var computeIndicators = indicator.Compute

func describe(row core.ReportRow) string {
	ind := row.Indicators
	base := fmt.Sprintf("close=%.2f rsi=%.1f macd=%.3f change=%.1f%%", ind.LastClose, ind.RSI, ind.MACDDiff, ind.PctChange)
	if row.Assessment.Signal != "" {
		return base + " signal=" + string(row.Assessment.Signal)
	}
	return fmt.Sprintf("%s score=%d", base, row.Assessment.Score)
}

// Summary counts run outcomes
type Summary struct {
	OK      int
	Skipped int
	Reasons map[core.SkipReason]int
}

// Summarize tallies outcomes by result and skip reason
func Summarize(outcomes []core.Outcome) Summary {
	sum := Summary{Reasons: make(map[core.SkipReason]int)}
	for _, o := range outcomes {
		if o.OK() {
			sum.OK++
			continue
		}
		sum.Skipped++
		sum.Reasons[o.Skip]++
	}
	return sum
}
