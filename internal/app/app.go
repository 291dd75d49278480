package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/newthinker/gems/internal/collector"
	"github.com/newthinker/gems/internal/config"
	"github.com/newthinker/gems/internal/core"
	"github.com/newthinker/gems/internal/indicator"
	"github.com/newthinker/gems/internal/logger"
	"github.com/newthinker/gems/internal/metrics"
	"github.com/newthinker/gems/internal/notifier"
	"github.com/newthinker/gems/internal/report"
	"github.com/newthinker/gems/internal/screener"
	"github.com/newthinker/gems/internal/storage/archive"
	"github.com/newthinker/gems/internal/strategy"
	"go.uber.org/zap"
)

// Report describes a finished run
type Report struct {
	RunID       string
	Watchlist   core.Watchlist
	Outcomes    []core.Outcome
	Summary     screener.Summary
	Files       report.Result
	RowsWritten int
	Notified    map[string]error
}

// App is the main application orchestrator. One App performs one run.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	runID      string
	status     *screener.Status
	collectors *collector.Registry
	policies   *strategy.Registry
	notifiers  *notifier.Registry
	metrics    *metrics.Registry
	now        func() time.Time

	mu      sync.Mutex
	mirrors []archive.Storage
}

// New creates a new App instance. Status lines go to out.
func New(cfg *config.Config, log *zap.Logger, out io.Writer) *App {
	log, runID := logger.ForRun(log)

	return &App{
		cfg:        cfg,
		logger:     log,
		runID:      runID,
		status:     screener.NewStatus(out),
		collectors: collector.NewRegistry(),
		policies:   strategy.NewRegistry(),
		notifiers:  notifier.NewRegistry(),
		metrics:    metrics.NewRegistry(),
		now:        time.Now,
	}
}

// RunID returns the id attached to every log entry of this run
func (a *App) RunID() string { return a.runID }

// Metrics returns the run's metrics registry
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// RegisterCollector adds a market data provider
func (a *App) RegisterCollector(c collector.Collector) {
	a.collectors.Register(c)
}

// RegisterPolicy adds a selectable scoring policy
func (a *App) RegisterPolicy(p strategy.Policy) {
	a.policies.Register(p)
}

// RegisterNotifier adds a digest notifier
func (a *App) RegisterNotifier(n notifier.Notifier) error {
	return a.notifiers.Register(n)
}

// AddMirror adds a storage backend that receives copies of the report
func (a *App) AddMirror(s archive.Storage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mirrors = append(a.mirrors, s)
}

// SetClock overrides the time source
func (a *App) SetClock(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// GetStats returns the registered component counts
func (a *App) GetStats() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	return map[string]any{
		"run_id":     a.runID,
		"collectors": a.collectors.Names(),
		"policies":   a.policies.Names(),
		"notifiers":  a.notifiers.Len(),
		"mirrors":    len(a.mirrors),
	}
}

// Run screens the configured tickers, writes the report and delivers
// notifications. A cancelled ctx before the write returns ctx.Err() and
// leaves no files behind. A write failure is returned after the summary
// has been printed; the returned Report is still populated.
func (a *App) Run(ctx context.Context) (*Report, error) {
	start := a.now()

	source, err := a.collectors.MustGet(a.cfg.Fetch.Provider)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}
	policy, err := a.policies.Select(a.cfg.Policy, strategy.Config{Params: a.cfg.PolicyParams(a.cfg.Policy)})
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}

	a.logger.Info("run starting",
		zap.String("provider", source.Name()),
		zap.String("policy", policy.Name()),
		zap.Int("tickers", len(a.cfg.Tickers)),
		zap.String("period", a.cfg.Fetch.Period),
		zap.String("interval", a.cfg.Fetch.Interval),
	)

	s := screener.New(source, policy, screener.Options{
		Period:       a.cfg.Fetch.Period,
		Interval:     a.cfg.Fetch.Interval,
		FetchTimeout: a.cfg.Fetch.Timeout,
		Indicators:   indicator.DefaultParams(),
	},
		screener.WithStatus(a.status),
		screener.WithLogger(a.logger),
		screener.WithRecorder(a.metrics),
		screener.WithClock(a.now),
	)

	wl, outcomes, err := s.Run(ctx, a.cfg.Tickers)
	if err != nil {
		a.status.Println("Interrupted: no files written")
		a.logger.Warn("run interrupted", zap.Error(err))
		return nil, err
	}

	rep := &Report{
		RunID:     a.runID,
		Watchlist: wl,
		Outcomes:  outcomes,
		Summary:   screener.Summarize(outcomes),
	}

	a.mu.Lock()
	mirrors := append([]archive.Storage(nil), a.mirrors...)
	a.mu.Unlock()

	files, writeErr := report.NewWriter(a.logger, mirrors...).Write(ctx, wl, policy, a.cfg.Output.File)
	rep.Files = files
	a.metrics.SetWatchlistRows(policy.Name(), len(wl.Rows))

	if writeErr != nil {
		for i := 0; i < failedFiles(writeErr); i++ {
			a.metrics.RecordWriteFailure()
		}
		a.status.Error("report write failed: %v", writeErr)
		a.logger.Error("report write failed", zap.Error(writeErr))
	} else {
		rep.RowsWritten = len(wl.Rows)
		rep.Notified = a.notify(ctx, policy, rep)
	}

	a.status.Println("Summary: %d ok, %d skipped, %d rows written",
		rep.Summary.OK, rep.Summary.Skipped, rep.RowsWritten)
	if writeErr == nil {
		a.status.Println("  dated:  %s", files.DatedPath)
		a.status.Println("  latest: %s", files.LatestPath)
	}

	finished := a.now()
	a.metrics.RecordRun(finished.Sub(start), finished)
	if a.cfg.Metrics.Enabled {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Warn("metrics textfile write failed",
				zap.String("path", a.cfg.Metrics.Textfile),
				zap.Error(err),
			)
		}
	}

	a.logger.Info("run finished",
		zap.Int("ok", rep.Summary.OK),
		zap.Int("skipped", rep.Summary.Skipped),
		zap.Int("rows", rep.RowsWritten),
		zap.Duration("elapsed", finished.Sub(start)),
	)

	return rep, writeErr
}

// notify sends the digest to every notifier. Failures are reported but
// never fail the run.
func (a *App) notify(ctx context.Context, policy strategy.Policy, rep *Report) map[string]error {
	if a.notifiers.Len() == 0 {
		return nil
	}

	d := notifier.Digest{
		RunID:       a.runID,
		Policy:      policy.Name(),
		GeneratedAt: rep.Watchlist.GeneratedAt,
		Columns:     policy.Columns(),
		Skipped:     rep.Summary.Skipped,
		LatestPath:  rep.Files.LatestPath,
		CSV:         rep.Files.Data,
	}
	for _, row := range rep.Watchlist.Rows {
		d.Records = append(d.Records, policy.Record(row))
	}

	errs := a.notifiers.NotifyAll(ctx, d)
	for _, n := range a.notifiers.GetAll() {
		err := errs[n.Name()]
		a.metrics.RecordNotification(n.Name(), err)
		if err != nil {
			a.status.Warn("%s notification failed: %v", n.Name(), err)
			a.logger.Warn("notification failed", zap.String("notifier", n.Name()), zap.Error(err))
			continue
		}
		a.logger.Info("notification sent", zap.String("notifier", n.Name()))
	}
	return errs
}

// failedFiles counts the joined errors returned by the report writer
func failedFiles(err error) int {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return len(j.Unwrap())
	}
	return 1
}
