package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}
}

func find(t *testing.T, reg *Registry, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestRegistry_RecordOutcome(t *testing.T) {
	reg := NewRegistry()

	reg.RecordOutcome("additive", true, "")
	reg.RecordOutcome("additive", false, "no_data")
	reg.RecordOutcome("additive", false, "no_data")

	mf := find(t, reg, "gems_tickers_total")
	if mf == nil {
		t.Fatal("expected gems_tickers_total metric")
	}

	var skipped float64
	for _, m := range mf.GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "reason" && label.GetValue() == "no_data" {
				skipped = m.GetCounter().GetValue()
			}
		}
	}
	if skipped != 2 {
		t.Errorf("expected 2 no_data skips, got %v", skipped)
	}
}

func TestRegistry_ObserveFetch(t *testing.T) {
	reg := NewRegistry()

	reg.ObserveFetch("history", 0.123)

	mf := find(t, reg, "gems_fetch_duration_seconds")
	if mf == nil {
		t.Fatal("expected gems_fetch_duration_seconds metric")
	}
	for _, m := range mf.GetMetric() {
		hist := m.GetHistogram()
		if hist.GetSampleCount() != 1 {
			t.Errorf("expected sample count 1, got %d", hist.GetSampleCount())
		}
		if hist.GetSampleSum() < 0.12 || hist.GetSampleSum() > 0.13 {
			t.Errorf("expected sample sum ~0.123, got %v", hist.GetSampleSum())
		}
	}
}

func TestRegistry_RunGauges(t *testing.T) {
	reg := NewRegistry()
	finished := time.Unix(1700000000, 0)

	reg.SetWatchlistRows("momentum", 4)
	reg.RecordRun(1500*time.Millisecond, finished)

	if mf := find(t, reg, "gems_watchlist_rows"); mf == nil || mf.GetMetric()[0].GetGauge().GetValue() != 4 {
		t.Error("expected watchlist rows gauge of 4")
	}
	if mf := find(t, reg, "gems_run_duration_seconds"); mf == nil || mf.GetMetric()[0].GetGauge().GetValue() != 1.5 {
		t.Error("expected run duration of 1.5s")
	}
	if mf := find(t, reg, "gems_last_run_timestamp_seconds"); mf == nil || mf.GetMetric()[0].GetGauge().GetValue() != 1700000000 {
		t.Error("expected last run timestamp")
	}
}

func TestRegistry_RecordNotification(t *testing.T) {
	reg := NewRegistry()
	reg.RecordNotification("email", nil)
	reg.RecordNotification("email", errors.New("smtp down"))

	mf := find(t, reg, "gems_notifications_total")
	if mf == nil || len(mf.GetMetric()) != 2 {
		t.Fatal("expected sent and failed series")
	}
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	reg.RecordOutcome("additive", true, "")
	reg.RecordWriteFailure()

	path := filepath.Join(t.TempDir(), "textfile", "gems.prom")
	if err := reg.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{"gems_tickers_total", "gems_report_write_failures_total 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
	if strings.Contains(text, "go_goroutines") {
		t.Error("runtime metrics should not be exported")
	}
}

// Ensure the registry implements prometheus.Gatherer interface
func TestRegistry_ImplementsGatherer(t *testing.T) {
	reg := NewRegistry()
	var _ prometheus.Gatherer = reg
}
