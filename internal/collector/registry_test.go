package collector

import (
	"context"
	"testing"

	"github.com/newthinker/gems/internal/core"
)

// mockCollector for testing
type mockCollector struct {
	name string
}

func (m *mockCollector) Name() string { return m.name }
func (m *mockCollector) FetchHistory(ctx context.Context, ticker core.Ticker, period, interval string) (core.PriceSeries, error) {
	return core.PriceSeries{Ticker: ticker}, nil
}
func (m *mockCollector) FetchFundamentals(ctx context.Context, ticker core.Ticker) (core.Fundamentals, error) {
	return core.Fundamentals{}, nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	mock := &mockCollector{name: "mock"}
	r.Register(mock)

	c, ok := r.Get("mock")
	if !ok {
		t.Fatal("expected to find registered collector")
	}

	if c.Name() != "mock" {
		t.Errorf("expected name 'mock', got '%s'", c.Name())
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("nonexistent")
	if ok {
		t.Error("expected not to find nonexistent collector")
	}
}

func TestRegistry_MustGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockCollector{name: "yahoo"})
	r.Register(&mockCollector{name: "alpha"})

	if _, err := r.MustGet("yahoo"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := r.MustGet("missing"); err == nil {
		t.Error("expected error for unknown provider")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "yahoo" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestValidPeriodAndInterval(t *testing.T) {
	if !ValidPeriod("6mo") || ValidPeriod("7mo") {
		t.Error("period validation mismatch")
	}
	if !ValidInterval("1d") || ValidInterval("1m") {
		t.Error("interval validation mismatch")
	}
}
