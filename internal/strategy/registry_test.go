package strategy

import (
	"errors"
	"testing"

	"github.com/newthinker/gems/internal/core"
)

type mockPolicy struct {
	name    string
	initErr error
	inited  bool
}

func (m *mockPolicy) Name() string            { return m.name }
func (m *mockPolicy) Description() string     { return "mock policy" }
func (m *mockPolicy) Init(cfg Config) error   { m.inited = true; return m.initErr }
func (m *mockPolicy) NeedsFundamentals() bool { return false }
func (m *mockPolicy) Assess(ind core.IndicatorSet, f core.Fundamentals) core.Assessment {
	return core.Assessment{}
}
func (m *mockPolicy) Rank(rows []core.ReportRow) []core.ReportRow { return rows }
func (m *mockPolicy) Columns() []string                           { return BaseColumns }
func (m *mockPolicy) Record(row core.ReportRow) []string          { return BaseRecord(row) }

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockPolicy{name: "mock"})

	p, ok := r.Get("mock")
	if !ok {
		t.Fatal("expected to find registered policy")
	}
	if p.Name() != "mock" {
		t.Errorf("expected name 'mock', got '%s'", p.Name())
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("expected not to find unregistered policy")
	}
}

func TestRegistry_Select(t *testing.T) {
	r := NewRegistry()
	m := &mockPolicy{name: "mock"}
	r.Register(m)

	if _, err := r.Select("mock", Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.inited {
		t.Error("Select should initialise the policy")
	}

	if _, err := r.Select("unknown", Config{}); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestRegistry_SelectInitError(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockPolicy{name: "broken", initErr: errors.New("bad params")})

	if _, err := r.Select("broken", Config{}); err == nil {
		t.Error("expected init error to propagate")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockPolicy{name: "momentum"})
	r.Register(&mockPolicy{name: "additive"})

	names := r.Names()
	if len(names) != 2 || names[0] != "additive" || names[1] != "momentum" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestBaseRecord(t *testing.T) {
	row := core.ReportRow{
		Ticker: "AFRM",
		Indicators: core.IndicatorSet{
			LastClose: 31.5,
			RSI:       44.123456,
			MACDDiff:  -0.01234,
			PctChange: 12.346,
		},
	}

	got := BaseRecord(row)
	want := []string{"AFRM", "31.5000", "44.1235", "-0.0123", "12.35"}
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParamFloat(t *testing.T) {
	params := map[string]any{"a": 1.5, "b": 2, "c": "x"}

	if v, ok := ParamFloat(params, "a"); !ok || v != 1.5 {
		t.Errorf("float param: got %v %v", v, ok)
	}
	if v, ok := ParamFloat(params, "b"); !ok || v != 2 {
		t.Errorf("int param: got %v %v", v, ok)
	}
	if _, ok := ParamFloat(params, "c"); ok {
		t.Error("string param should not parse")
	}
	if _, ok := ParamFloat(params, "missing"); ok {
		t.Error("missing param should not parse")
	}
}
