package momentum

import (
	"testing"

	"github.com/newthinker/gems/internal/core"
	"github.com/newthinker/gems/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMomentum_ImplementsPolicy(t *testing.T) {
	var _ strategy.Policy = (*Momentum)(nil)
}

func TestMomentum_Name(t *testing.T) {
	m := New()
	assert.Equal(t, "momentum", m.Name())
	assert.False(t, m.NeedsFundamentals())
}

func TestMomentum_Assess(t *testing.T) {
	tests := []struct {
		name string
		rsi  float64
		macd float64
		want core.Signal
	}{
		{"oversold and turning up", 35, 0.2, core.SignalBuy},
		{"rsi at threshold", 40, 0.2, core.SignalWatch},
		{"macd at zero", 35, 0, core.SignalWatch},
		{"macd negative", 20, -0.1, core.SignalWatch},
		{"overbought", 75, 1.5, core.SignalWatch},
		{"just below threshold", 39.9999, 1e-9, core.SignalBuy},
	}

	m := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Assess(core.IndicatorSet{RSI: tt.rsi, MACDDiff: tt.macd}, core.Fundamentals{})
			assert.Equal(t, tt.want, got.Signal)
			assert.Zero(t, got.Score)
		})
	}
}

func TestMomentum_Rank(t *testing.T) {
	rows := []core.ReportRow{
		{Ticker: "A", Assessment: core.Assessment{Signal: core.SignalWatch}, Indicators: core.IndicatorSet{PctChange: 1}},
		{Ticker: "B", Assessment: core.Assessment{Signal: core.SignalBuy}, Indicators: core.IndicatorSet{PctChange: 5}},
		{Ticker: "C", Assessment: core.Assessment{Signal: core.SignalBuy}, Indicators: core.IndicatorSet{PctChange: 3}},
	}

	ranked := New().Rank(rows)
	got := make([]string, len(ranked))
	for i, r := range ranked {
		got[i] = r.Ticker
	}
	assert.Equal(t, []string{"B", "C", "A"}, got)
}

func TestMomentum_RankWatchGroupByChange(t *testing.T) {
	rows := []core.ReportRow{
		{Ticker: "W1", Assessment: core.Assessment{Signal: core.SignalWatch}, Indicators: core.IndicatorSet{PctChange: -10}},
		{Ticker: "W2", Assessment: core.Assessment{Signal: core.SignalWatch}, Indicators: core.IndicatorSet{PctChange: 8}},
		{Ticker: "B1", Assessment: core.Assessment{Signal: core.SignalBuy}, Indicators: core.IndicatorSet{PctChange: -20}},
		{Ticker: "W3", Assessment: core.Assessment{Signal: core.SignalWatch}, Indicators: core.IndicatorSet{PctChange: 8}},
	}

	ranked := New().Rank(rows)
	got := make([]string, len(ranked))
	for i, r := range ranked {
		got[i] = r.Ticker
	}
	assert.Equal(t, []string{"B1", "W2", "W3", "W1"}, got)
}

func TestMomentum_Init(t *testing.T) {
	m := New()
	require.NoError(t, m.Init(strategy.Config{Params: map[string]any{"rsi_buy_below": 35}}))
	assert.Equal(t, core.SignalWatch, m.Assess(core.IndicatorSet{RSI: 37, MACDDiff: 1}, core.Fundamentals{}).Signal)

	assert.Error(t, New().Init(strategy.Config{Params: map[string]any{"rsi_buy_below": 0}}))
}

func TestMomentum_Record(t *testing.T) {
	m := New()
	row := core.ReportRow{
		Ticker:     "RBLX",
		Indicators: core.IndicatorSet{LastClose: 40, RSI: 38, MACDDiff: 0.5, PctChange: 12.5},
		Assessment: core.Assessment{Signal: core.SignalBuy},
	}

	assert.Equal(t, []string{"Ticker", "LastClose", "RSI", "MACD_Diff", "PctChange", "Signal"}, m.Columns())
	assert.Equal(t, []string{"RBLX", "40.0000", "38.0000", "0.5000", "12.50", "Buy"}, m.Record(row))
}
