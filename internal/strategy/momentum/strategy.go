// Package momentum implements the categorical Buy/Watch signal.
package momentum

import (
	"fmt"
	"sort"

	"github.com/newthinker/gems/internal/core"
	"github.com/newthinker/gems/internal/strategy"
)

// Momentum labels a ticker Buy when RSI is below the threshold and the
// MACD histogram is positive, Watch otherwise.
type Momentum struct {
	rsiBuyBelow float64
}

// New creates the policy with the standard RSI threshold of 40
func New() *Momentum {
	return &Momentum{rsiBuyBelow: 40}
}

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Description() string {
	return fmt.Sprintf("Momentum signal (Buy if RSI < %.0f and MACD diff > 0)", m.rsiBuyBelow)
}

func (m *Momentum) Init(cfg strategy.Config) error {
	if v, ok := strategy.ParamFloat(cfg.Params, "rsi_buy_below"); ok {
		m.rsiBuyBelow = v
	}
	if m.rsiBuyBelow <= 0 || m.rsiBuyBelow > 100 {
		return fmt.Errorf("momentum: rsi_buy_below must be in (0, 100], got %.1f", m.rsiBuyBelow)
	}
	return nil
}

func (m *Momentum) NeedsFundamentals() bool { return false }

func (m *Momentum) Assess(ind core.IndicatorSet, _ core.Fundamentals) core.Assessment {
	if ind.RSI < m.rsiBuyBelow && ind.MACDDiff > 0 {
		return core.Assessment{Signal: core.SignalBuy}
	}
	return core.Assessment{Signal: core.SignalWatch}
}

// Rank puts Buy rows before Watch rows, each group by descending percent
// change; ties keep input order.
func (m *Momentum) Rank(rows []core.ReportRow) []core.ReportRow {
	ranked := make([]core.ReportRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		bi := ranked[i].Assessment.Signal == core.SignalBuy
		bj := ranked[j].Assessment.Signal == core.SignalBuy
		if bi != bj {
			return bi
		}
		return ranked[i].Indicators.PctChange > ranked[j].Indicators.PctChange
	})
	return ranked
}

func (m *Momentum) Columns() []string {
	cols := append([]string{}, strategy.BaseColumns...)
	return append(cols, "Signal")
}

func (m *Momentum) Record(row core.ReportRow) []string {
	return append(strategy.BaseRecord(row), string(row.Assessment.Signal))
}
