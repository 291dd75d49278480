// Package additive implements the fundamentals-weighted opportunity score.
package additive

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/newthinker/gems/internal/core"
	"github.com/newthinker/gems/internal/strategy"
)

// Points awarded per satisfied condition
const Points = 5

// Additive awards Points for each of: RSI in (rsiLow, rsiHigh), positive
// MACD histogram, market cap below maxMarketCap, positive quarterly
// earnings growth, analyst count below maxAnalysts.
type Additive struct {
	rsiLow       float64
	rsiHigh      float64
	maxMarketCap float64
	maxAnalysts  int
}

// New creates the policy with the standard thresholds
func New() *Additive {
	return &Additive{
		rsiLow:       30,
		rsiHigh:      50,
		maxMarketCap: 2e9,
		maxAnalysts:  5,
	}
}

func (a *Additive) Name() string { return "additive" }

func (a *Additive) Description() string {
	return fmt.Sprintf("Additive score (RSI %.0f-%.0f, cap < %.0f, analysts < %d)",
		a.rsiLow, a.rsiHigh, a.maxMarketCap, a.maxAnalysts)
}

func (a *Additive) Init(cfg strategy.Config) error {
	if v, ok := strategy.ParamFloat(cfg.Params, "rsi_low"); ok {
		a.rsiLow = v
	}
	if v, ok := strategy.ParamFloat(cfg.Params, "rsi_high"); ok {
		a.rsiHigh = v
	}
	if v, ok := strategy.ParamFloat(cfg.Params, "max_market_cap"); ok {
		a.maxMarketCap = v
	}
	if v, ok := strategy.ParamFloat(cfg.Params, "max_analysts"); ok {
		a.maxAnalysts = int(v)
	}

	if a.rsiLow >= a.rsiHigh {
		return fmt.Errorf("additive: rsi_low (%.1f) must be below rsi_high (%.1f)", a.rsiLow, a.rsiHigh)
	}
	return nil
}

func (a *Additive) NeedsFundamentals() bool { return true }

func (a *Additive) Assess(ind core.IndicatorSet, f core.Fundamentals) core.Assessment {
	score := 0
	if ind.RSI > a.rsiLow && ind.RSI < a.rsiHigh {
		score += Points
	}
	if ind.MACDDiff > 0 {
		score += Points
	}
	if f.MarketCap < a.maxMarketCap {
		score += Points
	}
	if f.EarningsQuarterlyGrowth > 0 {
		score += Points
	}
	if f.AnalystCount < a.maxAnalysts {
		score += Points
	}
	return core.Assessment{Score: score}
}

// Rank orders rows by descending score; ties keep input order.
func (a *Additive) Rank(rows []core.ReportRow) []core.ReportRow {
	ranked := make([]core.ReportRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Assessment.Score > ranked[j].Assessment.Score
	})
	return ranked
}

func (a *Additive) Columns() []string {
	cols := append([]string{}, strategy.BaseColumns...)
	return append(cols, "MarketCap", "AvgVolume", "EarningsGrowth", "AnalystCount", "Score")
}

func (a *Additive) Record(row core.ReportRow) []string {
	var f core.Fundamentals
	if row.Fundamentals != nil {
		f = *row.Fundamentals
	}
	rec := strategy.BaseRecord(row)
	return append(rec,
		strategy.FormatFloat(f.MarketCap, 0),
		strategy.FormatFloat(f.AverageVolume, 0),
		strategy.FormatFloat(f.EarningsQuarterlyGrowth, 4),
		strconv.Itoa(f.AnalystCount),
		strconv.Itoa(row.Assessment.Score),
	)
}
