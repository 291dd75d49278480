package strategy

import (
	"strconv"

	"github.com/newthinker/gems/internal/core"
)

// BaseColumns are the leading CSV columns shared by every policy
var BaseColumns = []string{"Ticker", "LastClose", "RSI", "MACD_Diff", "PctChange"}

// BaseRecord formats the shared leading fields of a row. Fixed precision
// keeps the output byte-identical for identical inputs.
func BaseRecord(row core.ReportRow) []string {
	ind := row.Indicators
	return []string{
		row.Ticker,
		FormatFloat(ind.LastClose, 4),
		FormatFloat(ind.RSI, 4),
		FormatFloat(ind.MACDDiff, 4),
		FormatFloat(ind.PctChange, 2),
	}
}

// FormatFloat renders v with a fixed number of decimals
func FormatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// ParamFloat reads a numeric param that may have been decoded as an int
// or a float.
func ParamFloat(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
