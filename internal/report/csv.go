package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/newthinker/gems/internal/core"
)

// Formatter describes the CSV layout of a watchlist
type Formatter interface {
	Columns() []string
	Record(row core.ReportRow) []string
}

// Encode renders the watchlist as CSV: header row, one record per row in
// watchlist order, no index column.
func Encode(wl core.Watchlist, f Formatter) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	cols := f.Columns()
	if err := w.Write(cols); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for _, row := range wl.Rows {
		rec := f.Record(row)
		if len(rec) != len(cols) {
			return nil, fmt.Errorf("record for %s has %d fields, header has %d", row.Ticker, len(rec), len(cols))
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("writing %s: %w", row.Ticker, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
