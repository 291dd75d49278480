package report

import (
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the calendar date embedded in dated report names
const DateLayout = "2006-01-02"

// Paths derives the dated and latest report paths from a base filename.
// The extension of the last element, if any, is replaced; a base without
// an extension gets the suffix appended. The directory part is kept.
//
//	watchlist.csv -> watchlist_2024-03-01.csv, watchlist_latest.csv
//	out/list      -> out/list_2024-03-01.csv, out/list_latest.csv
func Paths(base string, date time.Time) (dated, latest string) {
	dir, file := filepath.Split(base)
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	if stem == "" {
		stem = file
	}

	dated = dir + stem + "_" + date.Format(DateLayout) + ".csv"
	latest = dir + stem + "_latest.csv"
	return dated, latest
}
