package collector

import (
	"math"
	"sort"

	"github.com/newthinker/gems/internal/core"
)

// CleanSeries drops non-finite and non-positive closes, sorts by time and
// keeps one point per calendar date (the latest one seen for that date).
func CleanSeries(points []core.PricePoint) []core.PricePoint {
	kept := make([]core.PricePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			continue
		}
		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Time.Before(kept[j].Time) })

	out := kept[:0]
	for _, p := range kept {
		if n := len(out); n > 0 && sameDay(out[n-1], p) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func sameDay(a, b core.PricePoint) bool {
	ay, am, ad := a.Time.Date()
	by, bm, bd := b.Time.Date()
	return ay == by && am == bm && ad == bd
}
