package strategy

import "github.com/newthinker/gems/internal/core"

// Config holds policy configuration
type Config struct {
	Params map[string]any
}

// Policy maps a ticker's indicators (and optionally fundamentals) to an
// assessment and orders the finished rows. Implementations are pure.
type Policy interface {
	Name() string
	Description() string
	Init(cfg Config) error

	// NeedsFundamentals reports whether Assess reads the fundamentals
	// argument; when false the pipeline skips the fundamentals fetch.
	NeedsFundamentals() bool
	Assess(ind core.IndicatorSet, f core.Fundamentals) core.Assessment

	// Rank returns the rows in report order without modifying the input.
	Rank(rows []core.ReportRow) []core.ReportRow

	// Columns and Record describe the CSV layout for this policy.
	Columns() []string
	Record(row core.ReportRow) []string
}
