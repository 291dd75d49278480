package notifier

import (
	"context"
	"time"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Digest is the end-of-run payload delivered to every notifier. Records
// are the watchlist rows already formatted for the active policy.
type Digest struct {
	RunID       string
	Policy      string
	GeneratedAt time.Time
	Columns     []string
	Records     [][]string
	Skipped     int
	LatestPath  string
	CSV         []byte
}

// Rows returns each record keyed by column name.
func (d Digest) Rows() []map[string]string {
	rows := make([]map[string]string, 0, len(d.Records))
	for _, rec := range d.Records {
		row := make(map[string]string, len(d.Columns))
		for i, col := range d.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Notifier delivers a watchlist digest to an external channel
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Send delivers one digest
	Send(ctx context.Context, d Digest) error
}
