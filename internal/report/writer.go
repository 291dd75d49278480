package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/newthinker/gems/internal/core"
	"github.com/newthinker/gems/internal/storage/archive"
	"go.uber.org/zap"
)

// Result describes a completed write
type Result struct {
	DatedPath  string
	LatestPath string
	Data       []byte
}

// Writer persists a watchlist as a dated file and a latest file, then
// copies both to any configured mirrors.
type Writer struct {
	mirrors []archive.Storage
	logger  *zap.Logger
}

// NewWriter creates a report writer. Mirrors receive copies of both files
// under their base names.
func NewWriter(logger *zap.Logger, mirrors ...archive.Storage) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		mirrors: mirrors,
		logger:  logger,
	}
}

// Write encodes wl and writes it to both derived paths. Both files are
// attempted even when the first fails; each is replaced atomically, and
// a file that was written is left in place if the other fails. The date
// in the dated name is wl.GeneratedAt in local time.
func (w *Writer) Write(ctx context.Context, wl core.Watchlist, f Formatter, base string) (Result, error) {
	dated, latest := Paths(base, wl.GeneratedAt.Local())
	res := Result{DatedPath: dated, LatestPath: latest}

	data, err := Encode(wl, f)
	if err != nil {
		return res, core.WrapError(core.ErrWriteFailed, err)
	}
	res.Data = data

	local, err := archive.NewLocalFS(filepath.Dir(base))
	if err != nil {
		return res, core.WrapError(core.ErrWriteFailed, err)
	}

	var errs []error
	for _, p := range []string{dated, latest} {
		if err := local.Write(ctx, filepath.Base(p), data); err != nil {
			errs = append(errs, core.WrapError(core.ErrWriteFailed, fmt.Errorf("%s: %w", p, err)))
			continue
		}
		w.logger.Debug("report written", zap.String("path", p), zap.Int("bytes", len(data)))
	}
	if err := errors.Join(errs...); err != nil {
		return res, err
	}

	w.mirror(ctx, data, dated, latest)
	return res, nil
}

// mirror copies the report to each mirror. Failures are logged only.
func (w *Writer) mirror(ctx context.Context, data []byte, paths ...string) {
	for _, m := range w.mirrors {
		for _, p := range paths {
			key := filepath.Base(p)
			if err := m.Write(ctx, key, data); err != nil {
				w.logger.Warn("mirror write failed",
					zap.String("backend", m.Name()),
					zap.String("key", key),
					zap.Error(err),
				)
				continue
			}
			w.logger.Info("report mirrored", zap.String("backend", m.Name()), zap.String("key", key))
		}
	}
}
