package screener

import (
	"fmt"
	"io"
	"sync"
)

// Status writes the plain-text progress lines meant for a human reading
// the terminal. It is not a log and nothing parses it.
type Status struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStatus creates a status printer. A nil writer discards output.
func NewStatus(out io.Writer) *Status {
	if out == nil {
		out = io.Discard
	}
	return &Status{out: out}
}

func (s *Status) OK(format string, args ...any)    { s.line("[OK]", format, args...) }
func (s *Status) Warn(format string, args ...any)  { s.line("[WARN]", format, args...) }
func (s *Status) Error(format string, args ...any) { s.line("[ERROR]", format, args...) }

// Println writes an unprefixed line
func (s *Status) Println(format string, args ...any) { s.line("", format, args...) }

func (s *Status) line(prefix, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prefix != "" {
		fmt.Fprint(s.out, prefix, " ")
	}
	fmt.Fprintf(s.out, format, args...)
	fmt.Fprintln(s.out)
}
