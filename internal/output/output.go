// Package output serializes match results to the reporting destination.
//
// The Writer is the single place results pass through: one chunk's batch is
// printed under one lock acquisition, so a chunk's lines are contiguous and
// never interleaved with another chunk's, though no ordering is guaranteed
// between batches.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/sift/internal/match"
)

// Writer serializes match batches to a destination.
type Writer struct {
	mu       sync.Mutex
	out      io.Writer
	useColor bool
}

// New creates a Writer for an arbitrary destination. No color.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// NewStdout creates a Writer for os.Stdout, with the path segment colored
// when stdout is a terminal and NO_COLOR is unset.
func NewStdout() *Writer {
	return &Writer{
		out:      os.Stdout,
		useColor: os.Getenv("NO_COLOR") == "" && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// EmitMatches prints one chunk's matches as one atomic batch, one line per
// match: path(position):prefix...suffix
func (w *Writer) EmitMatches(matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, m := range matches {
		var err error
		if w.useColor {
			_, err = fmt.Fprintf(w.out, "\x1b[35m%s\x1b[0m(%d):%s...%s\n",
				m.Path, m.Position, m.Prefix, m.Suffix)
		} else {
			_, err = fmt.Fprintln(w.out, m.String())
		}
		if err != nil {
			return fmt.Errorf("write match: %w", err)
		}
	}
	return nil
}

// Status prints a non-result status line, used by watch mode.
// Write errors for console status output are intentionally ignored.
func (w *Writer) Status(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}
