// Package chunk splits files into bounded, independently searchable segments.
//
// Each chunk carries two intervals: Search, the exact byte range the chunk is
// responsible for detecting match starts in, and Read, a wider range that
// supplies up to Border bytes of context on either side even when that
// context lives in a neighboring chunk. Search intervals across all chunks of
// one file partition [0, file.Size) exactly, so every match start belongs to
// exactly one chunk.
package chunk

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Aman-CERP/sift/internal/interval"
)

const (
	// DefaultChunkSize is the maximum number of bytes a single chunk's
	// search interval covers.
	DefaultChunkSize = 1000000

	// DefaultBorder is the number of context bytes shown before and after
	// a match.
	DefaultBorder = 3
)

// Chunk is the unit of parallel work: one file plus one search interval and
// the derived read interval.
type Chunk struct {
	File File

	// Search is the byte range this chunk detects match starts in.
	Search interval.Interval

	// Read is the byte range actually loaded into Contents. It extends
	// Border bytes beyond Search on both sides, clamped to the file.
	Read interval.Interval

	// Contents holds the bytes of Read. Nil until Fetch is called.
	// Owned exclusively by this chunk. Local index = absolute - Read.Begin.
	Contents []byte
}

// New creates a chunk for the given search interval, deriving the read
// interval from border.
func New(file File, search interval.Interval, border int64) *Chunk {
	return &Chunk{
		File:   file,
		Search: search,
		Read:   search.Extend(border).Clamp(0, file.Size),
	}
}

// Fetch loads the chunk's read range into Contents.
// Each call opens its own handle, so concurrent fetches of chunks from the
// same file do not race. Read is always a subrange of the file, so a short
// read indicates the file changed after discovery and is reported as an
// error.
func (c *Chunk) Fetch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(c.File.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.File.Path, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, c.Read.Size())
	if _, err := f.ReadAt(buf, c.Read.Begin); err != nil && err != io.EOF {
		return fmt.Errorf("read %s [%d,%d): %w", c.File.Path, c.Read.Begin, c.Read.End, err)
	} else if err == io.EOF {
		return fmt.Errorf("read %s [%d,%d): file truncated after discovery", c.File.Path, c.Read.Begin, c.Read.End)
	}

	c.Contents = buf
	return nil
}

// ToLocal converts an absolute file offset into an index into Contents.
func (c *Chunk) ToLocal(pos int64) int64 {
	return pos - c.Read.Begin
}
