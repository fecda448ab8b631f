// Package match scans fetched chunks for occurrences of a byte string and
// records each occurrence with bounded context.
package match

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Aman-CERP/sift/internal/chunk"
)

// Match is one detected occurrence of the needle.
// Immutable once created.
type Match struct {
	// Path is the file the match occurred in.
	Path string

	// Position is the absolute byte offset of the match start.
	Position int64

	// Prefix holds up to border bytes immediately before the match,
	// escaped, clipped at the file or read-range boundary.
	Prefix string

	// Suffix holds up to border bytes immediately after the match,
	// escaped and clipped like Prefix.
	Suffix string
}

// String renders the match in the output line format.
func (m Match) String() string {
	return fmt.Sprintf("%s(%d):%s...%s", m.Path, m.Position, m.Prefix, m.Suffix)
}

// Find returns all occurrences of needle whose start offset lies in the
// chunk's search interval, ordered by position. The chunk must have been
// fetched. Needle must be non-empty.
//
// Because search intervals partition the file, a match start that falls on a
// chunk boundary is reported by exactly one chunk. The read interval extends
// at least border bytes past the search interval, so a needle no longer than
// border is always fully inside Contents; a longer needle whose start is near
// the search tail is compared against what the read range holds and its
// suffix context is clipped there.
func Find(c *chunk.Chunk, needle []byte, border int64) []Match {
	if len(needle) == 0 {
		return nil
	}

	var matches []Match
	contents := c.Contents

	// Start scanning at the search interval, not the read interval, so
	// occurrences in the leading context belt are left to the previous
	// chunk.
	local := c.ToLocal(c.Search.Begin)
	for {
		i := bytes.Index(contents[local:], needle)
		if i < 0 {
			break
		}
		local += int64(i)

		pos := c.Read.Begin + local
		if !c.Search.Contains(pos) {
			break
		}

		matches = append(matches, Match{
			Path:     c.File.Path,
			Position: pos,
			Prefix:   escape(prefix(contents, local, border)),
			Suffix:   escape(suffix(contents, local+int64(len(needle)), border)),
		})
		local++
	}

	return matches
}

// prefix returns up to border bytes ending at index, fewer near the start.
func prefix(contents []byte, index, border int64) []byte {
	from := max(index-border, 0)
	return contents[from:index]
}

// suffix returns up to border bytes starting at index, fewer near the end.
func suffix(contents []byte, index, border int64) []byte {
	if index > int64(len(contents)) {
		return nil
	}
	to := min(index+border, int64(len(contents)))
	return contents[index:to]
}

// escape replaces newline and tab with their two-character escape sequences
// so each match renders on a single output line. No other bytes change.
func escape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		switch c {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
