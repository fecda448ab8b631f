package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/Aman-CERP/sift/internal/match"
)

// jsonSink emits matches as JSON lines, one object per match. Like the text
// writer, one chunk's batch is written under one lock acquisition.
type jsonSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newJSONSink(out io.Writer) *jsonSink {
	return &jsonSink{enc: json.NewEncoder(out)}
}

type jsonMatch struct {
	Path     string `json:"path"`
	Position int64  `json:"position"`
	Prefix   string `json:"prefix"`
	Suffix   string `json:"suffix"`
}

// EmitMatches implements dispatch.Sink.
func (s *jsonSink) EmitMatches(matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range matches {
		jm := jsonMatch{Path: m.Path, Position: m.Position, Prefix: m.Prefix, Suffix: m.Suffix}
		if err := s.enc.Encode(jm); err != nil {
			return fmt.Errorf("encode match: %w", err)
		}
	}
	return nil
}
