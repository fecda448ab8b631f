// Package watcher reports file changes under a root directory so watch mode
// can re-run a search when its inputs move.
//
// Raw fsnotify events are debounced: rapid event bursts for the same path
// collapse into one event per path per window, and the watcher emits batches
// rather than single events, so one save in an editor triggers one new pass.
package watcher

import "time"

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents one debounced file system event.
type FileEvent struct {
	// Path is the absolute path of the affected file or directory.
	Path string

	// Operation is the (coalesced) operation.
	Operation Operation

	// Timestamp is when the event was last seen.
	Timestamp time.Time
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 200ms.
	DebounceWindow time.Duration

	// EventBufferSize is the size of the batch channel buffer.
	// Default: 64.
	EventBufferSize int
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = 200 * time.Millisecond
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = 64
	}
	return o
}
