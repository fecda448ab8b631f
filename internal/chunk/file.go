package chunk

import (
	"fmt"
	"os"
	"time"
)

// File is a file on disk, captured at discovery time.
// Immutable once constructed.
type File struct {
	// Path is the path used to open the file.
	Path string

	// Size is the byte length at the moment of construction.
	Size int64

	// ModTime is the modification time at the moment of construction.
	// Used with Size to detect stale cached results between watch passes.
	ModTime time.Time
}

// NewFile stats path and captures its size.
// Returns an error for a missing or unreadable path rather than an
// unspecified size.
func NewFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("stat %s: is a directory", path)
	}
	return File{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}
