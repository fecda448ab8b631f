// Package scanner provides file discovery for sift.
// It resolves a root path into the stream of regular files to be searched.
package scanner

import "github.com/Aman-CERP/sift/internal/chunk"

// ScanResult is one discovered file or a non-fatal discovery error.
type ScanResult struct {
	File chunk.File
	Err  error
}

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// ExcludePatterns specifies glob patterns to skip (matched against
	// the path relative to the root). Empty means search everything.
	ExcludePatterns []string

	// SkipBinary skips files whose first bytes contain a NUL.
	SkipBinary bool

	// FollowSymlinks enables following symbolic links (default: false).
	FollowSymlinks bool
}
