package scanner

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Aman-CERP/sift/internal/chunk"
	"github.com/Aman-CERP/sift/internal/errors"
)

// Scan resolves root into the files to search.
//
// A regular file yields exactly itself. A directory is walked recursively and
// streams every regular file it contains. Anything else fails with
// ErrCodeInvalidPath before any work is dispatched. The returned channel is
// closed when discovery completes; per-file stat failures are streamed as
// ScanResult.Err rather than aborting the walk.
func Scan(ctx context.Context, root string, opts ScanOptions) (<-chan ScanResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidPath,
			"argument must be a directory or a file", err).
			WithDetail("path", root)
	}

	results := make(chan ScanResult)

	switch {
	case info.Mode().IsRegular():
		go func() {
			defer close(results)
			emit(ctx, results, ScanResult{File: chunk.File{Path: root, Size: info.Size(), ModTime: info.ModTime()}})
		}()
	case info.IsDir():
		go func() {
			defer close(results)
			walk(ctx, root, opts, results)
		}()
	default:
		return nil, errors.New(errors.ErrCodeInvalidPath,
			"argument must be a directory or a file", nil).
			WithDetail("path", root)
	}

	return results, nil
}

// walk traverses a directory tree and streams every regular file.
func walk(ctx context.Context, root string, opts ScanOptions, results chan<- ScanResult) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Report, then keep walking the rest of the tree.
			emit(ctx, results, ScanResult{Err: err})
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			emit(ctx, results, ScanResult{Err: err})
			return nil
		}
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if matchesAny(relPath, opts.ExcludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matchesAny(relPath, opts.ExcludePatterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			emit(ctx, results, ScanResult{Err: err})
			return nil
		}

		if opts.SkipBinary && isBinaryFile(path) {
			slog.Debug("skipping binary file", slog.String("path", path))
			return nil
		}

		emit(ctx, results, ScanResult{File: chunk.File{Path: path, Size: info.Size(), ModTime: info.ModTime()}})
		return nil
	})

	if err != nil && err != context.Canceled {
		emit(ctx, results, ScanResult{Err: err})
	}
}

// emit sends a result unless the context is cancelled first.
func emit(ctx context.Context, results chan<- ScanResult, r ScanResult) {
	select {
	case results <- r:
	case <-ctx.Done():
	}
}

// matchesAny checks relPath and its base name against the patterns.
func matchesAny(relPath string, patterns []string) bool {
	base := filepath.Base(relPath)
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, relPath); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// isBinaryFile checks if a file is binary by looking for null bytes.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return false
	}

	return bytes.Contains(buf[:n], []byte{0})
}
