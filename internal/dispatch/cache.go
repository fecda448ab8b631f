package dispatch

import (
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/sift/internal/chunk"
	"github.com/Aman-CERP/sift/internal/match"
)

// DefaultCacheSize bounds the number of files the result cache remembers.
const DefaultCacheSize = 4096

// ResultCache remembers per-file match lists between watch passes so files
// that have not changed are not re-read. Entries are validated by size and
// modification time and evicted LRU to keep memory bounded in long-running
// watch sessions. Safe for concurrent use.
type ResultCache struct {
	entries *lru.Cache[string, cacheEntry]
}

type cacheEntry struct {
	size    int64
	modTime time.Time
	matches []match.Match
}

// NewResultCache creates a cache holding up to size files.
func NewResultCache(size int) (*ResultCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &ResultCache{entries: entries}, nil
}

// cacheKey normalizes path so entries stored under a relative search root
// are still hit and evicted by absolute names, which is what file watchers
// report.
func cacheKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// Get returns the cached matches for file if its size and mtime still agree
// with the cached pass.
func (rc *ResultCache) Get(file chunk.File) ([]match.Match, bool) {
	e, ok := rc.entries.Get(cacheKey(file.Path))
	if !ok || e.size != file.Size || !e.modTime.Equal(file.ModTime) {
		return nil, false
	}
	return e.matches, true
}

// Put stores the complete match list for file.
func (rc *ResultCache) Put(file chunk.File, matches []match.Match) {
	rc.entries.Add(cacheKey(file.Path), cacheEntry{
		size:    file.Size,
		modTime: file.ModTime,
		matches: matches,
	})
}

// Invalidate drops the entry for path, if any.
func (rc *ResultCache) Invalidate(path string) {
	rc.entries.Remove(cacheKey(path))
}

// Purge drops all entries.
func (rc *ResultCache) Purge() {
	rc.entries.Purge()
}

// Len returns the number of cached files.
func (rc *ResultCache) Len() int {
	return rc.entries.Len()
}
