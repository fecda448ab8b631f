package dispatch

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/sift/internal/chunk"
	"github.com/Aman-CERP/sift/internal/match"
	"github.com/Aman-CERP/sift/internal/scanner"
)

// collectSink records every emitted batch.
type collectSink struct {
	mu      sync.Mutex
	batches [][]match.Match
}

func (s *collectSink) EmitMatches(matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]match.Match, len(matches))
	copy(batch, matches)
	s.batches = append(s.batches, batch)
	return nil
}

func (s *collectSink) all() []match.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []match.Match
	for _, b := range s.batches {
		all = append(all, b...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Path != all[j].Path {
			return all[i].Path < all[j].Path
		}
		return all[i].Position < all[j].Position
	})
	return all
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func scanDir(t *testing.T, root string) <-chan scanner.ScanResult {
	t.Helper()
	files, err := scanner.Scan(context.Background(), root, scanner.ScanOptions{})
	require.NoError(t, err)
	return files
}

func TestRunFindsMatchesAcrossFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt":       "xxabcxx",
		"sub/b.txt":   "abcabc",
		"sub/c.empty": "",
	})

	sink := &collectSink{}
	d := New(sink, Options{Workers: 4})

	stats, err := d.Run(context.Background(), scanDir(t, dir), []byte("abc"))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Files)
	assert.Equal(t, int64(3), stats.Chunks)
	assert.Equal(t, int64(3), stats.Matches)
	assert.Zero(t, stats.FailedChunks)

	all := sink.all()
	require.Len(t, all, 3)
	assert.Equal(t, "xx", all[0].Prefix)
	assert.Equal(t, "xx", all[0].Suffix)
	assert.Equal(t, int64(0), all[1].Position)
	assert.Equal(t, int64(3), all[2].Position)
}

func TestRunChunkBoundaryExactlyOnce(t *testing.T) {
	// A needle starting exactly on the split offset between two chunks.
	content := strings.Repeat(".", 10) + "needle" + strings.Repeat(".", 10)
	dir := writeFiles(t, map[string]string{"big.txt": content})

	sink := &collectSink{}
	d := New(sink, Options{ChunkSize: 10, Border: 3, Workers: 4})

	stats, err := d.Run(context.Background(), scanDir(t, dir), []byte("needle"))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Chunks)
	all := sink.all()
	require.Len(t, all, 1)
	assert.Equal(t, int64(10), all[0].Position)
	assert.Equal(t, "...", all[0].Prefix)
	assert.Equal(t, "...", all[0].Suffix)
}

func TestRunEmptyNeedle(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "abc"})

	d := New(&collectSink{}, Options{})
	_, err := d.Run(context.Background(), scanDir(t, dir), nil)
	assert.Error(t, err)
}

func TestRunZeroMatchesSucceeds(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "hello"})

	sink := &collectSink{}
	stats, err := New(sink, Options{}).Run(context.Background(), scanDir(t, dir), []byte("zzz"))

	require.NoError(t, err)
	assert.Zero(t, stats.Matches)
	assert.Empty(t, sink.batches)
}

func TestRunSurfacesFetchFailures(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "abc", "b.txt": "abc"})

	// Remove one file between discovery and fetch.
	files, err := scanner.Scan(context.Background(), dir, scanner.ScanOptions{})
	require.NoError(t, err)

	// Buffer all results first so we can delete before dispatch runs.
	buffered := make(chan scanner.ScanResult, 8)
	for r := range files {
		buffered <- r
	}
	close(buffered)
	require.NoError(t, os.Remove(filepath.Join(dir, "b.txt")))

	sink := &collectSink{}
	stats, err := New(sink, Options{}).Run(context.Background(), buffered, []byte("abc"))

	assert.Error(t, err, "failed chunks must surface in the aggregate outcome")
	assert.Equal(t, int64(1), stats.FailedChunks)
	assert.Equal(t, int64(1), stats.Matches, "surviving file is still searched")
}

func TestRunManyChunksBoundedWorkers(t *testing.T) {
	// 40 chunks across a single file with 2 workers; completion proves the
	// semaphore does not deadlock and every chunk is processed.
	content := strings.Repeat("needle....", 40)
	dir := writeFiles(t, map[string]string{"big.txt": content})

	sink := &collectSink{}
	d := New(sink, Options{ChunkSize: 10, Border: 3, Workers: 2})

	stats, err := d.Run(context.Background(), scanDir(t, dir), []byte("needle"))
	require.NoError(t, err)

	assert.Equal(t, int64(40), stats.Chunks)
	assert.Equal(t, int64(40), stats.Matches)
}

func TestRunWithCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "xxabcxx"})

	cache, err := NewResultCache(16)
	require.NoError(t, err)

	sink := &collectSink{}
	d := New(sink, Options{}).WithCache(cache)

	// First pass populates the cache.
	stats, err := d.Run(context.Background(), scanDir(t, dir), []byte("abc"))
	require.NoError(t, err)
	assert.Zero(t, stats.CacheHits)
	assert.Equal(t, 1, cache.Len())

	// Second pass over the unchanged file is served from the cache.
	stats, err = d.Run(context.Background(), scanDir(t, dir), []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Zero(t, stats.Chunks)
	assert.Equal(t, int64(1), stats.Matches)
}

func TestResultCache(t *testing.T) {
	cache, err := NewResultCache(2)
	require.NoError(t, err)

	fileA := chunk.File{Path: "a", Size: 10}
	cache.Put(fileA, []match.Match{{Path: "a", Position: 1}})

	t.Run("hit on identical descriptor", func(t *testing.T) {
		got, ok := cache.Get(fileA)
		require.True(t, ok)
		assert.Equal(t, int64(1), got[0].Position)
	})

	t.Run("miss on changed size", func(t *testing.T) {
		_, ok := cache.Get(chunk.File{Path: "a", Size: 11})
		assert.False(t, ok)
	})

	t.Run("invalidate", func(t *testing.T) {
		cache.Invalidate("a")
		_, ok := cache.Get(fileA)
		assert.False(t, ok)
	})

	t.Run("lru eviction stays bounded", func(t *testing.T) {
		for _, p := range []string{"x", "y", "z"} {
			cache.Put(chunk.File{Path: p}, nil)
		}
		assert.Equal(t, 2, cache.Len())
	})
}

// failingSink rejects every batch, like a closed pipe would.
type failingSink struct{ err error }

func (s failingSink) EmitMatches([]match.Match) error { return s.err }

func TestRunCachedEmitFailureSurfaces(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "xxabcxx"})

	cache, err := NewResultCache(16)
	require.NoError(t, err)

	// First pass populates the cache through a working sink.
	_, err = New(&collectSink{}, Options{}).WithCache(cache).
		Run(context.Background(), scanDir(t, dir), []byte("abc"))
	require.NoError(t, err)

	// A cache hit whose emit fails is as lost to the user as a failed
	// chunk and must show up in the aggregate outcome.
	sink := failingSink{err: stderrors.New("pipe closed")}
	stats, err := New(sink, Options{}).WithCache(cache).
		Run(context.Background(), scanDir(t, dir), []byte("abc"))

	assert.Error(t, err)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.FailedChunks)
}

func TestResultCacheRelativeRootAbsoluteEviction(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("xxabcxx"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cache, err := NewResultCache(16)
	require.NoError(t, err)

	// A search rooted at a relative path discovers relative file names.
	_, err = New(&collectSink{}, Options{}).WithCache(cache).
		Run(context.Background(), scanDir(t, "."), []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	// File watchers report absolute names; eviction must still find the
	// entry or a replaced file with identical size and mtime would replay
	// stale results.
	cache.Invalidate(filepath.Join(dir, "a.txt"))
	assert.Zero(t, cache.Len())

	abs := chunk.File{Path: filepath.Join(dir, "a.txt"), Size: 7}
	cache.Put(abs, []match.Match{{Path: "a.txt", Position: 2}})
	_, ok := cache.Get(chunk.File{Path: "a.txt", Size: 7})
	assert.True(t, ok, "relative lookup hits an absolutely keyed entry")
}
