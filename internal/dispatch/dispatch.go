// Package dispatch fans a stream of files out into per-chunk search jobs and
// aggregates their outcomes.
//
// One job per chunk runs fetch-then-match through a bounded worker pool, so
// the number of open file handles and in-flight buffers never exceeds the
// configured worker count. Job failures are captured and reported, never
// silently dropped: the run continues with the remaining chunks and the
// aggregate outcome is returned alongside run statistics.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/sift/internal/chunk"
	"github.com/Aman-CERP/sift/internal/errors"
	"github.com/Aman-CERP/sift/internal/match"
	"github.com/Aman-CERP/sift/internal/scanner"
)

// Sink receives one chunk's matches as an atomic batch.
// Implementations must be safe for concurrent use.
type Sink interface {
	EmitMatches([]match.Match) error
}

// Options configures a dispatcher run.
type Options struct {
	// ChunkSize is the maximum search interval size per chunk.
	ChunkSize int64

	// Border is the context width around each match.
	Border int64

	// Workers bounds concurrent chunk jobs. 0 means runtime.NumCPU().
	Workers int
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = chunk.DefaultChunkSize
	}
	if o.Border <= 0 {
		o.Border = chunk.DefaultBorder
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

// Stats summarizes one dispatcher run.
type Stats struct {
	// Files is the number of files discovered.
	Files int64
	// Chunks is the number of chunk jobs dispatched.
	Chunks int64
	// Matches is the total number of matches emitted.
	Matches int64
	// FailedChunks counts chunk jobs that ended in an error.
	FailedChunks int64
	// ScanErrors counts discovery faults reported by the scanner.
	ScanErrors int64
	// CacheHits counts files served from the result cache.
	CacheHits int64
}

// Dispatcher runs the fetch-match-report pipeline.
type Dispatcher struct {
	sink  Sink
	opts  Options
	cache *ResultCache // optional, used by watch mode
}

// New creates a Dispatcher emitting to sink.
func New(sink Sink, opts Options) *Dispatcher {
	return &Dispatcher{sink: sink, opts: opts.WithDefaults()}
}

// WithCache attaches a per-file result cache. Files whose size and mtime are
// unchanged since the cached pass are served without touching the disk.
func (d *Dispatcher) WithCache(cache *ResultCache) *Dispatcher {
	d.cache = cache
	return d
}

// fileProgress tracks the chunks of one file so its matches can be cached
// once the last chunk completes cleanly.
type fileProgress struct {
	mu        sync.Mutex
	remaining int
	failed    bool
	matches   []match.Match
}

// Run consumes discovered files, searches every chunk for needle and reports
// matches to the sink. It blocks until all chunk jobs have completed. The
// returned stats are complete even when err is non-nil; err aggregates
// per-chunk and per-file faults without aborting the remaining work.
func (d *Dispatcher) Run(ctx context.Context, files <-chan scanner.ScanResult, needle []byte) (Stats, error) {
	if len(needle) == 0 {
		return Stats{}, errors.UsageError("search string must not be empty")
	}

	var stats Stats

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, d.opts.Workers)

	for res := range files {
		if res.Err != nil {
			atomic.AddInt64(&stats.ScanErrors, 1)
			slog.Warn("discovery fault", errors.LogAttrs(errors.Wrap(errors.ErrCodeScan, res.Err))...)
			continue
		}

		file := res.File
		atomic.AddInt64(&stats.Files, 1)

		if d.cache != nil {
			if cached, ok := d.cache.Get(file); ok {
				atomic.AddInt64(&stats.CacheHits, 1)
				atomic.AddInt64(&stats.Matches, int64(len(cached)))
				if err := d.sink.EmitMatches(cached); err != nil {
					atomic.AddInt64(&stats.FailedChunks, 1)
					slog.Warn("emit failed", errors.LogAttrs(err)...)
				}
				continue
			}
		}

		chunks := chunk.Plan(file, chunk.PlanOptions{ChunkSize: d.opts.ChunkSize, Border: d.opts.Border})
		progress := &fileProgress{remaining: len(chunks)}

		for _, c := range chunks {
			c := c
			atomic.AddInt64(&stats.Chunks, 1)

			g.Go(func() error {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-gctx.Done():
					return gctx.Err()
				}

				d.runChunk(gctx, c, needle, progress, &stats)
				return nil
			})
		}
	}

	err := g.Wait()
	if err == nil {
		err = d.aggregate(&stats)
	}
	return stats, err
}

// runChunk executes one fetch-match-report job. Faults are recorded, logged
// and folded into the aggregate outcome instead of cancelling the group.
func (d *Dispatcher) runChunk(ctx context.Context, c *chunk.Chunk, needle []byte, progress *fileProgress, stats *Stats) {
	if err := c.Fetch(ctx); err != nil {
		atomic.AddInt64(&stats.FailedChunks, 1)
		ferr := errors.FetchError(c.File.Path, c.Read.Begin, c.Read.End, err)
		slog.Warn("chunk fetch failed", errors.LogAttrs(ferr)...)
		d.finishChunk(progress, c.File, nil, true)
		return
	}

	found := match.Find(c, needle, d.opts.Border)
	atomic.AddInt64(&stats.Matches, int64(len(found)))

	if err := d.sink.EmitMatches(found); err != nil {
		atomic.AddInt64(&stats.FailedChunks, 1)
		slog.Warn("emit failed", errors.LogAttrs(err)...)
		d.finishChunk(progress, c.File, nil, true)
		return
	}

	d.finishChunk(progress, c.File, found, false)
}

// finishChunk folds one chunk's outcome into its file's progress and caches
// the file's full result set once every chunk completed without a fault.
func (d *Dispatcher) finishChunk(progress *fileProgress, file chunk.File, found []match.Match, failed bool) {
	progress.mu.Lock()
	defer progress.mu.Unlock()

	progress.remaining--
	progress.failed = progress.failed || failed
	progress.matches = append(progress.matches, found...)

	if progress.remaining == 0 && !progress.failed && d.cache != nil {
		// Cached batches replay in one piece; keep them in file order.
		sort.Slice(progress.matches, func(i, j int) bool {
			return progress.matches[i].Position < progress.matches[j].Position
		})
		d.cache.Put(file, progress.matches)
	}
}

// aggregate turns failure counters into the run's overall outcome.
func (d *Dispatcher) aggregate(stats *Stats) error {
	failed := atomic.LoadInt64(&stats.FailedChunks)
	scanErrs := atomic.LoadInt64(&stats.ScanErrors)
	if failed == 0 && scanErrs == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeFetch,
		fmt.Sprintf("%d chunk(s) failed, %d discovery fault(s); results are incomplete", failed, scanErrs), nil)
}
