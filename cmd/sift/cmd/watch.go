package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sift/internal/dispatch"
	"github.com/Aman-CERP/sift/internal/errors"
	"github.com/Aman-CERP/sift/internal/scanner"
	"github.com/Aman-CERP/sift/internal/watcher"
)

func newWatchCmd(opts *searchOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <directory|file> <search-string>",
		Short: "Re-run the search whenever files under the path change",
		Long: `Runs a full search, then watches the path and re-runs the search after
each debounced batch of file changes. Files whose size and modification time
are unchanged between passes are served from an in-memory result cache
instead of being re-read.

Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runWatch(cmd.Context(), cmd, args[0], args[1], *opts)
		},
	}
}

func runWatch(ctx context.Context, cmd *cobra.Command, root, needle string, opts searchOptions) error {
	cfg, err := loadConfig(cmd, root, opts)
	if err != nil {
		return err
	}

	cleanup := setupLogging(cfg, opts.debug)
	defer cleanup()

	sink, err := newSink(cmd, opts.format)
	if err != nil {
		return err
	}

	cache, err := dispatch.NewResultCache(cfg.Watch.CacheSize)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err)
	}

	d := dispatch.New(sink, dispatch.Options{
		ChunkSize: cfg.ChunkSize,
		Border:    cfg.Border,
		Workers:   cfg.Workers,
	}).WithCache(cache)

	pass := func() {
		files, err := scanner.Scan(ctx, root, scanner.ScanOptions{
			ExcludePatterns: cfg.Exclude,
			SkipBinary:      cfg.SkipBinary,
		})
		if err != nil {
			// The root disappearing mid-session is a fault, not a
			// reason to stop watching for it to come back.
			slog.Warn("watch pass skipped", errors.LogAttrs(err)...)
			return
		}
		stats, err := d.Run(ctx, files, []byte(needle))
		if err != nil {
			slog.Warn("watch pass incomplete", errors.LogAttrs(err)...)
		}
		slog.Info("watch_pass_complete",
			slog.Int64("files", stats.Files),
			slog.Int64("matches", stats.Matches),
			slog.Int64("cache_hits", stats.CacheHits))
	}

	// Initial full pass before any change arrives.
	pass()

	w, err := watcher.New(watcher.Options{
		DebounceWindow: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeWatch, err)
	}
	defer func() { _ = w.Stop() }()

	watchRoot := root
	if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
		// fsnotify watches directories; for a single file, watch its
		// parent and let the cache skip unrelated neighbors.
		watchRoot = filepath.Dir(root)
	}

	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Start(ctx, watchRoot) }()

	slog.Info("watch_started", slog.String("root", watchRoot))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watchErr:
			if err != nil && err != context.Canceled {
				return errors.Wrap(errors.ErrCodeWatch, err)
			}
			return nil
		case err := <-w.Errors():
			slog.Warn("watch fault", errors.LogAttrs(errors.Wrap(errors.ErrCodeWatch, err))...)
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			for _, ev := range batch {
				// Deleted or replaced files must not replay stale
				// results from the cache.
				cache.Invalidate(ev.Path)
			}
			slog.Debug("changes detected", slog.Int("events", len(batch)))
			pass()
		}
	}
}
