// Package cmd provides the CLI commands for sift.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/sift/internal/config"
	"github.com/Aman-CERP/sift/internal/dispatch"
	"github.com/Aman-CERP/sift/internal/errors"
	"github.com/Aman-CERP/sift/internal/logging"
	"github.com/Aman-CERP/sift/internal/output"
	"github.com/Aman-CERP/sift/internal/scanner"
	"github.com/Aman-CERP/sift/pkg/version"
)

// searchOptions holds CLI flags shared by search and watch.
type searchOptions struct {
	border     int64
	chunkSize  int64
	workers    int
	exclude    []string
	skipBinary bool
	format     string // "text", "json"
	debug      bool
}

// NewRootCmd creates the root command for the sift CLI.
func NewRootCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "sift <directory|file> <search-string>",
		Short: "Concurrent substring search with bounded context",
		Long: `sift searches files for exact substring matches, splitting large files
into fixed-size chunks so the work runs concurrently, and prints each match
with a few bytes of surrounding context:

  path(position):prefix...suffix

Examples:
  sift ./src "TODO"
  sift notes.txt "deadline" --border 10
  sift . "password" --exclude "*.log" --format json`,
		Version: version.Short(),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid from here on; runtime faults should
			// not trigger a usage dump.
			cmd.SilenceUsage = true
			return runSearch(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	cmd.SetVersionTemplate("sift version {{.Version}}\n")

	cmd.PersistentFlags().Int64VarP(&opts.border, "border", "b", 0, "Context bytes before and after each match (default 3)")
	cmd.PersistentFlags().Int64Var(&opts.chunkSize, "chunk-size", 0, "Maximum chunk size in bytes (default 1000000)")
	cmd.PersistentFlags().IntVarP(&opts.workers, "workers", "w", 0, "Concurrent chunk workers (default: number of CPUs)")
	cmd.PersistentFlags().StringSliceVar(&opts.exclude, "exclude", nil, "Glob patterns to skip (repeatable)")
	cmd.PersistentFlags().BoolVar(&opts.skipBinary, "skip-binary", false, "Skip files that look binary")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.sift/logs/")

	cmd.AddCommand(newWatchCmd(&opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
		return err
	}
	return nil
}

// loadConfig builds the effective config for a run: defaults, config files,
// env, then any flags the user actually set.
func loadConfig(cmd *cobra.Command, root string, opts searchOptions) (*config.Config, error) {
	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("border") {
		cfg.Border = opts.border
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = opts.chunkSize
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("exclude") {
		cfg.Exclude = opts.exclude
	}
	if flags.Changed("skip-binary") {
		cfg.SkipBinary = opts.skipBinary
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging wires slog to the rotating log file, returning the cleanup.
func setupLogging(cfg *config.Config, debug bool) func() {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	if debug {
		logCfg = logging.DebugConfig()
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		// Search output must not die with the log file.
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
		return func() {}
	}
	return cleanup
}

// newSink builds the match sink for the chosen format.
func newSink(cmd *cobra.Command, format string) (dispatch.Sink, error) {
	switch format {
	case "", "text":
		if cmd.OutOrStdout() == os.Stdout {
			return output.NewStdout(), nil
		}
		return output.New(cmd.OutOrStdout()), nil
	case "json":
		return newJSONSink(cmd.OutOrStdout()), nil
	default:
		return nil, errors.UsageError(fmt.Sprintf("unknown format %q (want text or json)", format))
	}
}

func runSearch(ctx context.Context, cmd *cobra.Command, root, needle string, opts searchOptions) error {
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

	start := time.Now()
	slog.Info("search_started",
		slog.String("root", root),
		slog.Int("needle_len", len(needle)),
		slog.Int64("chunk_size", cfg.ChunkSize),
		slog.Int("workers", cfg.Workers))

	files, err := scanner.Scan(ctx, root, scanner.ScanOptions{
		ExcludePatterns: cfg.Exclude,
		SkipBinary:      cfg.SkipBinary,
	})
	if err != nil {
		return err
	}

	d := dispatch.New(sink, dispatch.Options{
		ChunkSize: cfg.ChunkSize,
		Border:    cfg.Border,
		Workers:   cfg.Workers,
	})

	stats, err := d.Run(ctx, files, []byte(needle))
	slog.Info("search_complete",
		slog.Int64("files", stats.Files),
		slog.Int64("chunks", stats.Chunks),
		slog.Int64("matches", stats.Matches),
		slog.Int64("failed_chunks", stats.FailedChunks),
		slog.Duration("duration", time.Since(start)))

	return err
}
