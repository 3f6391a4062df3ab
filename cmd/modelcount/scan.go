package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/modelcount/internal/config"
	"github.com/nao1215/modelcount/internal/database"
	applog "github.com/nao1215/modelcount/internal/log"
	"github.com/nao1215/modelcount/internal/model"
	"github.com/nao1215/modelcount/internal/pipeline"
	"github.com/nao1215/modelcount/internal/progress"
	"github.com/nao1215/modelcount/internal/report"
	"github.com/nao1215/modelcount/internal/scanner"
)

// addScanFlags registers the scan flags on cmd.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("key", "k", config.DefaultTargetKey,
		"JSON key whose string values are counted")
	cmd.Flags().DurationP("interval", "i", config.DefaultProgressInterval,
		"Minimum time between progress updates")
	cmd.Flags().Bool("no-progress", false,
		"Disable the progress status line")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of input files scanned concurrently")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .modelcount in current or home directory)")
	cmd.Flags().Bool("no-save", false,
		"Do not record this scan in the history database")

	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// runScanCmd executes a counting scan.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// The status line only makes sense for a single input on a
	// terminal-style stderr; batch runs log per-file summaries instead.
	var reporter *progress.Reporter
	if !cfg.NoProgress && len(cfg.Inputs) == 1 {
		reporter = progress.NewReporter(inputSize(cfg.Inputs[0]),
			progress.WithInterval(cfg.ProgressInterval))
	}

	logger := setupLogger(cfg.Verbose, reporter)
	slog.SetDefault(logger)

	// Set up context with signal handling so an interrupted scan still
	// exits through the normal error path.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, reporter, cmd.OutOrStdout(), logger)
}

// buildConfig creates a Config from the config file and cobra flags.
// Flags take precedence over the file, which takes precedence over the
// built-in defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Inputs = args

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently run on defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("key") {
		if cfg.TargetKey, err = cmd.Flags().GetString("key"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("interval") {
		if cfg.ProgressInterval, err = cmd.Flags().GetDuration("interval"); err != nil {
			return nil, err
		}
	}
	if cfg.NoProgress, err = cmd.Flags().GetBool("no-progress"); err != nil {
		return nil, err
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	switch {
	case jsonOut:
		cfg.Format = config.FormatJSON
	case markdownOut:
		cfg.Format = config.FormatMarkdown
	}

	if cfg.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	if noSave {
		cfg.SaveHistory = false
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity, wired to
// interrupt the progress status line before each record.
func setupLogger(verbose bool, reporter *progress.Reporter) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var status applog.Interrupter
	if reporter != nil {
		status = reporter
	}

	handler := applog.NewStatusHandler(slog.NewTextHandler(os.Stderr, opts), status)
	return slog.New(handler)
}

// inputSize returns the size of path in bytes, or 0 when it cannot be
// determined. Percent progress is simply disabled for unsizable inputs.
func inputSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// runScan executes the scan and writes the report.
func runScan(ctx context.Context, cfg *config.Config, reporter *progress.Reporter, stdout io.Writer, logger *slog.Logger) error {
	logger.Info("starting scan",
		"inputs", cfg.Inputs,
		"targetKey", cfg.TargetKey,
		"batchSize", cfg.BatchSize,
		"saveHistory", cfg.SaveHistory,
	)

	opts := []pipeline.Option{
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithLogger(logger),
	}
	if reporter != nil {
		opts = append(opts, pipeline.WithProgress(
			func(string, int64) scanner.ProgressFunc {
				return reporter.Report
			}))
	}

	runner := pipeline.NewRunner(cfg.TargetKey, opts...)

	start := time.Now()
	table, stats, err := runner.Run(ctx, cfg.Inputs)
	if reporter != nil {
		reporter.Finish()
	}
	if err != nil {
		return err
	}

	pairs := table.Pairs()
	model.SortValueCounts(pairs)

	rep := &model.ScanReport{
		Inputs:       cfg.Inputs,
		TargetKey:    cfg.TargetKey,
		StartedAt:    start,
		Duration:     time.Since(start),
		TotalBytes:   stats.TotalBytes,
		ModelsSeen:   stats.ModelsSeen,
		UniqueModels: table.Len(),
		Models:       pairs,
	}

	if cfg.SaveHistory {
		saveHistory(ctx, cfg, rep, logger)
	}

	return writeReport(cfg, rep, stdout)
}

// saveHistory stores the report in the history database. Failures are
// logged but never fail the scan; the report has already been computed
// and still gets printed.
func saveHistory(ctx context.Context, cfg *config.Config, rep *model.ScanReport, logger *slog.Logger) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer func() { _ = db.Close() }()

	scanID, err := db.SaveReport(ctx, rep)
	if err != nil {
		logger.Warn("failed to save scan history", "error", err)
		return
	}
	logger.Debug("scan saved to history", "scanID", scanID, "db", db.Path())
}

// writeReport renders the report in the configured format to the output
// file or stdout.
func writeReport(cfg *config.Config, rep *model.ScanReport, stdout io.Writer) error {
	out := stdout
	if cfg.OutputPath != "" {
		if dir := filepath.Dir(cfg.OutputPath); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(cfg.OutputPath) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	var w report.Writer
	switch cfg.Format {
	case config.FormatJSON:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case config.FormatMarkdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewTextWriter(out)
	}

	if _, err := w.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
