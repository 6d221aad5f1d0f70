package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/fsscan/internal/config"
	"github.com/idelchi/fsscan/internal/paths"
	"github.com/idelchi/fsscan/internal/report"
	"github.com/idelchi/fsscan/internal/scan"
)

// run executes the full scan flow: load settings, resolve the target
// directory, scan, and write the Markdown report.
func run(opts options) error {
	settings, err := config.Load(opts.Config)
	if err != nil {
		return err
	}

	if opts.folderSet {
		settings.TargetFolder = opts.Folder
	}

	if opts.thresholdSet {
		settings.LargeFileThresholdMB = opts.ThresholdMB
	}

	logger, closeLog, err := setupLogger(settings.Level())
	if err != nil {
		return err
	}
	defer closeLog()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	target := paths.Resolve(cwd, settings.TargetFolder)
	logger.Debug("target folder", "path", target)

	if err := paths.EnsureDir(target, true); err != nil {
		return err
	}

	scanner, err := scan.New(target, settings.LargeFileThresholdMB, scan.Options{
		Excludes: opts.Excludes,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	// Progress only on a terminal, and only when per-file INFO lines are
	// suppressed so the status line is not torn apart by log output.
	enableProgress := isatty.IsTerminal(os.Stderr.Fd()) && settings.Level() > slog.LevelInfo

	var (
		files int64
		total uint64
	)

	hook := func(result scan.Result) {
		if result.Failed() {
			return
		}

		record := result.Record
		logger.Info("file processed",
			"path", record.Path,
			"size", record.Size,
			"extension", record.Extension,
			"modified", record.Modified,
		)

		if enableProgress {
			files++
			total += uint64(record.Size)
			fmt.Fprintf(os.Stderr, "\r\033[2KScanning… %d files, %s\r", files, humanize.IBytes(total))
		}
	}

	summary, err := scanner.Run(hook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	scanner.LogDuplicates()
	scanner.LogSummary()

	writer, err := report.NewWriter(filepath.Join(cwd, "reports"))
	if err != nil {
		return err
	}

	outPath, err := writer.Write(summary, opts.Report)
	if err != nil {
		return err
	}

	logger.Info("report saved", "path", outPath)

	return nil
}

// setupLogger creates an slog.Logger writing to both logs/app.log and
// stderr. The returned func closes the log file.
func setupLogger(level slog.Level) (*slog.Logger, func(), error) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	logPath := filepath.Join(logDir, "app.log")

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %q: %w", logPath, err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(file, os.Stderr), &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger, func() { _ = file.Close() }, nil
}
