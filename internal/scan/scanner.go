package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
)

const bytesPerMB = 1024 * 1024

// Options configures optional scanner behavior.
type Options struct {
	// Excludes contains doublestar glob patterns matched against paths
	// relative to the scan root. Matching directories are pruned and
	// matching files are skipped before being counted as discovered.
	Excludes []string
	// Logger receives all scan diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Scanner walks a directory tree and accumulates scan aggregates.
//
// All aggregate state is owned by a single Scanner instance and scoped to
// its scans; repeated Run calls on the same instance keep accumulating, so
// callers normally construct one Scanner per scan.
type Scanner struct {
	root           string
	thresholdMB    int
	thresholdBytes int64
	excludes       []string
	log            *slog.Logger

	// mu serializes aggregate mutations. The walk itself is sequential,
	// but a parallel walk must not be able to break the counter invariant.
	mu         sync.Mutex
	counters   Counters
	extensions map[string]int
	largeFiles []string
	names      map[string][]string
}

// New creates a Scanner for root with a large-file threshold in megabytes,
// converted to bytes once. It fails if an exclude pattern is malformed.
func New(root string, thresholdMB int, opts Options) (*Scanner, error) {
	for _, pattern := range opts.Excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		root:           filepath.Clean(root),
		thresholdMB:    thresholdMB,
		thresholdBytes: int64(thresholdMB) * bytesPerMB,
		excludes:       opts.Excludes,
		log:            logger,
		extensions:     make(map[string]int),
		names:          make(map[string][]string),
	}, nil
}

// Run performs one full blocking scan of the tree under the root and
// returns the resulting summary. When hook is non-nil it is invoked once
// per discovered file with either the extracted record or the failure.
//
// Per-file extraction failures are counted, logged, and delivered to the
// hook; they never abort the walk. After the walk completes the counter
// invariant (discovered == processed+failed) is verified; a violation is
// returned as an *IntegrityError.
//
// The walk has no cancellation hook: a caller wanting early termination
// can stop acting on hook callbacks, but the traversal runs to completion.
func (s *Scanner) Run(hook func(Result)) (*Summary, error) {
	if statInfo, err := os.Stat(s.root); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", s.root, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", s.root)
	}

	// Single worker plus sorted entries keeps the walk strictly
	// sequential and deterministic.
	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: 1,
		Sort:       fastwalk.SortLexical,
	}

	walkErr := fastwalk.Walk(conf, s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Debug("error accessing path", "path", path, "error", err)

			return nil
		}

		if excluded, pattern := s.excludedBy(path); excluded {
			if d.IsDir() {
				s.log.Debug("excluding directory", "path", path, "pattern", pattern)

				return filepath.SkipDir
			}

			s.log.Debug("excluding file", "path", path, "pattern", pattern)

			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		s.discover()

		record, extractErr := s.extract(path)
		if extractErr != nil {
			s.fail()
			s.log.Error("extraction failed", "path", path, "error", extractErr)

			if hook != nil {
				hook(Result{Path: path, Err: extractErr})
			}

			return nil
		}

		s.process()

		if hook != nil {
			hook(Result{Record: record, Path: path})
		}

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if err := s.verify(); err != nil {
		return nil, err
	}

	return s.Summary()
}

// excludedBy reports whether path matches an exclude pattern, returning
// the matching pattern for diagnostics.
func (s *Scanner) excludedBy(path string) (bool, string) {
	if len(s.excludes) == 0 {
		return false, ""
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." {
		return false, ""
	}

	rel = filepath.ToSlash(rel)

	for _, pattern := range s.excludes {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true, pattern
		}
	}

	return false, ""
}

// extract pulls the metadata for a single file and records its side
// effects on the aggregates. Any stat error (permissions, file removed
// mid-scan) propagates to the caller as a per-file failure.
//
// Names containing "fail" (case-insensitive) simulate an extraction
// failure. This is a deliberate test hook preserved for compatibility
// with existing fixtures, not a production heuristic.
func (s *Scanner) extract(path string) (*FileRecord, error) {
	base := filepath.Base(path)

	if strings.Contains(strings.ToLower(base), "fail") {
		return nil, errors.New(`simulated failure: filename contains "fail"`)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	size := info.Size()

	ext := filepath.Ext(base)
	// Dotfiles like .gitignore have no extension.
	if ext == "" || ext == base {
		ext = NoExtension
	}

	record := &FileRecord{
		Path:      path,
		Size:      size,
		Extension: ext,
		Modified:  info.ModTime().Format(modifiedLayout),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.extensions[ext]++
	s.names[base] = append(s.names[base], path)

	if size == 0 {
		s.log.Warn("zero-byte file detected", "path", path)
	} else if size > s.thresholdBytes {
		s.log.Warn("large file",
			"threshold_mb", s.thresholdMB,
			"path", path,
			"size_bytes", size,
			"size", humanize.IBytes(uint64(size)),
		)
		s.largeFiles = append(s.largeFiles, path)
	}

	return record, nil
}

func (s *Scanner) discover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Discovered++
}

func (s *Scanner) process() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Processed++
}

func (s *Scanner) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Failed++
}

// verify checks the counter invariant. A failure here is a bookkeeping
// bug and must never be swallowed.
func (s *Scanner) verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.verifyLocked()
}

func (s *Scanner) verifyLocked() error {
	c := s.counters
	if c.Discovered != c.Processed+c.Failed {
		return &IntegrityError{
			Discovered: c.Discovered,
			Processed:  c.Processed,
			Failed:     c.Failed,
		}
	}

	return nil
}

// Summary re-verifies the counter invariant and returns a deep-copied
// snapshot of all aggregates. It is safe to call any number of times;
// the snapshot never aliases the scanner's own containers.
func (s *Scanner) Summary() (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.verifyLocked(); err != nil {
		return nil, err
	}

	return snapshot(s.counters, s.extensions, s.largeFiles, s.names), nil
}

// LogSummary emits one diagnostic line per counter, one per
// extension/count pair, and the large-file count. Read-only and safe to
// call any number of times.
func (s *Scanner) LogSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("discovered", "count", s.counters.Discovered)
	s.log.Info("processed", "count", s.counters.Processed)
	s.log.Info("failed", "count", s.counters.Failed)

	for ext, count := range s.extensions {
		s.log.Info("extension", "ext", ext, "count", count)
	}

	s.log.Info("large files", "count", len(s.largeFiles))
}

// LogDuplicates emits one diagnostic line per duplicate group (base name
// shared by more than one path), listing all associated paths. Read-only
// and safe to call any number of times.
func (s *Scanner) LogDuplicates() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, paths := range s.names {
		if len(paths) > 1 {
			s.log.Info("duplicate", "name", name, "paths", paths)
		}
	}
}
