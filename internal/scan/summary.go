package scan

import (
	"fmt"
	"maps"
	"slices"
)

// NoExtension is the sentinel extension for files whose base name has no
// '.' suffix (dotfiles included).
const NoExtension = "<no-ext>"

// modifiedLayout is the textual format for FileRecord.Modified.
const modifiedLayout = "2006-01-02 15:04:05"

// FileRecord holds the metadata extracted from a single file.
// Records are created once per successfully processed file and never
// mutated afterwards.
type FileRecord struct {
	// Path is the full path of the file.
	Path string `json:"path"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
	// Extension is the file extension including the leading dot,
	// or NoExtension when the name has none.
	Extension string `json:"extension"`
	// Modified is the last-modified timestamp at seconds resolution.
	Modified string `json:"modified"`
}

// Counters tracks scan bookkeeping. Discovered must always equal
// Processed+Failed once a walk has completed.
type Counters struct {
	// Discovered is the number of regular files seen by the traversal.
	Discovered int64 `json:"total_discovered"`
	// Processed is the number of files whose metadata was extracted.
	Processed int64 `json:"total_processed"`
	// Failed is the number of files whose extraction raised an error.
	Failed int64 `json:"total_failed"`
}

// Result is the per-file outcome delivered to the Run hook: either a
// Record for a processed file, or Err for one that failed extraction.
type Result struct {
	// Record is the extracted metadata; nil when extraction failed.
	Record *FileRecord
	// Path is the file path, set for successes and failures alike.
	Path string
	// Err is the extraction failure cause; nil on success.
	Err error
}

// Failed reports whether this result represents an extraction failure.
func (r Result) Failed() bool { return r.Err != nil }

// Summary is an immutable snapshot of all scan aggregates.
type Summary struct {
	// Counters holds the discovered/processed/failed totals.
	Counters Counters `json:"counters"`
	// Extensions maps extension to occurrence count.
	Extensions map[string]int `json:"extension_count"`
	// LargeFiles lists paths exceeding the size threshold, in discovery order.
	LargeFiles []string `json:"large_files"`
	// Names maps every base filename to the full paths sharing it,
	// singletons included.
	Names map[string][]string `json:"duplicates"`
}

// Duplicates returns only the entries of Names with more than one path.
// The raw index keeps singletons; duplicate semantics are decided here,
// at read time.
func (s *Summary) Duplicates() map[string][]string {
	dupes := make(map[string][]string)

	for name, paths := range s.Names {
		if len(paths) > 1 {
			dupes[name] = slices.Clone(paths)
		}
	}

	return dupes
}

// IntegrityError reports a violated counter invariant. It indicates a
// bookkeeping bug in the scanner itself, never a normal runtime condition.
type IntegrityError struct {
	Discovered int64
	Processed  int64
	Failed     int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("counter mismatch: discovered=%d, processed=%d, failed=%d",
		e.Discovered, e.Processed, e.Failed)
}

// snapshot deep-copies the aggregates so callers holding a Summary are
// unaffected if the scanner instance keeps accumulating.
func snapshot(counters Counters, extensions map[string]int, largeFiles []string, names map[string][]string) *Summary {
	exts := make(map[string]int, len(extensions))
	maps.Copy(exts, extensions)

	namesCopy := make(map[string][]string, len(names))
	for name, paths := range names {
		namesCopy[name] = slices.Clone(paths)
	}

	return &Summary{
		Counters:   counters,
		Extensions: exts,
		LargeFiles: slices.Clone(largeFiles),
		Names:      namesCopy,
	}
}
