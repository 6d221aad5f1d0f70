// Package scan provides directory tree scanning and metadata aggregation.
//
// It walks a directory tree using fastwalk, extracts per-file metadata with
// per-file failure isolation, and maintains running aggregates: counters,
// extension occurrence counts, large-file paths, and a base-name index used
// to detect duplicate file names.
package scan
