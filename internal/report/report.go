// Package report renders a scan summary as a Markdown document.
package report

import (
	"bytes"
	"cmp"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"text/template"

	"github.com/idelchi/fsscan/internal/scan"
)

// DefaultFilename is the report filename used when none is given.
const DefaultFilename = "scan_report.md"

// markdown contains the report template.
//
//go:embed report.md.tmpl
var markdown string

// extCount is one extension row, ordered by descending count.
type extCount struct {
	Ext   string
	Count int
}

// dupGroup is one duplicate-name section: a base name and the full paths
// sharing it.
type dupGroup struct {
	Name  string
	Paths []string
}

// view is the template input assembled from a summary.
type view struct {
	Counters   scan.Counters
	Extensions []extCount
	LargeFiles []string
	Duplicates []dupGroup
}

// Writer writes Markdown scan reports into a fixed output directory.
type Writer struct {
	outputDir string
}

// NewWriter creates a Writer, creating outputDir if needed.
func NewWriter(outputDir string) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory %q: %w", outputDir, err)
	}

	return &Writer{outputDir: outputDir}, nil
}

// Write renders summary into outputDir/filename and returns the absolute
// path of the written report. An empty filename uses DefaultFilename.
func (w *Writer) Write(summary *scan.Summary, filename string) (string, error) {
	if filename == "" {
		filename = DefaultFilename
	}

	rendered, err := Render(summary)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.outputDir, filename)

	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("writing report %q: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}

	return absPath, nil
}

// Render produces the Markdown document for a summary.
//
// Extensions are sorted by descending count (name ascending on ties) and
// duplicate groups by name, so the same summary always renders the same
// document. Only names shared by more than one path appear under
// Duplicate File Names; empty sections render their placeholder text.
func Render(summary *scan.Summary) (string, error) {
	tmpl, err := template.New("report").Parse(markdown)
	if err != nil {
		return "", fmt.Errorf("parsing report template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newView(summary)); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}

	return buf.String(), nil
}

func newView(summary *scan.Summary) view {
	extensions := make([]extCount, 0, len(summary.Extensions))
	for ext, count := range summary.Extensions {
		extensions = append(extensions, extCount{Ext: ext, Count: count})
	}

	slices.SortFunc(extensions, func(a, b extCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}

		return cmp.Compare(a.Ext, b.Ext)
	})

	duplicates := make([]dupGroup, 0)
	for name, paths := range summary.Duplicates() {
		duplicates = append(duplicates, dupGroup{Name: name, Paths: paths})
	}

	slices.SortFunc(duplicates, func(a, b dupGroup) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return view{
		Counters:   summary.Counters,
		Extensions: extensions,
		LargeFiles: summary.LargeFiles,
		Duplicates: duplicates,
	}
}
