package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/fsscan/internal/scan"
)

func TestRender_EmptyScan(t *testing.T) {
	rendered, err := Render(&scan.Summary{})
	require.NoError(t, err)

	want := `# File System Scan Report

## Scan Counters

- **Total Discovered**: 0
- **Total Processed**:  0
- **Total Failed**:     0

## File Extensions Count

_None found._

## Large Files

_None detected._

## Duplicate File Names

_No duplicates found._
`
	assert.Equal(t, want, rendered)
}

func TestRender_PopulatedSummary(t *testing.T) {
	summary := &scan.Summary{
		Counters: scan.Counters{Discovered: 4, Processed: 3, Failed: 1},
		Extensions: map[string]int{
			".txt": 2,
			".bin": 1,
		},
		LargeFiles: []string{"/data/big.bin"},
		Names: map[string][]string{
			"a.txt":   {"/data/a.txt", "/data/nested/a.txt"},
			"big.bin": {"/data/big.bin"},
		},
	}

	rendered, err := Render(summary)
	require.NoError(t, err)

	assert.Contains(t, rendered, "- **Total Discovered**: 4")
	assert.Contains(t, rendered, "- **Total Processed**:  3")
	assert.Contains(t, rendered, "- **Total Failed**:     1")

	// Extensions sorted by descending count.
	txt := strings.Index(rendered, "- **.txt**: 2")
	bin := strings.Index(rendered, "- **.bin**: 1")
	require.GreaterOrEqual(t, txt, 0)
	require.GreaterOrEqual(t, bin, 0)
	assert.Less(t, txt, bin)

	assert.Contains(t, rendered, "- `/data/big.bin`")

	// Only names with more than one path appear as duplicate groups.
	assert.Contains(t, rendered, "### `a.txt`")
	assert.Contains(t, rendered, "- `/data/nested/a.txt`")
	assert.NotContains(t, rendered, "### `big.bin`")

	assert.NotContains(t, rendered, "_None found._")
	assert.NotContains(t, rendered, "_None detected._")
	assert.NotContains(t, rendered, "_No duplicates found._")
}

func TestRender_ExtensionTiesSortedByName(t *testing.T) {
	summary := &scan.Summary{
		Extensions: map[string]int{
			".b": 1,
			".a": 1,
			".c": 2,
		},
	}

	rendered, err := Render(summary)
	require.NoError(t, err)

	c := strings.Index(rendered, "- **.c**: 2")
	a := strings.Index(rendered, "- **.a**: 1")
	b := strings.Index(rendered, "- **.b**: 1")
	assert.True(t, c < a && a < b, "expected .c, .a, .b order, got:\n%s", rendered)
}

func TestWriter_Write(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "reports")

	writer, err := NewWriter(outputDir)
	require.NoError(t, err)

	path, err := writer.Write(&scan.Summary{}, "")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, DefaultFilename, filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# File System Scan Report")
}

func TestWriter_CustomFilename(t *testing.T) {
	writer, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := writer.Write(&scan.Summary{}, "nightly.md")
	require.NoError(t, err)

	assert.Equal(t, "nightly.md", filepath.Base(path))
}
