package controller

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

func newTestUI() (*SimpleUI, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return NewSimpleUI(cmd), out, errOut
}

func sampleScan() m.ScanResult {
	return m.ScanResult{
		Roots:     []m.Path{"parser/src", "src"},
		Functions: m.NewFunctionSet("parses_empty", "parses_header"),
		Modules: m.ModuleRanges{
			"/src/span.rs": {{Start: 40, End: 88}},
			"/src/lib.rs":  {{Start: 10, End: 20}, {Start: 30, End: 31}},
		},
	}
}

func TestSimpleUI_DisplayRoots(t *testing.T) {
	ui, out, errOut := newTestUI()

	ui.DisplayRoots(context.Background(), []m.Path{"parser/src", "src"})

	assert.Contains(t, errOut.String(), "Found source roots:")
	assert.Contains(t, errOut.String(), "parser/src, src")
	assert.Empty(t, out.String())
}

func TestSimpleUI_DisplayRoots_WarnsWhenEmpty(t *testing.T) {
	ui, _, errOut := newTestUI()

	ui.DisplayRoots(context.Background(), nil)

	assert.Contains(t, errOut.String(), "no source roots found")
}

func TestSimpleUI_DisplayScanCounts(t *testing.T) {
	ui, _, errOut := newTestUI()

	ui.DisplayScanCounts(context.Background(), sampleScan())

	assert.Contains(t, errOut.String(), "2 test functions")
	assert.Contains(t, errOut.String(), "3 test modules")
}

func TestSimpleUI_DisplayScanDetails(t *testing.T) {
	ui, out, _ := newTestUI()

	err := ui.DisplayScanDetails(context.Background(), sampleScan())
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "/src/lib.rs")
	assert.Contains(t, output, "10-20 30-31")
	assert.Contains(t, output, "/src/span.rs")
	assert.Contains(t, output, "40-88")
	assert.Contains(t, output, "test fn parses_empty")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("/src/lib.rs")), bytes.Index(out.Bytes(), []byte("/src/span.rs")))
}

func TestSimpleUI_DisplayFilterSummary(t *testing.T) {
	stats := m.FilterStats{
		ExcludedFiles:     []m.Path{"/src/tests.rs"},
		ExcludedFunctions: 4,
		ExcludedLines:     17,
		InputLines:        100,
		OutputLines:       70,
		DroppedLines:      30,
	}

	t.Run("written", func(t *testing.T) {
		ui, _, errOut := newTestUI()

		ui.DisplayFilterSummary(context.Background(), stats, "lcov.filtered.info", false)

		assert.Contains(t, errOut.String(), "1 test files")
		assert.Contains(t, errOut.String(), "4 test functions")
		assert.Contains(t, errOut.String(), "17 test lines")
		assert.Contains(t, errOut.String(), "Wrote filtered LCOV to lcov.filtered.info")
	})

	t.Run("dry run", func(t *testing.T) {
		ui, _, errOut := newTestUI()

		ui.DisplayFilterSummary(context.Background(), stats, "lcov.filtered.info", true)

		assert.Contains(t, errOut.String(), "30 of 100 lines would be dropped")
		assert.NotContains(t, errOut.String(), "Wrote filtered LCOV")
	})
}

func TestSimpleUI_DisplayPreviousSummary(t *testing.T) {
	ui, out, errOut := newTestUI()

	ui.DisplayPreviousSummary(context.Background(), m.Summary{
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Lines:       m.LineTotals{Input: 120, Output: 100, Dropped: 20},
	})

	assert.Contains(t, errOut.String(), "Previous run dropped 20 of 120 lines (2026-03-01T12:00:00Z)")
	assert.Empty(t, out.String())
}

func TestSimpleUI_DisplayDiff(t *testing.T) {
	ui, out, _ := newTestUI()

	before := "SF:/src/lib.rs\nDA:1,1\nDA:12,1\nend_of_record\n"
	after := "SF:/src/lib.rs\nDA:1,1\nend_of_record\n"

	err := ui.DisplayDiff(context.Background(), "lcov.info", "lcov.filtered.info", before, after)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "--- lcov.info")
	assert.Contains(t, out.String(), "+++ lcov.filtered.info")
	assert.Contains(t, out.String(), "-DA:12,1")
	assert.NotContains(t, out.String(), "-DA:1,1")
}

func TestSimpleUI_DisplayDiff_NoChanges(t *testing.T) {
	ui, out, _ := newTestUI()

	err := ui.DisplayDiff(context.Background(), "a", "b", "DA:1,1\n", "DA:1,1\n")
	require.NoError(t, err)

	assert.Equal(t, "no changes\n", out.String())
}

func TestSimpleUI_CancelledContext(t *testing.T) {
	ui, out, errOut := newTestUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui.DisplayRoots(ctx, []m.Path{"src"})
	ui.DisplayScanCounts(ctx, sampleScan())
	ui.DisplayFilterSummary(ctx, m.FilterStats{}, "out", false)
	ui.DisplayPreviousSummary(ctx, m.Summary{})
	require.Error(t, ui.DisplayScanDetails(ctx, sampleScan()))
	require.Error(t, ui.DisplayDiff(ctx, "a", "b", "", ""))

	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}
