// Package domain implements the source scanner, the coverage filter and the
// workflow that ties them to the filesystem and the console.
package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"lcovfilter.dev/pkg/lcovfilter/internal/adapter"
	"lcovfilter.dev/pkg/lcovfilter/internal/controller"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// ErrInputNotFound is returned when the coverage report to filter does not exist.
var ErrInputNotFound = errors.New("input report not found")

// ErrSameInputOutput is returned when a file written by a filter run is the
// input report itself.
var ErrSameInputOutput = errors.New("output would overwrite the input report")

// summaryVersion is written into every saved run summary.
const summaryVersion = 1

// ScanArgs contains the arguments for scanning a source tree.
type ScanArgs struct {
	Root m.Path
}

// FilterArgs contains the arguments for filtering a coverage report.
type FilterArgs struct {
	Root    m.Path
	Input   m.Path
	Output  m.Path
	Summary m.Path
	DryRun  bool
}

// Workflow runs lcovfilter's user-facing operations.
type Workflow interface {
	Scan(ctx context.Context, args ScanArgs) error
	Filter(ctx context.Context, args FilterArgs) error
}

type workflow struct {
	fsAdapter    adapter.SourceFSAdapter
	summaryStore adapter.SummaryStore
	ui           controller.UI
	scanner      Scanner
	filter       CoverageFilter
	now          func() time.Time
}

// NewWorkflow creates a Workflow from its collaborators.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	summaryStore adapter.SummaryStore,
	ui controller.UI,
	scanner Scanner,
	filter CoverageFilter,
) Workflow {
	return &workflow{
		fsAdapter:    fsAdapter,
		summaryStore: summaryStore,
		ui:           ui,
		scanner:      scanner,
		filter:       filter,
		now:          time.Now,
	}
}

// Scan reports the roots, test functions and test modules under args.Root.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	result, err := w.scan(ctx, args.Root)
	if err != nil {
		return err
	}

	if err := w.ui.DisplayScanDetails(ctx, result); err != nil {
		slog.Error("Failed to display scan", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

// Filter writes a copy of args.Input without test-code entries to args.Output.
// The output is only created once the input is open, so a missing input never
// clobbers a previous output.
func (w *workflow) Filter(ctx context.Context, args FilterArgs) error {
	input, err := w.openInput(ctx, args.Input)
	if err != nil {
		return err
	}

	defer func() { _ = input.Close() }()

	if err := w.checkTargets(ctx, args); err != nil {
		return err
	}

	result, err := w.scan(ctx, args.Root)
	if err != nil {
		return err
	}

	var stats m.FilterStats
	if args.DryRun {
		stats, err = w.dryRun(ctx, args, input, result)
	} else {
		stats, err = w.writeFiltered(ctx, args, input, result)
	}

	if err != nil {
		return err
	}

	w.ui.DisplayFilterSummary(ctx, stats, args.Output, args.DryRun)

	if args.Summary == "" {
		return nil
	}

	w.showPreviousSummary(ctx, args.Summary)

	if err := w.summaryStore.SaveSummary(ctx, args.Summary, w.summarize(args, result, stats)); err != nil {
		slog.Error("Failed to save summary", "path", args.Summary, "error", err)
		return fmt.Errorf("save summary: %w", err)
	}

	return nil
}

func (w *workflow) scan(ctx context.Context, root m.Path) (m.ScanResult, error) {
	roots, err := w.scanner.DiscoverRoots(ctx, root)
	if err != nil {
		return m.ScanResult{}, fmt.Errorf("scan sources: %w", err)
	}

	if len(roots) == 0 {
		slog.Warn("No source roots found", "root", root)
	}

	w.ui.DisplayRoots(ctx, w.displayRoots(ctx, root, roots))

	functions, modules, err := w.scanner.ScanRoots(ctx, roots)
	if err != nil {
		return m.ScanResult{}, fmt.Errorf("scan sources: %w", err)
	}

	result := m.ScanResult{
		Roots:     roots,
		Functions: functions,
		Modules:   modules,
	}

	w.ui.DisplayScanCounts(ctx, result)

	return result, nil
}

// displayRoots shortens roots to paths relative to the repository root where
// possible.
func (w *workflow) displayRoots(ctx context.Context, repo m.Path, roots []m.Path) []m.Path {
	absRepo, err := w.fsAdapter.AbsPath(ctx, repo)
	if err != nil {
		return roots
	}

	shown := make([]m.Path, 0, len(roots))
	for _, root := range roots {
		rel, err := w.fsAdapter.RelPath(ctx, absRepo, root)
		if err != nil {
			rel = root
		}

		shown = append(shown, rel)
	}

	return shown
}

// checkTargets refuses runs whose output or summary is the input report, since
// creating either truncates the report before it is read.
func (w *workflow) checkTargets(ctx context.Context, args FilterArgs) error {
	targets := []m.Path{args.Summary}
	if !args.DryRun {
		targets = append(targets, args.Output)
	}

	for _, target := range targets {
		if target == "" {
			continue
		}

		same, err := w.sameFile(ctx, args.Input, target)
		if err != nil {
			return err
		}

		if same {
			slog.Error("Refusing to overwrite input report", "input", args.Input, "target", target)
			return fmt.Errorf("%w: %s", ErrSameInputOutput, target)
		}
	}

	return nil
}

func (w *workflow) sameFile(ctx context.Context, a, b m.Path) (bool, error) {
	aInfo, err := w.fsAdapter.FileInfo(ctx, a)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", a, err)
	}

	bInfo, err := w.fsAdapter.FileInfo(ctx, b)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("stat %s: %w", b, err)
	}

	return os.SameFile(aInfo, bInfo), nil
}

// showPreviousSummary displays the summary a previous run left at path, if any.
func (w *workflow) showPreviousSummary(ctx context.Context, path m.Path) {
	previous, err := w.summaryStore.LoadSummary(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}

	if err != nil {
		slog.Warn("Ignoring unreadable previous summary", "path", path, "error", err)
		return
	}

	w.ui.DisplayPreviousSummary(ctx, previous)
}

func (w *workflow) openInput(ctx context.Context, path m.Path) (io.ReadCloser, error) {
	input, err := w.fsAdapter.OpenReport(ctx, path)
	if err == nil {
		return input, nil
	}

	slog.Error("Failed to open input report", "path", path, "error", err)

	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}

	return nil, fmt.Errorf("open input report %s: %w", path, err)
}

func (w *workflow) writeFiltered(ctx context.Context, args FilterArgs, input io.Reader, result m.ScanResult) (m.FilterStats, error) {
	output, err := w.fsAdapter.CreateReport(ctx, args.Output)
	if err != nil {
		slog.Error("Failed to create output report", "path", args.Output, "error", err)
		return m.FilterStats{}, fmt.Errorf("create output report %s: %w", args.Output, err)
	}

	stats, err := w.filter.Apply(ctx, input, output, result)

	closeErr := output.Close()
	if err != nil {
		return stats, fmt.Errorf("filter %s: %w", args.Input, err)
	}

	if closeErr != nil {
		slog.Error("Failed to close output report", "path", args.Output, "error", closeErr)
		return stats, fmt.Errorf("close output report %s: %w", args.Output, closeErr)
	}

	slog.Info("Wrote filtered report", "input", args.Input, "output", args.Output, "dropped", stats.DroppedLines)

	return stats, nil
}

func (w *workflow) dryRun(ctx context.Context, args FilterArgs, input io.Reader, result m.ScanResult) (m.FilterStats, error) {
	var before, after bytes.Buffer

	stats, err := w.filter.Apply(ctx, io.TeeReader(input, &before), &after, result)
	if err != nil {
		return stats, fmt.Errorf("filter %s: %w", args.Input, err)
	}

	if err := w.ui.DisplayDiff(ctx, args.Input, args.Output, before.String(), after.String()); err != nil {
		slog.Error("Failed to display diff", "error", err)
		return stats, fmt.Errorf("display: %w", err)
	}

	return stats, nil
}

func (w *workflow) summarize(args FilterArgs, result m.ScanResult, stats m.FilterStats) m.Summary {
	output := args.Output
	if args.DryRun {
		output = ""
	}

	return m.Summary{
		Version:     summaryVersion,
		GeneratedAt: w.now().UTC(),
		Input:       args.Input,
		Output:      output,
		Roots:       result.Roots,
		Functions:   len(result.Functions),
		Modules:     result.Modules.Count(),
		Excluded: m.SummaryStat{
			Files:     stats.ExcludedFiles,
			Functions: stats.ExcludedFunctions,
			Lines:     stats.ExcludedLines,
		},
		Lines: m.LineTotals{
			Input:   stats.InputLines,
			Output:  stats.OutputLines,
			Dropped: stats.DroppedLines,
		},
	}
}
