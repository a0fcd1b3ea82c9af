package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// SimpleUI implements UI on top of a cobra command's writers. Progress goes to
// the error stream; tables and diffs go to the output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayRoots lists discovered source roots, or warns when there are none.
func (s *SimpleUI) DisplayRoots(ctx context.Context, roots []m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	styles := newStyles(s.errOut())

	if len(roots) == 0 {
		s.errorf("%s\n", styles.warn.Render("warning: no source roots found under repository root"))
		return
	}

	names := make([]string, 0, len(roots))
	for _, root := range roots {
		names = append(names, string(root))
	}

	s.errorf("%s %s\n", styles.label.Render("Found source roots:"), strings.Join(names, ", "))
}

// DisplayScanCounts prints how many test functions and test modules were found.
func (s *SimpleUI) DisplayScanCounts(ctx context.Context, result m.ScanResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	styles := newStyles(s.errOut())

	s.errorf("%s %d test functions\n", styles.label.Render("Found"), len(result.Functions))
	s.errorf("%s %d test modules\n", styles.label.Render("Found"), result.Modules.Count())
}

// DisplayScanDetails prints the test modules per file as a table.
func (s *SimpleUI) DisplayScanDetails(ctx context.Context, result m.ScanResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderModuleTable(result))

	for _, name := range result.Functions.Sorted() {
		s.printf("test fn %s\n", name)
	}

	return nil
}

func renderModuleTable(result m.ScanResult) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Test module lines"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, file := range result.Modules.Files() {
		spans := make([]string, 0, len(result.Modules[file]))
		for _, r := range result.Modules[file] {
			spans = append(spans, fmt.Sprintf("%d-%d", r.Start, r.End))
		}

		table.Append([]string{string(file), strings.Join(spans, " ")})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(result.Modules)),
		fmt.Sprintf("%d modules, %d functions", result.Modules.Count(), len(result.Functions)),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayFilterSummary prints the exclusion counters of a filter run.
func (s *SimpleUI) DisplayFilterSummary(ctx context.Context, stats m.FilterStats, output m.Path, dryRun bool) {
	if err := ctx.Err(); err != nil {
		return
	}

	styles := newStyles(s.errOut())

	s.errorf("%s %d test files\n", styles.label.Render("Excluded"), len(stats.ExcludedFiles))
	s.errorf("%s %d test functions\n", styles.label.Render("Excluded"), stats.ExcludedFunctions)
	s.errorf("%s %d test lines\n", styles.label.Render("Excluded"), stats.ExcludedLines)

	if dryRun {
		s.errorf("%s\n", styles.warn.Render(fmt.Sprintf("Dry run: %d of %d lines would be dropped, nothing written", stats.DroppedLines, stats.InputLines)))
		return
	}

	s.errorf("%s\n", styles.ok.Render(fmt.Sprintf("Wrote filtered LCOV to %s", output)))
}

// DisplayPreviousSummary prints the totals of the run a summary file was left by.
func (s *SimpleUI) DisplayPreviousSummary(ctx context.Context, previous m.Summary) {
	if err := ctx.Err(); err != nil {
		return
	}

	styles := newStyles(s.errOut())

	s.errorf("%s dropped %d of %d lines (%s)\n",
		styles.label.Render("Previous run"),
		previous.Lines.Dropped,
		previous.Lines.Input,
		previous.GeneratedAt.Format(time.RFC3339),
	)
}

// DisplayDiff prints a unified diff of the report before and after filtering.
func (s *SimpleUI) DisplayDiff(ctx context.Context, from, to m.Path, before, after string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: string(from),
		ToFile:   string(to),
		Context:  0,
	})
	if err != nil {
		return fmt.Errorf("render diff: %w", err)
	}

	if diff == "" {
		s.printf("no changes\n")
		return nil
	}

	s.printf("%s", diff)

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func (s *SimpleUI) errorf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.errOut(), format, args...)
}

func (s *SimpleUI) errOut() io.Writer {
	return s.cmd.ErrOrStderr()
}

type styles struct {
	label lipgloss.Style
	warn  lipgloss.Style
	ok    lipgloss.Style
}

// newStyles binds styles to w so color is only emitted on terminals.
func newStyles(w io.Writer) styles {
	renderer := lipgloss.NewRenderer(w)

	return styles{
		label: renderer.NewStyle().Bold(true),
		warn:  renderer.NewStyle().Foreground(lipgloss.Color("3")),
		ok:    renderer.NewStyle().Foreground(lipgloss.Color("2")),
	}
}
