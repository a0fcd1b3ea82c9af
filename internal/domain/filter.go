package domain

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// LCOV record prefixes.
const (
	sourceFilePrefix   = "SF:"
	endOfRecordPrefix  = "end_of_record"
	functionPrefix     = "FN:"
	functionDataPrefix = "FNDA:"
	lineDataPrefix     = "DA:"
)

// cancelCheckInterval is how many report lines are processed between context checks.
const cancelCheckInterval = 1024

// CoverageFilter removes test-code entries from an LCOV report.
type CoverageFilter interface {
	// Apply streams the report from r to w, dropping every entry attributable to
	// the test code described by scan. Kept lines are copied byte for byte.
	Apply(ctx context.Context, r io.Reader, w io.Writer, scan m.ScanResult) (m.FilterStats, error)
}

type coverageFilter struct {
	rules m.Rules
}

// NewCoverageFilter constructs a CoverageFilter using the path rules of rules.
func NewCoverageFilter(rules m.Rules) CoverageFilter {
	return &coverageFilter{rules: rules}
}

// filterState is the per-run state: the current file and whether its block is
// being dropped entirely.
type filterState struct {
	scan     m.ScanResult
	stats    m.FilterStats
	file     m.Path
	skipping bool
	excluded map[m.Path]bool
}

func (f *coverageFilter) Apply(ctx context.Context, r io.Reader, w io.Writer, scan m.ScanResult) (m.FilterStats, error) {
	state := &filterState{
		scan:     scan,
		excluded: make(map[m.Path]bool),
	}

	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)

	for {
		if state.stats.InputLines%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return state.stats, err
			}
		}

		line, readErr := reader.ReadString('\n')
		if line != "" {
			state.stats.InputLines++

			if f.keep(state, line) {
				if _, err := writer.WriteString(line); err != nil {
					slog.Error("Failed to write filtered report", "error", err)
					return state.stats, fmt.Errorf("write report: %w", err)
				}

				state.stats.OutputLines++
			} else {
				state.stats.DroppedLines++
			}
		}

		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			slog.Error("Failed to read coverage report", "line", state.stats.InputLines, "error", readErr)
			return state.stats, fmt.Errorf("read report: %w", readErr)
		}
	}

	if err := writer.Flush(); err != nil {
		slog.Error("Failed to flush filtered report", "error", err)
		return state.stats, fmt.Errorf("write report: %w", err)
	}

	slog.Debug("Filtered coverage report",
		"input", state.stats.InputLines,
		"output", state.stats.OutputLines,
		"excludedFiles", len(state.stats.ExcludedFiles),
		"excludedFunctions", state.stats.ExcludedFunctions,
		"excludedLines", state.stats.ExcludedLines,
	)

	return state.stats, nil
}

// keep decides whether a single report line survives.
func (f *coverageFilter) keep(state *filterState, line string) bool {
	record := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, sourceFilePrefix):
		declared := strings.TrimPrefix(record, sourceFilePrefix)
		state.file = NormalizePath(declared, f.rules.SourceMarker)
		state.skipping = f.isTestFile(declared, state.file)

		if state.skipping && !state.excluded[state.file] {
			state.excluded[state.file] = true
			state.stats.ExcludedFiles = append(state.stats.ExcludedFiles, state.file)
		}

	case strings.HasPrefix(line, endOfRecordPrefix):
		skipped := state.skipping
		state.skipping = false
		state.file = ""

		return !skipped
	}

	if state.skipping {
		return false
	}

	switch {
	case strings.HasPrefix(line, functionPrefix), strings.HasPrefix(line, functionDataPrefix):
		if f.isTestFunction(state, record) {
			state.stats.ExcludedFunctions++
			return false
		}

	case strings.HasPrefix(line, lineDataPrefix):
		lineNum, ok := leadingNumber(strings.TrimPrefix(record, lineDataPrefix))
		if ok && state.scan.Modules.Contains(state.file, lineNum) {
			state.stats.ExcludedLines++
			return false
		}
	}

	return true
}

// isTestFunction reports whether an FN/FNDA record belongs to test code, either
// by name or, for FN records, by a declaration line inside a test module.
func (f *coverageFilter) isTestFunction(state *filterState, record string) bool {
	fields := strings.Split(record, ",")
	if state.scan.Functions.Has(fields[len(fields)-1]) {
		return true
	}

	if !strings.HasPrefix(record, functionPrefix) || len(fields) < 2 {
		return false
	}

	lineNum, ok := leadingNumber(strings.TrimPrefix(record, functionPrefix))

	return ok && state.scan.Modules.Contains(state.file, lineNum)
}

// isTestFile reports whether a whole report block is test code. The
// normalized path is checked; when normalization fell back to a bare file
// name the declared path is checked instead so directory markers still apply.
func (f *coverageFilter) isTestFile(declared string, normalized m.Path) bool {
	candidate := string(normalized)
	if !strings.Contains(candidate, "/") {
		candidate = toSlash(declared)
	}

	for _, dir := range f.rules.TestDirs {
		if dir != "" && strings.Contains(candidate, dir) {
			return true
		}
	}

	for _, suffix := range f.rules.TestFiles {
		if suffix != "" && strings.HasSuffix(candidate, suffix) {
			return true
		}
	}

	return false
}

// leadingNumber parses the first comma-separated field of s.
func leadingNumber(s string) (int, bool) {
	field, _, _ := strings.Cut(s, ",")

	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, false
	}

	return n, true
}
