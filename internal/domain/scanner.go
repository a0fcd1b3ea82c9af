package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"lcovfilter.dev/pkg/lcovfilter/internal/adapter"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// ErrUndecodable is returned when a source file is not valid UTF-8.
var ErrUndecodable = errors.New("source file is not valid UTF-8")

// skipDirs are never descended into while discovering roots.
var skipDirs = map[string]bool{
	".git":         true,
	"target":       true,
	"node_modules": true,
	"vendor":       true,
}

// Scanner finds test-only code in a source tree.
type Scanner interface {
	// DiscoverRoots returns the source directory of every project under repo.
	DiscoverRoots(ctx context.Context, repo m.Path) ([]m.Path, error)
	// ScanRoots collects test functions and test-module ranges under roots.
	ScanRoots(ctx context.Context, roots []m.Path) (m.FunctionSet, m.ModuleRanges, error)
}

type scanner struct {
	fsAdapter adapter.SourceFSAdapter
	syntax    *syntax
}

// NewScanner constructs a Scanner for rules backed by fsAdapter.
func NewScanner(fsAdapter adapter.SourceFSAdapter, rules m.Rules) (Scanner, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}

	return &scanner{
		fsAdapter: fsAdapter,
		syntax:    compiled,
	}, nil
}

func (s *scanner) DiscoverRoots(ctx context.Context, repo m.Path) ([]m.Path, error) {
	rules := s.syntax.rules

	// Report paths are absolute; scanning from an absolute root keeps the
	// normalized keys comparable.
	absRepo, err := s.fsAdapter.AbsPath(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", repo, err)
	}

	var roots []m.Path

	err = s.fsAdapter.Walk(ctx, absRepo, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if path != string(absRepo) && skipDirs[info.Name()] {
			return filepath.SkipDir
		}

		if !s.isFile(ctx, s.fsAdapter.JoinPath(ctx, path, rules.Manifest)) {
			return nil
		}

		sourceDir := s.fsAdapter.JoinPath(ctx, path, rules.SourceDir)
		if !s.isDir(ctx, sourceDir) {
			return nil
		}

		slog.Debug("Discovered source root", "root", sourceDir)
		roots = append(roots, sourceDir)

		return nil
	})
	if err != nil {
		slog.Error("Failed to discover source roots", "repo", repo, "error", err)
		return nil, fmt.Errorf("discover roots under %s: %w", repo, err)
	}

	return roots, nil
}

func (s *scanner) ScanRoots(ctx context.Context, roots []m.Path) (m.FunctionSet, m.ModuleRanges, error) {
	functions := m.NewFunctionSet()
	modules := make(m.ModuleRanges)

	files, err := s.sourceFiles(ctx, roots)
	if err != nil {
		return nil, nil, err
	}

	for _, file := range files {
		lines, err := s.readLines(ctx, file)
		if err != nil {
			return nil, nil, err
		}

		for _, name := range findTestFunctions(lines, s.syntax) {
			functions.Add(name)
		}

		if ranges := findTestModules(lines, s.syntax); len(ranges) > 0 {
			key := NormalizePath(string(file), s.syntax.rules.SourceMarker)
			// Crates with the same relative file share a key; their ranges accumulate.
			modules[key] = append(modules[key], ranges...)
		}
	}

	slog.Info("Scanned sources",
		"roots", len(roots),
		"files", len(files),
		"functions", len(functions),
		"modules", modules.Count(),
	)

	return functions, modules, nil
}

// sourceFiles lists every file with the source extension under roots. Roots
// nested in other roots are only listed once.
func (s *scanner) sourceFiles(ctx context.Context, roots []m.Path) ([]m.Path, error) {
	seen := make(map[string]bool)

	var files []m.Path

	for _, root := range roots {
		err := s.fsAdapter.Walk(ctx, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() || !strings.HasSuffix(path, s.syntax.rules.Extension) || seen[path] {
				return nil
			}

			seen[path] = true
			files = append(files, m.Path(path))

			return nil
		})
		if err != nil {
			slog.Error("Failed to walk source root", "root", root, "error", err)
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i] < files[j]
	})

	return files, nil
}

func (s *scanner) readLines(ctx context.Context, file m.Path) ([]string, error) {
	data, err := s.fsAdapter.ReadFile(ctx, file)
	if err != nil {
		slog.Error("Failed to read source file", "file", file, "error", err)
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	if !utf8.Valid(data) {
		slog.Error("Source file is not valid UTF-8", "file", file)
		return nil, fmt.Errorf("%w: %s", ErrUndecodable, file)
	}

	return splitLines(string(data)), nil
}

func (s *scanner) isFile(ctx context.Context, path m.Path) bool {
	info, err := s.fsAdapter.FileInfo(ctx, path)
	return err == nil && !info.IsDir()
}

func (s *scanner) isDir(ctx context.Context, path m.Path) bool {
	info, err := s.fsAdapter.FileInfo(ctx, path)
	return err == nil && info.IsDir()
}

// splitLines splits text on newlines; a trailing newline does not start a new line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// findTestFunctions returns the names of functions whose definition directly
// follows a test annotation line.
func findTestFunctions(lines []string, sx *syntax) []string {
	var names []string

	for i := 0; i+1 < len(lines); i++ {
		if !sx.testAnnotation.MatchString(lines[i]) {
			continue
		}

		if match := sx.functionDef.FindStringSubmatch(lines[i+1]); match != nil {
			names = append(names, match[1])
		}
	}

	return names
}

// findTestModules returns the 1-indexed body ranges of test modules. A body
// starts on the line after the module opening and ends on the line where the
// brace depth first returns to zero. Braces inside strings and comments are
// counted like any other.
func findTestModules(lines []string, sx *syntax) []m.LineRange {
	var ranges []m.LineRange

	i := 0
	for i < len(lines) {
		if !sx.testConfig.MatchString(lines[i]) {
			i++
			continue
		}

		open := findModuleOpen(lines, i, sx)
		if open < 0 {
			i++
			continue
		}

		depth := 1
		next := open + 1

		for next < len(lines) && depth > 0 {
			depth += strings.Count(lines[next], "{")
			depth -= strings.Count(lines[next], "}")
			next++
		}

		// next is the 0-indexed line after the closing one, which is also the
		// 1-indexed number of the closing line.
		bodyRange := m.LineRange{Start: open + 2, End: next}
		if bodyRange.Valid() {
			ranges = append(ranges, bodyRange)
		}

		i = next
	}

	return ranges
}

// findModuleOpen looks at most Lookahead lines past the annotation at index at.
func findModuleOpen(lines []string, at int, sx *syntax) int {
	last := at + sx.rules.Lookahead
	if last >= len(lines) {
		last = len(lines) - 1
	}

	for j := at + 1; j <= last; j++ {
		if sx.moduleOpen.MatchString(lines[j]) {
			return j
		}
	}

	return -1
}
