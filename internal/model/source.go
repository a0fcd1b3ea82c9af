// Package model defines the data structures shared by the scanner and the filter.
package model

import "sort"

// Path represents a file system path.
type Path string

// LineRange is an inclusive, 1-indexed span of source lines.
type LineRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Valid reports whether the range is well-formed.
func (r LineRange) Valid() bool {
	return r.Start <= r.End
}

// Contains reports whether line falls inside the range.
func (r LineRange) Contains(line int) bool {
	return r.Valid() && line >= r.Start && line <= r.End
}

// FunctionSet holds the names of functions annotated as tests.
type FunctionSet map[string]struct{}

// NewFunctionSet builds a set from names.
func NewFunctionSet(names ...string) FunctionSet {
	set := make(FunctionSet, len(names))
	for _, name := range names {
		set.Add(name)
	}

	return set
}

// Add inserts name into the set.
func (s FunctionSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is a known test function.
func (s FunctionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s FunctionSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// ModuleRanges maps a normalized file path to the test-module bodies it contains.
type ModuleRanges map[Path][]LineRange

// Contains reports whether line of file sits inside a recorded test module.
func (r ModuleRanges) Contains(file Path, line int) bool {
	for _, lineRange := range r[file] {
		if lineRange.Contains(line) {
			return true
		}
	}

	return false
}

// Count returns the total number of recorded ranges.
func (r ModuleRanges) Count() int {
	total := 0
	for _, ranges := range r {
		total += len(ranges)
	}

	return total
}

// Files returns the recorded paths in lexical order.
func (r ModuleRanges) Files() []Path {
	files := make([]Path, 0, len(r))
	for file := range r {
		files = append(files, file)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i] < files[j]
	})

	return files
}

// ScanResult is everything the scanner learned about the source tree.
type ScanResult struct {
	Roots     []Path
	Functions FunctionSet
	Modules   ModuleRanges
}
