package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineRange_Contains(t *testing.T) {
	tests := []struct {
		name string
		r    LineRange
		line int
		want bool
	}{
		{"start boundary", LineRange{Start: 3, End: 7}, 3, true},
		{"end boundary", LineRange{Start: 3, End: 7}, 7, true},
		{"inside", LineRange{Start: 3, End: 7}, 5, true},
		{"before", LineRange{Start: 3, End: 7}, 2, false},
		{"after", LineRange{Start: 3, End: 7}, 8, false},
		{"single line", LineRange{Start: 4, End: 4}, 4, true},
		{"inverted range never matches", LineRange{Start: 9, End: 2}, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.line))
		})
	}
}

func TestFunctionSet(t *testing.T) {
	set := NewFunctionSet("b_test", "a_test")
	set.Add("a_test")

	assert.True(t, set.Has("a_test"))
	assert.False(t, set.Has("A_test"))
	assert.Equal(t, []string{"a_test", "b_test"}, set.Sorted())
}

func TestModuleRanges(t *testing.T) {
	ranges := ModuleRanges{
		"/src/lib.rs":    {{Start: 10, End: 20}, {Start: 40, End: 45}},
		"/src/parser.rs": {{Start: 3, End: 5}},
	}

	assert.True(t, ranges.Contains("/src/lib.rs", 42))
	assert.False(t, ranges.Contains("/src/lib.rs", 30))
	assert.False(t, ranges.Contains("/src/other.rs", 12))
	assert.Equal(t, 3, ranges.Count())
	assert.Equal(t, []Path{"/src/lib.rs", "/src/parser.rs"}, ranges.Files())
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, "Cargo.toml", rules.Manifest)
	assert.Equal(t, "src", rules.SourceDir)
	assert.Equal(t, ".rs", rules.Extension)
	assert.Equal(t, 5, rules.Lookahead)
	assert.Equal(t, []string{"/tests/"}, rules.TestDirs)
	assert.Equal(t, []string{"/tests.rs"}, rules.TestFiles)
}
