package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// ErrInvalidRules is returned when a rule set cannot be compiled.
var ErrInvalidRules = errors.New("invalid rules")

// syntax is the compiled form of m.Rules.
type syntax struct {
	rules m.Rules

	testAnnotation *regexp.Regexp
	functionDef    *regexp.Regexp
	testConfig     *regexp.Regexp
	moduleOpen     *regexp.Regexp
}

func compileRules(rules m.Rules) (*syntax, error) {
	if strings.TrimSpace(rules.Manifest) == "" || strings.TrimSpace(rules.SourceDir) == "" {
		return nil, fmt.Errorf("%w: manifest and source dir are required", ErrInvalidRules)
	}

	if rules.Extension == "" {
		return nil, fmt.Errorf("%w: source extension is required", ErrInvalidRules)
	}

	if rules.Lookahead < 0 {
		return nil, fmt.Errorf("%w: lookahead must not be negative, got %d", ErrInvalidRules, rules.Lookahead)
	}

	s := &syntax{rules: rules}

	patterns := []struct {
		name    string
		pattern string
		target  **regexp.Regexp
	}{
		{"test annotation", rules.TestAnnotation, &s.testAnnotation},
		{"function definition", rules.FunctionDef, &s.functionDef},
		{"test configuration", rules.TestConfig, &s.testConfig},
		{"module opening", rules.ModuleOpen, &s.moduleOpen},
	}

	for _, p := range patterns {
		re, err := regexp.Compile(p.pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s pattern: %w", ErrInvalidRules, p.name, err)
		}

		*p.target = re
	}

	if s.functionDef.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: function definition pattern needs a capture group for the name", ErrInvalidRules)
	}

	return s, nil
}
