package model

import "time"

// FilterStats counts what the coverage filter removed.
type FilterStats struct {
	ExcludedFiles     []Path
	ExcludedFunctions int
	ExcludedLines     int

	// InputLines = OutputLines + DroppedLines.
	InputLines   int
	OutputLines  int
	DroppedLines int
}

// Summary is the persisted record of a filter run.
type Summary struct {
	Version     int         `yaml:"version"`
	GeneratedAt time.Time   `yaml:"generated_at"`
	Input       Path        `yaml:"input"`
	Output      Path        `yaml:"output"`
	Roots       []Path      `yaml:"roots"`
	Functions   int         `yaml:"test_functions"`
	Modules     int         `yaml:"test_modules"`
	Excluded    SummaryStat `yaml:"excluded"`
	Lines       LineTotals  `yaml:"lines"`
}

// SummaryStat lists the exclusions of a run.
type SummaryStat struct {
	Files     []Path `yaml:"files"`
	Functions int    `yaml:"functions"`
	Lines     int    `yaml:"lines"`
}

// LineTotals records report line counts before and after filtering.
type LineTotals struct {
	Input   int `yaml:"input"`
	Output  int `yaml:"output"`
	Dropped int `yaml:"dropped"`
}
