package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// SummaryStore persists run summaries.
type SummaryStore interface {
	SaveSummary(ctx context.Context, path m.Path, summary m.Summary) error
	LoadSummary(ctx context.Context, path m.Path) (m.Summary, error)
}

// YAMLSummaryStore stores summaries as YAML documents.
type YAMLSummaryStore struct{}

// NewSummaryStore constructs a YAML-backed SummaryStore.
func NewSummaryStore() *YAMLSummaryStore {
	return &YAMLSummaryStore{}
}

// SaveSummary writes summary to path, replacing any previous file.
func (s *YAMLSummaryStore) SaveSummary(ctx context.Context, path m.Path, summary m.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create summary dir: %w", err)
		}
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// LoadSummary reads a summary written by SaveSummary. A filter run loads the
// previous summary before replacing it.
func (s *YAMLSummaryStore) LoadSummary(ctx context.Context, path m.Path) (m.Summary, error) {
	if err := ctx.Err(); err != nil {
		return m.Summary{}, err
	}

	// #nosec G304 - the summary path is supplied by the operator
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.Summary{}, fmt.Errorf("read summary: %w", err)
	}

	var summary m.Summary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return m.Summary{}, fmt.Errorf("decode summary: %w", err)
	}

	return summary, nil
}
