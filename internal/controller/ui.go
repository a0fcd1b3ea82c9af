// Package controller provides the console output of lcovfilter runs.
package controller

import (
	"context"

	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// UI defines how scan and filter progress is reported.
// Implementations can use different output methods.
type UI interface {
	DisplayRoots(ctx context.Context, roots []m.Path)
	DisplayScanCounts(ctx context.Context, result m.ScanResult)
	DisplayScanDetails(ctx context.Context, result m.ScanResult) error
	DisplayFilterSummary(ctx context.Context, stats m.FilterStats, output m.Path, dryRun bool)
	DisplayPreviousSummary(ctx context.Context, previous m.Summary)
	DisplayDiff(ctx context.Context, from, to m.Path, before, after string) error
}
