// Package cmd provides the root command and CLI setup for lcovfilter.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"lcovfilter.dev/pkg/lcovfilter/internal/adapter"
	"lcovfilter.dev/pkg/lcovfilter/internal/controller"
	"lcovfilter.dev/pkg/lcovfilter/internal/domain"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var summaryStore adapter.SummaryStore
var workflow domain.Workflow
var ui controller.UI

// workflowErr is set when the configured rules cannot be compiled.
var workflowErr error

var rootDirFlag string
var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewSimpleUI(rootCmd)
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	summaryStore = adapter.NewSummaryStore()
	workflow, workflowErr = newWorkflow(ui)
}

const rootLongDescription = `lcovfilter removes test code from LCOV coverage reports so that coverage
reflects production code only.

It discovers Cargo crates under the repository root, finds #[test] functions
and #[cfg(test)] modules in their sources, and drops the matching function and
line records. Report blocks for files under tests/ directories or named
tests.rs are dropped whole.

Without a sub-command it reads lcov.info and writes lcov.filtered.info.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "lcovfilter",
		Short:        "Remove test code from LCOV coverage reports",
		Long:         rootLongDescription,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configErr != nil {
				return configErr
			}

			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			return workflowErr
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Filter(cmd.Context(), filterArgs(false))
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&rootDirFlag, rootFlagName, "r", viper.GetString(rootConfigKey), "repository root to scan for source roots")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(rootFlagName), rootConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// newWorkflow builds the workflow from the configured rules.
func newWorkflow(ui controller.UI) (domain.Workflow, error) {
	rules, err := loadRules()
	if err != nil {
		return nil, err
	}

	scanner, err := domain.NewScanner(fsAdapter, rules)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	return domain.NewWorkflow(
		fsAdapter,
		summaryStore,
		ui,
		scanner,
		domain.NewCoverageFilter(rules),
	), nil
}

func filterArgs(dryRun bool) domain.FilterArgs {
	return domain.FilterArgs{
		Root:    m.Path(viper.GetString(rootConfigKey)),
		Input:   m.Path(viper.GetString(inputConfigKey)),
		Output:  m.Path(viper.GetString(outputConfigKey)),
		Summary: m.Path(viper.GetString(summaryConfigKey)),
		DryRun:  dryRun,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
