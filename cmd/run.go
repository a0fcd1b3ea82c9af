package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runInputFlag string
var runOutputFlag string
var runSummaryFlag string
var runDryRunFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Filter a coverage report",
		Long: `Filter the input LCOV report and write the result to the output path.

With --dry-run nothing is written; a unified diff of the dropped records is
printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Filter(cmd.Context(), filterArgs(runDryRunFlag))
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runInputFlag, inputFlagName, "i", viper.GetString(inputConfigKey), "LCOV report to filter")
	bindFlagToConfig(cmd.Flags().Lookup(inputFlagName), inputConfigKey)

	cmd.Flags().StringVarP(&runOutputFlag, outputFlagName, "o", viper.GetString(outputConfigKey), "path of the filtered LCOV report")
	bindFlagToConfig(cmd.Flags().Lookup(outputFlagName), outputConfigKey)

	cmd.Flags().StringVar(&runSummaryFlag, summaryFlagName, viper.GetString(summaryConfigKey), "write a YAML run summary to this path")
	bindFlagToConfig(cmd.Flags().Lookup(summaryFlagName), summaryConfigKey)

	cmd.Flags().BoolVar(&runDryRunFlag, dryRunFlagName, false, "print the records that would be dropped without writing the output")
}
