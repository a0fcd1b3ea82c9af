package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lcovfilter.dev/pkg/lcovfilter/internal/domain"
	m "lcovfilter.dev/pkg/lcovfilter/internal/model"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Show the test functions and test modules found in the sources",
		Long: `Scan the repository root for source roots and list the test functions and
test module line ranges that a filter run would drop. No report is read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Scan(cmd.Context(), domain.ScanArgs{
				Root: m.Path(viper.GetString(rootConfigKey)),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
