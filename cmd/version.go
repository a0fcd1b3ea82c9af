package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and configuration details",
		Long:  "Displays the build version, the supported config version and the config file in effect.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			version := "unknown"
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				version = info.Main.Version
			}

			configFile := "none (defaults)"
			if configLoaded {
				configFile = viper.ConfigFileUsed()
			}

			cmd.Println("lcovfilter version\t", version)
			cmd.Println("config version\t", currentConfigVersion)
			cmd.Println("config file\t", configFile)
		},
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
