package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd builds the opencua command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "opencua",
		Short:        "OpenCUA dataset tooling",
		Long:         "Tools for turning recorded computer-use trajectories into training-ready datasets.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	root.PersistentFlags().Bool("log-source", false, "include caller information in logs")
	root.PersistentFlags().String("config", "", "path to a YAML configuration file")
	root.PersistentFlags().String("env-file", ".env", "path to an env file loaded before configuration")

	root.AddCommand(
		ConvertCmd(),
	)

	return root
}
