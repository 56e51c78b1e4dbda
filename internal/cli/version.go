package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Version information, set at build time with ldflags.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{"skip-config": "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			printf(out, "%s version %s\n", appName, Version)
			printf(out, "Git commit: %s\n", GitCommit)
			printf(out, "Build date: %s\n", BuildDate)
		},
	}
}
