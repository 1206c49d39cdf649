package probe

import (
	"github.com/spf13/cobra"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Checks the readiness endpoint of a running server",
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			runProbe("/-/ready", verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "print the probe response body")

	return cmd
}
