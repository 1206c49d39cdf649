package command

import (
	"github.com/spf13/cobra"
)

// NewSubcommandGroup groups subcommands under a parent that only prints its
// own help when called bare.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: use,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}
