package cli

import (
	"github.com/spf13/cobra"
)

func NewCmdRoot(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recap",
		Short: "recap turns screen recordings into short highlight summaries.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewCmdServe())
	cmd.AddCommand(NewCmdRun())
	cmd.AddCommand(NewCmdStage())
	cmd.AddCommand(NewCmdStatus())
	cmd.AddCommand(NewCmdCleanup())
	return cmd
}
