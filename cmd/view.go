package cmd

import (
	"github.com/spf13/cobra"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [file]",
		Short: "Page through the synthesized test skeleton",
		Long: `Synthesize the offline test skeleton for a file or stdin and open it in an
interactive pager when attached to a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkflow(cmd, true).View(cmd.Context(), sourceArgs(cmd, args))
		},
	}
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
