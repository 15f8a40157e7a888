package cmd

import (
	"github.com/spf13/cobra"

	"pyskel.dev/pkg/pyskel/internal/controller"
	"pyskel.dev/pkg/pyskel/internal/domain"
)

var inspectFormatFlag string

// inspectCmd represents the inspect command.
var inspectCmd = newInspectCmd()

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the top-level function signatures pyskel detects",
		Long: `Analyze a file or stdin and print the detected tier (empty, parse-error,
no-functions, functions) and every top-level function signature.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := controller.ParseOutputFormat(inspectFormatFlag)
			if err != nil {
				return err
			}

			return newWorkflow(cmd, true).Inspect(cmd.Context(), domain.InspectArgs{
				SourceArgs: sourceArgs(cmd, args),
				Format:     format,
			})
		},
	}

	cmd.Flags().StringVarP(&inspectFormatFlag, formatFlagName, "f", string(controller.FormatTable), "output format: table or yaml")

	return cmd
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
