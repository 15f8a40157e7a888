package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// errNotCode makes classify exit non-zero for text that is not Python.
var errNotCode = errors.New("input is not valid Python")

// classifyCmd represents the classify command.
var classifyCmd = newClassifyCmd()

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [file]",
		Short: "Report whether a file or stdin is valid Python",
		Long: `Parse the input as a Python 3 module and print "code" or "not code".
The exit status is 1 when the input is not code.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isCode, err := newWorkflow(cmd, true).Classify(cmd.Context(), sourceArgs(cmd, args))
			if err != nil {
				return err
			}

			if !isCode {
				cmd.SilenceUsage = true
				return errNotCode
			}

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
