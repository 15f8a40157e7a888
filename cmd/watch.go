package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pyskel.dev/pkg/pyskel/internal/domain"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

var watchOfflineFlag bool
var watchStdoutFlag bool

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Regenerate the test module whenever a source file changes",
		Long: `Generate test_<name>.py for a Python file, then keep it up to date on every
save until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return newWorkflow(cmd, offlineRequested(watchOfflineFlag)).Watch(ctx, domain.WatchArgs{
				Path:   m.Path(args[0]),
				Stdout: watchStdoutFlag,
			})
		},
	}

	configureOfflineFlag(cmd, &watchOfflineFlag)
	cmd.Flags().BoolVar(&watchStdoutFlag, stdoutFlagName, false, "print modules to stdout instead of writing the test file")

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
