package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pyskel.dev/pkg/pyskel/internal/domain"
)

var generateOfflineFlag bool
var generateStdoutFlag bool
var generateDiffFlag bool
var generateParallelFlag int
var generateRecursiveFlag bool

const generateLongDescription = `Generate a pytest module for each Python source.

For every input foo.py a test_foo.py is written next to it. Directories are
scanned for *.py files, skipping existing test modules. With no arguments the
snippet is read from stdin and the module printed to stdout.

Use --diff to compare against existing test modules without writing, and
--offline to skip the chat model and synthesize skeletons only.`

// generateCmd represents the generate command.
var generateCmd = newGenerateCmd()

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [files or directories...]",
		Short: "Generate pytest modules for Python sources",
		Long:  generateLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow := newWorkflow(cmd, offlineRequested(generateOfflineFlag))

			return workflow.Generate(cmd.Context(), domain.GenerateArgs{
				Paths:     parsePaths(args),
				Stdin:     cmd.InOrStdin(),
				Recursive: viper.GetBool(generateRecursiveKey),
				Stdout:    generateStdoutFlag,
				Diff:      generateDiffFlag,
				Threads:   viper.GetInt(generateParallelKey),
			})
		},
	}

	configureGenerateFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func configureGenerateFlags(cmd *cobra.Command) {
	configureOfflineFlag(cmd, &generateOfflineFlag)

	cmd.Flags().BoolVar(&generateStdoutFlag, stdoutFlagName, false, "print modules to stdout instead of writing test files")
	cmd.Flags().BoolVar(&generateDiffFlag, diffFlagName, false, "show a unified diff against existing test files instead of writing")

	cmd.Flags().IntVarP(&generateParallelFlag, parallelFlagName, "p", viper.GetInt(generateParallelKey), "number of sources generated concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), generateParallelKey)

	cmd.Flags().BoolVarP(&generateRecursiveFlag, recursiveFlagName, "r", viper.GetBool(generateRecursiveKey), "descend into subdirectories")
	bindFlagToConfig(cmd.Flags().Lookup(recursiveFlagName), generateRecursiveKey)

	cmd.MarkFlagsMutuallyExclusive(stdoutFlagName, diffFlagName)
}

// configureOfflineFlag registers --offline. Several commands share it, so it
// is combined with llm.offline at run time instead of being bound to the key.
func configureOfflineFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, offlineFlagName, false, "never call the chat model; synthesize skeletons only (or set llm.offline)")
}

func offlineRequested(flag bool) bool {
	return flag || viper.GetBool(llmOfflineKey)
}
