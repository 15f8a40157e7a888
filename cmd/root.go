// Package cmd provides the root command and CLI setup for pyskel.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pyskel.dev/pkg/pyskel/internal/adapter"
	"pyskel.dev/pkg/pyskel/internal/controller"
	"pyskel.dev/pkg/pyskel/internal/domain"
	m "pyskel.dev/pkg/pyskel/internal/model"
)

// consoleLogAnnotation marks commands whose logs belong on the terminal.
const consoleLogAnnotation = "pyskel/console-log"

var pythonAdapter adapter.PythonFileAdapter
var fsAdapter adapter.SourceFSAdapter
var sourceWatcher adapter.SourceWatcher
var classifier domain.Classifier
var analyzer domain.Analyzer
var synthesizer domain.Synthesizer

// verboseFlag is a root-level flag raising the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	pythonAdapter = adapter.NewLocalPythonFileAdapter()
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	sourceWatcher = adapter.NewLocalSourceWatcher(adapter.DefaultWatchDebounce)
	classifier = domain.NewClassifier(pythonAdapter)
	analyzer = domain.NewAnalyzer(pythonAdapter, classifier)
	synthesizer = domain.NewSynthesizer(analyzer)
}

const rootLongDescription = `pyskel turns a Python snippet into a pytest module.

With an API token (HF_TOKEN or llm.token) the snippet is sent to an
OpenAI-compatible chat model and the answer is checked, normalized and
wired to the snippet. Without one, or when the model fails, a deterministic
skeleton is synthesized from the snippet's top-level function signatures.

Inputs are Python files, directories of them, or code piped on stdin.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pyskel",
		Short: "Generate pytest skeletons for Python code",
		Long:  rootLongDescription,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			console := viper.GetBool(logConsoleKey) || cmd.Annotations[consoleLogAnnotation] == "true"
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey), console)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newChatAdapter returns nil, meaning offline, when offline is requested or
// no token is configured.
func newChatAdapter(offline bool) adapter.ChatAdapter {
	if offline {
		return nil
	}

	token := resolveToken()
	if token == "" {
		return nil
	}

	return adapter.NewHTTPChatAdapter(viper.GetString(llmBaseURLKey), token, llmTimeout())
}

func newGenerator(offline bool) domain.Generator {
	return domain.NewGenerator(newChatAdapter(offline), classifier, synthesizer, domain.GeneratorConfig{
		Model:           viper.GetString(llmModelKey),
		MaxTokens:       viper.GetInt(llmMaxTokensKey),
		FallbackOnError: viper.GetBool(llmFallbackOnErrorKey),
	})
}

// newWorkflow wires a Workflow whose output goes to cmd's writers.
func newWorkflow(cmd *cobra.Command, offline bool) domain.Workflow {
	return domain.NewWorkflow(
		fsAdapter,
		sourceWatcher,
		controller.NewUI(cmd, outputIsTTY(cmd)),
		newGenerator(offline),
		analyzer,
		classifier,
	)
}

func outputIsTTY(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)

	return ok && controller.IsTTY(f)
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// sourceArgs reads from the single optional file argument or stdin.
func sourceArgs(cmd *cobra.Command, args []string) domain.SourceArgs {
	if len(args) == 0 || args[0] == "-" {
		return domain.SourceArgs{Stdin: cmd.InOrStdin()}
	}

	return domain.SourceArgs{Path: m.Path(args[0])}
}
