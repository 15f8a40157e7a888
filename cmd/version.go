package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const treeSitterModule = "github.com/smacker/go-tree-sitter"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the build version, the Go version and the parser version used to build pyskel.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("version: unknown")
				return
			}

			cmd.Println("pyskel version\t", info.Main.Version)
			cmd.Println("go version\t", info.GoVersion)

			for _, dep := range info.Deps {
				if dep.Path == treeSitterModule {
					cmd.Println("tree-sitter\t", dep.Version)
				}
			}
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
