package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pyskel.dev/pkg/pyskel/internal/controller"
)

var serveAddrFlag string
var serveOfflineFlag bool

// serveCmd represents the serve command.
var serveCmd = newServeCmd()

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the test generation HTTP API",
		Long: `Run the HTTP API until interrupted:

  POST /generate-test  {"code": "..."} -> {"test_code", "source", "warning"}
  POST /synthesize     {"code": "..."} -> offline skeleton
  POST /classify       {"text": "..."} -> {"is_code"}
  GET  /healthz`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{consoleLogAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := viper.GetString(serverAddrKey)

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			gin.SetMode(gin.ReleaseMode)

			api := controller.NewHTTPController(
				newGenerator(offlineRequested(serveOfflineFlag)),
				classifier,
				synthesizer,
				controller.HTTPConfig{MaxBodyBytes: viper.GetInt64(serverMaxBodyBytesKey)},
			)

			cmd.Printf("listening on %s\n", listener.Addr())

			return api.Serve(ctx, listener)
		},
	}

	cmd.Flags().StringVar(&serveAddrFlag, addrFlagName, viper.GetString(serverAddrKey), "listen address")
	bindFlagToConfig(cmd.Flags().Lookup(addrFlagName), serverAddrKey)

	configureOfflineFlag(cmd, &serveOfflineFlag)

	return cmd
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
