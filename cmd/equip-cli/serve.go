package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/smallnest/goequip/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serves a directory of reports over HTTP.",
	Long: `The serve command exposes the reports of a directory (default: --reports-dir)
as a JSON API on --listen:

  GET /healthz
  GET /api/v1/reports
  GET /api/v1/reports/{name}
  GET /api/v1/reports/{name}/table
  GET /api/v1/reports/{name}/columns/{column}[?key=...]
  GET /api/v1/reports/{name}/columns/{column}/stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Request logging needs at least info level.
		logger := zerolog.Ctx(ctx).Level(zerolog.InfoLevel)
		if cfg.Verbose {
			logger = logger.Level(zerolog.DebugLevel)
		}

		api := server.NewWebAPI(logger, server.Config{
			Addr:          cfg.ListenAddr,
			ReportsDir:    dirArg(args, 0),
			ParserOptions: cfg.ParserOptions(),
		})
		return api.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
