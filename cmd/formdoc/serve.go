package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/internal/logging"
	"github.com/goliatone/go-formdoc/internal/server"
	"github.com/goliatone/go-formdoc/pkg/orchestrator"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, the HTML form and live websocket sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := logging.WithModule("server")

		manager, closer, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer closer.Close()

		registry, err := orchestrator.DefaultRegistry()
		if err != nil {
			return err
		}

		opts := []server.Option{
			server.WithLogger(logger),
			server.WithTheme(appConfig.Theme.RendererConfig()),
			server.WithTimeouts(appConfig.Server.ReadTimeout, appConfig.Server.WriteTimeout, appConfig.Server.ShutdownTimeout),
		}
		if appConfig.Metrics.Enabled {
			opts = append(opts, server.WithMetrics(appConfig.Metrics.Path))
		}
		srv, err := server.New(manager, registry, opts...)
		if err != nil {
			return err
		}

		addr := appConfig.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("storage", appConfig.Storage.Driver),
			zap.Bool("metrics", appConfig.Metrics.Enabled),
		)
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
