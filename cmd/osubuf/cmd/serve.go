/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/api"
	"github.com/ssargent/osubuf/pkg/config"
)

func (a *app) serverFactory() api.ServerFactory {
	if container == nil {
		return api.NewServerFactory(a.logger)
	}
	return container.GetServerFactory()
}

func newServeCmd(a *app) *cobra.Command {
	var (
		port   int
		bind   string
		apiKey string
		noAuth bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the osubuf REST API server.

The server decodes and encodes records over HTTP and exposes the archive.
Requests to /api/v1 require the X-API-Key header unless --no-auth is set.
When the configured key is "auto" a key is generated for this run.

Examples:
  osubuf serve
  osubuf serve --port 9000 --api-key mysecretkey
  osubuf serve --bind 127.0.0.1 --no-auth`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			if cmd.Flags().Changed("bind") {
				a.cfg.Bind = bind
			}
			if cmd.Flags().Changed("api-key") {
				a.cfg.Security.APIKey = apiKey
			}

			key := a.cfg.Security.APIKey
			switch {
			case noAuth:
				key = ""
				a.logger.Warn("authentication disabled")
			case key == "" || key == "auto":
				generated, err := config.GenerateSecureKey(32)
				if err != nil {
					return err
				}
				key = generated
				cmd.Printf("Generated API key for this session: %s\n", key)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withArchive(func(archive api.ArchiveStore) error {
				starter := a.serverFactory().CreateServerStarter()
				err := starter.StartServer(ctx, archive, a.layouts, api.ServerConfig{
					Bind:            a.cfg.Bind,
					Port:            a.cfg.Port,
					APIKey:          key,
					MaxBodySize:     a.cfg.Codec.MaxBufferSize,
					NullableStrings: a.cfg.Codec.NullableStrings,
				})
				if err != nil && err != context.Canceled {
					return fmt.Errorf("error starting server: %w", err)
				}
				a.logger.Info("server stopped", zap.String("data_dir", a.cfg.DataDir))
				return nil
			})
		},
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&bind, "bind", "", "Address to bind to (default all interfaces)")
	serveCmd.Flags().StringVar(&apiKey, "api-key", "", "API key for authentication (overrides the config file)")
	serveCmd.Flags().BoolVar(&noAuth, "no-auth", false, "Disable API key authentication")
	return serveCmd
}
