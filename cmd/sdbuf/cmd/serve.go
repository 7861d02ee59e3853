/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/sdbuf/pkg/api"
	"github.com/ssargent/sdbuf/pkg/config"
	"github.com/ssargent/sdbuf/pkg/export"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the sdbuf REST API server.

The server encodes and decodes records and stores them in the configured
archive. When an API key is configured every /api/v1 request must carry it
in the X-API-Key header. Prometheus metrics are served on /metrics.

Examples:
  sdbuf serve
  sdbuf serve --port 9000 --api-key mysecretkey --backend bolt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		serverConfig, err := serverConfigFor(cmd, cfg)
		if err != nil {
			return err
		}

		archive, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer archive.Close()

		if serverConfig.APIKey == "" {
			cmd.Printf("Warning: no API key configured, the API is unauthenticated\n")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, archive, newCodec(cfg), serverConfig)
	},
}

// serverConfigFor merges serve flags over the loaded config
func serverConfigFor(cmd *cobra.Command, cfg *config.Config) (api.ServerConfig, error) {
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("api-key") {
		cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
	}
	if err := cfg.Validate(); err != nil {
		return api.ServerConfig{}, err
	}
	enc, err := export.ParseBlobEncoding(cfg.Codec.BlobEncoding)
	if err != nil {
		return api.ServerConfig{}, fmt.Errorf("invalid config: %w", err)
	}

	return api.ServerConfig{
		Port:           cfg.Port,
		Bind:           cfg.Bind,
		APIKey:         cfg.Security.APIKey,
		BlobEncoding:   enc,
		RequestLogging: cfg.RequestLogging(),
	}, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (default from config)")
	serveCmd.Flags().String("bind", "", "Address to bind (default from config)")
	serveCmd.Flags().String("api-key", "", "API key for authentication (default from config)")
}
