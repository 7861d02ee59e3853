/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/ssargent/sdbuf/pkg/config"
	"github.com/ssargent/sdbuf/pkg/di"
	"github.com/ssargent/sdbuf/pkg/export"
	"github.com/ssargent/sdbuf/pkg/storage"
)

var container *di.Container

// SetContainer sets the dependency injection container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sdbuf",
	Short: "sdbuf - self-describing binary records",
	Long: `sdbuf encodes small integer-keyed records into a compact,
self-describing binary format, decodes them again, and keeps them
in a local record archive that can also be served over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/sdbuf/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the record archive")
	rootCmd.PersistentFlags().String("backend", "", "Archive backend: pebble, bolt or log")
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	return path
}

// loadConfig reads the config file if there is one and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath(cmd)

	cfg := config.DefaultConfig()
	if config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("backend") {
		cfg.Storage.Backend, _ = cmd.Flags().GetString("backend")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newCodec(cfg *config.Config) *codec.Codec {
	return codec.NewCodec(codec.WithMinorVersion(cfg.Codec.MinorVersion))
}

// blobEncoding returns the --blob-encoding flag, falling back to the config
func blobEncoding(cmd *cobra.Command, cfg *config.Config) (export.BlobEncoding, error) {
	name := cfg.Codec.BlobEncoding
	if cmd.Flags().Changed("blob-encoding") {
		name, _ = cmd.Flags().GetString("blob-encoding")
	}
	return export.ParseBlobEncoding(name)
}

// openArchive opens the configured record archive through the container
func openArchive(cfg *config.Config) (storage.Archive, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return container.GetArchiveOpener().OpenArchive(cfg.Storage.Backend, cfg.DataDir, newCodec(cfg))
}

// readInput reads path, or stdin when path is "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// readRecord decodes the buffer at path, or on stdin when path is "-"
func readRecord(cmd *cobra.Command, c *codec.Codec, path string) (*codec.Record, error) {
	if path != "-" {
		return storage.ReadFile(path, c)
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	return c.Decode(data)
}

// writeRecordJSON prints the flat or detailed JSON view of rec
func writeRecordJSON(w io.Writer, rec *codec.Record, enc export.BlobEncoding, detailed bool) error {
	var (
		data []byte
		err  error
	)
	if detailed {
		data, err = export.MarshalDetailedJSON(rec, enc)
	} else {
		data, err = export.MarshalJSON(rec, enc)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
