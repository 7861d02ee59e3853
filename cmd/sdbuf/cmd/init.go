/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/sdbuf/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with a generated API key",
	Long: `Create the sdbuf configuration file and data directory.

A random API key is generated for the HTTP server and written to the
config file together with the default settings.

Examples:
  sdbuf init
  sdbuf init --config ./sdbuf.yaml --data-dir ./data --backend bolt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path := configPath(cmd)

		if config.ConfigExists(path) && !force {
			cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", path)
			return nil
		}

		dataDir, _ := cmd.Flags().GetString("data-dir")
		cfg, err := config.BootstrapConfig(path, dataDir)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("backend") {
			cfg.Storage.Backend, _ = cmd.Flags().GetString("backend")
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg, path); err != nil {
				return err
			}
		}

		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		cmd.Printf("Config written to %s\n", path)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("Storage backend: %s\n", cfg.Storage.Backend)
		cmd.Printf("API key: %s\n", cfg.Security.APIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  sdbuf serve --config %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
