package cmd

import (
	"fmt"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a record from the archive",
	Long: `Get a record from the archive and print it as JSON, or write the
raw buffer to a file with --output.

Examples:
  sdbuf get 2Bm3f9Lxq1CqQVKFc6nKc0gLrZ1
  sdbuf get 2Bm3f9Lxq1CqQVKFc6nKc0gLrZ1 -o record.sdb`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid record ID %q: %w", args[0], err)
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		enc, err := blobEncoding(cmd, cfg)
		if err != nil {
			return err
		}

		archive, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer archive.Close()

		output, _ := cmd.Flags().GetString("output")
		if output != "" {
			buf, err := archive.GetRaw(id)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, buf, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			cmd.Printf("Wrote %d bytes to %s\n", len(buf), output)
			return nil
		}

		rec, err := archive.Get(id)
		if err != nil {
			return err
		}
		detailed, _ := cmd.Flags().GetBool("detailed")
		return writeRecordJSON(cmd.OutOrStdout(), rec, enc, detailed)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringP("output", "o", "", "Write the raw buffer to this file")
	getCmd.Flags().Bool("detailed", false, "Print type and size of every entry")
	getCmd.Flags().String("blob-encoding", "", "Render blobs as hex or base64 (default from config)")
}
