package cmd

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record from the archive",
	Long: `Delete a record from the archive.

Example:
  sdbuf delete 2Bm3f9Lxq1CqQVKFc6nKc0gLrZ1`,
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

		archive, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer archive.Close()

		if err := archive.Delete(id); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
