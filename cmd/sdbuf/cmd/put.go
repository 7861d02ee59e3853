package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"github.com/ssargent/sdbuf/pkg/export"
)

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Store a record in the archive",
	Long: `Store a record in the archive and print its ID.

JSON input (a .json file, or anything starting with '{') is parsed and
encoded first; anything else must already be a valid sdbuf buffer.

Examples:
  sdbuf put record.json
  sdbuf put record.sdb`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		archive, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer archive.Close()

		var id ksuid.KSUID
		if isJSONInput(args[0], data) {
			rec, err := export.ParseJSON(data)
			if err != nil {
				return err
			}
			id, err = archive.Put(rec)
			if err != nil {
				return err
			}
		} else {
			id, err = archive.PutRaw(data)
			if err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), id.String())
		return nil
	},
}

func isJSONInput(path string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
}

func init() {
	rootCmd.AddCommand(putCmd)
}
