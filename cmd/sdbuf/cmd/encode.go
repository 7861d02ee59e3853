package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/sdbuf/pkg/dump"
	"github.com/ssargent/sdbuf/pkg/export"
	"github.com/ssargent/sdbuf/pkg/storage"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <input.json>",
	Short: "Encode a JSON record into an sdbuf buffer",
	Long: `Encode a JSON object keyed by record key into an sdbuf buffer.

Values are numbers, arrays of numbers, blobs written as {"hex": "..."}
or {"base64": "..."}, or typed entries such as {"type": "u32", "value": 7}.
Untyped values get the narrowest wire type that holds them. Use "-" to
read from stdin. Without --output the buffer is printed as hex.

Examples:
  sdbuf encode record.json -o record.sdb
  echo '{"1": 11, "2": [-1, 2]}' | sdbuf encode -`,
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
		rec, err := export.ParseJSON(data)
		if err != nil {
			return err
		}

		c := newCodec(cfg)
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			buf, err := c.Encode(rec)
			if err != nil {
				return err
			}
			return dump.Hex(cmd.OutOrStdout(), buf)
		}

		if err := storage.WriteFile(output, rec, c); err != nil {
			return err
		}
		cmd.Printf("Wrote %d bytes to %s\n", c.EncodedSize(rec), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringP("output", "o", "", "Write the buffer to this file")
}
