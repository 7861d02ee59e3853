package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/sdbuf/pkg/export"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file.sdb>",
	Short: "Decode an sdbuf buffer to JSON or MessagePack",
	Long: `Decode an sdbuf buffer and print its values.

The default output is a JSON object keyed by record key. --detailed
prints one object per entry with its wire type, and --format msgpack
writes the flattened values as MessagePack instead.

Examples:
  sdbuf decode record.sdb
  sdbuf decode record.sdb --detailed --blob-encoding base64
  sdbuf decode record.sdb --format msgpack > record.msgpack`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		enc, err := blobEncoding(cmd, cfg)
		if err != nil {
			return err
		}
		rec, err := readRecord(cmd, newCodec(cfg), args[0])
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		detailed, _ := cmd.Flags().GetBool("detailed")
		switch format {
		case "json":
			return writeRecordJSON(cmd.OutOrStdout(), rec, enc, detailed)
		case "msgpack":
			data, err := export.MarshalMsgpack(rec)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Bool("detailed", false, "Print type and size of every entry")
	decodeCmd.Flags().String("blob-encoding", "", "Render blobs as hex or base64 (default from config)")
	decodeCmd.Flags().StringP("format", "f", "json", "Output format: json or msgpack")
}
