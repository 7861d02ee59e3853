package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/sdbuf/pkg/dump"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file.sdb>",
	Short: "Print a debug listing of an sdbuf buffer",
	Long: `Print every element of an sdbuf buffer with its key, type and raw
bytes, followed by the buffer size and its overhead compared to a packed
struct. --hex adds a hex dump of the whole buffer.

Example:
  sdbuf dump record.sdb --hex`,
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
		rec, err := newCodec(cfg).Decode(data)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if withHex, _ := cmd.Flags().GetBool("hex"); withHex {
			fmt.Fprintf(out, "%d bytes\n", len(data))
			if err := dump.Hex(out, data); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		return dump.Debug(out, rec)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("hex", false, "Also print a hex dump of the buffer")
}
