package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List record IDs in the archive",
	Long: `List the IDs of all archived records, oldest first. --long adds the
creation time and buffer size of each record.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		archive, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer archive.Close()

		ids, err := archive.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			cmd.Println("No records found")
			return nil
		}

		long, _ := cmd.Flags().GetBool("long")
		if !long {
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSIZE")
		for _, id := range ids {
			buf, err := archive.GetRaw(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\n", id, id.Time().Format("2006-01-02 15:04:05"), len(buf))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolP("long", "l", false, "Show creation time and size")
}
