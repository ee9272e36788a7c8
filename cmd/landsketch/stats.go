package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aretw0/landsketch/internal/cli"
	"github.com/aretw0/landsketch/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <script>",
	Short: "Show how much of the canvas each land-cover class covers",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		jsonMode, _ := cmd.Flags().GetBool("json")

		studio, _, err := app.Paint(cmd.Context(), memory.NewStore(), args[0])
		if err != nil {
			exitWith("Error painting", err)
		}
		cov, err := studio.Coverage()
		if err != nil {
			exitWith("Error reading canvas", err)
		}
		rows := cli.CoverageRows(cov)

		if jsonMode {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rows); err != nil {
				exitWith("Error", err)
			}
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "BRUSH\tPIXELS\tSHARE\t")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t\n", r.Brush, r.Pixels, r.Percent)
		}
		_ = tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("json", false, "Print the table as JSON")
}
