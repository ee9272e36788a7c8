package main

import (
	"os"

	"github.com/aretw0/landsketch/internal/cli"
	"github.com/aretw0/landsketch/internal/presentation/tui"
	"github.com/aretw0/landsketch/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <script>",
	Short: "Replay a stroke script and save it as painting.png",
	Long: `Replays a stroke script and writes the lossless PNG. With --out - the PNG
is written to stdout.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		out, _ := cmd.Flags().GetString("out")

		studio, _, err := app.Paint(cmd.Context(), memory.NewStore(), args[0])
		if err != nil {
			exitWith("Error painting", err)
		}

		if out == "-" {
			if tui.IsTerminal(os.Stdout) {
				cli.PrintSystemMessage(os.Stderr, "Refusing to write PNG bytes to a terminal.")
				os.Exit(1)
			}
			if _, err := studio.ExportTo(os.Stdout); err != nil {
				exitWith("Error exporting", err)
			}
			return
		}

		path, err := studio.Export(out)
		if err != nil {
			exitWith("Error exporting", err)
		}
		cli.PrintSystemMessage(os.Stderr, "Saved %s", path)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("out", "o", ".", "Directory for painting.png, or - for stdout")
}
