package main

import (
	"os"
	"time"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/internal/cli"
	"github.com/aretw0/landsketch/internal/presentation/tui"
	"github.com/aretw0/landsketch/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

var paintCmd = &cobra.Command{
	Use:   "paint <script>",
	Short: "Replay a stroke script and preview the result",
	Long: `Replays a YAML/JSON stroke script onto a fresh canvas and draws a preview
in the terminal. With --watch the script is replayed every time it changes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		out, _ := cmd.Flags().GetString("out")
		watch, _ := cmd.Flags().GetBool("watch")
		preview, _ := cmd.Flags().GetBool("preview")
		if !cmd.Flags().Changed("preview") {
			preview = tui.IsTerminal(os.Stdout)
		}

		if preview {
			tui.PrintBanner(os.Stdout, landsketch.Version)
		}

		render := func(studio *landsketch.Studio) error {
			img, err := studio.Snapshot()
			if err != nil {
				return err
			}
			if preview {
				tui.RenderPreview(os.Stdout, img, min(tui.Width(os.Stdout), 96))
			}
			w, h := studio.Bounds()
			cli.PrintSystemMessage(os.Stderr, "Painted %d segments on %dx%d.", studio.Engine().Segments(), w, h)
			if out != "" {
				path, err := studio.Export(out)
				if err != nil {
					return err
				}
				cli.PrintSystemMessage(os.Stderr, "Saved %s", path)
			}
			return nil
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		if watch {
			if err := app.WatchPaint(sigCtx, args[0], 500*time.Millisecond, render); err != nil {
				exitWith("Error", err)
			}
			return
		}

		studio, _, err := app.Paint(sigCtx, memory.NewStore(), args[0])
		if err == nil {
			err = render(studio)
		}
		if err := cli.HandleExecutionError(err); err != nil {
			exitWith("Error painting", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(paintCmd)

	paintCmd.Flags().StringP("out", "o", "", "Directory to save painting.png into")
	paintCmd.Flags().BoolP("watch", "w", false, "Replay the script whenever it changes")
	paintCmd.Flags().Bool("preview", false, "Draw the canvas in the terminal (default: when stdout is a terminal)")
}
