package main

import (
	"os"

	"github.com/aretw0/landsketch/internal/cli"
	"github.com/aretw0/landsketch/pkg/session"
	"github.com/spf13/cobra"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Drive a canvas with JSON lines on stdin",
	Long: `Reads one JSON command per line from stdin and answers each with one JSON
line on stdout. Commands:

  {"op":"brush","brush":"Water","size":40}
  {"op":"pointer","type":"down","x":100,"y":120}   (also move, up, leave; optional "rect")
  {"op":"clear"}
  {"op":"submit"}
  {"op":"export","dir":"out"}
  {"op":"state"}`,
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		flagID, _ := cmd.Flags().GetString("session")
		sessionID, err := cli.ResolveSessionID(flagID)
		if err != nil {
			exitWith("Error resolving session", err)
		}

		studio, err := app.NewStudio(session.Scope(app.Store, sessionID))
		if err != nil {
			exitWith("Error initializing studio", err)
		}
		app.Logger.Info("Streaming", "session_id", sessionID)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		if err := cli.HandleExecutionError(cli.RunStream(sigCtx, studio, os.Stdin, os.Stdout)); err != nil {
			exitWith("Stream error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)

	streamCmd.Flags().String("session", "", "Session ID to store the sketch and results under (default: new UUID)")
}
