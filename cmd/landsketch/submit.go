package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/internal/cli"
	"github.com/aretw0/landsketch/pkg/session"
	"github.com/aretw0/landsketch/pkg/submit"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <script>",
	Short: "Replay a stroke script and search for matching places",
	Long: `Replays a stroke script, submits the sketch to the search backend and prints
the results. The sketch and the results are kept in the configured store under
the session ID, so they can be read back with 'landsketch session inspect'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		flagID, _ := cmd.Flags().GetString("session")
		sessionID, err := cli.ResolveSessionID(flagID)
		if err != nil {
			exitWith("Error resolving session", err)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		store := session.Scope(app.Store, sessionID)
		studio, _, err := app.Paint(sigCtx, store, args[0], landsketch.WithNavigator(cli.ResultsNavigator(os.Stderr)))
		if err != nil {
			exitWith("Error painting", err)
		}

		app.Logger.Info("Submitting sketch", "session_id", sessionID, "endpoint", studio.Endpoint())
		report := studio.Submit(sigCtx)
		if report.Outcome != submit.OutcomeSucceeded {
			// The notifier has already printed the user-facing message.
			if report.Message == "" {
				cli.PrintSystemMessage(os.Stderr, "Submission %s.", report.Outcome)
			}
			os.Exit(1)
		}

		cli.PrintSystemMessage(os.Stderr, "Session '%s'.", sessionID)
		out, err := json.MarshalIndent(report.Result.Results, "", "  ")
		if err != nil {
			exitWith("Error formatting results", err)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().String("session", "", "Session ID to store the sketch and results under (default: new UUID)")
}
