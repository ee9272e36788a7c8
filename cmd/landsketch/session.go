package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/landsketch/internal/cli"
	"github.com/aretw0/landsketch/pkg/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long: `List, inspect, and remove the sketches and search results kept in the
configured store. Use --store file or --store redis; the memory store is empty
in every new process.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		ids, err := session.StoredIDs(cmd.Context(), app.Store)
		if err != nil {
			exitWith("Error listing sessions", err)
		}

		if len(ids) == 0 {
			fmt.Println("No stored sessions found.")
			return
		}

		fmt.Println("Stored Sessions:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Show what a session has stored",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		report, err := cli.InspectSession(cmd.Context(), app.Store, args[0])
		if err != nil {
			exitWith(fmt.Sprintf("Error loading session '%s'", args[0]), err)
		}

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			exitWith("Error marshaling session", err)
		}
		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		app := setupApp(cmd)
		defer app.Close()

		if all, _ := cmd.Flags().GetBool("all"); all {
			ids, err := session.StoredIDs(cmd.Context(), app.Store)
			if err != nil {
				exitWith("Error listing sessions", err)
			}
			args = ids
		}

		hasError := false
		for _, id := range args {
			if err := session.Purge(cmd.Context(), app.Store, id); err != nil {
				fmt.Printf("Error removing '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", id)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}
