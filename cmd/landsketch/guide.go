package main

import (
	"os"

	"github.com/aretw0/landsketch/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show how to paint a sketch",
	Run: func(cmd *cobra.Command, args []string) {
		if err := tui.PrintGuide(os.Stdout); err != nil {
			exitWith("Error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
