package main

import (
	"os"

	"github.com/aretw0/landsketch/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "List the brushes and their exact colours",
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintPalette(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}
