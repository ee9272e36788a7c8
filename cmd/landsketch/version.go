package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/landsketch"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of landsketch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("landsketch version %s\n", strings.TrimSpace(landsketch.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
