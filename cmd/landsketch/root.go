package main

import (
	"fmt"
	"os"

	"github.com/aretw0/landsketch/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "landsketch",
	Short: "Paint a land-cover sketch and search for places that look like it",
	Long: `landsketch paints semantic land-cover sketches (sky, water, trees, ...)
from stroke scripts, exports them as PNG and submits them to an image-search
backend. It can also serve painting sessions over HTTP or MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "landsketch.yaml", "Config file (YAML, or JSON by extension)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before the config")
	rootCmd.PersistentFlags().String("endpoint", "", "Search backend base URL (overrides config)")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file or redis (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// setupApp resolves the persistent flags into an App. It exits on error.
func setupApp(cmd *cobra.Command) *cli.App {
	opts := cli.Options{}
	opts.ConfigPath, _ = cmd.Flags().GetString("config")
	opts.EnvFile, _ = cmd.Flags().GetString("env-file")
	opts.Endpoint, _ = cmd.Flags().GetString("endpoint")
	opts.Store, _ = cmd.Flags().GetString("store")
	opts.Debug, _ = cmd.Flags().GetBool("debug")

	app, err := cli.Setup(cmd.Context(), opts)
	if err != nil {
		exitWith("Error loading configuration", err)
	}
	return app
}

func exitWith(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
