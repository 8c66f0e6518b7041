// Package main provides the oceanpub CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath is the optional config file path
var configPath string

func main() {
	// Deployment credentials commonly live in a .env next to the input
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "oceanpub",
	Short: "Resolve and archive ocean-research publication references",
	Long: `oceanpub ingests spreadsheets of publication references reported by
research vessel and instrument center users, resolves each citation to a
canonical Crossref record by exact normalized-title match, and archives the
result in a DOI-keyed publications table.

Commands output JSON by default for easy integration with other tools;
pass --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default oceanpub.yml if present)")
	rootCmd.Version = Version
}
