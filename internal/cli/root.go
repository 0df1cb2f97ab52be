// Package cli provides the Cobra command structure for tokenwarehouse.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/poutila/tokenwarehouse/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root tokenwarehouse command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "tokenwarehouse",
		Short: "Single-pass structured extraction from Markdown documents",
		Long: `tokenwarehouse parses Markdown into a canonical token stream and runs a
set of collectors over it in one deterministic pass.

Each collector extracts one concern (links, images, headings, tables, raw
HTML, code blocks) under strict resource budgets: hostile or oversized
documents are rejected up front, URLs get a single normalized security
verdict, and a misbehaving collector is isolated without affecting the
others.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newExtractCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
