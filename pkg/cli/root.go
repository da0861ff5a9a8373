// Package cli implements the doc-narrator commands using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"doc-narrator/pkg/config"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "doc-narrator",
	Short: "doc-narrator reads PDF and HTML documents aloud",
	Long: `doc-narrator fetches a PDF or HTML document, extracts its text, optionally
translates it sentence by sentence, and reads it aloud through a local
text-to-speech engine.

Usage:
  doc-narrator serve [flags]
  doc-narrator read <url> --kind pdf --lang en [flags]`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "Path to the YAML config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
