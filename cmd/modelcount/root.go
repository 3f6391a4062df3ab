package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for modelcount.
// The root command itself runs a scan, so the classic one-argument
// invocation `modelcount file.json` keeps working without a subcommand.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modelcount [file...]",
		Short: "Count model values in huge JSON-like files",
		Long: `modelcount streams JSON-like files and counts how often each string
value appears under a target key (default: "model").

The input does not have to be a single well-formed JSON document:
concatenated documents, trailing garbage, and partial structures are all
tolerated. Memory use is proportional to the number of distinct values,
not the input size, so files far larger than RAM are fine.

Examples:
  # Count "model" values in one file
  modelcount inventory.json

  # Count values of a different key
  modelcount --key device_type inventory.json

  # Scan several files concurrently and merge the counts
  modelcount part1.json part2.json part3.json

  # Machine-readable output
  modelcount --json inventory.json

Configuration file (.modelcount) example:
  target_key: model
  progress_interval: 10s
  format: text
  save_history: true`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runScanCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	addScanFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
