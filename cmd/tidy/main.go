// Command tidy normalizes a JSON or YAML document and prints the result, or
// the values found at the given dot-paths.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "tidy [file]",
		Short: "Normalize empty-like values in JSON or YAML documents",
		Long: `tidy reads a JSON or YAML document from a file or from stdin, turns blank
strings and N/A sentinels into null, and prints the normalized document.

With --get, only the values at the given dot-paths are printed, one JSON
value per line. A dot preceded by a backslash is part of the key.`,
		Example: `  tidy data.json --pretty
  cat data.yaml | tidy --input yaml --get 'nested.x' --get 'date\.upload'`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, o)
		},
	}
	o.register(cmd)
	return cmd
}
