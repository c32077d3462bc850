// Package cli provides the Cobra command structure for sanitize.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/reviewsan/internal/logging"
	"github.com/yaklabco/reviewsan/pkg/config"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root sanitize command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	var cfg config.Config
	flags := &sanitizeFlags{}

	rootCmd := &cobra.Command{
		Use:   "sanitize <inputPath> <outputPath>",
		Short: "Rewrite review exports into valid JSON",
		Long: `sanitize streams a review-data export from inputPath to outputPath,
rewriting unquoted NaN values to null and single-quoted string arrays to
double-quoted ones. Input of any size is processed in bounded memory.

Either path may be "-" to read stdin or write stdout. Reports are written
to stderr.

An inputPath spelled like a subcommand (init, rules, version, completion,
help) runs that subcommand instead. Write it as ./init or place -- before
the paths: sanitize -- init out.json`,
		Example: `  sanitize reviews.json reviews.clean.json
  sanitize --format summary export.json out.json
  sanitize --atomic --backup data.json data.json
  cat export.json | sanitize - - > clean.json`,
		Annotations: map[string]string{
			argumentsAnnotation: "inputPath\tfile to read, or - for stdin\n" +
				"outputPath\tfile to write, or - for stdout; may equal inputPath",
		},
		Args: requirePaths,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSanitize(cmd, args, &cfg, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	addSanitizeFlags(rootCmd, &cfg, flags)

	// Add subcommands.
	rootCmd.AddCommand(newRulesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
