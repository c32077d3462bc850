package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/reviewsan/internal/configloader"
	"github.com/yaklabco/reviewsan/internal/logging"
	"github.com/yaklabco/reviewsan/pkg/config"
	"github.com/yaklabco/reviewsan/pkg/reporter"
	"github.com/yaklabco/reviewsan/pkg/runner"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// diffSamples is the number of rewritten segments shown by the diff report.
const diffSamples = 20

// ErrUsage is returned when the command line is malformed.
var ErrUsage = errors.New("usage: sanitize <inputPath> <outputPath>")

type sanitizeFlags struct {
	format     string
	ruleFormat string
}

// requirePaths accepts two or more positional arguments. Missing paths print
// the usage to stderr; extra arguments are ignored with a warning.
func requirePaths(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return fmt.Errorf("%w: expected 2 paths, got %d", ErrUsage, len(args))
	}
	if len(args) > 2 {
		logging.Default().Warn("ignoring extra arguments", "args", args[2:])
	}
	return nil
}

func addSanitizeFlags(cmd *cobra.Command, cfg *config.Config, flags *sanitizeFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "report format: text, summary, json, or diff")
	cmd.Flags().StringVar(&flags.ruleFormat, "rule-format", "name",
		"rule identifier format in reports: name, id, or combined")
	cmd.Flags().IntVar(&cfg.CarrySize, "carry-size", 0, "bytes held back between reads (0 = default)")
	cmd.Flags().IntVar(&cfg.ChunkSize, "chunk-size", 0, "bytes per read from the input (0 = default)")
	cmd.Flags().StringSliceVar(&cfg.DisableRules, "disable", nil, "rule IDs or names to disable")
	cmd.Flags().BoolVar(&cfg.Atomic, "atomic", false, "write output to a temp file renamed into place on success")
	cmd.Flags().BoolVar(&cfg.Backups.Enabled, "backup", false, "back up an existing output file before writing")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "process the input without writing output")
	cmd.Flags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress the run report")
}

func runSanitize(cmd *cobra.Command, args []string, cfg *config.Config, flags *sanitizeFlags) error {
	logger := logging.Default()
	input, output := args[0], args[1]

	// Only set values that were explicitly provided via CLI flags.
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	if cmd.Flags().Changed("rule-format") {
		cfg.RuleFormat = config.RuleFormat(flags.ruleFormat)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	})
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}

	finalCfg := loadResult.Config

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	logger.Debug("configuration loaded",
		logging.FieldCarrySize, finalCfg.CarrySize,
		logging.FieldChunkSize, finalCfg.ChunkSize,
		logging.FieldDisabled, finalCfg.Disabled(),
		logging.FieldDryRun, finalCfg.DryRun,
		logging.FieldFormat, finalCfg.Format,
	)

	pipeline, err := sanitize.DefaultRegistry.Pipeline(finalCfg.Disabled()...)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	runOpts := runner.OptionsFromConfig(finalCfg, input, output)
	runOpts.Stdin = cmd.InOrStdin()
	runOpts.Stdout = cmd.OutOrStdout()
	if finalCfg.Format == config.FormatDiff && !finalCfg.Quiet {
		runOpts.Samples = diffSamples
	}
	runOpts.Stream.Progress = func(stats sanitize.Stats) {
		logger.Debug("window written",
			logging.FieldWindows, stats.Windows,
			logging.FieldBytesRead, stats.BytesRead,
			logging.FieldBytesWritten, stats.BytesWritten,
		)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	if !finalCfg.Quiet && finalCfg.Format == config.FormatText {
		startLogger(cmd).Info("sanitizing",
			logging.FieldInput, input,
			logging.FieldOutput, output,
		)
	}

	result, err := runner.New(pipeline).Run(logging.WithLogger(ctx, logger), runOpts)
	if err != nil {
		return fmt.Errorf("sanitize %s: %w", input, err)
	}

	if finalCfg.Quiet {
		return nil
	}

	format, err := reporter.ParseFormat(string(finalCfg.Format))
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:     cmd.ErrOrStderr(),
		Format:     format,
		Color:      colorMode,
		RuleFormat: finalCfg.RuleFormat,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	return nil
}

// startLogger returns the logger for the start message: timestamped when
// stderr is a terminal, plain otherwise.
func startLogger(cmd *cobra.Command) *log.Logger {
	w := cmd.ErrOrStderr()
	if f, ok := w.(*os.File); ok && f == os.Stderr && term.IsTerminal(int(f.Fd())) {
		return logging.NewInteractive()
	}
	return logging.NewWithWriter(w, "info")
}
