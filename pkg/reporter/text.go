package reporter

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/yaklabco/reviewsan/internal/logging"
	"github.com/yaklabco/reviewsan/internal/ui/pretty"
	"github.com/yaklabco/reviewsan/pkg/config"
	"github.com/yaklabco/reviewsan/pkg/runner"
)

// TextReporter writes results as structured log lines.
type TextReporter struct {
	opts   Options
	logger *log.Logger
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	logger := logging.NewWithWriter(opts.Writer, "info")
	if pretty.IsColorEnabled(opts.Color, opts.Writer) {
		logger.SetColorProfile(termenv.ANSI256)
	} else {
		logger.SetColorProfile(termenv.Ascii)
	}

	return &TextReporter{
		opts:   opts,
		logger: logger,
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil {
		r.logger.Warn("nothing processed")
		return 0, nil
	}

	if result.BackupPath != "" {
		r.logger.Info("backup created", logging.FieldBackup, result.BackupPath)
	}

	for _, rc := range result.RuleCounts() {
		if rc.Count == 0 {
			continue
		}
		r.logger.Info("rewrote",
			logging.FieldRule, config.FormatRuleID(r.opts.RuleFormat, rc.Rule.ID, rc.Rule.Name),
			logging.FieldCount, rc.Count,
		)
	}

	if result.Stats.DanglingNaN {
		r.logger.Warn("input ends in a NaN with no closing delimiter; left unchanged",
			logging.FieldInput, result.Input)
	}

	if n := result.Stats.UnconvertedArrays; n > 0 {
		r.logger.Warn("single-quoted arrays left unconverted",
			logging.FieldInput, result.Input, logging.FieldCount, n)
	}

	total := result.Stats.Substitutions.Total()
	fields := []any{
		logging.FieldInput, result.Input,
		logging.FieldOutput, result.Output,
		logging.FieldSubstitutions, total,
		logging.FieldBytesRead, pretty.FormatBytes(result.Stats.BytesRead),
		logging.FieldDuration, result.Duration.Round(time.Millisecond),
	}

	if result.DryRun() {
		r.logger.Warn("dry run complete, no output written", fields...)
	} else {
		r.logger.Info("sanitize complete", fields...)
	}

	return total, nil
}
