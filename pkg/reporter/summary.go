package reporter

import (
	"context"
	"fmt"
	"io"

	"github.com/yaklabco/reviewsan/internal/ui/pretty"
	"github.com/yaklabco/reviewsan/pkg/runner"
)

// SummaryReporter writes a styled summary block.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if _, err := io.WriteString(r.out, r.styles.FormatSummary(result, r.opts.RuleFormat)); err != nil {
		return 0, fmt.Errorf("write summary: %w", err)
	}

	if result == nil {
		return 0, nil
	}
	return result.Stats.Substitutions.Total(), nil
}
