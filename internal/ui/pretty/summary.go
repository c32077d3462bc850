package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/reviewsan/pkg/config"
	"github.com/yaklabco/reviewsan/pkg/runner"
)

const summaryDividerWidth = 40

// FormatSummaryOneLine formats a run result as a single line.
// Example: "reviews.json -> clean.json: 12 substitutions (nan-to-null 8, array-separator 4), 1.2 MiB in 35ms".
func (s *Styles) FormatSummaryOneLine(result *runner.Result, ruleFormat config.RuleFormat) string {
	if result == nil {
		return s.Dim.Render("Nothing processed") + "\n"
	}

	var builder strings.Builder

	builder.WriteString(s.FilePath.Render(result.Input))
	builder.WriteString(s.Dim.Render(" -> "))
	builder.WriteString(s.FilePath.Render(outputLabel(result)))
	builder.WriteString(": ")

	total := result.Stats.Substitutions.Total()
	if total == 0 {
		builder.WriteString(s.Success.Render("already clean"))
	} else {
		word := "substitutions"
		if total == 1 {
			word = "substitution"
		}
		builder.WriteString(s.Success.Render(fmt.Sprintf("%d %s", total, word)))

		var parts []string
		for _, rc := range result.RuleCounts() {
			if rc.Count == 0 {
				continue
			}
			name := config.FormatRuleID(ruleFormat, rc.Rule.ID, rc.Rule.Name)
			parts = append(parts, s.RuleID.Render(name)+" "+s.Count.Render(strconv.Itoa(rc.Count)))
		}
		builder.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}

	builder.WriteString(s.Dim.Render(fmt.Sprintf(", %s in %s",
		FormatBytes(result.Stats.BytesRead), result.Duration.Round(time.Millisecond))))
	builder.WriteString("\n")

	return builder.String()
}

// FormatSummary formats a run result as a summary block.
func (s *Styles) FormatSummary(result *runner.Result, ruleFormat config.RuleFormat) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	if result == nil {
		builder.WriteString(s.Dim.Render("  Nothing processed") + "\n")
		return builder.String()
	}

	stats := result.Stats

	builder.WriteString("  Input:             " + s.FilePath.Render(result.Input) + "\n")
	builder.WriteString("  Output:            " + s.FilePath.Render(outputLabel(result)) + "\n")
	if result.BackupPath != "" {
		builder.WriteString("  Backup:            " + s.FilePath.Render(result.BackupPath) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Bytes read:        " + s.SummaryValue.Render(FormatBytes(stats.BytesRead)) + "\n")
	builder.WriteString("  Bytes written:     " + s.SummaryValue.Render(FormatBytes(stats.BytesWritten)) + "\n")
	builder.WriteString("  Chunks:            " + s.SummaryValue.Render(strconv.Itoa(stats.Chunks)) + "\n")
	builder.WriteString("  Windows:           " + s.SummaryValue.Render(strconv.Itoa(stats.Windows)) + "\n")
	builder.WriteString("  Peak carry:        " + s.SummaryValue.Render(FormatBytes(int64(stats.PeakCarry))) + "\n")
	builder.WriteString("  Duration:          " + s.SummaryValue.Render(result.Duration.Round(time.Millisecond).String()) + "\n")

	builder.WriteString("\n")

	builder.WriteString("  Substitutions:     " + s.SummaryValue.Render(strconv.Itoa(stats.Substitutions.Total())) + "\n")
	for _, rc := range result.RuleCounts() {
		if rc.Count == 0 {
			continue
		}
		name := config.FormatRuleID(ruleFormat, rc.Rule.ID, rc.Rule.Name)
		builder.WriteString(fmt.Sprintf("    %-22s %s\n", name+":", s.Count.Render(strconv.Itoa(rc.Count))))
	}

	builder.WriteString("\n")

	switch {
	case result.DryRun():
		builder.WriteString(s.Warning.Render("Dry run, no output written"))
	case result.Changed():
		builder.WriteString(s.Success.Render("Sanitized"))
	default:
		builder.WriteString(s.Success.Render("Already clean"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// outputLabel names where the output went.
func outputLabel(result *runner.Result) string {
	switch result.Mode {
	case runner.OutputDiscard:
		return "(dry run)"
	case runner.OutputStdout:
		return "stdout"
	default:
		return result.Output
	}
}

// FormatBytes renders n in binary units, e.g. "1.5 KiB".
func FormatBytes(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}
