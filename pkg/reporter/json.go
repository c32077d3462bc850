package reporter

import (
	"bufio"
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/yaklabco/reviewsan/pkg/runner"
)

// jsonVersion is the schema version of JSONOutput.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version       string           `json:"version"`
	RunID         string           `json:"runId,omitempty"`
	Input         string           `json:"input"`
	Output        string           `json:"output"`
	Mode          string           `json:"mode"`
	DryRun        bool             `json:"dryRun"`
	Changed       bool             `json:"changed"`
	BackupPath    string           `json:"backupPath,omitempty"`
	Restored      bool             `json:"restored,omitempty"`
	DanglingNaN   bool             `json:"danglingNaN,omitempty"`
	Unconverted   int              `json:"unconvertedArrays,omitempty"`
	Substitutions int              `json:"substitutions"`
	Segments      int              `json:"changedSegments"`
	Rules         []JSONRuleResult `json:"rules"`
	Stats         JSONStats        `json:"stats"`
}

// JSONRuleResult is one rule's substitution count.
type JSONRuleResult struct {
	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`
	Count    int    `json:"count"`
}

// JSONStats contains streaming statistics.
type JSONStats struct {
	BytesRead    int64 `json:"bytesRead"`
	BytesWritten int64 `json:"bytesWritten"`
	Chunks       int   `json:"chunks"`
	Windows      int   `json:"windows"`
	PeakCarry    int   `json:"peakCarry"`
	DurationMs   int64 `json:"durationMs"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Substitutions, nil
}

func buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: jsonVersion,
		Rules:   make([]JSONRuleResult, 0),
	}

	if result == nil {
		return output
	}

	output.RunID = result.RunID
	output.Input = result.Input
	output.Output = result.Output
	output.Mode = string(result.Mode)
	output.DryRun = result.DryRun()
	output.Changed = result.Changed()
	output.BackupPath = result.BackupPath
	output.Restored = result.Restored
	output.DanglingNaN = result.Stats.DanglingNaN
	output.Unconverted = result.Stats.UnconvertedArrays
	output.Substitutions = result.Stats.Substitutions.Total()
	output.Segments = result.ChangedSegments

	for _, rc := range result.RuleCounts() {
		output.Rules = append(output.Rules, JSONRuleResult{
			RuleID:   rc.Rule.ID,
			RuleName: rc.Rule.Name,
			Count:    rc.Count,
		})
	}

	output.Stats = JSONStats{
		BytesRead:    result.Stats.BytesRead,
		BytesWritten: result.Stats.BytesWritten,
		Chunks:       result.Stats.Chunks,
		Windows:      result.Stats.Windows,
		PeakCarry:    result.Stats.PeakCarry,
		DurationMs:   result.Duration.Milliseconds(),
	}

	return output
}
