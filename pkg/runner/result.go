package runner

import (
	"time"

	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// Result describes a completed or failed run.
type Result struct {
	// RunID identifies the run in logs and reports.
	RunID string

	// Input and Output are the paths as given.
	Input  string
	Output string

	// Mode is how the output was written.
	Mode OutputMode

	// Rules are the pipeline's rules, in the order of Stats.Substitutions.
	Rules []*sanitize.Rule

	// Stats are the streamer's counters.
	Stats sanitize.Stats

	// Duration is the wall time spent streaming.
	Duration time.Duration

	// BackupPath is the backup created for an existing output, if any.
	BackupPath string

	// Restored is set when a failed direct write was rolled back from BackupPath.
	Restored bool

	// ChangedSegments is the number of written segments the pipeline changed.
	ChangedSegments int

	// Samples holds the first Options.Samples changed segments.
	Samples []sanitize.Change
}

// Changed reports whether any rule rewrote part of the input.
func (r *Result) Changed() bool {
	if r == nil {
		return false
	}
	return r.Stats.Substitutions.Total() > 0
}

// DryRun reports whether the output was discarded.
func (r *Result) DryRun() bool {
	return r != nil && r.Mode == OutputDiscard
}

// RuleCount pairs a rule with its substitution count.
type RuleCount struct {
	Rule  *sanitize.Rule
	Count int
}

// RuleCounts returns per-rule counts in pipeline order.
func (r *Result) RuleCounts() []RuleCount {
	if r == nil {
		return nil
	}
	counts := make([]RuleCount, 0, len(r.Rules))
	for i, rule := range r.Rules {
		count := 0
		if i < len(r.Stats.Substitutions) {
			count = r.Stats.Substitutions[i]
		}
		counts = append(counts, RuleCount{Rule: rule, Count: count})
	}
	return counts
}

// observer returns a stream hook that counts changed segments and keeps the
// first limit of them, then calls next.
func (r *Result) observer(limit int, next func(sanitize.Change)) func(sanitize.Change) {
	return func(change sanitize.Change) {
		r.ChangedSegments++
		if len(r.Samples) < limit {
			r.Samples = append(r.Samples, change)
		}
		if next != nil {
			next(change)
		}
	}
}
