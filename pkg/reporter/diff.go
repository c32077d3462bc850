package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/yaklabco/reviewsan/internal/ui/pretty"
	"github.com/yaklabco/reviewsan/pkg/runner"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// diffContext is the number of unchanged runes shown around each hunk.
const diffContext = 24

// DiffReporter renders the sampled rewrites of a run as word-level hunks:
//
//	@@ 1042 @@ "rating": [-NaN-]{+null+}, "theme": "[[-'-]{+"+}quality
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
	dmp    *diffmatchpatch.DiffMatchPatch
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
		dmp:    diffmatchpatch.New(),
	}
}

// Report implements Reporter.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("flush diff: %w", flushErr)
		}
	}()

	if result == nil {
		return 0, nil
	}

	fmt.Fprintln(r.bw, r.styles.DiffHeader.Render(
		fmt.Sprintf("diff a/%s b/%s", result.Input, result.Output)))

	for _, change := range result.Samples {
		for _, h := range r.hunks(change) {
			fmt.Fprintln(r.bw, r.styles.DiffHunk.Render(fmt.Sprintf("@@ %d @@", h.offset))+" "+h.text)
		}
	}

	if hidden := result.ChangedSegments - len(result.Samples); hidden > 0 {
		fmt.Fprintln(r.bw, r.styles.Dim.Render(
			fmt.Sprintf("... %d more changed %s not shown", hidden, plural(hidden, "segment", "segments"))))
	}

	total := result.Stats.Substitutions.Total()
	_, err = fmt.Fprintf(r.bw, "%s, %s\n",
		r.styles.DiffAdd.Render(fmt.Sprintf("%d %s", total, plural(total, "substitution", "substitutions"))),
		fmt.Sprintf("%d changed %s", result.ChangedSegments, plural(result.ChangedSegments, "segment", "segments")),
	)
	if err != nil {
		return total, fmt.Errorf("write diff: %w", err)
	}

	return total, nil
}

// hunk is one rendered run of edits with its surrounding context.
type hunk struct {
	offset int64
	text   string
}

// hunks splits a changed segment into hunks separated by more than twice
// diffContext unchanged runes.
func (r *DiffReporter) hunks(change sanitize.Change) []hunk {
	diffs := r.dmp.DiffMain(change.Before, change.After, false)
	diffs = r.dmp.DiffCleanupSemantic(diffs)

	var (
		out     []hunk
		current *strings.Builder
		start   int64
		pos     int64
		lead    string
	)

	closeHunk := func() {
		out = append(out, hunk{offset: start, text: current.String()})
		current = nil
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			runes := []rune(d.Text)
			switch {
			case current == nil:
				lead = string(runes[max(0, len(runes)-diffContext):])
			case len(runes) <= 2*diffContext:
				current.WriteString(r.unchanged(d.Text))
			default:
				current.WriteString(r.unchanged(string(runes[:diffContext])))
				closeHunk()
				lead = string(runes[len(runes)-diffContext:])
			}
			pos += int64(len(d.Text))

		case diffmatchpatch.DiffDelete, diffmatchpatch.DiffInsert:
			if current == nil {
				current = &strings.Builder{}
				start = change.Offset + pos - int64(len(lead))
				current.WriteString(r.unchanged(lead))
				lead = ""
			}
			if d.Type == diffmatchpatch.DiffDelete {
				current.WriteString(r.styles.DiffRemove.Render("[-" + escape(d.Text) + "-]"))
				pos += int64(len(d.Text))
			} else {
				current.WriteString(r.styles.DiffAdd.Render("{+" + escape(d.Text) + "+}"))
			}
		}
	}

	if current != nil {
		closeHunk()
	}
	return out
}

func (r *DiffReporter) unchanged(text string) string {
	if text == "" {
		return ""
	}
	return r.styles.DiffContext.Render(escape(text))
}

// escape keeps each hunk on one line.
func escape(text string) string {
	return strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(text)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
