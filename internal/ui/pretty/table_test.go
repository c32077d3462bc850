package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/reviewsan/internal/ui/pretty"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

func TestFormatRuleTable(t *testing.T) {
	styles := pretty.NewStyles(false)
	formatter := pretty.NewTableFormatter(styles, 0)

	rows := pretty.RuleRows(sanitize.DefaultRegistry.Rules())
	require.Len(t, rows, 6)

	out := formatter.FormatRuleTable(rows)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Header, separator, six rules, separator.
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], " ID "))
	assert.Contains(t, lines[0], "DESCRIPTION")
	assert.Contains(t, lines[2], "SAN001")
	assert.Contains(t, lines[2], "nan-to-null")
	assert.Contains(t, lines[7], "two-element-array")
}

func TestFormatRuleTable_TruncatesToTerminal(t *testing.T) {
	styles := pretty.NewStyles(false)
	formatter := pretty.NewTableFormatter(styles, 60)

	out := formatter.FormatRuleTable([]pretty.RuleRow{{
		ID:          "SAN999",
		Name:        "example",
		Width:       12,
		Description: strings.Repeat("long description ", 10),
	}})

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 60, "line too wide: %q", line)
	}
	assert.Contains(t, out, "...")
}

func TestFormatRuleTable_Empty(t *testing.T) {
	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 80)
	assert.Empty(t, formatter.FormatRuleTable(nil))
}
