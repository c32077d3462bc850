package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// Table formatting constants.
const (
	tablePadding       = 2
	tableColumnCount   = 4 // ID, NAME, WIDTH, DESCRIPTION
	minIDWidth         = 6
	minNameWidth       = 10
	minWidthWidth      = 5
	minDescWidth       = 20
	heavySeparator     = "="
	defaultTermWidth   = 100
	descriptionEllipse = "..."
)

// RuleRow represents a single row in the rules table.
type RuleRow struct {
	ID          string
	Name        string
	Width       int
	Description string
}

// RuleRows converts rules into table rows, keeping their order.
func RuleRows(rules []*sanitize.Rule) []RuleRow {
	rows := make([]RuleRow, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, RuleRow{
			ID:          rule.ID,
			Name:        rule.Name,
			Width:       rule.MaxWidth(),
			Description: rule.Description,
		})
	}
	return rows
}

// TableFormatter formats rule listings as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

type columnWidths struct {
	id    int
	name  int
	width int
	desc  int
}

// FormatRuleTable formats rules as a table sized to the terminal width.
func (t *TableFormatter) FormatRuleTable(rows []RuleRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	return builder.String()
}

func (t *TableFormatter) calculateColumnWidths(rows []RuleRow) columnWidths {
	widths := columnWidths{
		id:    minIDWidth,
		name:  minNameWidth,
		width: minWidthWidth,
		desc:  minDescWidth,
	}

	for _, row := range rows {
		widths.id = max(widths.id, len(row.ID))
		widths.name = max(widths.name, len(row.Name))
		widths.width = max(widths.width, len(strconv.Itoa(row.Width)))
		widths.desc = max(widths.desc, len(row.Description))
	}

	// Only the description column shrinks to fit the terminal.
	if total := t.calculateTotalWidth(widths); total > t.termWidth {
		widths.desc = max(minDescWidth, widths.desc-(total-t.termWidth))
	}

	return widths
}

func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.id + widths.name + widths.width + widths.desc + tablePadding*tableColumnCount
}

func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %*s  %-*s",
		widths.id, "ID",
		widths.name, "NAME",
		widths.width, "WIDTH",
		widths.desc, "DESCRIPTION",
	)
	return t.styles.TableHeader.Render(strings.TrimRight(header, " "))
}

func (t *TableFormatter) formatSeparator(widths columnWidths) string {
	return t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, t.calculateTotalWidth(widths)))
}

func (t *TableFormatter) formatRow(row RuleRow, widths columnWidths) string {
	line := fmt.Sprintf(" %s  %s  %s  %s",
		t.styles.RuleID.Render(fmt.Sprintf("%-*s", widths.id, row.ID)),
		t.styles.Bold.Render(fmt.Sprintf("%-*s", widths.name, row.Name)),
		t.styles.Count.Render(fmt.Sprintf("%*d", widths.width, row.Width)),
		t.styles.Message.Render(truncateString(row.Description, widths.desc)),
	)
	return strings.TrimRight(line, " ")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= len(descriptionEllipse) {
		return str[:maxLen]
	}
	return str[:maxLen-len(descriptionEllipse)] + descriptionEllipse
}
