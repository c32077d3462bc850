package config

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full includes every rule with its documentation.
	// If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml", "json", or "toml".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	switch opts.Format {
	case "json":
		return templateToJSON(opts.Full)
	case "toml":
		return templateToTOML(opts.Full)
	}
	if opts.Full {
		return generateFullTemplate(), nil
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	fmt.Fprintf(&buf, `

# Bytes held back between reads; must cover the longest rewrite.
# carry_size: %d

# Read size in bytes.
# chunk_size: %d

# Write to a temp file and rename it into place on success.
# atomic: false

# Report format: text, summary, json, or diff
# format: text

# Rule-specific configuration
# rules:
#   nan-to-null:
#     enabled: true
`, sanitize.DefaultCarrySize, sanitize.DefaultChunkSize)

	return buf.Bytes()
}

// generateFullTemplate creates a full template with all rules documented.
func generateFullTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	fmt.Fprintf(&buf, `
#
# This template includes all available rules with their default settings.

# Bytes held back between reads; must cover the longest rewrite.
carry_size: %d

# Read size in bytes.
chunk_size: %d

# Write to a temp file and rename it into place on success.
atomic: false

# Report format: text, summary, json, or diff
format: text

# How rules are named in reports: name, id, or combined
rule_format: name

# Backup of an existing output file before it is overwritten
backups:
  enabled: false
  mode: sidecar

# Rule-specific configuration
rules:
`, sanitize.DefaultCarrySize, sanitize.DefaultChunkSize)

	for _, rule := range sanitize.DefaultRegistry.Rules() {
		fmt.Fprintf(&buf, "\n  # %s: %s\n", rule.ID, rule.Name)
		fmt.Fprintf(&buf, "  # %s\n", wrapComment(rule.Description, commentWrapWidth))
		fmt.Fprintf(&buf, "  %s:\n", rule.ID)
		buf.WriteString("    enabled: true\n")
	}

	return buf.Bytes()
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	currentLine := ""

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n  # ")
}

// templateToJSON renders the default configuration as JSON.
func templateToJSON(full bool) ([]byte, error) {
	cfg := map[string]any{
		"carry_size":  sanitize.DefaultCarrySize,
		"chunk_size":  sanitize.DefaultChunkSize,
		"atomic":      false,
		"format":      string(FormatText),
		"rule_format": string(RuleFormatName),
		"backups": map[string]any{
			"enabled": false,
			"mode":    "sidecar",
		},
	}

	if full {
		rules := make(map[string]any)
		for _, id := range defaultRuleIDs() {
			rules[id] = map[string]any{"enabled": true}
		}
		cfg["rules"] = rules
	}

	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	return jsonBytes, nil
}

// defaultRuleIDs returns the IDs of the built-in rules in pipeline order.
func defaultRuleIDs() []string {
	return sanitize.DefaultRegistry.IDs()
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# reviewsan configuration
# See: https://github.com/yaklabco/reviewsan`
}
