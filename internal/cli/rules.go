package cli

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/reviewsan/internal/ui/pretty"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

const (
	formatJSON = "json"
	formatTOML = "toml"
)

type rulesFlags struct {
	format string
}

// ruleInfo represents a rule in JSON output.
type ruleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxWidth    int    `json:"maxWidth"`
}

func newRulesCommand() *cobra.Command {
	flags := &rulesFlags{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List rewrite rules",
		Long: `List the rewrite rules in the order they run, with their IDs, names,
the longest text each can match, and a description. Rules can be disabled
by ID or name with --disable or in the rules section of a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rules := sanitize.DefaultRegistry.Rules()
			out := cmd.OutOrStdout()

			switch flags.format {
			case formatJSON:
				return outputRulesJSON(out, rules)
			case "text":
			default:
				return fmt.Errorf("invalid format %q: must be text or json", flags.format)
			}

			colorMode, err := cmd.Flags().GetString("color")
			if err != nil {
				colorMode = "auto"
			}

			styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))
			table := pretty.NewTableFormatter(styles, terminalWidth(out))
			_, err = io.WriteString(out, table.FormatRuleTable(pretty.RuleRows(rules)))
			if err != nil {
				return fmt.Errorf("write rules: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")

	return cmd
}

// outputRulesJSON writes rules as a JSON array.
func outputRulesJSON(w io.Writer, rules []*sanitize.Rule) error {
	infos := make([]ruleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, ruleInfo{
			ID:          rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
			MaxWidth:    rule.MaxWidth(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	return nil
}

// terminalWidth returns the width of w if it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
