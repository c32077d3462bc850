package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/reviewsan/internal/ui/pretty"
)

// argumentsAnnotation is the cobra annotation key holding positional argument help,
// one "name\tdescription" pair per line.
const argumentsAnnotation = "arguments"

// flagGap is the space between the flag column and its description.
const flagGap = 3

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command     lipgloss.Style
	Heading     lipgloss.Style
	Subcommand  lipgloss.Style
	Argument    lipgloss.Style
	Flag        lipgloss.Style
	Description lipgloss.Style
	Example     lipgloss.Style
	Dim         lipgloss.Style
}

// NewHelpStyles creates help styles based on color mode.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{
			Command:     plain,
			Heading:     plain,
			Subcommand:  plain,
			Argument:    plain,
			Flag:        plain,
			Description: plain,
			Example:     plain,
			Dim:         plain,
		}
	}

	return &HelpStyles{
		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading:     lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Argument:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		Flag:        lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Description: lipgloss.NewStyle(),
		Example:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter provides styled help output for Cobra commands.
type HelpFormatter struct {
	styles *HelpStyles
}

// NewHelpFormatter creates a new help formatter with the given color mode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{
		styles: NewHelpStyles(pretty.IsColorEnabled(colorMode, writer)),
	}
}

func (h *HelpFormatter) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"styleCommand":     h.styles.Command.Render,
		"styleHeading":     h.styles.Heading.Render,
		"styleSubcommand":  h.styles.Subcommand.Render,
		"styleDescription": h.styles.Description.Render,
		"styleExample":     h.styles.Example.Render,
		"styleDim":         h.styles.Dim.Render,
		"styleFlags":       h.styleFlags,
		"styleArguments":   h.styleArguments,
		"rpad":             rpad,
		"trimTrailing":     trimTrailingWhitespaces,
		"hasArguments":     hasArguments,
	}
}

const usageTemplate = `{{ styleHeading "Usage:" }}
  {{if .Runnable}}{{ styleCommand .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ styleCommand .CommandPath }} [command]{{end}}

{{- if hasArguments .}}

{{ styleHeading "Arguments:" }}
{{ styleArguments . }}
{{- end}}

{{- if .HasExample}}

{{ styleHeading "Examples:" }}
{{ styleExample .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ styleHeading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ styleSubcommand (rpad .Name .NamePadding) }} {{ styleDescription .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ styleHeading "Flags:" }}
{{ styleFlags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ styleHeading "Global Flags:" }}
{{ styleFlags .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ styleCommand (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{if or .Runnable .HasSubCommands}}{{ styleCommand .CommandPath }}{{if .Version}} {{ styleDim .Version }}{{end}}

{{end}}{{with (or .Long .Short)}}{{ . | trimTrailing }}

{{end}}` + usageTemplate

// styleFlags renders a flag set as an aligned two-column list.
func (h *HelpFormatter) styleFlags(flags *pflag.FlagSet) string {
	type line struct {
		names string
		plain int
		usage string
	}

	var lines []line
	width := 0

	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}

		var names, plain strings.Builder
		names.WriteString("  ")
		plain.WriteString("  ")
		if flag.Shorthand != "" {
			names.WriteString(h.styles.Flag.Render("-"+flag.Shorthand) + ", ")
			plain.WriteString("-" + flag.Shorthand + ", ")
		} else {
			names.WriteString("    ")
			plain.WriteString("    ")
		}
		names.WriteString(h.styles.Flag.Render("--" + flag.Name))
		plain.WriteString("--" + flag.Name)

		varName, usage := pflag.UnquoteUsage(flag)
		if varName != "" {
			names.WriteString(" " + h.styles.Dim.Render(varName))
			plain.WriteString(" " + varName)
		}

		if flag.DefValue != "" && flag.DefValue != "false" && flag.DefValue != "[]" && flag.DefValue != "0" {
			usage += h.styles.Dim.Render(fmt.Sprintf(" (default %s)", flag.DefValue))
		}

		lines = append(lines, line{names: names.String(), plain: plain.Len(), usage: usage})
		width = max(width, plain.Len())
	})

	rendered := make([]string, 0, len(lines))
	for _, l := range lines {
		pad := strings.Repeat(" ", width-l.plain+flagGap)
		rendered = append(rendered, l.names+pad+h.styles.Description.Render(l.usage))
	}
	return strings.Join(rendered, "\n")
}

// styleArguments renders the positional argument annotation of cmd.
func (h *HelpFormatter) styleArguments(cmd *cobra.Command) string {
	var pairs [][2]string
	width := 0
	for _, entry := range strings.Split(cmd.Annotations[argumentsAnnotation], "\n") {
		name, desc, _ := strings.Cut(entry, "\t")
		if name == "" {
			continue
		}
		pairs = append(pairs, [2]string{name, desc})
		width = max(width, len(name))
	}

	rendered := make([]string, 0, len(pairs))
	for _, p := range pairs {
		rendered = append(rendered, "  "+h.styles.Argument.Render(rpad(p[0], width+flagGap))+
			h.styles.Description.Render(p[1]))
	}
	return strings.Join(rendered, "\n")
}

func hasArguments(cmd *cobra.Command) bool {
	return cmd.Annotations[argumentsAnnotation] != ""
}

// ApplyToCommand applies styled help templates to a Cobra command and all subcommands.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	funcs := h.templateFuncs()

	cmd.SetUsageFunc(func(command *cobra.Command) error {
		tmpl, err := template.New("usage").Funcs(funcs).Parse(usageTemplate)
		if err != nil {
			return fmt.Errorf("parse usage template: %w", err)
		}
		return tmpl.Execute(command.OutOrStdout(), command)
	})

	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		tmpl, err := template.New("help").Funcs(funcs).Parse(helpTemplate)
		if err != nil {
			command.PrintErrln(err)
			return
		}
		if err := tmpl.Execute(command.OutOrStdout(), command); err != nil {
			command.PrintErrln(err)
		}
	})
}

// rpad adds padding to the right of a string.
func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

// trimTrailingWhitespaces removes trailing whitespace from lines.
func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
