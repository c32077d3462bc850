package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/reviewsan/internal/configloader"
	"github.com/yaklabco/reviewsan/internal/logging"
	"github.com/yaklabco/reviewsan/pkg/config"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a reviewsan configuration file",
		Long: `Create a new .reviewsan.yml configuration file in the current directory
with the default carry and chunk sizes, report format, and backup settings.`,
		Example: `  sanitize init                      Create minimal .reviewsan.yml
  sanitize init --full               Document every rule in the file
  sanitize init --format json        Create .reviewsan.json instead
  sanitize init --format toml        Create .reviewsan.toml instead
  sanitize init --output custom.yml  Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runInit(ctx, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "generate full template with all rules documented")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "output format: yaml, json, or toml")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"output file path (default: .reviewsan.<format>)")

	return cmd
}

func runInit(ctx context.Context, flags *initFlags) error {
	logger := logging.NewInteractive()

	var defaultPath string
	switch flags.format {
	case "yaml":
		defaultPath = ".reviewsan.yml"
	case formatJSON:
		defaultPath = ".reviewsan.json"
	case formatTOML:
		defaultPath = ".reviewsan.toml"
	default:
		return fmt.Errorf("invalid format %q: must be yaml, json, or toml", flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = defaultPath
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := configloader.WriteConfig(ctx, absPath, content, flags.force); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	if flags.format == formatJSON {
		logger.Info("json files are not discovered automatically; pass them with --config")
	}
	logger.Info("run 'sanitize rules' to see all rules")

	return nil
}
