package configloader

import (
	"strings"
	"testing"

	"github.com/yaklabco/reviewsan/pkg/config"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantErrs int
		wantWarn int
	}{
		{"defaults", func(*config.Config) {}, 0, 0},
		{"bad format", func(c *config.Config) { c.Format = "xml" }, 1, 0},
		{"bad rule format", func(c *config.Config) { c.RuleFormat = "short" }, 1, 0},
		{"bad backup mode", func(c *config.Config) { c.Backups.Mode = "cloud" }, 1, 0},
		{"negative sizes", func(c *config.Config) { c.CarrySize, c.ChunkSize = -1, -1 }, 2, 0},
		{"carry below horizon", func(c *config.Config) { c.CarrySize = 32 }, 1, 0},
		{"unknown disabled rule", func(c *config.Config) { c.DisableRules = []string{"MD009"} }, 1, 0},
		{"all rules disabled", func(c *config.Config) { c.DisableRules = sanitize.DefaultRegistry.IDs() }, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.mutate(cfg)

			result := Validate(cfg)
			if len(result.Errors) != tt.wantErrs {
				t.Errorf("errors = %v, want %d", result.AllMessages(), tt.wantErrs)
			}
			if len(result.Warnings) != tt.wantWarn {
				t.Errorf("warnings = %v, want %d", result.AllMessages(), tt.wantWarn)
			}
		})
	}
}

func TestValidate_CarryFollowsEnabledRules(t *testing.T) {
	t.Parallel()

	full := sanitize.DefaultPipeline().Horizon()

	// Dropping the widest rules lowers the horizon, so a smaller carry is accepted.
	cfg := config.NewConfig()
	cfg.DisableRules = []string{sanitize.RuleSingleElementArray, sanitize.RuleTwoElementArray}
	pipeline, err := sanitize.DefaultRegistry.Pipeline(cfg.Disabled()...)
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	if pipeline.Horizon() >= full {
		t.Fatalf("expected lower horizon than %d, got %d", full, pipeline.Horizon())
	}

	cfg.CarrySize = pipeline.Horizon()
	if result := Validate(cfg); !result.Valid() {
		t.Errorf("unexpected errors: %v", result.AllMessages())
	}
}

func TestValidateWithFile(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Format = "xml"

	result := ValidateWithFile(cfg, "/etc/reviewsan/config.yaml")
	if result.Valid() {
		t.Fatal("expected invalid result")
	}

	msg := result.Errors[0].Error()
	if !strings.HasPrefix(msg, "/etc/reviewsan/config.yaml: format: ") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestIsValidBackupMode(t *testing.T) {
	t.Parallel()

	for mode, want := range map[string]bool{"sidecar": true, "none": true, "": false, "s3": false} {
		if got := IsValidBackupMode(mode); got != want {
			t.Errorf("IsValidBackupMode(%q) = %v, want %v", mode, got, want)
		}
	}
}
