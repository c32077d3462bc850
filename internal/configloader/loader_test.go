package configloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/reviewsan/pkg/config"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// isolated returns load options that only see files under dir.
func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}

	if result.Config.CarrySize != sanitize.DefaultCarrySize {
		t.Errorf("expected carry size %d, got %d", sanitize.DefaultCarrySize, result.Config.CarrySize)
	}
	if result.Config.Format != config.FormatText {
		t.Errorf("expected format %q, got %q", config.FormatText, result.Config.Format)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".reviewsan.yml"), `
carry_size: 81920
format: json
rules:
  SAN001:
    enabled: false
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.CarrySize != 81920 {
		t.Errorf("expected carry size 81920, got %d", result.Config.CarrySize)
	}
	if result.Config.Format != config.FormatJSON {
		t.Errorf("expected format %q, got %q", config.FormatJSON, result.Config.Format)
	}
	// Unset fields keep their defaults.
	if result.Config.ChunkSize != sanitize.DefaultChunkSize {
		t.Errorf("expected chunk size %d, got %d", sanitize.DefaultChunkSize, result.Config.ChunkSize)
	}

	san001, ok := result.Config.Rules["SAN001"]
	if !ok {
		t.Fatal("SAN001 rule not found in config")
	}
	if san001.Enabled == nil || *san001.Enabled {
		t.Error("expected SAN001 to be disabled")
	}

	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_ProjectConfigFromSubdirectory(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	sub := filepath.Join(tmpDir, "data", "exports")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(tmpDir, "reviewsan.yaml"), "atomic: true\n")

	result, err := Load(context.Background(), isolated(sub))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !result.Config.Atomic {
		t.Error("expected atomic from parent project config")
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".reviewsan.yml"), "format: json\n")

	customPath := filepath.Join(tmpDir, "custom-config.yml")
	writeConfig(t, customPath, `
format: summary
rule_format: combined
`)

	opts := isolated(tmpDir)
	opts.ExplicitPath = customPath

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Format != config.FormatSummary {
		t.Errorf("expected format %q, got %q", config.FormatSummary, result.Config.Format)
	}
	if result.Config.RuleFormat != config.RuleFormatCombined {
		t.Errorf("expected rule format %q, got %q", config.RuleFormatCombined, result.Config.RuleFormat)
	}
	if len(result.LoadedFrom) != 2 || result.LoadedFrom[1] != customPath {
		t.Errorf("expected explicit config loaded last, got %v", result.LoadedFrom)
	}
}

func TestLoad_ExplicitConfigMissing(t *testing.T) {
	t.Parallel()

	opts := isolated(t.TempDir())
	opts.ExplicitPath = filepath.Join(t.TempDir(), "missing.yml")

	if _, err := Load(context.Background(), opts); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".reviewsan.yml"), `
carry_size: 81920
format: json
`)

	opts := isolated(tmpDir)
	opts.CLIConfig = &config.Config{
		CarrySize:    131072,
		DryRun:       true,
		DisableRules: []string{"nan-to-null"},
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.CarrySize != 131072 {
		t.Errorf("expected CLI carry size 131072, got %d", result.Config.CarrySize)
	}
	if result.Config.Format != config.FormatJSON {
		t.Errorf("expected file format to survive, got %q", result.Config.Format)
	}
	if !result.Config.DryRun {
		t.Error("expected dry run from CLI")
	}
	if len(result.Config.DisableRules) != 1 || result.Config.DisableRules[0] != sanitize.RuleNaNToNull {
		t.Errorf("expected disabled rule normalized to %s, got %v", sanitize.RuleNaNToNull, result.Config.DisableRules)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad format", "format: sarif\n", "format"},
		{"bad rule format", "rule_format: short\n", "rule_format"},
		{"bad backup mode", "backups:\n  mode: remote\n", "backups.mode"},
		{"negative chunk", "chunk_size: -1\n", "chunk_size"},
		{"carry below horizon", "carry_size: 64\n", "carry_size"},
		{"unknown rule", "rules:\n  MD001:\n    enabled: false\n", "unknown rule"},
		{"unknown key", "flavor: gfm\n", "flavor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeConfig(t, filepath.Join(tmpDir, ".reviewsan.yml"), tt.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolated(t.TempDir()))
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestLoader_NormalizesRuleKeys(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".reviewsan.yml"), `
rules:
  nan-to-null:
    enabled: false
  two-element-array:
    enabled: true
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, hasID := result.Config.Rules[sanitize.RuleNaNToNull]
	_, hasName := result.Config.Rules["nan-to-null"]

	if !hasID {
		t.Errorf("expected %s to be present after normalization", sanitize.RuleNaNToNull)
	}
	if hasName {
		t.Error("expected nan-to-null to be removed after normalization")
	}

	two, ok := result.Config.Rules[sanitize.RuleTwoElementArray]
	if !ok {
		t.Fatalf("expected %s to be present after normalization", sanitize.RuleTwoElementArray)
	}
	if two.Enabled == nil || !*two.Enabled {
		t.Errorf("expected %s to be enabled", sanitize.RuleTwoElementArray)
	}
}

func TestLoader_WarnsDuplicateRules(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".reviewsan.yml"), `
rules:
  SAN001:
    enabled: false
  nan-to-null:
    enabled: false
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "duplicate rule configuration") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate warning, got %v", result.Warnings)
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".reviewsan.yml")
	ctx := context.Background()

	if err := WriteConfig(ctx, path, []byte("format: json\n"), false); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	if err := WriteConfig(ctx, path, []byte("format: text\n"), false); err == nil {
		t.Fatal("expected error when config exists without force")
	}

	if err := WriteConfig(ctx, path, []byte("format: text\n"), true); err != nil {
		t.Fatalf("WriteConfig(force) error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(got) != "format: text\n" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestLoad_TOMLProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".reviewsan.toml"), `
chunk_size = 4096
rule_format = "id"

[rules.array-separator]
enabled = false
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.ChunkSize != 4096 {
		t.Errorf("expected chunk size 4096, got %d", result.Config.ChunkSize)
	}
	if result.Config.RuleFormat != config.RuleFormatID {
		t.Errorf("expected rule format id, got %q", result.Config.RuleFormat)
	}
	if _, ok := result.Config.Rules[sanitize.RuleArraySeparator]; !ok {
		t.Errorf("expected %s after normalization, got %v", sanitize.RuleArraySeparator, result.Config.Rules)
	}
}
