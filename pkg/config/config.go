// Package config defines core configuration types for reviewsan.
// These types are pure data structures; discovery and merging live in internal/configloader.
package config

import (
	"slices"

	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// RuleConfig holds per-rule configuration options.
type RuleConfig struct {
	Enabled *bool `yaml:"enabled" toml:"enabled,omitempty"`
}

// BackupsConfig controls backup behavior for existing output files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Mode    string `yaml:"mode" toml:"mode"` // "sidecar" or "none"
}

// OutputFormat specifies the format of the run report.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatSummary OutputFormat = "summary"
	FormatJSON    OutputFormat = "json"
	FormatDiff    OutputFormat = "diff"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatSummary, FormatJSON, FormatDiff:
		return true
	default:
		return false
	}
}

// RuleFormat controls how rule identifiers appear in output.
type RuleFormat string

const (
	RuleFormatName     RuleFormat = "name"     // "nan-to-null"
	RuleFormatID       RuleFormat = "id"       // "SAN001"
	RuleFormatCombined RuleFormat = "combined" // "SAN001/nan-to-null"
)

// IsValid returns true if the rule format is known.
func (f RuleFormat) IsValid() bool {
	switch f {
	case RuleFormatName, RuleFormatID, RuleFormatCombined:
		return true
	default:
		return false
	}
}

// Config is the root configuration structure for reviewsan.
type Config struct {
	// CarrySize is the number of trailing bytes held back between reads.
	CarrySize int `yaml:"carry_size" toml:"carry_size"`

	// ChunkSize is the size of each read from the input.
	ChunkSize int `yaml:"chunk_size" toml:"chunk_size"`

	// Atomic writes output to a temp file renamed into place on success.
	Atomic bool `yaml:"atomic" toml:"atomic"`

	// Format specifies the report format.
	Format OutputFormat `yaml:"format" toml:"format"`

	// RuleFormat controls how rule identifiers appear in reports.
	RuleFormat RuleFormat `yaml:"rule_format" toml:"rule_format"`

	// Rules contains per-rule configuration keyed by rule ID or name.
	Rules map[string]RuleConfig `yaml:"rules" toml:"rules"`

	// Backups configures backups of an existing output file.
	Backups BackupsConfig `yaml:"backups" toml:"backups"`

	// CLI-level options (not persisted to config files).

	// DryRun processes the input without writing any output.
	DryRun bool `yaml:"-" toml:"-"`

	// Quiet suppresses the run report.
	Quiet bool `yaml:"-" toml:"-"`

	// DisableRules contains rule IDs or names to disable for this run.
	DisableRules []string `yaml:"-" toml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		CarrySize:  sanitize.DefaultCarrySize,
		ChunkSize:  sanitize.DefaultChunkSize,
		Atomic:     false,
		Format:     FormatText,
		RuleFormat: RuleFormatName,
		Rules:      make(map[string]RuleConfig),
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    "sidecar",
		},
	}
}

// Disabled returns the rule keys disabled either in Rules or by DisableRules,
// in a stable order without duplicates.
func (c *Config) Disabled() []string {
	if c == nil {
		return nil
	}

	var keys []string
	for key, rc := range c.Rules {
		if rc.Enabled != nil && !*rc.Enabled {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	for _, key := range c.DisableRules {
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}

	return keys
}

// StreamOptions converts the config into streamer options.
func (c *Config) StreamOptions() sanitize.StreamOptions {
	opts := sanitize.DefaultStreamOptions()
	if c == nil {
		return opts
	}
	if c.CarrySize > 0 {
		opts.CarrySize = c.CarrySize
	}
	if c.ChunkSize > 0 {
		opts.ChunkSize = c.ChunkSize
	}
	return opts
}
