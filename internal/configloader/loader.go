// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, hierarchical merging,
// environment variable support, and validation.
package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/reviewsan/pkg/config"
	"github.com/yaklabco/reviewsan/pkg/fsutil"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	ExplicitPath string

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading project-level configuration.
	IgnoreProjectConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// CLIConfig contains configuration from CLI flags.
	// These take highest precedence.
	CLIConfig *config.Config
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the final configuration by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.CLIConfig)
//  2. Environment variables (REVIEWSAN_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.reviewsan.yml upward search)
//  5. User config ($XDG_CONFIG_HOME/reviewsan/config.yaml)
//  6. System config (/etc/reviewsan/config.yaml)
//  7. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	cfg := config.NewConfig()

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}

	// Load and merge in order (lowest to highest precedence).
	layers := []struct {
		name   string
		path   string
		ignore bool
	}{
		{"system", paths.System, opts.IgnoreSystemConfig},
		{"user", paths.User, opts.IgnoreUserConfig},
		{"project", paths.Project, opts.IgnoreProjectConfig},
		{"explicit", paths.Explicit, false},
	}

	for _, layer := range layers {
		if layer.ignore || layer.path == "" {
			continue
		}
		fileCfg, err := loadConfigFile(layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.name, err)
		}
		cfg = merge(cfg, fileCfg)
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	// Rule names such as "nan-to-null" are accepted anywhere an ID is.
	normalizeRuleKeys(cfg, sanitize.DefaultRegistry, result)

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}

	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Message)
	}

	result.Config = cfg
	return result, nil
}

// loadConfigFile loads a configuration file. Files ending in .toml are
// parsed as TOML; anything else as YAML, which also accepts JSON.
func loadConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	parse := config.FromYAML
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parse = config.FromTOML
	}

	cfg, err := parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// WriteConfig writes content to path, refusing to overwrite unless force is set.
func WriteConfig(ctx context.Context, path string, content []byte, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	if err := fsutil.WriteAtomic(ctx, path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// normalizeRuleKeys converts rule names to canonical IDs in the config.
// If a rule is specified by both ID and name, warns and uses the last value encountered.
// Unknown keys are kept so that validation can report them.
func normalizeRuleKeys(cfg *config.Config, registry *sanitize.Registry, result *LoadResult) {
	if len(cfg.Rules) > 0 {
		normalized := make(map[string]config.RuleConfig, len(cfg.Rules))
		seenIDs := make(map[string]string) // canonical ID -> original key

		for key, ruleCfg := range cfg.Rules {
			canonicalID, found := registry.Resolve(key)
			if !found {
				normalized[key] = ruleCfg
				continue
			}

			if originalKey, exists := seenIDs[canonicalID]; exists {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("duplicate rule configuration: %q and %q both refer to %s; using last value",
						originalKey, key, canonicalID))
			}

			seenIDs[canonicalID] = key
			normalized[canonicalID] = ruleCfg
		}

		cfg.Rules = normalized
	}

	for i, key := range cfg.DisableRules {
		if canonicalID, found := registry.Resolve(key); found {
			cfg.DisableRules[i] = canonicalID
		}
	}
}
