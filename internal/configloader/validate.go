package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/reviewsan/pkg/config"
	"github.com/yaklabco/reviewsan/pkg/fsutil"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "rules.SAN001.enabled").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string

	// Line is the line number in the config file (if known).
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.FilePath, e.Line))
		} else {
			parts = append(parts, e.FilePath)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("invalid format %q; must be one of: text, summary, json, diff", cfg.Format),
		})
	}

	if cfg.RuleFormat != "" && !cfg.RuleFormat.IsValid() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "rule_format",
			Value:   cfg.RuleFormat,
			Message: fmt.Sprintf("invalid rule format %q; must be one of: name, id, combined", cfg.RuleFormat),
		})
	}

	if cfg.Backups.Mode != "" && !IsValidBackupMode(cfg.Backups.Mode) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "backups.mode",
			Value:   cfg.Backups.Mode,
			Message: fmt.Sprintf("invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode),
		})
	}

	if cfg.ChunkSize < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "chunk_size",
			Value:   cfg.ChunkSize,
			Message: "chunk_size must be >= 0 (0 means default)",
		})
	}

	if cfg.CarrySize < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "carry_size",
			Value:   cfg.CarrySize,
			Message: "carry_size must be >= 0 (0 means default)",
		})
	}

	if validateRules(cfg, result) {
		validateCarry(cfg, result)
	}

	return result
}

// validateRules reports rule keys that match no registered rule.
// It returns true when every key resolved.
func validateRules(cfg *config.Config, result *ValidationResult) bool {
	registry := sanitize.DefaultRegistry
	ok := true

	for key := range cfg.Rules {
		if _, found := registry.Resolve(key); !found {
			ok = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   "rules." + key,
				Value:   key,
				Message: fmt.Sprintf("unknown rule %q", key),
			})
		}
	}

	for i, key := range cfg.DisableRules {
		if _, found := registry.Resolve(key); !found {
			ok = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("disable[%d]", i),
				Value:   key,
				Message: fmt.Sprintf("unknown rule %q", key),
			})
		}
	}

	return ok
}

// validateCarry checks the carry size against the horizon of the enabled rules.
func validateCarry(cfg *config.Config, result *ValidationResult) {
	pipeline, err := sanitize.DefaultRegistry.Pipeline(cfg.Disabled()...)
	if err != nil {
		return
	}

	if pipeline.Len() == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "rules",
			Message: "all rules are disabled; input will be copied unchanged",
		})
	}

	if cfg.CarrySize > 0 && cfg.CarrySize < pipeline.Horizon() {
		result.Errors = append(result.Errors, ValidationError{
			Field: "carry_size",
			Value: cfg.CarrySize,
			Message: fmt.Sprintf("carry_size %d is below the longest possible match (%d bytes)",
				cfg.CarrySize, pipeline.Horizon()),
		})
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidBackupMode returns true if the backup mode is valid.
func IsValidBackupMode(mode string) bool {
	switch fsutil.BackupMode(mode) {
	case fsutil.BackupModeSidecar, fsutil.BackupModeNone:
		return true
	default:
		return false
	}
}
