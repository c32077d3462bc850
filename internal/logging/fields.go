// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"
	FieldMode   = "mode"
	FieldBackup = "backup"
	FieldRunID  = "run_id"

	// Configuration fields.
	FieldConfig    = "config"
	FieldCarrySize = "carry_size"
	FieldChunkSize = "chunk_size"
	FieldDisabled  = "disabled"
	FieldDryRun    = "dry_run"
	FieldFormat    = "format"

	// Statistics fields.
	FieldBytesRead     = "bytes_read"
	FieldBytesWritten  = "bytes_written"
	FieldChunks        = "chunks"
	FieldWindows       = "windows"
	FieldPeakCarry     = "peak_carry"
	FieldSubstitutions = "substitutions"
	FieldDuration      = "duration"
	FieldChanged       = "changed_segments"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Rule fields.
	FieldRule        = "rule"
	FieldName        = "name"
	FieldCount       = "count"
	FieldDescription = "description"
)
