// Package runner orchestrates a single sanitize run from an input path to an output path.
package runner

import (
	"io"

	"github.com/yaklabco/reviewsan/pkg/config"
	"github.com/yaklabco/reviewsan/pkg/fsutil"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// OutputMode describes how the output is written.
type OutputMode string

const (
	// OutputStdout writes to the process's standard output.
	OutputStdout OutputMode = "stdout"

	// OutputDiscard processes the input without writing anything.
	OutputDiscard OutputMode = "dry-run"

	// OutputAtomic writes to a temp file renamed over the output on success.
	OutputAtomic OutputMode = "atomic"

	// OutputDirect creates or truncates the output and writes into it.
	OutputDirect OutputMode = "direct"
)

// Options controls a single run.
type Options struct {
	// Input is the path to read. fsutil.StdioPath reads Stdin.
	Input string

	// Output is the path to write. fsutil.StdioPath writes Stdout.
	Output string

	// Atomic writes the output through a temp file. It is forced on when
	// Input and Output name the same file.
	Atomic bool

	// DryRun processes the input without touching the output.
	DryRun bool

	// Backup configures a backup of an existing output file.
	Backup fsutil.BackupConfig

	// Stream controls carry and chunk sizes.
	Stream sanitize.StreamOptions

	// Samples is the number of rewritten segments kept in Result.Samples.
	// Zero keeps none.
	Samples int

	// Stdin and Stdout replace the process streams when set.
	Stdin  io.Reader
	Stdout io.Writer
}

// OptionsFromConfig builds run options for input and output from cfg.
func OptionsFromConfig(cfg *config.Config, input, output string) Options {
	opts := Options{
		Input:  input,
		Output: output,
		Backup: fsutil.DefaultBackupConfig(),
		Stream: sanitize.DefaultStreamOptions(),
	}
	if cfg == nil {
		return opts
	}

	opts.Atomic = cfg.Atomic
	opts.DryRun = cfg.DryRun
	opts.Stream = cfg.StreamOptions()
	opts.Backup.Enabled = cfg.Backups.Enabled
	if cfg.Backups.Mode != "" {
		opts.Backup.Mode = fsutil.BackupMode(cfg.Backups.Mode)
	}

	return opts
}

// outputMode resolves how the output will be written.
func (o Options) outputMode() OutputMode {
	switch {
	case o.DryRun:
		return OutputDiscard
	case o.Output == fsutil.StdioPath:
		return OutputStdout
	case o.Atomic || fsutil.SameFile(o.Input, o.Output):
		return OutputAtomic
	default:
		return OutputDirect
	}
}
