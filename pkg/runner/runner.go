package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/yaklabco/reviewsan/internal/logging"
	"github.com/yaklabco/reviewsan/pkg/fsutil"
	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// ErrMissingPath is returned when the input or output path is empty.
var ErrMissingPath = errors.New("input and output paths are required")

// Runner drives a sanitize.Pipeline from an input path to an output path.
type Runner struct {
	// Pipeline holds the rules to apply. Nil means the default pipeline.
	Pipeline *sanitize.Pipeline
}

// New creates a new Runner with the given pipeline.
func New(pipeline *sanitize.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run streams opts.Input through the pipeline into opts.Output.
//
// The runner:
//   - Opens the input first, so a missing input never creates an output
//   - Backs up an existing output file when configured
//   - Writes directly, atomically, to stdout, or nowhere (dry run)
//   - Aborts an atomic output on failure, or restores a direct output from its backup
//
// The returned Result is non-nil whenever the options were valid, even on error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Input == "" || opts.Output == "" {
		return nil, ErrMissingPath
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Input:  opts.Input,
		Output: opts.Output,
		Mode:   opts.outputMode(),
	}

	stream := opts.Stream
	stream.Observe = result.observer(opts.Samples, opts.Stream.Observe)

	streamer, err := sanitize.NewStreamer(r.Pipeline, stream)
	if err != nil {
		return nil, fmt.Errorf("create streamer: %w", err)
	}
	result.Rules = streamer.Pipeline().Rules()
	result.Stats = sanitize.Stats{Substitutions: make(sanitize.Counts, streamer.Pipeline().Len())}

	logger := logging.FromContext(ctx).With(logging.FieldRunID, result.RunID)

	src, err := openInput(opts)
	if err != nil {
		return result, fmt.Errorf("%w: %w", sanitize.ErrRead, err)
	}
	defer src.Close()

	out, err := openSink(ctx, opts, result)
	if err != nil {
		return result, fmt.Errorf("%w: %w", sanitize.ErrWrite, err)
	}

	logger.Debug("streaming",
		logging.FieldInput, opts.Input,
		logging.FieldOutput, opts.Output,
		logging.FieldMode, string(result.Mode),
		logging.FieldCarrySize, streamer.CarrySize(),
	)

	start := time.Now()
	stats, runErr := streamer.Run(ctx, src, out.w)
	result.Stats = stats
	result.Duration = time.Since(start)

	if runErr != nil {
		return result, errors.Join(runErr, out.abort(context.WithoutCancel(ctx), result))
	}

	if err := out.commit(); err != nil {
		return result, fmt.Errorf("%w: %w", sanitize.ErrWrite, err)
	}

	logger.Debug("streamed",
		logging.FieldBytesRead, stats.BytesRead,
		logging.FieldBytesWritten, stats.BytesWritten,
		logging.FieldWindows, stats.Windows,
		logging.FieldPeakCarry, stats.PeakCarry,
		logging.FieldChanged, result.ChangedSegments,
	)

	return result, nil
}

func openInput(opts Options) (io.ReadCloser, error) {
	if opts.Input == fsutil.StdioPath && opts.Stdin != nil {
		return io.NopCloser(opts.Stdin), nil
	}

	src, _, err := fsutil.OpenInput(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return src, nil
}

// sink is an output with its completion and failure actions.
type sink struct {
	w      io.Writer
	commit func() error
	abort  func(ctx context.Context, result *Result) error
}

func nopCommit() error { return nil }

func nopAbort(context.Context, *Result) error { return nil }

func openSink(ctx context.Context, opts Options, result *Result) (*sink, error) {
	switch result.Mode {
	case OutputDiscard:
		return &sink{w: io.Discard, commit: nopCommit, abort: nopAbort}, nil

	case OutputStdout:
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		return &sink{w: w, commit: nopCommit, abort: nopAbort}, nil
	}

	backupPath, err := fsutil.CreateBackup(ctx, opts.Output, opts.Backup)
	if err != nil {
		return nil, err
	}
	result.BackupPath = backupPath

	if result.Mode == OutputAtomic {
		file, err := fsutil.CreateAtomic(ctx, opts.Output, 0)
		if err != nil {
			return nil, err
		}
		return &sink{
			w:      file,
			commit: file.Commit,
			abort: func(context.Context, *Result) error {
				return file.Abort()
			},
		}, nil
	}

	file, err := fsutil.CreateOutput(opts.Output, 0)
	if err != nil {
		return nil, err
	}
	return &sink{
		w:      file,
		commit: file.Close,
		abort: func(ctx context.Context, result *Result) error {
			closeErr := file.Close()
			if result.BackupPath == "" {
				return closeErr
			}
			restored, err := fsutil.RestoreBackup(ctx, opts.Output, opts.Backup.Mode)
			result.Restored = restored
			return errors.Join(closeErr, err)
		},
	}, nil
}
