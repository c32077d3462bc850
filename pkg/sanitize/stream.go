package sanitize

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
)

const (
	// DefaultCarrySize is the number of trailing bytes held back between reads.
	// It covers the default pipeline's horizon.
	DefaultCarrySize = 64 * 1024

	// DefaultChunkSize is the size of each read from the source.
	DefaultChunkSize = 64 * 1024

	// writeBufferSize is the size of the buffered writer wrapping the sink (64 KiB).
	writeBufferSize = 64 * 1024
)

// danglingNaN matches a NaN value cut off by the end of input, which no rule
// can rewrite because its delimiter never arrives.
var danglingNaN = regexp.MustCompile(`:` + spaceClass + `*NaN` + spaceClass + `*$`)

// arrayOpening finds single-quoted array openings that survived the pipeline.
var arrayOpening = MustRule("", "array-opening", "", `\[`+upTo(spaceClass, MaxWhitespace)+`'`, "")

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrRead indicates the source could not be read.
	ErrRead = errors.New("read error")

	// ErrWrite indicates the sink could not be written.
	ErrWrite = errors.New("write error")

	// ErrCarryTooSmall indicates a carry size below the pipeline's horizon.
	ErrCarryTooSmall = errors.New("carry size too small")

	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)

// StreamOptions controls streaming behavior.
type StreamOptions struct {
	// CarrySize is the minimum number of trailing bytes kept unprocessed until
	// more input arrives. Zero means DefaultCarrySize.
	CarrySize int

	// ChunkSize is the read size. Zero means DefaultChunkSize.
	ChunkSize int

	// Progress, if set, is called after each window is written.
	Progress func(Stats)

	// Observe, if set, is called for each written segment that the pipeline
	// changed.
	Observe func(Change)
}

// Change is a rewritten segment of the input.
type Change struct {
	// Offset is the position of Before in the input.
	Offset int64

	// Before is the segment as read.
	Before string

	// After is the segment as written.
	After string
}

// DefaultStreamOptions returns the default streaming options.
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		CarrySize: DefaultCarrySize,
		ChunkSize: DefaultChunkSize,
	}
}

// Stats describes a completed or interrupted streaming run.
type Stats struct {
	// BytesRead is the number of bytes consumed from the source.
	BytesRead int64

	// BytesWritten is the number of bytes handed to the sink.
	BytesWritten int64

	// Chunks is the number of non-empty reads.
	Chunks int

	// Windows is the number of rewritten segments written, including the final flush.
	Windows int

	// PeakCarry is the largest carry buffer held between reads.
	PeakCarry int

	// Substitutions holds per-rule match counts in pipeline order.
	Substitutions Counts

	// DanglingNaN is set when the input ends in a NaN value with no closing
	// delimiter. The value is written unchanged.
	DanglingNaN bool

	// UnconvertedArrays counts single-quoted array openings ("['") left in
	// the output, such as arrays whose elements exceed MaxElement.
	UnconvertedArrays int
}

// Streamer rewrites a source into a sink window by window, holding back a
// carry so that no match is split across windows.
type Streamer struct {
	pipeline  *Pipeline
	carrySize int
	chunkSize int
	progress  func(Stats)
	observe   func(Change)
}

// NewStreamer creates a Streamer for the pipeline.
func NewStreamer(pipeline *Pipeline, opts StreamOptions) (*Streamer, error) {
	if pipeline == nil {
		pipeline = DefaultPipeline()
	}

	carry := opts.CarrySize
	if carry == 0 {
		carry = DefaultCarrySize
	}
	if carry < pipeline.Horizon() {
		return nil, fmt.Errorf("%w: %d < %d", ErrCarryTooSmall, carry, pipeline.Horizon())
	}

	chunk := opts.ChunkSize
	if chunk == 0 {
		chunk = DefaultChunkSize
	}
	if chunk < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunk)
	}

	return &Streamer{
		pipeline:  pipeline,
		carrySize: carry,
		chunkSize: chunk,
		progress:  opts.Progress,
		observe:   opts.Observe,
	}, nil
}

// Pipeline returns the streamer's pipeline.
func (s *Streamer) Pipeline() *Pipeline {
	return s.pipeline
}

// CarrySize returns the configured carry threshold.
func (s *Streamer) CarrySize() int {
	return s.carrySize
}

// Run copies src to dst, rewriting it with the pipeline. Bytes already
// written stay in dst if a later read or write fails.
func (s *Streamer) Run(ctx context.Context, src io.Reader, dst io.Writer) (Stats, error) {
	stats := Stats{Substitutions: make(Counts, s.pipeline.Len())}

	out := &countingWriter{w: bufio.NewWriterSize(dst, writeBufferSize)}
	var lookback string
	buf := make([]byte, s.chunkSize)
	var carry []byte
	var consumed int64

	for {
		select {
		case <-ctx.Done():
			return s.finish(stats, out), fmt.Errorf("sanitize: %w", ctx.Err())
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			stats.Chunks++
			stats.BytesRead += int64(n)
			carry = append(carry, buf[:n]...)

			// Splitting costs a full pass over the window, so wait until the
			// window holds at least one carry's worth of emittable text.
			if len(carry) >= 2*s.carrySize {
				window := string(carry)
				cut, head, counts := s.pipeline.Split(window, len(window)-s.carrySize)
				if cut > 0 {
					carry = append(carry[:0], window[cut:]...)
					stats.Substitutions.Add(counts)
					s.notify(consumed, window[:cut], head)
					consumed += int64(cut)
					stats.UnconvertedArrays += countOpenings(&lookback, head)
					if err := s.emit(&stats, out, head); err != nil {
						return s.finish(stats, out), err
					}
				}
			}
			stats.PeakCarry = max(stats.PeakCarry, len(carry))
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return s.finish(stats, out), fmt.Errorf("%w: %w", ErrRead, readErr)
		}
	}

	if len(carry) > 0 {
		before := string(carry)
		tail, counts := s.pipeline.Apply(before)
		stats.Substitutions.Add(counts)
		s.notify(consumed, before, tail)
		stats.DanglingNaN = danglingNaN.MatchString(tail)
		stats.UnconvertedArrays += countOpenings(&lookback, tail)
		if err := s.emit(&stats, out, tail); err != nil {
			return s.finish(stats, out), err
		}
	}

	if err := out.w.Flush(); err != nil {
		return s.finish(stats, out), fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return s.finish(stats, out), nil
}

func (s *Streamer) emit(stats *Stats, out *countingWriter, text string) error {
	if _, err := out.WriteString(text); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	stats.Windows++
	if s.progress != nil {
		stats.BytesWritten = out.n
		s.progress(*stats)
	}
	return nil
}

func (s *Streamer) notify(offset int64, before, after string) {
	if s.observe != nil && before != after {
		s.observe(Change{Offset: offset, Before: before, After: after})
	}
}

// countOpenings counts the array openings that end inside text, given the
// trailing bytes of previously written output in lookback, and advances lookback.
func countOpenings(lookback *string, text string) int {
	joined := *lookback + text
	n := 0
	for _, loc := range arrayOpening.re.FindAllStringIndex(joined, -1) {
		if loc[1] > len(*lookback) {
			n++
		}
	}
	keep := arrayOpening.maxWidth - 1
	*lookback = joined[max(0, len(joined)-keep):]
	return n
}

// finish records the bytes accepted by the buffered writer so far.
func (s *Streamer) finish(stats Stats, out *countingWriter) Stats {
	stats.BytesWritten = out.n
	return stats
}

// countingWriter counts bytes accepted by the underlying buffered writer.
type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countingWriter) WriteString(s string) (int, error) {
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	if err != nil {
		return n, fmt.Errorf("buffered write: %w", err)
	}
	return n, nil
}
