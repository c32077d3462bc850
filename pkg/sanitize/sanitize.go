// Package sanitize repairs the two defects that keep exported review data
// from parsing as JSON: unquoted NaN values and array literals written with
// single quotes. Text is rewritten by an ordered pipeline of regular
// expression rules and can be streamed through a Streamer of any size.
package sanitize

import (
	"context"
	"io"
)

// Sanitize rewrites s with the default pipeline.
func Sanitize(s string) string {
	out, _ := DefaultPipeline().Apply(s)
	return out
}

// SanitizeBytes rewrites b with the default pipeline.
func SanitizeBytes(b []byte) []byte {
	return []byte(Sanitize(string(b)))
}

// Copy streams src to dst through the default pipeline with default options.
func Copy(ctx context.Context, dst io.Writer, src io.Reader) (Stats, error) {
	streamer, err := NewStreamer(DefaultPipeline(), DefaultStreamOptions())
	if err != nil {
		return Stats{}, err
	}
	return streamer.Run(ctx, src, dst)
}
