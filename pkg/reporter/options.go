package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/reviewsan/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for reports. It defaults to os.Stderr so
	// that stdout stays free for sanitized data.
	Writer io.Writer

	// Format specifies the report format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// Compact uses minified JSON.
	Compact bool

	// RuleFormat controls how rule identifiers appear in output.
	RuleFormat config.RuleFormat
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:     os.Stderr,
		Format:     FormatText,
		Color:      "auto",
		Compact:    false,
		RuleFormat: config.RuleFormatName,
	}
}
