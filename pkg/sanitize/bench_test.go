package sanitize_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

func BenchmarkSanitize(b *testing.B) {
	input := reviewCorpus(2000)
	b.SetBytes(int64(len(input)))

	for b.Loop() {
		_ = sanitize.Sanitize(input)
	}
}

func BenchmarkStreamer(b *testing.B) {
	input := reviewCorpus(2000)
	streamer, err := sanitize.NewStreamer(nil, sanitize.DefaultStreamOptions())
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(input)))

	for b.Loop() {
		if _, err := streamer.Run(context.Background(), strings.NewReader(input), io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
