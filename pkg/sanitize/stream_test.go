package sanitize_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/yaklabco/reviewsan/pkg/sanitize"
)

// chunkedReader returns data in chunks of the given sizes, cycling through them.
type chunkedReader struct {
	data  []byte
	sizes []int
	next  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	size := r.sizes[r.next%len(r.sizes)]
	r.next++
	size = min(size, len(p), len(r.data))
	n := copy(p, r.data[:size])
	r.data = r.data[n:]
	return n, nil
}

// failingWriter accepts limit bytes and then fails.
type failingWriter struct {
	limit   int
	written int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.limit {
		return 0, errDiskFull
	}
	w.written += len(p)
	return len(p), nil
}

// reviewCorpus builds a review export large enough to need many windows.
func reviewCorpus(records int) string {
	var b strings.Builder
	b.WriteString("[\n")
	for i := range records {
		fmt.Fprintf(&b,
			`{"brand": "Brand %d", "product": "P%d", "rating":%sNaN%s, "theme": "['quality', 'price']", `+
				`"subtheme": "[ 'battery' ]", "sentiment": ['positive'], "pair": ['a','b'], "note": "it's fine"}`,
			i%7, i, strings.Repeat(" ", i%5), strings.Repeat("\n", i%3))
		if i < records-1 {
			b.WriteString(",\n")
		}
	}
	b.WriteString("\n]\n")
	return b.String()
}

func runStreamer(t *testing.T, pipeline *sanitize.Pipeline, opts sanitize.StreamOptions, src io.Reader) (string, sanitize.Stats) {
	t.Helper()

	streamer, err := sanitize.NewStreamer(pipeline, opts)
	require.NoError(t, err)

	var out bytes.Buffer
	stats, err := streamer.Run(context.Background(), src, &out)
	require.NoError(t, err)
	return out.String(), stats
}

func TestStreamerMatchesWholeInput(t *testing.T) {
	t.Parallel()

	input := reviewCorpus(1500)
	pipeline := sanitize.DefaultPipeline()
	want, wantCounts := pipeline.Apply(input)

	tests := []struct {
		name  string
		sizes []int
	}{
		{"one byte", []int{1}},
		{"primes", []int{7, 13, 101, 3}},
		{"carry sized", []int{sanitize.DefaultCarrySize}},
		{"large", []int{sanitize.DefaultChunkSize}},
		{"uneven", []int{5000, 1, 9000, 17}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &chunkedReader{data: []byte(input), sizes: tt.sizes}
			got, stats := runStreamer(t, pipeline, sanitize.DefaultStreamOptions(), src)

			assert.Equal(t, want, got)
			assert.Equal(t, wantCounts, stats.Substitutions)
			assert.Equal(t, int64(len(input)), stats.BytesRead)
			assert.Equal(t, int64(len(want)), stats.BytesWritten)
			assert.Greater(t, stats.Windows, 1)
		})
	}
}

func TestStreamerOneByteReader(t *testing.T) {
	t.Parallel()

	input := reviewCorpus(150)
	got, stats := runStreamer(t, nil, sanitize.DefaultStreamOptions(),
		iotest.OneByteReader(strings.NewReader(input)))

	assert.Equal(t, sanitize.Sanitize(input), got)
	assert.Equal(t, len(input), stats.Chunks)
	assert.LessOrEqual(t, stats.PeakCarry, 2*sanitize.DefaultCarrySize)
}

func TestStreamerSmallInputIsFlushedOnce(t *testing.T) {
	t.Parallel()

	input := `{"a": NaN, "tags": "['x','y']"}`
	got, stats := runStreamer(t, nil, sanitize.DefaultStreamOptions(), strings.NewReader(input))

	assert.Equal(t, `{"a": null, "tags": "["x","y"]"}`, got)
	assert.Equal(t, 1, stats.Windows)
	assert.Equal(t, 4, stats.Substitutions.Total())
}

func TestStreamerEmptyInput(t *testing.T) {
	t.Parallel()

	got, stats := runStreamer(t, nil, sanitize.DefaultStreamOptions(), strings.NewReader(""))

	assert.Empty(t, got)
	assert.Equal(t, 0, stats.Windows)
	assert.Equal(t, int64(0), stats.BytesWritten)
}

func TestStreamerTruncatedNaNIsKept(t *testing.T) {
	t.Parallel()

	input := `{"a": 1, "b": NaN`
	got, stats := runStreamer(t, nil, sanitize.DefaultStreamOptions(), strings.NewReader(input))

	assert.Equal(t, input, got)
	assert.True(t, stats.DanglingNaN)

	_, stats = runStreamer(t, nil, sanitize.DefaultStreamOptions(), strings.NewReader(`{"b": NaN}`))
	assert.False(t, stats.DanglingNaN)
}

func TestStreamerDanglingNaNAfterUnicodeSpace(t *testing.T) {
	t.Parallel()

	input := "{\"a\": 1, \"b\":\u00a0NaN\u3000"
	got, stats := runStreamer(t, nil, sanitize.DefaultStreamOptions(), strings.NewReader(input))

	assert.Equal(t, input, got)
	assert.True(t, stats.DanglingNaN)
}

func TestStreamerCountsUnconvertedArrays(t *testing.T) {
	t.Parallel()

	corpus := reviewCorpus(1500)
	middle := strings.Index(corpus[len(corpus)/2:], "\n") + len(corpus)/2
	long := `{"tags": ['` + strings.Repeat("x", sanitize.MaxElement+1) + `']},`
	input := corpus[:middle+1] + long + corpus[middle+1:]

	tests := []struct {
		name  string
		sizes []int
	}{
		{"primes", []int{7, 13, 101, 3}},
		{"single read", []int{len(input)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &chunkedReader{data: []byte(input), sizes: tt.sizes}
			got, stats := runStreamer(t, nil, sanitize.DefaultStreamOptions(), src)

			assert.Equal(t, 1, strings.Count(got, "['"))
			assert.Equal(t, 1, stats.UnconvertedArrays)
			assert.Greater(t, stats.Windows, 1)
		})
	}

	_, stats := runStreamer(t, nil, sanitize.DefaultStreamOptions(), strings.NewReader(corpus))
	assert.Zero(t, stats.UnconvertedArrays)
}

func TestStreamerProgress(t *testing.T) {
	t.Parallel()

	var calls int
	var last sanitize.Stats
	opts := sanitize.DefaultStreamOptions()
	opts.ChunkSize = 1024
	opts.Progress = func(stats sanitize.Stats) {
		calls++
		last = stats
	}

	input := reviewCorpus(100)
	got, stats := runStreamer(t, nil, opts, strings.NewReader(input))

	assert.Equal(t, sanitize.Sanitize(input), got)
	assert.Equal(t, stats.Windows, calls)
	assert.Equal(t, stats.BytesWritten, last.BytesWritten)
}

func TestNewStreamerValidation(t *testing.T) {
	t.Parallel()

	t.Run("carry below horizon", func(t *testing.T) {
		t.Parallel()

		_, err := sanitize.NewStreamer(nil, sanitize.StreamOptions{CarrySize: 16})
		require.ErrorIs(t, err, sanitize.ErrCarryTooSmall)
	})

	t.Run("negative chunk", func(t *testing.T) {
		t.Parallel()

		_, err := sanitize.NewStreamer(nil, sanitize.StreamOptions{ChunkSize: -1})
		require.ErrorIs(t, err, sanitize.ErrInvalidChunkSize)
	})

	t.Run("zero values use defaults", func(t *testing.T) {
		t.Parallel()

		streamer, err := sanitize.NewStreamer(nil, sanitize.StreamOptions{})
		require.NoError(t, err)
		assert.Equal(t, sanitize.DefaultCarrySize, streamer.CarrySize())
	})
}

func TestStreamerReadError(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("broken pipe")
	src := io.MultiReader(strings.NewReader(`{"a": NaN}`), iotest.ErrReader(errBroken))

	streamer, err := sanitize.NewStreamer(nil, sanitize.DefaultStreamOptions())
	require.NoError(t, err)

	var out bytes.Buffer
	stats, err := streamer.Run(context.Background(), src, &out)

	require.ErrorIs(t, err, sanitize.ErrRead)
	require.ErrorIs(t, err, errBroken)
	assert.Equal(t, int64(10), stats.BytesRead)
}

func TestStreamerWriteError(t *testing.T) {
	t.Parallel()

	input := reviewCorpus(2000)
	streamer, err := sanitize.NewStreamer(nil, sanitize.DefaultStreamOptions())
	require.NoError(t, err)

	_, err = streamer.Run(context.Background(), strings.NewReader(input), &failingWriter{limit: 1024})

	require.ErrorIs(t, err, sanitize.ErrWrite)
	require.ErrorIs(t, err, errDiskFull)
}

func TestStreamerCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	streamer, err := sanitize.NewStreamer(nil, sanitize.DefaultStreamOptions())
	require.NoError(t, err)

	_, err = streamer.Run(ctx, strings.NewReader(`{"a": NaN}`), io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCopy(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	stats, err := sanitize.Copy(context.Background(), &out, strings.NewReader(`["x", {"y": NaN}]`))

	require.NoError(t, err)
	assert.Equal(t, `["x", {"y": null}]`, out.String())
	assert.Equal(t, 1, stats.Substitutions.Total())
}

// narrowPipeline mirrors the built-in rules with tight bounds so that a tiny
// carry exercises many window splits.
func narrowPipeline() *sanitize.Pipeline {
	ws := `\s{0,2}`
	elem := `([^']{0,4}?)`
	return sanitize.NewPipeline(
		sanitize.MustRule("N1", "nan", "", `:`+ws+`NaN(`+ws+`[,}\]])`, `: null${1}`),
		sanitize.MustRule("N2", "open", "", `"\[`+ws+`'`, `"["`),
		sanitize.MustRule("N3", "close", "", `'`+ws+`\]"`, `"]"`),
		sanitize.MustRule("N4", "sep", "", `'`+ws+`,`+ws+`'`, `","`),
		sanitize.MustRule("N5", "one", "", `\[`+ws+`'`+elem+`'`+ws+`\]`, `["${1}"]`),
		sanitize.MustRule("N6", "two", "", `\[`+ws+`'`+elem+`'`+ws+`,`+ws+`'`+elem+`'`+ws+`\]`, `["${1}","${2}"]`),
	)
}

//nolint:gochecknoglobals // Read-only fragment table for property tests.
var fragments = []string{
	":", " ", "\n", "NaN", ",", "}", "]", "[", "'", `"`, `"['`, `']"`, `','`,
	"['", "']", "x", "ab", "é", `{"k": NaN}`, `: NaN,`, `"[ 'p' ]"`, `['a','b']`,
}

func TestStreamerChunkBoundaryInvariance(t *testing.T) {
	t.Parallel()

	pipeline := narrowPipeline()

	rapid.Check(t, func(rt *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 400).Draw(rt, "parts")
		sizes := rapid.SliceOfN(rapid.IntRange(1, 64), 1, 8).Draw(rt, "sizes")
		extra := rapid.IntRange(0, 32).Draw(rt, "extraCarry")

		input := strings.Join(parts, "")
		want, wantCounts := pipeline.Apply(input)

		streamer, err := sanitize.NewStreamer(pipeline, sanitize.StreamOptions{
			CarrySize: pipeline.Horizon() + extra,
			ChunkSize: 64,
		})
		if err != nil {
			rt.Fatalf("NewStreamer: %v", err)
		}

		var out bytes.Buffer
		stats, err := streamer.Run(context.Background(),
			&chunkedReader{data: []byte(input), sizes: sizes}, &out)
		if err != nil {
			rt.Fatalf("Run: %v", err)
		}

		if out.String() != want {
			rt.Fatalf("streamed output differs\ninput: %q\n got: %q\nwant: %q", input, out.String(), want)
		}
		if stats.Substitutions.Total() != wantCounts.Total() {
			rt.Fatalf("substitutions = %d, want %d", stats.Substitutions.Total(), wantCounts.Total())
		}
	})
}

func TestSanitizeLeavesNoReplaceableNaN(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 60).Draw(rt, "parts")
		once := sanitize.Sanitize(strings.Join(parts, ""))

		if strings.Contains(once, ": NaN,") || strings.Contains(once, ": NaN}") {
			rt.Fatalf("replaceable NaN left in %q", once)
		}
	})
}

//nolint:gochecknoglobals // Read-only value table for property tests.
var recordValues = []string{
	"NaN", " NaN", "NaN ", "\n NaN\n", `"text"`, `1.5`, `null`,
	`"['a','b']"`, `"[ 'p' ]"`, `"['q']"`, `['x']`, `[ 'a' , 'b' ]`, `['a','b','c']`, `[]`,
}

// reviewRecord draws a well-formed export record. Single quotes appear only
// as array delimiters.
func reviewRecord(rt *rapid.T, label string) string {
	values := rapid.SliceOfN(rapid.SampledFrom(recordValues), 1, 8).Draw(rt, label)
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = fmt.Sprintf(`"k%d": %s`, i, v)
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func TestSanitizeIdempotenceProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(0, 6).Draw(rt, "records")
		records := make([]string, count)
		for i := range records {
			records[i] = reviewRecord(rt, fmt.Sprintf("record%d", i))
		}
		input := "[" + strings.Join(records, ",\n") + "]"

		once := sanitize.Sanitize(input)
		if twice := sanitize.Sanitize(once); twice != once {
			rt.Fatalf("second pass changed output\ninput: %q\n once: %q\ntwice: %q", input, once, twice)
		}
		if strings.Contains(once, "'") {
			rt.Fatalf("single quote left in %q", once)
		}
		if strings.Contains(once, "NaN") {
			rt.Fatalf("NaN left in %q", once)
		}
	})
}

func TestStreamerObserve(t *testing.T) {
	t.Parallel()

	var changes []sanitize.Change
	opts := sanitize.DefaultStreamOptions()
	opts.ChunkSize = 512
	opts.Observe = func(c sanitize.Change) {
		changes = append(changes, c)
	}

	input := reviewCorpus(300)
	got, _ := runStreamer(t, nil, opts, strings.NewReader(input))
	require.NotEmpty(t, changes)

	// Stitching the observed segments back over the input reproduces the output.
	var rebuilt strings.Builder
	var pos int64
	for _, c := range changes {
		require.GreaterOrEqual(t, c.Offset, pos)
		rebuilt.WriteString(input[pos:c.Offset])
		assert.Equal(t, input[c.Offset:c.Offset+int64(len(c.Before))], c.Before)
		assert.NotEqual(t, c.Before, c.After)
		rebuilt.WriteString(c.After)
		pos = c.Offset + int64(len(c.Before))
	}
	rebuilt.WriteString(input[pos:])

	assert.Equal(t, got, rebuilt.String())
}

func TestStreamerObserveSkipsUnchanged(t *testing.T) {
	t.Parallel()

	called := false
	opts := sanitize.DefaultStreamOptions()
	opts.Observe = func(sanitize.Change) { called = true }

	input := `{"a": 1, "b": "plain"}`
	got, _ := runStreamer(t, nil, opts, strings.NewReader(input))

	assert.Equal(t, input, got)
	assert.False(t, called)
}
