package framer

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/chartlydata/offimport/internal/source"
)

// sliceSource replays a pre-chunked byte stream as a source.Source,
// reporting progress as bytes-delivered/total when total is known.
type sliceSource struct {
	chunks    [][]byte
	i         int
	total     int64
	delivered int64
	known     bool
}

func newSliceSource(data []byte, chunkSize int, known bool) *sliceSource {
	var chunks [][]byte
	for len(data) > 0 {
		n := chunkSize
		if n <= 0 || n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	total := int64(0)
	for _, c := range chunks {
		total += int64(len(c))
	}
	return &sliceSource{chunks: chunks, total: total, known: known}
}

func (s *sliceSource) Next(ctx context.Context) (source.Chunk, error) {
	if s.i >= len(s.chunks) {
		return source.Chunk{}, io.EOF
	}
	c := s.chunks[s.i]
	s.i++
	s.delivered += int64(len(c))
	ch := source.Chunk{Data: c}
	if s.known {
		ch.HasProgress = true
		ch.Progress = float64(s.delivered) / float64(s.total)
	}
	return ch, nil
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func collectLines(t *testing.T, f *Framer) [][]byte {
	t.Helper()
	var lines [][]byte
	var lastProgress float64
	var sawProgress bool
	for {
		line, err := f.Next(context.Background())
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if line.HasProgress {
			if sawProgress && line.Progress < lastProgress {
				t.Fatalf("progress decreased: %v -> %v", lastProgress, line.Progress)
			}
			if line.Progress <= 0 || line.Progress > 1.0 {
				t.Fatalf("progress out of (0,1]: %v", line.Progress)
			}
			lastProgress = line.Progress
			sawProgress = true
		}
		lines = append(lines, append([]byte(nil), line.Data...))
	}
	if sawProgress && lastProgress != 1.0 {
		t.Fatalf("final progress != 1.0, got %v", lastProgress)
	}
	return lines
}

func splitExpected(data []byte) [][]byte {
	return bytes.Split(data, []byte{'\n'})
}

func assertEqualLines(t *testing.T, got, want [][]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("line count mismatch: got %d want %d\ngot=%q\nwant=%q", len(got), len(want), got, want)
	}
	for i := range got {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("line %d mismatch: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestFramer_RoundTrip_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	chunkSizes := []int{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 4096, 8192}

	samples := [][]byte{
		[]byte(""),
		[]byte("hello"),
		[]byte("hello\n"),
		[]byte("\n"),
		[]byte("a\nb\n"),
		[]byte("a\nb"),
		[]byte("line1\nline2\nline3\n"),
		bytes.Repeat([]byte("x"), 10000),
	}
	for n := 0; n < 20; n++ {
		buf := make([]byte, rng.Intn(5000))
		for i := range buf {
			if rng.Intn(5) == 0 {
				buf[i] = '\n'
			} else {
				buf[i] = byte('a' + rng.Intn(26))
			}
		}
		samples = append(samples, buf)
	}

	for _, s := range samples {
		compressed := gzipBytes(t, s)
		for _, cs := range chunkSizes {
			src := newSliceSource(compressed, cs, true)
			f := New(src)
			got := collectLines(t, f)
			want := splitExpected(s)
			if len(s) == 0 {
				want = nil
			}
			assertEqualLines(t, got, want)
		}
	}
}

func TestFramer_EmptyInputYieldsNothing(t *testing.T) {
	compressed := gzipBytes(t, []byte(""))
	src := newSliceSource(compressed, 16, true)
	f := New(src)
	got := collectLines(t, f)
	if len(got) != 0 {
		t.Fatalf("expected no lines, got %v", got)
	}
}

func TestFramer_NoTrailingNewlineSingleLine(t *testing.T) {
	compressed := gzipBytes(t, []byte("no newline here"))
	src := newSliceSource(compressed, 3, true)
	f := New(src)
	got := collectLines(t, f)
	assertEqualLines(t, got, [][]byte{[]byte("no newline here")})
}

func TestFramer_TrailingNewlineYieldsFinalEmptyLine(t *testing.T) {
	compressed := gzipBytes(t, []byte("one\ntwo\n"))
	src := newSliceSource(compressed, 5, true)
	f := New(src)
	got := collectLines(t, f)
	assertEqualLines(t, got, [][]byte{[]byte("one"), []byte("two"), []byte("")})
}

func TestFramer_ProgressUnknownWhenSourceHasNone(t *testing.T) {
	compressed := gzipBytes(t, []byte("a\nb\n"))
	src := newSliceSource(compressed, 4, false)
	f := New(src)
	for {
		line, err := f.Next(context.Background())
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if line.HasProgress {
			t.Fatalf("expected no progress, got %v", line.Progress)
		}
	}
}

func TestFramer_SmallerThanPreambleChunks(t *testing.T) {
	compressed := gzipBytes(t, []byte("hello world\nsecond line\n"))
	src := newSliceSource(compressed, 1, true)
	f := New(src)
	got := collectLines(t, f)
	assertEqualLines(t, got, [][]byte{[]byte("hello world"), []byte("second line"), []byte("")})
}
