package orbit

import (
	"slices"
	"testing"
)

func drainAll(b *frameBuffer) []string {
	var frames []string
	for line := range b.drain() {
		frames = append(frames, line)
	}
	return frames
}

func TestFrameBufferSplitInvariance(t *testing.T) {
	full := "data: {\"response\":\"Hel\"}\ndata: {\"response\":\"lo\"}\ndata: [DONE]\n"

	want := func() []string {
		b := newFrameBuffer()
		b.append([]byte(full))
		return drainAll(b)
	}()
	if len(want) != 3 {
		t.Fatalf("whole-message drain produced %d frames, want 3", len(want))
	}

	// Any fragmentation of the same bytes must yield the same frame list.
	for size := 1; size <= len(full); size++ {
		b := newFrameBuffer()
		var got []string
		for i := 0; i < len(full); i += size {
			end := min(i+size, len(full))
			b.append([]byte(full[i:end]))
			got = append(got, drainAll(b)...)
		}
		if !slices.Equal(got, want) {
			t.Fatalf("fragment size %d: frames = %q, want %q", size, got, want)
		}
	}
}

func TestFrameBufferPartialLineRetained(t *testing.T) {
	b := newFrameBuffer()

	b.append([]byte("data: {\"response\":\"He"))
	if frames := drainAll(b); frames != nil {
		t.Fatalf("incomplete line yielded frames: %q", frames)
	}

	b.append([]byte("llo\"}\n"))
	frames := drainAll(b)
	if len(frames) != 1 || frames[0] != `data: {"response":"Hello"}` {
		t.Fatalf("reassembled frames = %q", frames)
	}
}

func TestFrameBufferSkipsBlankLines(t *testing.T) {
	b := newFrameBuffer()
	b.append([]byte("\n\r\n  \ndata: one\n\n\ndata: two\n\n"))

	frames := drainAll(b)
	if !slices.Equal(frames, []string{"data: one", "data: two"}) {
		t.Fatalf("frames = %q", frames)
	}
}

func TestFrameBufferTrimsCarriageReturns(t *testing.T) {
	b := newFrameBuffer()
	b.append([]byte("data: one\r\ndata: two\r\n"))

	frames := drainAll(b)
	if !slices.Equal(frames, []string{"data: one", "data: two"}) {
		t.Fatalf("frames = %q", frames)
	}
}

func TestFrameBufferUTF8SplitAcrossAppends(t *testing.T) {
	b := newFrameBuffer()

	line := []byte("data: {\"response\":\"日本語\"}\n")
	// Split in the middle of a multi-byte sequence.
	b.append(line[:10])
	b.append(line[10:])

	frames := drainAll(b)
	if len(frames) != 1 || frames[0] != `data: {"response":"日本語"}` {
		t.Fatalf("frames = %q", frames)
	}
}

func TestFrameBufferOverflowBound(t *testing.T) {
	b := &frameBuffer{max: 64}

	for i := 0; i < 1000; i++ {
		b.append([]byte("x"))
		if b.len() > b.max {
			t.Fatalf("buffer grew to %d bytes, ceiling is %d", b.len(), b.max)
		}
	}

	if !b.takeTruncated() {
		t.Fatal("expected truncation to be reported")
	}
	if b.takeTruncated() {
		t.Fatal("takeTruncated did not reset")
	}
}

func TestFrameBufferOverflowKeepsRecentHalf(t *testing.T) {
	b := &frameBuffer{max: 8}
	b.append([]byte("0123456789")) // exceeds ceiling, keeps last half

	b.append([]byte("\n"))
	frames := drainAll(b)
	if len(frames) != 1 || frames[0] != "56789" {
		t.Fatalf("frames after truncation = %q, want [56789]", frames)
	}
}
