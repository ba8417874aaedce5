package orbit

import (
	"bytes"
	"iter"
	"strings"
)

// defaultFrameBufferMax bounds the frame buffer under pathological input
// (a server that never sends a newline). On overflow the oldest half is
// dropped; a safety valve, not a protocol requirement.
const defaultFrameBufferMax = 1 << 20

// frameBuffer turns an append-only stream of raw body bytes into complete
// newline-terminated frames. A trailing partial line survives across appends,
// so frames split by arbitrary network read boundaries are reassembled whole.
// Buffering at the byte level also means multi-byte UTF-8 sequences split
// across reads are never converted to text until their line is complete.
//
// One frameBuffer belongs to exactly one stream invocation.
type frameBuffer struct {
	buf       []byte
	max       int
	truncated bool
}

func newFrameBuffer() *frameBuffer {
	return &frameBuffer{max: defaultFrameBufferMax}
}

// append adds a raw chunk to the buffer. If the buffer outgrows the ceiling,
// only the most recent half is retained; data loss here is an accepted
// degradation, reported via takeTruncated rather than an error.
func (b *frameBuffer) append(p []byte) {
	b.buf = append(b.buf, p...)
	if len(b.buf) > b.max {
		half := len(b.buf) / 2
		b.buf = append(b.buf[:0:0], b.buf[half:]...)
		b.truncated = true
	}
}

// drain yields each complete line in the buffer, trimmed, skipping blanks,
// consuming the extracted portion. Whatever follows the last newline stays
// buffered for the next append.
func (b *frameBuffer) drain() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			i := bytes.IndexByte(b.buf, '\n')
			if i < 0 {
				return
			}
			line := strings.TrimSpace(string(b.buf[:i]))
			b.buf = b.buf[i+1:]
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// takeTruncated reports whether an overflow truncation happened since the
// last call, and resets the flag.
func (b *frameBuffer) takeTruncated() bool {
	t := b.truncated
	b.truncated = false
	return t
}

// len returns the number of buffered bytes.
func (b *frameBuffer) len() int {
	return len(b.buf)
}
