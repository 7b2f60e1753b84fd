package wire

import (
	"io"

	"crawshaw.io/iox"
)

// InlineLiteralThreshold is the largest literal payload the Driver will
// keep in its in-process buffer while the payload is arriving. Announced
// literals longer than this spill through a LiteralSink backed by an
// iox.Filer during transit; once complete, the payload is copied back
// into the Driver's buffer, so the parsed value still holds it in memory.
//
// Grounded on imapparser.Scanner.readLiteral, which always copies the
// literal payload into an *iox.BufferFile (s.Literal) via io.CopyN for
// the unbounded (APPEND) case, and only inlines into a plain []byte when
// an explicit small limit is given.
const InlineLiteralThreshold = 32 << 10

// LiteralSink buffers a literal payload that exceeded
// InlineLiteralThreshold, spilling past the Filer's in-memory quota to a
// temp file. The Driver owns one per in-progress literal and closes it
// once the payload has been read back into its buffer, or when the
// Driver is poisoned.
type LiteralSink struct {
	filer *iox.Filer
	buf   *iox.BufferFile
	want  uint32
	got   uint32
}

// NewLiteralSink opens a fresh spill buffer for a literal of the given
// announced length.
func NewLiteralSink(filer *iox.Filer, length uint32) *LiteralSink {
	return &LiteralSink{filer: filer, buf: filer.BufferFile(0), want: length}
}

// Write appends fed bytes to the sink, never accepting more than the
// literal's announced length.
func (s *LiteralSink) Write(p []byte) (n int, err error) {
	remaining := s.want - s.got
	if uint32(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = s.buf.Write(p)
	s.got += uint32(n)
	return n, err
}

// Done reports whether the sink has received its full announced length.
func (s *LiteralSink) Done() bool { return s.got >= s.want }

// Bytes copies the full spilled payload into memory. The Driver calls it
// for every spilled literal, APPEND message bodies included, to splice
// the payload back into its parse buffer.
func (s *LiteralSink) Bytes() ([]byte, error) {
	if _, err := s.buf.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	out := make([]byte, s.want)
	if _, err := io.ReadFull(s.buf, out); err != nil {
		return nil, err
	}
	return out, nil
}

// File returns the underlying buffer for streaming consumers (e.g. an
// APPEND handler writing straight to a mailbox store).
func (s *LiteralSink) File() *iox.BufferFile { return s.buf }

// Close discards the sink's backing storage.
func (s *LiteralSink) Close() error { return s.buf.Close() }
