package wire

import (
	"crawshaw.io/iox"
)

// Direction selects which grammar a Driver parses: the command grammar
// (client to server) or the response grammar (server to client). A
// single connection uses one Driver per direction it reads, matching
// imapparser.Scanner's split from imapserver's response writer: the
// teacher never reads and writes through the same blocking reader.
type Direction int

const (
	DirectionCommand Direction = iota
	DirectionResponse
)

// Hint explains what NeedMoreBytes is waiting for.
type Hint int

const (
	HintUntilCRLF Hint = iota
	HintExactBytes
)

func (h Hint) String() string {
	if h == HintExactBytes {
		return "exactly N bytes"
	}
	return "until CRLF"
}

// Value is the driver's Ready payload: exactly one of Command or
// Response is set, matching the Driver's Direction.
type Value struct {
	Command  *Command
	Response *Response
}

// FeedOutcomeKind enumerates what Feed returned.
type FeedOutcomeKind int

const (
	OutcomeReady FeedOutcomeKind = iota
	OutcomeNeedMoreBytes
	OutcomeLiteralAck
	OutcomeMalformed
)

// FeedOutcome is the result of one Driver.Feed call.
type FeedOutcome struct {
	Kind      FeedOutcomeKind
	Value     Value
	Hint      Hint
	NeedBytes uint32 // valid when Hint == HintExactBytes
	LiteralN  uint32 // valid when Kind == OutcomeLiteralAck
	Err       *Malformed
}

// driverState tracks what a Driver is waiting on between Feed calls.
type driverState int

const (
	stateIdle driverState = iota
	stateAwaitingLine
	stateAwaitingLiteral
	stateReady
	statePoisoned
)

// Driver wraps the non-blocking grammar with the explicit state machine
// spec.md §4.11 describes, reshaped from imapparser.Scanner's blocking
// bufio.Reader field reads (readAtom/readLiteral etc., each of which
// blocks until its bytes arrive) into an accumulate-then-reattempt loop
// over a growable buffer, the idiom a feed-driven transport requires.
type Driver struct {
	direction Direction
	quirks    Quirks
	maxLen    uint32
	filer     *iox.Filer

	// Logf is a caller-supplied diagnostic sink. No code in this package
	// calls it; in particular, nothing is logged when the missing_text
	// quirk fires.
	// Matches imapserver.Server's Logf field rather than adopting a
	// logging library (see DESIGN.md).
	Logf func(format string, v ...interface{})

	buf      []byte
	state    driverState
	acked    int // buf offset up to which announced literals have been LiteralAck'd
	poisoned *Malformed

	// sink is non-nil while a literal payload longer than
	// InlineLiteralThreshold is being received: incoming Feed bytes are
	// routed to it instead of d.buf until it is Done, keeping that
	// literal's transit off the Go heap the way scanner.go's readLiteral
	// copies an unbounded literal straight into an *iox.BufferFile.
	sink *LiteralSink
}

// NewDriver constructs a Driver for the given direction. filer may be
// nil, in which case every literal is kept inline in the Driver's
// buffer regardless of size; when non-nil, announced literals longer
// than InlineLiteralThreshold are spilled through a LiteralSink while
// in transit (see feedSink) before being handed to the parser, which
// still sees the assembled value as one contiguous buffer, inline or
// not.
func NewDriver(direction Direction, quirks Quirks, maxLen uint32, filer *iox.Filer) *Driver {
	return &Driver{direction: direction, quirks: quirks, maxLen: maxLen, filer: filer, state: stateIdle}
}

// Feed appends bytes to the Driver's internal buffer and attempts to
// produce a complete value. Once a Malformed outcome is returned, the
// Driver is poisoned: every subsequent Feed returns the same
// Malformed outcome, matching spec.md §4.11 ("the driver is poisoned
// and must be reconstructed").
func (d *Driver) Feed(p []byte) FeedOutcome {
	if d.state == statePoisoned {
		return FeedOutcome{Kind: OutcomeMalformed, Err: d.poisoned}
	}
	if d.sink != nil {
		return d.feedSink(p)
	}
	d.buf = append(d.buf, p...)
	return d.attempt()
}

// feedSink routes bytes into the active large-literal sink until it has
// received its full announced length, then splices the spilled payload
// back into d.buf (along with any bytes fed past the literal's end) so
// the grammar parse in attempt proceeds exactly as it would for an
// inline literal.
func (d *Driver) feedSink(p []byte) FeedOutcome {
	n, err := d.sink.Write(p)
	if err != nil {
		return d.poison(malformed(CategoryEncoding, 0, "literal spill write: %v", err))
	}
	if !d.sink.Done() {
		d.state = stateAwaitingLiteral
		return FeedOutcome{Kind: OutcomeNeedMoreBytes, Hint: HintExactBytes, NeedBytes: d.sink.want - d.sink.got}
	}
	rest := p[n:]
	payload, err := d.sink.Bytes()
	d.sink.Close()
	d.sink = nil
	if err != nil {
		return d.poison(malformed(CategoryEncoding, 0, "literal spill read-back: %v", err))
	}
	d.buf = append(d.buf, payload...)
	d.buf = append(d.buf, rest...)
	return d.attempt()
}

// attempt re-scans the accumulated buffer for literal announcements,
// then tries the real grammar parse once every announced literal's
// payload bytes are present.
func (d *Driver) attempt() FeedOutcome {
	anns, scanErr := scanLiteralAnnouncements(d.buf, d.quirks)
	if scanErr != nil {
		if m, ok := AsMalformed(scanErr); ok {
			return d.poison(m)
		}
		// scanErr is errIncomplete: the buffer ends mid literal-header
		// (e.g. "...{12" with no closing '}' yet); nothing to ack, just
		// need more bytes of the line.
		d.state = stateAwaitingLine
		return FeedOutcome{Kind: OutcomeNeedMoreBytes, Hint: HintUntilCRLF}
	}
	for _, a := range anns {
		if a.headerEnd <= d.acked {
			continue
		}
		total := a.headerEnd + int(a.length)
		if len(d.buf) < total {
			if d.filer != nil && a.length > InlineLiteralThreshold {
				// Divert this literal's payload (including whatever
				// prefix of it has already arrived) off d.buf and into a
				// filer-backed sink, so a large literal never grows the
				// in-process buffer past InlineLiteralThreshold.
				sink := NewLiteralSink(d.filer, a.length)
				if _, err := sink.Write(d.buf[a.headerEnd:]); err != nil {
					return d.poison(malformed(CategoryEncoding, a.headerEnd, "literal spill write: %v", err))
				}
				d.buf = d.buf[:a.headerEnd]
				d.sink = sink
				if a.nonSync {
					d.state = stateAwaitingLiteral
					return FeedOutcome{Kind: OutcomeNeedMoreBytes, Hint: HintExactBytes, NeedBytes: sink.want - sink.got}
				}
				d.acked = a.headerEnd
				d.state = stateAwaitingLiteral
				return FeedOutcome{Kind: OutcomeLiteralAck, LiteralN: a.length}
			}
			if a.nonSync {
				// RFC 7888/2088: sender does not wait for a continuation;
				// no ack needed, just more payload bytes.
				d.state = stateAwaitingLiteral
				return FeedOutcome{Kind: OutcomeNeedMoreBytes, Hint: HintExactBytes, NeedBytes: uint32(total - len(d.buf))}
			}
			d.acked = a.headerEnd
			d.state = stateAwaitingLiteral
			return FeedOutcome{Kind: OutcomeLiteralAck, LiteralN: a.length}
		}
	}

	value, n, err := d.parseOnce(d.buf)
	if err != nil {
		if m, ok := AsMalformed(err); ok {
			return d.poison(m)
		}
		d.state = stateAwaitingLine
		return FeedOutcome{Kind: OutcomeNeedMoreBytes, Hint: HintUntilCRLF}
	}
	d.buf = d.buf[n:]
	d.acked = 0
	d.state = stateReady
	return FeedOutcome{Kind: OutcomeReady, Value: value}
}

func (d *Driver) parseOnce(p []byte) (Value, int, error) {
	switch d.direction {
	case DirectionCommand:
		cmd, n, err := ParseCommand(p, 0, d.quirks, d.maxLen)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Command: &cmd}, n, nil
	default:
		resp, n, err := ParseResponse(p, d.quirks, d.maxLen)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Response: &resp}, n, nil
	}
}

func (d *Driver) poison(m *Malformed) FeedOutcome {
	if d.sink != nil {
		d.sink.Close()
		d.sink = nil
	}
	d.state = statePoisoned
	d.poisoned = m
	return FeedOutcome{Kind: OutcomeMalformed, Err: m}
}

// FeedAuthContinuation is the continuation-line half of a multi-line
// AUTHENTICATE exchange (SPEC_FULL.md §9's resolved Open Question):
// command.go's ParseCommand only captures the AUTHENTICATE command
// line itself (mechanism + optional SASL-IR initial response); the
// base64 credential line a client sends after the server's "+" prompt
// is fed here instead, one exchange per call. For PLAIN, line is
// decoded via ParseSASLPlainCredentials.
func (d *Driver) FeedAuthContinuation(line []byte) (username, password []byte, err error) {
	trimmed := line
	if n, cerr := d.quirks.crlf(lastTwoOf(line), 0); cerr == nil {
		trimmed = line[:len(line)-n]
	}
	return ParseSASLPlainCredentials(trimmed)
}

func lastTwoOf(p []byte) []byte {
	if len(p) <= 2 {
		return p
	}
	return p[len(p)-2:]
}

// literalAnnouncement is one `"{" number ["+"] "}" CRLF` occurrence
// found by scanLiteralAnnouncements, together with the buffer offset
// immediately following its terminating CRLF (where its N payload
// bytes, if any, begin).
type literalAnnouncement struct {
	headerEnd int
	length    uint32
	nonSync   bool
}

// scanLiteralAnnouncements walks buf tracking quoted-string state (so a
// '{' inside a quoted string, which the grammar permits as an ordinary
// QUOTED-CHAR, is never mistaken for a literal header) and collects
// every literal header it finds outside quotes, skipping over each
// literal's announced payload bytes (which may contain arbitrary bytes,
// including '{', '"', CR, LF) before resuming the scan. This mirrors
// imapparser.Scanner's line-oriented reading, generalized to work
// without blocking on a bufio.Reader: the grammar never opens a literal
// header anywhere a '{' could otherwise legally occur unquoted, since
// isAtomSpecial/isAstringChar both exclude '{' from bare atom/astring
// text.
//
// Returns errIncomplete if scanning runs off the end of buf while
// inside an as-yet-unterminated literal header (e.g. "{12" with no
// "}" yet) or right after a '\' inside a quoted string; returns a
// *Malformed for a CR or LF inside a quoted string or for a malformed
// literal header. Escapes inside quotes are skipped, not validated.
// A well-formed scan returns every
// announcement found so far, even if the outer command/response line
// itself is incomplete beyond them.
func scanLiteralAnnouncements(buf []byte, q Quirks) (anns []literalAnnouncement, err error) {
	inQuote := false
	i := 0
	for i < len(buf) {
		b := buf[i]
		if inQuote {
			switch b {
			case '\\':
				if i+1 >= len(buf) {
					return anns, errIncomplete
				}
				i += 2
			case '"':
				inQuote = false
				i++
			case '\r', '\n':
				return anns, malformed(CategoryCharacterClass, i, "CR/LF inside quoted string")
			default:
				i++
			}
			continue
		}
		switch b {
		case '"':
			inQuote = true
			i++
		case '{':
			hdr, hn, herr := parseLiteralHeader(buf[i:], i, q, 0)
			if herr != nil {
				if IsIncomplete(herr) {
					return anns, errIncomplete
				}
				return anns, herr
			}
			headerEnd := i + hn
			anns = append(anns, literalAnnouncement{headerEnd: headerEnd, length: hdr.Length, nonSync: hdr.NonSync})
			skip := headerEnd + int(hdr.Length)
			if skip > len(buf) {
				// payload not fully buffered yet; stop scanning here,
				// Driver.attempt decides ack vs NeedMoreBytes for it.
				return anns, nil
			}
			i = skip
		default:
			i++
		}
	}
	return anns, nil
}
