package wire

// Fragment is one piece of a value's wire encoding: either a Line (plain
// bytes, including any CRLF inside it) or a Literal payload that a
// transport must hold until the peer's continuation request arrives
// (unless Synchronizing is false, RFC 7888/2088 LITERAL-/LITERAL+).
//
// Grounded on imapserver/fetch.go and imapserver/imapserver.go, which
// both build a response with ad hoc fmt.Fprintf calls directly against
// a live net.Conn, writing the literal header, then flushing and
// waiting on a "+ OK" before writing the literal body; encode.go
// generalizes that write-then-wait split into an explicit value a
// transport can act on without owning the connection itself.
type Fragment struct {
	Line    []byte
	Literal []byte
	// Synchronizing is true unless Literal is non-empty and the
	// producing command/response used a non-synchronizing literal
	// ("{N+}"): only then may a transport send Literal without first
	// receiving a continuation request.
	Synchronizing bool
}

// EncodeCommandFragments renders cmd as a sequence of Fragments, split
// at each literal boundary so a transport can pause for a continuation
// request between fragments exactly where the wire protocol requires
// it.
func EncodeCommandFragments(cmd Command, q Quirks) []Fragment {
	return splitFragments(EncodeCommand(cmd), q)
}

// EncodeResponseFragments renders r as a sequence of Fragments. Server
// responses only use literals for a handful of attributes (e.g. a
// BODY[...] value too large to quote); most responses are a single
// Line fragment.
func EncodeResponseFragments(r Response, q Quirks) []Fragment {
	return splitFragments(EncodeResponse(r), q)
}

// splitFragments walks encoded the same way scanLiteralAnnouncements
// walks a Driver's input buffer (tracking quoted-string state so a
// quoted '{' is never mistaken for a literal header), but in the
// opposite direction: instead of reporting what bytes are still
// needed, it cuts the already-complete byte stream into alternating
// Line/Literal fragments.
func splitFragments(encoded []byte, q Quirks) []Fragment {
	var frags []Fragment
	lineStart := 0
	inQuote := false
	i := 0
	for i < len(encoded) {
		b := encoded[i]
		if inQuote {
			switch b {
			case '\\':
				i += 2
			case '"':
				inQuote = false
				i++
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
			hdr, hn, err := parseLiteralHeader(encoded[i:], i, q, 0)
			if err != nil {
				// Not a real literal header (e.g. a bare '{' inside an
				// atom-special context this encoder never emits); treat
				// as ordinary bytes and move on.
				i++
				continue
			}
			headerEnd := i + hn
			frags = append(frags, Fragment{Line: encoded[lineStart:headerEnd], Synchronizing: true})
			payloadEnd := headerEnd + int(hdr.Length)
			frags = append(frags, Fragment{Literal: encoded[headerEnd:payloadEnd], Synchronizing: !hdr.NonSync})
			i = payloadEnd
			lineStart = i
		default:
			i++
		}
	}
	if lineStart < len(encoded) {
		frags = append(frags, Fragment{Line: encoded[lineStart:], Synchronizing: true})
	}
	return frags
}
