package wire

import "strconv"

// MaxLiteralLength is the default maximum accepted literal payload size
// (§5: "Literal length N is accepted up to an implementation-configurable
// maximum (default 256 MiB); values beyond that are malformed.").
const MaxLiteralLength = 256 << 20

// parseQuoted lexes `quoted = DQUOTE *QUOTED-CHAR DQUOTE`, ported from
// imapparser.Scanner.readQuotedString (which reads byte-by-byte from a
// blocking bufio.Reader) to a non-blocking prefix scan.
func parseQuoted(p []byte, offset int) (value Quoted, n int, err error) {
	if len(p) == 0 || p[0] != '"' {
		if len(p) == 0 {
			return nil, 0, errIncomplete
		}
		return nil, 0, malformed(CategoryCharacterClass, offset, `expected '"'`)
	}
	i := 1
	var out []byte
	for {
		if i >= len(p) {
			return nil, 0, errIncomplete
		}
		b := p[i]
		switch b {
		case '"':
			return Quoted(out), i + 1, nil
		case '\r', '\n':
			return nil, 0, malformed(CategoryCharacterClass, offset+i, "CR/LF inside quoted string")
		case 0:
			return nil, 0, malformed(CategoryCharacterClass, offset+i, "NUL inside quoted string")
		case '\\':
			if i+1 >= len(p) {
				return nil, 0, errIncomplete
			}
			esc := p[i+1]
			switch esc {
			case '\\', '"':
				out = append(out, esc)
				i += 2
			default:
				return nil, 0, malformed(CategoryCharacterClass, offset+i, "invalid escape %q", esc)
			}
		default:
			out = append(out, b)
			i++
		}
	}
}

// LiteralHeader is the result of lexing `literal = "{" number ["+"] "}" CRLF`.
// NonSync is the RFC 7888 LITERAL- / RFC 2088 LITERAL+ non-synchronizing
// marker ("{N+}"), meaning the sender does not wait for a continuation
// request before transmitting the payload.
type LiteralHeader struct {
	Length  uint32
	NonSync bool
}

// parseLiteralHeader lexes the "{N}\r\n" or "{N+}\r\n" announcement. It
// does not consume the N payload bytes that follow; callers that need
// them drive that separately (see driver.go), since a non-self-delimiting
// literal is exactly the reason the Driver exists.
func parseLiteralHeader(p []byte, offset int, q Quirks, maxLen uint32) (hdr LiteralHeader, n int, err error) {
	if len(p) == 0 || p[0] != '{' {
		if len(p) == 0 {
			return LiteralHeader{}, 0, errIncomplete
		}
		return LiteralHeader{}, 0, malformed(CategoryCharacterClass, offset, "expected '{'")
	}
	i := 1
	v, dn, err := number(p[i:], offset+i, q)
	if err != nil {
		return LiteralHeader{}, 0, err
	}
	i += dn
	if i >= len(p) {
		return LiteralHeader{}, 0, errIncomplete
	}
	nonSync := false
	if p[i] == '+' {
		nonSync = true
		i++
	}
	if i >= len(p) {
		return LiteralHeader{}, 0, errIncomplete
	}
	if p[i] != '}' {
		return LiteralHeader{}, 0, malformed(CategoryCharacterClass, offset+i, "expected '}' in literal header")
	}
	i++
	cn, err := q.crlf(p[i:], offset+i)
	if err != nil {
		return LiteralHeader{}, 0, err
	}
	i += cn
	if maxLen == 0 {
		maxLen = MaxLiteralLength
	}
	if v > maxLen {
		return LiteralHeader{}, 0, malformed(CategoryLimit, offset, "literal length %d exceeds maximum %d", v, maxLen)
	}
	return LiteralHeader{Length: v, NonSync: nonSync}, i, nil
}

// parseString lexes `string = quoted / literal`. It requires the
// literal's payload bytes to already be present in p (used by the
// grammar layer once the Driver has assembled a full logical line); see
// driver.go for the streaming announce/await split.
func parseString(p []byte, offset int, q Quirks, maxLen uint32) (value IString, n int, err error) {
	if len(p) == 0 {
		return IString{}, 0, errIncomplete
	}
	if p[0] == '"' {
		quot, qn, err := parseQuoted(p, offset)
		if err != nil {
			return IString{}, 0, err
		}
		return IString{Quot: &quot}, qn, nil
	}
	if p[0] == '{' {
		hdr, hn, err := parseLiteralHeader(p, offset, q, maxLen)
		if err != nil {
			return IString{}, 0, err
		}
		total := hn + int(hdr.Length)
		if len(p) < total {
			return IString{}, 0, errIncomplete
		}
		lit := Literal(p[hn:total])
		return IString{Lit: &lit}, total, nil
	}
	return IString{}, 0, malformed(CategoryCharacterClass, offset, "expected string")
}

// parseNString lexes `nstring = NIL / string`.
func parseNString(p []byte, offset int, q Quirks, maxLen uint32) (value NString, n int, err error) {
	if len(p) == 0 {
		return NString{}, 0, errIncomplete
	}
	if p[0] == 'N' || p[0] == 'n' {
		partial, ok := matchPrefix(p, []byte("NIL"))
		if ok {
			return NilNString(), 3, nil
		}
		if partial {
			return NString{}, 0, errIncomplete
		}
		return NString{}, 0, malformed(CategoryCharacterClass, offset, "expected NIL or string")
	}
	s, sn, err := parseString(p, offset, q, maxLen)
	if err != nil {
		return NString{}, 0, err
	}
	return SomeNString(s), sn, nil
}

// matchPrefix reports whether p is (ok) or could become (partial) a
// case-insensitive prefix match of tok.
func matchPrefix(p, tok []byte) (partial, ok bool) {
	n := len(p)
	if n > len(tok) {
		n = len(tok)
	}
	if !asciiEqualFold(p[:n], tok[:n]) {
		return false, false
	}
	if n < len(tok) {
		return true, false
	}
	return false, true
}

// parseAString lexes `astring = 1*ASTRING-CHAR / string`.
func parseAString(p []byte, offset int, q Quirks, maxLen uint32) (value AString, n int, err error) {
	if len(p) == 0 {
		return AString{}, 0, errIncomplete
	}
	if p[0] == '"' || p[0] == '{' {
		s, sn, err := parseString(p, offset, q, maxLen)
		if err != nil {
			return AString{}, 0, err
		}
		return AString{Str: &s}, sn, nil
	}
	raw, rn, err := astringToken(p, offset)
	if err != nil {
		return AString{}, 0, err
	}
	return AString{Raw: Atom(raw)}, rn, nil
}

// parseMailbox lexes `mailbox = "INBOX" / astring`.
func parseMailbox(p []byte, offset int, q Quirks, maxLen uint32) (value Mailbox, n int, err error) {
	a, an, err := parseAString(p, offset, q, maxLen)
	if err != nil {
		return Mailbox{}, 0, err
	}
	return NewMailbox(a), an, nil
}

// parseListMailbox lexes `list-mailbox = 1*list-char / string`.
func parseListMailbox(p []byte, offset int, q Quirks, maxLen uint32) (value AString, n int, err error) {
	if len(p) == 0 {
		return AString{}, 0, errIncomplete
	}
	if p[0] == '"' || p[0] == '{' {
		s, sn, err := parseString(p, offset, q, maxLen)
		if err != nil {
			return AString{}, 0, err
		}
		return AString{Str: &s}, sn, nil
	}
	raw, rn, err := listMailboxToken(p, offset)
	if err != nil {
		return AString{}, 0, err
	}
	return AString{Raw: Atom(raw)}, rn, nil
}

// formatNumber matches the encoder's canonical decimal rendering: no
// leading zeros, ASCII digits.
func formatNumber(v uint32) []byte {
	return []byte(strconv.FormatUint(uint64(v), 10))
}
