package wire

import (
	"bytes"
	"encoding/base64"
)

// ---------------------------------------------------------------------
// Code: resp-text-code
// ---------------------------------------------------------------------

// CodeKind is the closed set of resp-text-code variants. Other carries
// raw bytes that did not match a known code, preserved verbatim so the
// codec never loses information it cannot interpret.
type CodeKind int

const (
	CodeNone CodeKind = iota
	CodeAlert
	CodeBadCharset
	CodeCapability
	CodeParse
	CodePermanentFlags
	CodeReadOnly
	CodeReadWrite
	CodeTryCreate
	CodeUIDNext
	CodeUIDValidity
	CodeUnseen
	CodeCompressionActive
	CodeOverQuota
	CodeTooBig
	CodeOther
)

// Code is a resp-text-code value.
type Code struct {
	Kind CodeKind

	// Kind == CodeBadCharset
	AllowedCharsets []Charset

	// Kind == CodeCapability
	Capabilities []Atom

	// Kind == CodePermanentFlags
	PermanentFlags []FlagPerm

	// Kind == CodeUIDNext, CodeUIDValidity, CodeUnseen
	Number uint32

	// Kind == CodeOther. OtherText holds the raw bytes between '[' and
	// ']'; the parser does not set OtherName.
	OtherName []byte
	OtherText []byte
}

func parseCapabilityList(p []byte, offset int) (caps []Atom, n int, err error) {
	a, an, err := atom(p, offset)
	if err != nil {
		return nil, 0, err
	}
	caps = append(caps, Atom(a))
	i := an
	for i < len(p) && p[i] == ' ' {
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return nil, 0, err
		}
		a, an, err := atom(p[i+spn:], offset+i+spn)
		if err != nil {
			return nil, 0, err
		}
		caps = append(caps, Atom(a))
		i += spn + an
	}
	return caps, i, nil
}

// parseCapabilityData lexes `capability-data = "CAPABILITY" *(SP capability)
// SP "IMAP4rev1" *(SP capability)`, relaxed (as the grammar's nested alt
// requires no ordering of IMAP4rev1) to simply one-or-more capability
// atoms.
func parseCapabilityData(p []byte, offset int) (caps []Atom, n int, err error) {
	kw, kn, err := matchKeyword(p, offset, "CAPABILITY")
	if err != nil {
		return nil, 0, err
	}
	i := kn
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return nil, 0, err
	}
	i += spn
	caps, cn, err := parseCapabilityList(p[i:], offset+i)
	if err != nil {
		return nil, 0, err
	}
	i += cn
	_ = kw
	return caps, i, nil
}

// matchKeyword case-insensitively matches a fixed atom keyword, requiring
// it not be a prefix of a longer atom (e.g. "QUOTA" must not match inside
// "QUOTAROOT"). It reports errIncomplete if p is a strict prefix of kw,
// or if p exactly equals kw but more bytes could still extend the atom.
func matchKeyword(p []byte, offset int, kw string) (matched []byte, n int, err error) {
	if len(p) < len(kw) {
		if asciiEqualFold(p, []byte(kw)[:len(p)]) {
			return nil, 0, errIncomplete
		}
		return nil, 0, malformed(CategoryCharacterClass, offset, "expected %q", kw)
	}
	if !asciiEqualFold(p[:len(kw)], []byte(kw)) {
		return nil, 0, malformed(CategoryCharacterClass, offset, "expected %q", kw)
	}
	if len(p) == len(kw) {
		return nil, 0, errIncomplete
	}
	if !isAtomSpecial(p[len(kw)]) {
		return nil, 0, malformed(CategoryCharacterClass, offset, "%q is a prefix of a longer atom", kw)
	}
	return p[:len(kw)], len(kw), nil
}

// parseRespTextCode lexes `resp-text-code`.
func parseRespTextCode(p []byte, offset int, q Quirks) (code Code, n int, err error) {
	type candidate struct {
		kw string
	}
	// Try fixed-keyword atoms first (longest-match order matters only for
	// overlapping prefixes; none of these overlap).
	for _, c := range []struct {
		kw   string
		kind CodeKind
	}{
		{"ALERT", CodeAlert},
		{"PARSE", CodeParse},
		{"READ-ONLY", CodeReadOnly},
		{"READ-WRITE", CodeReadWrite},
		{"TRYCREATE", CodeTryCreate},
		{"COMPRESSIONACTIVE", CodeCompressionActive},
		{"OVERQUOTA", CodeOverQuota},
		{"TOOBIG", CodeTooBig},
	} {
		if matched, mn, merr := tryKeyword(p, offset, c.kw); merr == nil && matched {
			return Code{Kind: c.kind}, mn, nil
		} else if IsIncomplete(merr) {
			return Code{}, 0, errIncomplete
		}
	}
	if kind, kn, ok, err := tryNumberedCode(p, offset, q); err != nil {
		return Code{}, 0, err
	} else if ok {
		return kind, kn, nil
	}
	if caps, cn, err := parseCapabilityData(p, offset); err == nil {
		return Code{Kind: CodeCapability, Capabilities: caps}, cn, nil
	} else if IsIncomplete(err) {
		return Code{}, 0, errIncomplete
	}
	if code, cn, ok, err := tryBadCharset(p, offset, q); err != nil {
		return Code{}, 0, err
	} else if ok {
		return code, cn, nil
	}
	if code, cn, ok, err := tryPermanentFlags(p, offset, q); err != nil {
		return Code{}, 0, err
	} else if ok {
		return code, cn, nil
	}
	return Code{}, 0, malformed(CategoryCharacterClass, offset, "unknown resp-text-code")
}

func tryKeyword(p []byte, offset int, kw string) (ok bool, n int, err error) {
	_, mn, err := matchKeyword(p, offset, kw)
	if err != nil {
		return false, 0, err
	}
	return true, mn, nil
}

func tryNumberedCode(p []byte, offset int, q Quirks) (code Code, n int, ok bool, err error) {
	for _, c := range []struct {
		kw   string
		kind CodeKind
	}{
		{"UIDNEXT", CodeUIDNext},
		{"UIDVALIDITY", CodeUIDValidity},
		{"UNSEEN", CodeUnseen},
	} {
		if len(p) < len(c.kw) {
			if asciiEqualFold(p, []byte(c.kw)[:len(p)]) {
				return Code{}, 0, false, errIncomplete
			}
			continue
		}
		if !asciiEqualFold(p[:len(c.kw)], []byte(c.kw)) {
			continue
		}
		i := len(c.kw)
		if i >= len(p) {
			return Code{}, 0, false, errIncomplete
		}
		if !isAtomSpecial(p[i]) {
			continue
		}
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return Code{}, 0, false, err
		}
		i += spn
		v, vn, err := nzNumber(p[i:], offset+i, q)
		if err != nil {
			return Code{}, 0, false, err
		}
		i += vn
		return Code{Kind: c.kind, Number: v}, i, true, nil
	}
	return Code{}, 0, false, nil
}

func tryBadCharset(p []byte, offset int, q Quirks) (code Code, n int, ok bool, err error) {
	m, mn, merr := matchKeyword(p, offset, "BADCHARSET")
	if merr != nil {
		if IsIncomplete(merr) {
			return Code{}, 0, false, errIncomplete
		}
		return Code{}, 0, false, nil
	}
	_ = m
	i := mn
	var charsets []Charset
	if i < len(p) && p[i] == ' ' {
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return Code{}, 0, false, err
		}
		j := i + spn
		if j >= len(p) {
			return Code{}, 0, false, errIncomplete
		}
		if p[j] != '(' {
			return Code{}, 0, false, malformed(CategoryCharacterClass, offset+j, "expected '(' after BADCHARSET")
		}
		j++
		for {
			c, cn, err := parseCharset(p[j:], offset+j)
			if err != nil {
				return Code{}, 0, false, err
			}
			charsets = append(charsets, c)
			j += cn
			if j < len(p) && p[j] == ' ' {
				j++
				continue
			}
			break
		}
		if j >= len(p) {
			return Code{}, 0, false, errIncomplete
		}
		if p[j] != ')' {
			return Code{}, 0, false, malformed(CategoryCharacterClass, offset+j, "expected ')' closing BADCHARSET list")
		}
		i = j + 1
	}
	return Code{Kind: CodeBadCharset, AllowedCharsets: charsets}, i, true, nil
}

func tryPermanentFlags(p []byte, offset int, q Quirks) (code Code, n int, ok bool, err error) {
	m, mn, merr := matchKeyword(p, offset, "PERMANENTFLAGS")
	if merr != nil {
		if IsIncomplete(merr) {
			return Code{}, 0, false, errIncomplete
		}
		return Code{}, 0, false, nil
	}
	_ = m
	i := mn
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return Code{}, 0, false, err
	}
	i += spn
	if i >= len(p) {
		return Code{}, 0, false, errIncomplete
	}
	if p[i] != '(' {
		return Code{}, 0, false, malformed(CategoryCharacterClass, offset+i, "expected '(' after PERMANENTFLAGS")
	}
	i++
	var flags []FlagPerm
	if i < len(p) && p[i] != ')' {
		for {
			f, fn, err := parseFlagPerm(p[i:], offset+i, q)
			if err != nil {
				return Code{}, 0, false, err
			}
			flags = append(flags, f)
			i += fn
			if i < len(p) && p[i] == ' ' {
				i++
				continue
			}
			break
		}
	}
	if i >= len(p) {
		return Code{}, 0, false, errIncomplete
	}
	if p[i] != ')' {
		return Code{}, 0, false, malformed(CategoryCharacterClass, offset+i, "expected ')' closing PERMANENTFLAGS list")
	}
	i++
	return Code{Kind: CodePermanentFlags, PermanentFlags: flags}, i, true, nil
}

// parseBracketedCode lexes `"[" resp-text-code "]"`, falling back to
// Code{Kind: CodeOther} verbatim when the bracketed content does not
// match a known code (spec.md §4.7 disambiguation rule).
func parseBracketedCode(p []byte, offset int, q Quirks) (code Code, n int, err error) {
	if len(p) == 0 || p[0] != '[' {
		if len(p) == 0 {
			return Code{}, 0, errIncomplete
		}
		return Code{}, 0, malformed(CategoryCharacterClass, offset, "expected '['")
	}
	close := bytes.IndexAny(p[1:], "]\r\n")
	if close < 0 {
		return Code{}, 0, errIncomplete
	}
	if p[1+close] != ']' {
		return Code{}, 0, malformed(CategoryCharacterClass, offset+1+close, "CR/LF inside resp-text-code")
	}
	body := p[1 : 1+close]
	total := 1 + close + 1
	// The closing ']' is passed along so keyword and number lexers see
	// their terminator instead of running into the end of input.
	if c, cn, err := parseRespTextCode(p[1:1+close+1], offset+1, q); err == nil && cn == len(body) {
		return c, total, nil
	}
	return Code{Kind: CodeOther, OtherText: append([]byte(nil), body...)}, total, nil
}

func encodeCode(c Code) []byte {
	var buf bytes.Buffer
	switch c.Kind {
	case CodeAlert:
		buf.WriteString("ALERT")
	case CodeBadCharset:
		buf.WriteString("BADCHARSET")
		if len(c.AllowedCharsets) > 0 {
			buf.WriteString(" (")
			for i, cs := range c.AllowedCharsets {
				if i > 0 {
					buf.WriteByte(' ')
				}
				buf.Write(EncodeCharset(cs))
			}
			buf.WriteByte(')')
		}
	case CodeCapability:
		buf.WriteString("CAPABILITY")
		for _, cap := range c.Capabilities {
			buf.WriteByte(' ')
			buf.Write(cap)
		}
	case CodeParse:
		buf.WriteString("PARSE")
	case CodePermanentFlags:
		buf.WriteString("PERMANENTFLAGS (")
		for i, f := range c.PermanentFlags {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(EncodeFlagPerm(f))
		}
		buf.WriteByte(')')
	case CodeReadOnly:
		buf.WriteString("READ-ONLY")
	case CodeReadWrite:
		buf.WriteString("READ-WRITE")
	case CodeTryCreate:
		buf.WriteString("TRYCREATE")
	case CodeUIDNext:
		buf.WriteString("UIDNEXT ")
		buf.Write(formatNumber(c.Number))
	case CodeUIDValidity:
		buf.WriteString("UIDVALIDITY ")
		buf.Write(formatNumber(c.Number))
	case CodeUnseen:
		buf.WriteString("UNSEEN ")
		buf.Write(formatNumber(c.Number))
	case CodeCompressionActive:
		buf.WriteString("COMPRESSIONACTIVE")
	case CodeOverQuota:
		buf.WriteString("OVERQUOTA")
	case CodeTooBig:
		buf.WriteString("TOOBIG")
	case CodeOther:
		buf.Write(c.OtherText)
	}
	return buf.Bytes()
}

// EncodeCode renders "[code]".
func EncodeCode(c Code) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.Write(encodeCode(c))
	buf.WriteByte(']')
	return buf.Bytes()
}

// ---------------------------------------------------------------------
// resp-text
// ---------------------------------------------------------------------

// RespText is `resp-text = ["[" resp-text-code "]" SP] text`.
type RespText struct {
	Code *Code
	Text []byte
}

func parseRespText(p []byte, offset int, q Quirks) (rt RespText, n int, err error) {
	i := 0
	if len(p) > 0 && p[0] == '[' {
		code, cn, err := parseBracketedCode(p, offset, q)
		if err != nil {
			return RespText{}, 0, err
		}
		i += cn
		if q.MissingText {
			if _, cerr := q.crlf(p[i:], offset+i); cerr == nil {
				return RespText{Code: &code, Text: []byte("...")}, i, nil
			}
		}
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return RespText{}, 0, err
		}
		i += spn
		t, tn, err := text(p[i:], offset+i)
		if err != nil {
			return RespText{}, 0, err
		}
		i += tn
		return RespText{Code: &code, Text: t}, i, nil
	}
	t, tn, err := text(p, offset)
	if err != nil {
		return RespText{}, 0, err
	}
	return RespText{Text: t}, tn, nil
}

func encodeRespText(rt RespText) []byte {
	var buf bytes.Buffer
	if rt.Code != nil {
		buf.Write(EncodeCode(*rt.Code))
		buf.WriteByte(' ')
	}
	buf.Write(rt.Text)
	return buf.Bytes()
}

// ---------------------------------------------------------------------
// Greeting
// ---------------------------------------------------------------------

type GreetingKind int

const (
	GreetingOk GreetingKind = iota
	GreetingPreAuth
	GreetingBye
)

// Greeting is the server's first line after connect.
type Greeting struct {
	Kind GreetingKind
	Code *Code
	Text []byte
}

// ParseGreeting parses `greeting = "*" SP (resp-cond-auth / resp-cond-bye) CRLF`.
func ParseGreeting(p []byte, q Quirks) (g Greeting, n int, err error) {
	i := 0
	if len(p) == 0 || p[0] != '*' {
		if len(p) == 0 {
			return Greeting{}, 0, errIncomplete
		}
		return Greeting{}, 0, malformed(CategoryCharacterClass, 0, "greeting must start with '*'")
	}
	i++
	spn, err := sp(p[i:], i)
	if err != nil {
		return Greeting{}, 0, err
	}
	i += spn
	var kind GreetingKind
	switch {
	case hasCIPrefix(p[i:], "OK"):
		kind = GreetingOk
		i += 2
	case hasCIPrefix(p[i:], "PREAUTH"):
		kind = GreetingPreAuth
		i += 7
	case hasCIPrefix(p[i:], "BYE"):
		kind = GreetingBye
		i += 3
	default:
		if _, incomplete := ciPrefixCouldMatch(p[i:], "OK", "PREAUTH", "BYE"); incomplete {
			return Greeting{}, 0, errIncomplete
		}
		return Greeting{}, 0, malformed(CategoryCharacterClass, i, "expected OK/PREAUTH/BYE")
	}
	spn2, err := sp(p[i:], i)
	if err != nil {
		return Greeting{}, 0, err
	}
	i += spn2
	rt, rn, err := parseRespText(p[i:], i, q)
	if err != nil {
		return Greeting{}, 0, err
	}
	i += rn
	cn, err := q.crlf(p[i:], i)
	if err != nil {
		return Greeting{}, 0, err
	}
	i += cn
	return Greeting{Kind: kind, Code: rt.Code, Text: rt.Text}, i, nil
}

// hasCIPrefix reports whether p starts with the case-insensitive literal kw.
func hasCIPrefix(p []byte, kw string) bool {
	if len(p) < len(kw) {
		return false
	}
	return asciiEqualFold(p[:len(kw)], []byte(kw))
}

// ciPrefixCouldMatch reports whether p is a strict prefix of one of kws,
// meaning more bytes could still complete the match.
func ciPrefixCouldMatch(p []byte, kws ...string) (_, incomplete bool) {
	for _, kw := range kws {
		n := len(p)
		if n > len(kw) {
			n = len(kw)
		}
		if asciiEqualFold(p[:n], []byte(kw)[:n]) && n < len(kw) {
			return false, true
		}
	}
	return false, false
}

func EncodeGreeting(g Greeting) []byte {
	var buf bytes.Buffer
	buf.WriteString("* ")
	switch g.Kind {
	case GreetingOk:
		buf.WriteString("OK ")
	case GreetingPreAuth:
		buf.WriteString("PREAUTH ")
	case GreetingBye:
		buf.WriteString("BYE ")
	}
	buf.Write(encodeRespText(RespText{Code: g.Code, Text: g.Text}))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// ---------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------

type StatusKind int

const (
	StatusOk StatusKind = iota
	StatusNo
	StatusBad
	StatusBye
)

// Status is `resp-cond-state` (tagged or untagged OK/NO/BAD) or the
// fatal BYE. Tag is always nil for Bye.
type Status struct {
	Kind StatusKind
	Tag  *Tag
	Code *Code
	Text []byte
}

func EncodeStatus(s Status) []byte {
	var buf bytes.Buffer
	if s.Tag != nil {
		buf.Write(*s.Tag)
	} else {
		buf.WriteByte('*')
	}
	buf.WriteByte(' ')
	switch s.Kind {
	case StatusOk:
		buf.WriteString("OK ")
	case StatusNo:
		buf.WriteString("NO ")
	case StatusBad:
		buf.WriteString("BAD ")
	case StatusBye:
		buf.WriteString("BYE ")
	}
	buf.Write(encodeRespText(RespText{Code: s.Code, Text: s.Text}))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// ---------------------------------------------------------------------
// CommandContinuationRequest
// ---------------------------------------------------------------------

// ContinuationRequest is `continue-req = "+" SP (resp-text / base64) CRLF`.
type ContinuationRequest struct {
	Base64 []byte // decoded payload, set when the line is base64
	Text   *RespText
}

// parseContinuation parses a full "+ ...\r\n" line already assembled in
// p (the Driver guarantees no literal can appear inside a continuation
// line, so this never needs to return errIncomplete for a literal
// reason — only for a short buffer).
//
// Per spec.md §4.7, base64 is preferred only when the whole line is
// valid base64; otherwise resp-text wins (reversing a naive
// resp-text-first attempt that fails on pure-base64 bodies).
func parseContinuation(p []byte, q Quirks) (c ContinuationRequest, n int, err error) {
	if len(p) == 0 || p[0] != '+' {
		if len(p) == 0 {
			return ContinuationRequest{}, 0, errIncomplete
		}
		return ContinuationRequest{}, 0, malformed(CategoryCharacterClass, 0, "continuation must start with '+'")
	}
	i := 1
	spn, err := sp(p[i:], i)
	if err != nil {
		return ContinuationRequest{}, 0, err
	}
	i += spn
	lineEnd, crlfLen, found := findLineEnd(p[i:], q)
	if !found {
		return ContinuationRequest{}, 0, errIncomplete
	}
	body := p[i : i+lineEnd]
	if dec, ok := tryBase64Line(body); ok {
		return ContinuationRequest{Base64: dec}, i + lineEnd + crlfLen, nil
	}
	// The line terminator is included so text() can see where the line ends.
	rt, rn, err := parseRespText(p[i:i+lineEnd+crlfLen], i, q)
	if err != nil {
		return ContinuationRequest{}, 0, err
	}
	if rn != len(body) {
		return ContinuationRequest{}, 0, malformed(CategoryCharacterClass, i+rn, "trailing bytes in continuation line")
	}
	return ContinuationRequest{Text: &rt}, i + lineEnd + crlfLen, nil
}

// findLineEnd scans for the first CRLF (or, under CRLFRelaxed, bare LF)
// in p, returning the index of its start and its length.
func findLineEnd(p []byte, q Quirks) (idx, length int, found bool) {
	for i := 0; i < len(p); i++ {
		if p[i] == '\n' {
			if i > 0 && p[i-1] == '\r' {
				return i - 1, 2, true
			}
			if q.CRLFRelaxed {
				return i, 1, true
			}
		}
	}
	return 0, 0, false
}

func tryBase64Line(body []byte) ([]byte, bool) {
	if len(body) == 0 {
		return nil, false
	}
	n, _ := base64Run(body)
	if len(body)-n > 2 || len(bytes.TrimRight(body[n:], "=")) != 0 {
		return nil, false
	}
	dec, err := base64.StdEncoding.DecodeString(string(body))
	if err != nil {
		return nil, false
	}
	return dec, true
}

func EncodeContinuation(c ContinuationRequest) []byte {
	var buf bytes.Buffer
	buf.WriteString("+ ")
	if c.Base64 != nil {
		buf.WriteString(base64.StdEncoding.EncodeToString(c.Base64))
	} else if c.Text != nil {
		buf.Write(encodeRespText(*c.Text))
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}
