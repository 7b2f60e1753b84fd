package wire

import (
	"bytes"
	"strconv"
	"time"
)

// dateTimeLayout is RFC 3501's `date-time` format:
// `DD-Mon-YYYY HH:MM:SS "+"/"-"ZZZZ`.
const dateTimeLayout = "_2-Jan-2006 15:04:05 -0700"

func parseDateTime(raw []byte) (DateTime, error) {
	t, err := time.Parse(dateTimeLayout, string(raw))
	if err != nil {
		return DateTime{}, err
	}
	return DateTime{Time: t}, nil
}

func formatDateTime(dt DateTime) []byte {
	return []byte(dt.Time.Format(dateTimeLayout))
}

func formatUint64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// FetchAttrKind enumerates `fetch-att`, the names a FETCH command may
// request. Ported from imap-codec's imap-types/src/fetch.rs
// MessageDataItemName enum, generalized from the teacher's
// FetchItemType constants (Envelope/Flags/...) to also carry BODY[section]
// and BODY.PEEK[section]<partial> payloads.
type FetchAttrKind int

const (
	FetchAttrEnvelope FetchAttrKind = iota
	FetchAttrFlags
	FetchAttrInternalDate
	FetchAttrRFC822
	FetchAttrRFC822Header
	FetchAttrRFC822Size
	FetchAttrRFC822Text
	FetchAttrBody          // BODY, no section: structure without extension data
	FetchAttrBodyStructure // BODYSTRUCTURE: structure with extension data
	FetchAttrBodySection   // BODY[section]<partial>
	FetchAttrBodyPeek      // BODY.PEEK[section]<partial>
	FetchAttrUID
	FetchAttrModSeq // RFC 7162 CONDSTORE
)

// FetchAttr is one requested `fetch-att`. Section and Partial are only
// meaningful for FetchAttrBodySection/FetchAttrBodyPeek.
type FetchAttr struct {
	Kind    FetchAttrKind
	Section *Section
	Partial *Partial
}

// FetchMacro is `fetch-macro = "ALL" / "FAST" / "FULL"`, each expanding
// to a fixed attribute set per RFC 3501 §6.4.5.
type FetchMacro int

const (
	FetchMacroNone FetchMacro = iota
	FetchMacroAll
	FetchMacroFast
	FetchMacroFull
)

// Expand returns the fetch-att list a macro stands for. FetchMacroNone
// expands to nil; callers that parsed an explicit attribute list never
// call this.
func (m FetchMacro) Expand() []FetchAttr {
	flags := FetchAttr{Kind: FetchAttrFlags}
	internalDate := FetchAttr{Kind: FetchAttrInternalDate}
	rfc822Size := FetchAttr{Kind: FetchAttrRFC822Size}
	envelope := FetchAttr{Kind: FetchAttrEnvelope}
	switch m {
	case FetchMacroAll:
		return []FetchAttr{flags, internalDate, rfc822Size, envelope}
	case FetchMacroFast:
		return []FetchAttr{flags, internalDate, rfc822Size}
	case FetchMacroFull:
		return []FetchAttr{flags, internalDate, rfc822Size, envelope, {Kind: FetchAttrBody}}
	}
	return nil
}

// parseFetchMacroOrAttList lexes `fetch-att-list = fetch-att /
// "(" fetch-att *(SP fetch-att) ")"` joined with the macro alternative,
// used by command.go's FETCH command grammar (not by the msg-att
// response grammar below, which is unconditionally parenthesized).
func parseFetchMacroOrAttList(p []byte, offset int, q Quirks) (macro FetchMacro, attrs []FetchAttr, n int, err error) {
	if hasCIPrefix(p, "ALL") {
		if ok, incomplete := atomTerminatedKeyword(p, 3); ok {
			return FetchMacroAll, nil, 3, nil
		} else if incomplete {
			return 0, nil, 0, errIncomplete
		}
	}
	if hasCIPrefix(p, "FAST") {
		if ok, incomplete := atomTerminatedKeyword(p, 4); ok {
			return FetchMacroFast, nil, 4, nil
		} else if incomplete {
			return 0, nil, 0, errIncomplete
		}
	}
	if hasCIPrefix(p, "FULL") {
		if ok, incomplete := atomTerminatedKeyword(p, 4); ok {
			return FetchMacroFull, nil, 4, nil
		} else if incomplete {
			return 0, nil, 0, errIncomplete
		}
	}
	if len(p) == 0 {
		return 0, nil, 0, errIncomplete
	}
	if p[0] != '(' {
		a, an, err := parseFetchAttr(p, offset, q)
		if err != nil {
			return 0, nil, 0, err
		}
		return FetchMacroNone, []FetchAttr{a}, an, nil
	}
	i := 1
	for {
		a, an, err := parseFetchAttr(p[i:], offset+i, q)
		if err != nil {
			return 0, nil, 0, err
		}
		attrs = append(attrs, a)
		i += an
		if i < len(p) && p[i] == ' ' {
			i++
			continue
		}
		break
	}
	if i >= len(p) {
		return 0, nil, 0, errIncomplete
	}
	if p[i] != ')' {
		return 0, nil, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing fetch-att-list")
	}
	return FetchMacroNone, attrs, i + 1, nil
}

// atomTerminatedKeyword reports whether p[:kwLen] is followed by an atom
// terminator (ok), or whether p might still extend the keyword
// (incomplete, when p is exactly kwLen bytes long so far).
func atomTerminatedKeyword(p []byte, kwLen int) (ok, incomplete bool) {
	if len(p) == kwLen {
		return false, true
	}
	if kwLen >= len(p) {
		return false, true
	}
	return isAtomSpecial(p[kwLen]), false
}

func parseFetchAttr(p []byte, offset int, q Quirks) (a FetchAttr, n int, err error) {
	switch {
	case matchAttrKeyword(p, "ENVELOPE"):
		return FetchAttr{Kind: FetchAttrEnvelope}, len("ENVELOPE"), nil
	case matchAttrKeyword(p, "FLAGS"):
		return FetchAttr{Kind: FetchAttrFlags}, len("FLAGS"), nil
	case matchAttrKeyword(p, "INTERNALDATE"):
		return FetchAttr{Kind: FetchAttrInternalDate}, len("INTERNALDATE"), nil
	case matchAttrKeyword(p, "RFC822.HEADER"):
		return FetchAttr{Kind: FetchAttrRFC822Header}, len("RFC822.HEADER"), nil
	case matchAttrKeyword(p, "RFC822.SIZE"):
		return FetchAttr{Kind: FetchAttrRFC822Size}, len("RFC822.SIZE"), nil
	case matchAttrKeyword(p, "RFC822.TEXT"):
		return FetchAttr{Kind: FetchAttrRFC822Text}, len("RFC822.TEXT"), nil
	case matchAttrKeyword(p, "RFC822"):
		return FetchAttr{Kind: FetchAttrRFC822}, len("RFC822"), nil
	case matchAttrKeyword(p, "BODYSTRUCTURE"):
		return FetchAttr{Kind: FetchAttrBodyStructure}, len("BODYSTRUCTURE"), nil
	case matchAttrKeyword(p, "BODY.PEEK"):
		return parseBodySectionAttr(p, offset, q, FetchAttrBodyPeek, len("BODY.PEEK"))
	case matchAttrKeyword(p, "BODY"):
		return parseBodySectionAttr(p, offset, q, FetchAttrBody, len("BODY"))
	case matchAttrKeyword(p, "UID"):
		return FetchAttr{Kind: FetchAttrUID}, len("UID"), nil
	case matchAttrKeyword(p, "MODSEQ"):
		return FetchAttr{Kind: FetchAttrModSeq}, len("MODSEQ"), nil
	}
	keywords := []string{"ENVELOPE", "FLAGS", "INTERNALDATE", "RFC822.HEADER", "RFC822.SIZE",
		"RFC822.TEXT", "RFC822", "BODYSTRUCTURE", "BODY.PEEK", "BODY", "UID", "MODSEQ"}
	if _, incomplete := ciPrefixCouldMatch(p, keywords...); incomplete {
		return FetchAttr{}, 0, errIncomplete
	}
	return FetchAttr{}, 0, malformed(CategoryCharacterClass, offset, "unrecognized fetch attribute")
}

// matchAttrKeyword reports whether p begins with kw followed by an atom
// terminator or '[' (BODY[...]). It does
// not itself distinguish incomplete from malformed; callers fall back
// to ciPrefixCouldMatch across the full keyword set for that.
func matchAttrKeyword(p []byte, kw string) bool {
	if !hasCIPrefix(p, kw) {
		return false
	}
	if len(p) == len(kw) {
		return false
	}
	next := p[len(kw)]
	return isAtomSpecial(next) || next == '['
}

// parseBodySectionAttr lexes the optional `"[" section "]" ["<" partial ">"]`
// tail following BODY or BODY.PEEK. With no '[' present, this is the
// bare BODY attribute (structure without extension data).
func parseBodySectionAttr(p []byte, offset int, q Quirks, kind FetchAttrKind, kwLen int) (a FetchAttr, n int, err error) {
	i := kwLen
	if i >= len(p) {
		if kind == FetchAttrBodyPeek {
			return FetchAttr{}, 0, errIncomplete
		}
		return FetchAttr{Kind: FetchAttrBody}, i, nil
	}
	if p[i] != '[' {
		if kind == FetchAttrBodyPeek {
			return FetchAttr{}, 0, malformed(CategoryCharacterClass, offset+i, "BODY.PEEK requires a section")
		}
		return FetchAttr{Kind: FetchAttrBody}, i, nil
	}
	i++ // consume '['
	sec, sn, err := parseSection(p[i:], offset+i, q)
	if err != nil {
		return FetchAttr{}, 0, err
	}
	i += sn
	if i >= len(p) {
		return FetchAttr{}, 0, errIncomplete
	}
	if p[i] != ']' {
		return FetchAttr{}, 0, malformed(CategoryCharacterClass, offset+i, "expected ']' closing section")
	}
	i++
	var partial *Partial
	if i < len(p) && p[i] == '<' {
		pt, pn, err := parsePartial(p[i:], offset+i, q)
		if err != nil {
			return FetchAttr{}, 0, err
		}
		partial = pt
		i += pn
	}
	if kind == FetchAttrBody {
		kind = FetchAttrBodySection
	}
	return FetchAttr{Kind: kind, Section: &sec, Partial: partial}, i, nil
}

func EncodeFetchAttr(a FetchAttr) []byte {
	var buf bytes.Buffer
	switch a.Kind {
	case FetchAttrEnvelope:
		buf.WriteString("ENVELOPE")
	case FetchAttrFlags:
		buf.WriteString("FLAGS")
	case FetchAttrInternalDate:
		buf.WriteString("INTERNALDATE")
	case FetchAttrRFC822:
		buf.WriteString("RFC822")
	case FetchAttrRFC822Header:
		buf.WriteString("RFC822.HEADER")
	case FetchAttrRFC822Size:
		buf.WriteString("RFC822.SIZE")
	case FetchAttrRFC822Text:
		buf.WriteString("RFC822.TEXT")
	case FetchAttrBodyStructure:
		buf.WriteString("BODYSTRUCTURE")
	case FetchAttrUID:
		buf.WriteString("UID")
	case FetchAttrModSeq:
		buf.WriteString("MODSEQ")
	case FetchAttrBody, FetchAttrBodySection, FetchAttrBodyPeek:
		if a.Kind == FetchAttrBodyPeek {
			buf.WriteString("BODY.PEEK")
		} else {
			buf.WriteString("BODY")
		}
		if a.Section != nil {
			buf.WriteByte('[')
			buf.Write(EncodeSection(*a.Section))
			buf.WriteByte(']')
		}
		if a.Partial != nil {
			buf.Write(EncodePartial(a.Partial))
		}
	}
	return buf.Bytes()
}

// ---------------------------------------------------------------------
// msg-att response items
// ---------------------------------------------------------------------

// FetchAttributeValueKind enumerates `msg-att = msg-att-static /
// msg-att-dynamic`, the attribute/value pairs a FETCH response carries.
type FetchAttributeValueKind int

const (
	FetchValEnvelope FetchAttributeValueKind = iota
	FetchValInternalDate
	FetchValRFC822
	FetchValRFC822Header
	FetchValRFC822Text
	FetchValRFC822Size
	FetchValBody          // non-extensible BODY
	FetchValBodyStructure // BODYSTRUCTURE
	FetchValBodySection   // BODY[section]<origin> = nstring
	FetchValUID
	FetchValFlags
	FetchValModSeq
)

// FetchAttributeValue is one `msg-att` element: exactly one payload
// field matching Kind is populated.
type FetchAttributeValue struct {
	Kind FetchAttributeValueKind

	Envelope      *Envelope
	InternalDate  DateTime
	NStr          NString // RFC822/RFC822.HEADER/RFC822.TEXT/BODY[section]
	Size          uint32
	BodyStructure *BodyStructure
	Section       *Section
	Origin        *uint32 // BODY[section]<origin> response form, nil if absent
	UID           uint32
	Flags         []Flag
	ModSeq        uint64
}

// parseMsgAtt lexes `"(" msg-att *(SP msg-att) ")"`, the FETCH response
// payload. Ported loosely from imapparser's response-side FETCH handling,
// generalized to the full msg-att grammar since the teacher only ever
// emits FETCH responses, never parses them.
func parseMsgAtt(p []byte, offset int, q Quirks) (items []FetchAttributeValue, n int, err error) {
	if len(p) == 0 || p[0] != '(' {
		if len(p) == 0 {
			return nil, 0, errIncomplete
		}
		return nil, 0, malformed(CategoryCharacterClass, offset, "expected '(' opening msg-att")
	}
	i := 1
	for {
		item, in, err := parseOneMsgAtt(p[i:], offset+i, q)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		i += in
		if i < len(p) && p[i] == ' ' {
			i++
			continue
		}
		break
	}
	if i >= len(p) {
		return nil, 0, errIncomplete
	}
	if p[i] != ')' {
		return nil, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing msg-att")
	}
	return items, i + 1, nil
}

func parseOneMsgAtt(p []byte, offset int, q Quirks) (item FetchAttributeValue, n int, err error) {
	switch {
	case hasCIPrefix(p, "ENVELOPE"):
		i := 8
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += spn
		env, en, err := parseEnvelope(p[i:], offset+i, q)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += en
		return FetchAttributeValue{Kind: FetchValEnvelope, Envelope: &env}, i, nil
	case hasCIPrefix(p, "INTERNALDATE"):
		i := 12
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += spn
		q2, qn, err := parseQuoted(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += qn
		dt, perr := parseDateTime(q2)
		if perr != nil {
			return FetchAttributeValue{}, 0, malformed(CategoryEncoding, offset+i, "invalid INTERNALDATE: %v", perr)
		}
		return FetchAttributeValue{Kind: FetchValInternalDate, InternalDate: dt}, i, nil
	case hasCIPrefix(p, "RFC822.HEADER"):
		return parseMsgAttNString(p, offset, q, 13, FetchValRFC822Header)
	case hasCIPrefix(p, "RFC822.SIZE"):
		i := 11
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += spn
		v, vn, err := number(p[i:], offset+i, q)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += vn
		return FetchAttributeValue{Kind: FetchValRFC822Size, Size: v}, i, nil
	case hasCIPrefix(p, "RFC822.TEXT"):
		return parseMsgAttNString(p, offset, q, 11, FetchValRFC822Text)
	case hasCIPrefix(p, "RFC822"):
		return parseMsgAttNString(p, offset, q, 6, FetchValRFC822)
	case hasCIPrefix(p, "BODYSTRUCTURE"):
		i := 13
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += spn
		bs, bn, err := parseBody(p[i:], offset+i, q, DefaultRecursionBudget)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += bn
		return FetchAttributeValue{Kind: FetchValBodyStructure, BodyStructure: &bs}, i, nil
	case hasCIPrefix(p, "BODY["):
		return parseMsgAttBodySection(p, offset, q, 4)
	case hasCIPrefix(p, "BODY"):
		i := 4
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += spn
		bs, bn, err := parseBody(p[i:], offset+i, q, DefaultRecursionBudget)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += bn
		return FetchAttributeValue{Kind: FetchValBody, BodyStructure: &bs}, i, nil
	case hasCIPrefix(p, "UID"):
		i := 3
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += spn
		v, vn, err := nzNumber(p[i:], offset+i, q)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += vn
		return FetchAttributeValue{Kind: FetchValUID, UID: v}, i, nil
	case hasCIPrefix(p, "FLAGS"):
		i := 5
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += spn
		flags, fn, err := parseFlagListParen(p[i:], offset+i, q)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += fn
		return FetchAttributeValue{Kind: FetchValFlags, Flags: flags}, i, nil
	case hasCIPrefix(p, "MODSEQ"):
		i := 6
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += spn
		if i >= len(p) || p[i] != '(' {
			if i >= len(p) {
				return FetchAttributeValue{}, 0, errIncomplete
			}
			return FetchAttributeValue{}, 0, malformed(CategoryCharacterClass, offset+i, "expected '(' opening mod-sequence-value")
		}
		i++
		v, vn, err := parseModSeq(p[i:], offset+i)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += vn
		if i >= len(p) {
			return FetchAttributeValue{}, 0, errIncomplete
		}
		if p[i] != ')' {
			return FetchAttributeValue{}, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing mod-sequence-value")
		}
		return FetchAttributeValue{Kind: FetchValModSeq, ModSeq: v}, i + 1, nil
	}
	keywords := []string{"ENVELOPE", "INTERNALDATE", "RFC822.HEADER", "RFC822.SIZE", "RFC822.TEXT",
		"RFC822", "BODYSTRUCTURE", "BODY", "UID", "FLAGS", "MODSEQ"}
	if _, incomplete := ciPrefixCouldMatch(p, keywords...); incomplete {
		return FetchAttributeValue{}, 0, errIncomplete
	}
	return FetchAttributeValue{}, 0, malformed(CategoryCharacterClass, offset, "unrecognized msg-att")
}

func parseMsgAttNString(p []byte, offset int, q Quirks, kwLen int, kind FetchAttributeValueKind) (item FetchAttributeValue, n int, err error) {
	i := kwLen
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return FetchAttributeValue{}, 0, err
	}
	i += spn
	s, sn, err := parseNString(p[i:], offset+i, q, 0)
	if err != nil {
		return FetchAttributeValue{}, 0, err
	}
	i += sn
	return FetchAttributeValue{Kind: kind, NStr: s}, i, nil
}

// parseMsgAttBodySection lexes `"BODY" section ["<" number ">"] SP nstring`,
// the FETCH response form for a requested BODY[section] or
// BODY.PEEK[section] (servers always answer with plain BODY[section],
// regardless of which the client requested).
func parseMsgAttBodySection(p []byte, offset int, q Quirks, kwLen int) (item FetchAttributeValue, n int, err error) {
	i := kwLen + 1 // kwLen covers "BODY", +1 consumes the '['
	sec, sn, err := parseSection(p[i:], offset+i, q)
	if err != nil {
		return FetchAttributeValue{}, 0, err
	}
	i += sn
	if i >= len(p) {
		return FetchAttributeValue{}, 0, errIncomplete
	}
	if p[i] != ']' {
		return FetchAttributeValue{}, 0, malformed(CategoryCharacterClass, offset+i, "expected ']' closing section")
	}
	i++
	var origin *uint32
	if i < len(p) && p[i] == '<' {
		i++
		v, vn, err := number(p[i:], offset+i, q)
		if err != nil {
			return FetchAttributeValue{}, 0, err
		}
		i += vn
		if i >= len(p) {
			return FetchAttributeValue{}, 0, errIncomplete
		}
		if p[i] != '>' {
			return FetchAttributeValue{}, 0, malformed(CategoryCharacterClass, offset+i, "expected '>' closing origin octet")
		}
		i++
		origin = &v
	}
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return FetchAttributeValue{}, 0, err
	}
	i += spn
	s, sn2, err := parseNString(p[i:], offset+i, q, 0)
	if err != nil {
		return FetchAttributeValue{}, 0, err
	}
	i += sn2
	return FetchAttributeValue{Kind: FetchValBodySection, Section: &sec, Origin: origin, NStr: s}, i, nil
}

// parseModSeq lexes `mod-sequence-valzer = "0" / mod-sequence-value`,
// a 1*DIGIT unsigned 63-bit value (RFC 7162).
func parseModSeq(p []byte, offset int) (v uint64, n int, err error) {
	nn, endedByEOF := scanWhile(p, isDigit)
	if endedByEOF {
		return 0, 0, errIncomplete
	}
	if nn == 0 {
		return 0, 0, malformed(CategoryCharacterClass, offset, "expected mod-sequence-value")
	}
	for i := 0; i < nn; i++ {
		v = v*10 + uint64(p[i]-'0')
	}
	return v, nn, nil
}

func EncodeFetchAttributeValue(item FetchAttributeValue) []byte {
	var buf bytes.Buffer
	switch item.Kind {
	case FetchValEnvelope:
		buf.WriteString("ENVELOPE ")
		buf.Write(EncodeEnvelope(*item.Envelope))
	case FetchValInternalDate:
		buf.WriteString("INTERNALDATE ")
		buf.Write(encodeQuoted(Quoted(formatDateTime(item.InternalDate))))
	case FetchValRFC822:
		buf.WriteString("RFC822 ")
		buf.Write(encodeNString(item.NStr))
	case FetchValRFC822Header:
		buf.WriteString("RFC822.HEADER ")
		buf.Write(encodeNString(item.NStr))
	case FetchValRFC822Text:
		buf.WriteString("RFC822.TEXT ")
		buf.Write(encodeNString(item.NStr))
	case FetchValRFC822Size:
		buf.WriteString("RFC822.SIZE ")
		buf.Write(formatNumber(item.Size))
	case FetchValBody:
		buf.WriteString("BODY ")
		buf.Write(EncodeBodyStructure(*item.BodyStructure))
	case FetchValBodyStructure:
		buf.WriteString("BODYSTRUCTURE ")
		buf.Write(EncodeBodyStructure(*item.BodyStructure))
	case FetchValBodySection:
		buf.WriteString("BODY[")
		buf.Write(EncodeSection(*item.Section))
		buf.WriteByte(']')
		if item.Origin != nil {
			buf.WriteByte('<')
			buf.Write(formatNumber(*item.Origin))
			buf.WriteByte('>')
		}
		buf.WriteByte(' ')
		buf.Write(encodeNString(item.NStr))
	case FetchValUID:
		buf.WriteString("UID ")
		buf.Write(formatNumber(item.UID))
	case FetchValFlags:
		buf.WriteString("FLAGS ")
		buf.Write(EncodeFlagList(item.Flags))
	case FetchValModSeq:
		buf.WriteString("MODSEQ (")
		buf.WriteString(formatUint64(item.ModSeq))
		buf.WriteByte(')')
	}
	return buf.Bytes()
}
