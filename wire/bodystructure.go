package wire

import "bytes"

// DefaultRecursionBudget bounds BODYSTRUCTURE nesting depth so a hostile
// input of a million "(" bytes fails fast instead of blowing the stack.
// spec.md §4.8 recommends 8; ported from imap-codec's
// `body(remaining_recursions)` pattern in src/parse/body.rs.
const DefaultRecursionBudget = 8

// Address is `address = "(" addr-name SP addr-adl SP addr-mailbox SP
// addr-host ")"`.
type Address struct {
	Name    NString
	ADL     NString
	Mailbox NString
	Host    NString
}

// Envelope is the flat ENVELOPE fetch attribute record (spec.md §4.9).
type Envelope struct {
	Date      NString
	Subject   NString
	From      []Address // nil means NIL
	Sender    []Address
	ReplyTo   []Address
	To        []Address
	Cc        []Address
	Bcc       []Address
	InReplyTo NString
	MessageID NString
}

// Param is one name/value pair of a body-fields parameter list or a
// body-fld-dsp parameter list.
type Param struct {
	Name  IString
	Value IString
}

// BodyFields is `body-fields = body-fld-param SP body-fld-id SP
// body-fld-desc SP body-fld-enc SP body-fld-octets`, common to every
// SpecificFields variant.
type BodyFields struct {
	Params      []Param
	ID          NString
	Description NString
	Encoding    IString
	Octets      uint32
}

type SpecificKind int

const (
	SpecificBasic SpecificKind = iota
	SpecificMessage
	SpecificText
)

// SpecificFields is `body-type-basic / body-type-msg / body-type-text`,
// the part of body-type-1part that varies by media type.
type SpecificFields struct {
	Kind SpecificKind

	// Basic
	Type    AString
	Subtype IString

	// Message (type MESSAGE/RFC822)
	Envelope      *Envelope
	BodyStructure *BodyStructure
	Lines         uint32 // also set for Text

	// Text also sets Subtype and Lines.
}

// Disposition is `body-fld-dsp = "(" string SP body-fld-param ")" / nil`.
type Disposition struct {
	Type   IString
	Params []Param
}

// SinglePartExtension is `body-ext-1part`: a cascade of optional tail
// fields where each presence gates the next. A nil field, with every
// field after it also nil, means parsing stopped at that point — the
// outer extension is populated up to the last field successfully parsed
// (spec.md §4.8).
type SinglePartExtension struct {
	MD5         NString
	Disposition *Disposition
	Language    []AString // nil means NIL; language = nstring / "(" 1*string ")"
	Location    *NString
	Extra       [][]byte // not set by the parser; see parseSinglePartExtension
}

// MultiPartExtension is `body-ext-mpart`.
type MultiPartExtension struct {
	Params      []Param
	Disposition *Disposition
	Language    []AString
	Location    *NString
	Extra       [][]byte // not set by the parser
}

// SingleBody is `body-type-1part [SP body-ext-1part]`.
type SingleBody struct {
	Fields    BodyFields
	Specific  SpecificFields
	Extension *SinglePartExtension
}

// MultiBody is `body-type-mpart [SP body-ext-mpart]`.
type MultiBody struct {
	Bodies    []BodyStructure
	Subtype   IString
	Extension *MultiPartExtension
}

// BodyStructure is `body = "(" (body-type-1part / body-type-mpart) ")"`.
type BodyStructure struct {
	Single *SingleBody
	Multi  *MultiBody
}

// ParseBodyStructure lexes `body` with the default recursion budget.
func ParseBodyStructure(p []byte, offset int, q Quirks) (bs BodyStructure, n int, err error) {
	return parseBody(p, offset, q, DefaultRecursionBudget)
}

func parseBody(p []byte, offset int, q Quirks, budget int) (bs BodyStructure, n int, err error) {
	if budget <= 0 {
		return BodyStructure{}, 0, malformed(CategoryBudget, offset, "BODYSTRUCTURE nesting exceeds recursion budget")
	}
	if len(p) == 0 || p[0] != '(' {
		if len(p) == 0 {
			return BodyStructure{}, 0, errIncomplete
		}
		return BodyStructure{}, 0, malformed(CategoryCharacterClass, offset, "expected '(' opening body")
	}
	i := 1
	// Disambiguate 1part vs mpart by peeking: mpart starts with a nested
	// "(", 1part starts with a quoted/literal media type string.
	if i < len(p) && p[i] == '(' {
		mb, mn, err := parseBodyTypeMPart(p[i:], offset+i, q, budget-1)
		if err != nil {
			return BodyStructure{}, 0, err
		}
		i += mn
		if i >= len(p) {
			return BodyStructure{}, 0, errIncomplete
		}
		if p[i] != ')' {
			return BodyStructure{}, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing multipart body")
		}
		return BodyStructure{Multi: &mb}, i + 1, nil
	}
	sb, sn, err := parseBodyType1Part(p[i:], offset+i, q, budget-1)
	if err != nil {
		return BodyStructure{}, 0, err
	}
	i += sn
	if i >= len(p) {
		return BodyStructure{}, 0, errIncomplete
	}
	if p[i] != ')' {
		return BodyStructure{}, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing body")
	}
	return BodyStructure{Single: &sb}, i + 1, nil
}

// parseNilOrParen disambiguates "NIL" from a parenthesized list: it
// reports isNil when p starts with "NIL", consuming it (a strict prefix
// of "NIL" is incomplete), or leaves p untouched for the caller to check
// for a leading '(' otherwise.
func parseNilOrParen(p []byte, offset int) (isNil bool, n int, err error) {
	if len(p) == 0 {
		return false, 0, errIncomplete
	}
	if p[0] == 'N' || p[0] == 'n' {
		partial, ok := matchPrefix(p, []byte("NIL"))
		if ok {
			return true, 3, nil
		}
		if partial {
			return false, 0, errIncomplete
		}
		return false, 0, malformed(CategoryCharacterClass, offset, "expected NIL or '('")
	}
	if p[0] != '(' {
		return false, 0, malformed(CategoryCharacterClass, offset, "expected NIL or '('")
	}
	return false, 0, nil
}

func parseBodyFieldParamList(p []byte, offset int, q Quirks) (params []Param, n int, err error) {
	isNil, nn, err := parseNilOrParen(p, offset)
	if err != nil {
		return nil, 0, err
	}
	if isNil {
		return nil, nn, nil
	}
	i := 1
	for {
		name, nn, err := parseString(p[i:], offset+i, q, 0)
		if err != nil {
			return nil, 0, err
		}
		i += nn
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return nil, 0, err
		}
		i += spn
		val, vn, err := parseString(p[i:], offset+i, q, 0)
		if err != nil {
			return nil, 0, err
		}
		i += vn
		params = append(params, Param{Name: name, Value: val})
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
		return nil, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing parameter list")
	}
	return params, i + 1, nil
}

func parseBodyFields(p []byte, offset int, q Quirks) (bf BodyFields, n int, err error) {
	i := 0
	params, pn, err := parseBodyFieldParamList(p[i:], offset+i, q)
	if err != nil {
		return BodyFields{}, 0, err
	}
	bf.Params = params
	i += pn
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return BodyFields{}, 0, err
	}
	i += spn
	id, idn, err := parseNString(p[i:], offset+i, q, 0)
	if err != nil {
		return BodyFields{}, 0, err
	}
	bf.ID = id
	i += idn
	spn2, err := sp(p[i:], offset+i)
	if err != nil {
		return BodyFields{}, 0, err
	}
	i += spn2
	desc, descn, err := parseNString(p[i:], offset+i, q, 0)
	if err != nil {
		return BodyFields{}, 0, err
	}
	bf.Description = desc
	i += descn
	spn3, err := sp(p[i:], offset+i)
	if err != nil {
		return BodyFields{}, 0, err
	}
	i += spn3
	enc, encn, err := parseString(p[i:], offset+i, q, 0)
	if err != nil {
		return BodyFields{}, 0, err
	}
	bf.Encoding = enc
	i += encn
	spn4, err := sp(p[i:], offset+i)
	if err != nil {
		return BodyFields{}, 0, err
	}
	i += spn4
	octets, on, err := number(p[i:], offset+i, q)
	if err != nil {
		return BodyFields{}, 0, err
	}
	bf.Octets = octets
	i += on
	return bf, i, nil
}

func parseBodyType1Part(p []byte, offset int, q Quirks, budget int) (sb SingleBody, n int, err error) {
	typ, tn, err := parseString(p, offset, q, 0)
	if err != nil {
		return SingleBody{}, 0, err
	}
	i := tn
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return SingleBody{}, 0, err
	}
	i += spn
	subtype, stn, err := parseString(p[i:], offset+i, q, 0)
	if err != nil {
		return SingleBody{}, 0, err
	}
	i += stn
	spn2, err := sp(p[i:], offset+i)
	if err != nil {
		return SingleBody{}, 0, err
	}
	i += spn2
	bf, bfn, err := parseBodyFields(p[i:], offset+i, q)
	if err != nil {
		return SingleBody{}, 0, err
	}
	i += bfn

	typeUpper := string(asciiUpper(typ.Value()))
	subtypeUpper := string(asciiUpper(subtype.Value()))

	var spec SpecificFields
	switch {
	case typeUpper == "MESSAGE" && subtypeUpper == "RFC822":
		spn3, err := sp(p[i:], offset+i)
		if err != nil {
			return SingleBody{}, 0, err
		}
		i += spn3
		env, en, err := parseEnvelope(p[i:], offset+i, q)
		if err != nil {
			return SingleBody{}, 0, err
		}
		i += en
		spn4, err := sp(p[i:], offset+i)
		if err != nil {
			return SingleBody{}, 0, err
		}
		i += spn4
		nested, nn, err := parseBody(p[i:], offset+i, q, budget)
		if err != nil {
			return SingleBody{}, 0, err
		}
		i += nn
		spn5, err := sp(p[i:], offset+i)
		if err != nil {
			return SingleBody{}, 0, err
		}
		i += spn5
		lines, ln, err := number(p[i:], offset+i, q)
		if err != nil {
			return SingleBody{}, 0, err
		}
		i += ln
		spec = SpecificFields{Kind: SpecificMessage, Envelope: &env, BodyStructure: &nested, Lines: lines}
	case typeUpper == "TEXT":
		spn3, err := sp(p[i:], offset+i)
		if err != nil {
			return SingleBody{}, 0, err
		}
		i += spn3
		lines, ln, err := number(p[i:], offset+i, q)
		if err != nil {
			return SingleBody{}, 0, err
		}
		i += ln
		spec = SpecificFields{Kind: SpecificText, Subtype: subtype, Lines: lines}
	default:
		spec = SpecificFields{Kind: SpecificBasic, Type: typ, Subtype: subtype}
	}

	ext, en, extErr := parseSinglePartExtension(p[i:], offset+i, q)
	if extErr != nil {
		return SingleBody{}, 0, extErr
	}
	i += en
	var extPtr *SinglePartExtension
	if en > 0 {
		extPtr = &ext
	}
	return SingleBody{Fields: bf, Specific: spec, Extension: extPtr}, i, nil
}

// parseSinglePartExtension lexes `body-ext-1part = body-fld-md5
// [SP body-fld-dsp [SP body-fld-lang [SP body-fld-loc *(SP body-extension)]]]`.
// Each optional field gates the next; a missing field stops the cascade
// without being an error (the outer struct is populated up to the last
// field successfully parsed, per spec.md §4.8). Parsing stops after
// body-fld-loc: trailing body-extension values are not read, so a body
// that carries them fails at the enclosing ')' check.
func parseSinglePartExtension(p []byte, offset int, q Quirks) (ext SinglePartExtension, n int, err error) {
	if len(p) == 0 || p[0] != ' ' {
		return SinglePartExtension{}, 0, nil
	}
	spn, err := sp(p, offset)
	if err != nil {
		return SinglePartExtension{}, 0, nil
	}
	i := spn
	md5, md5n, err := parseNString(p[i:], offset+i, q, 0)
	if err != nil {
		if IsIncomplete(err) {
			return SinglePartExtension{}, 0, err
		}
		return SinglePartExtension{}, 0, nil
	}
	ext.MD5 = md5
	i += md5n

	if i >= len(p) || p[i] != ' ' {
		return ext, i, nil
	}
	spn2, _ := sp(p[i:], offset+i)
	j := i + spn2
	disp, dn, ok, err := parseDisposition(p[j:], offset+j, q)
	if err != nil {
		if IsIncomplete(err) {
			return SinglePartExtension{}, 0, err
		}
		return ext, i, nil
	}
	if !ok {
		return ext, i, nil
	}
	ext.Disposition = disp
	i = j + dn

	if i >= len(p) || p[i] != ' ' {
		return ext, i, nil
	}
	spn3, _ := sp(p[i:], offset+i)
	j = i + spn3
	lang, ln, ok, err := parseBodyLanguage(p[j:], offset+j, q)
	if err != nil {
		if IsIncomplete(err) {
			return SinglePartExtension{}, 0, err
		}
		return ext, i, nil
	}
	if !ok {
		return ext, i, nil
	}
	ext.Language = lang
	i = j + ln

	if i >= len(p) || p[i] != ' ' {
		return ext, i, nil
	}
	spn4, _ := sp(p[i:], offset+i)
	j = i + spn4
	loc, locn, err := parseNString(p[j:], offset+j, q, 0)
	if err != nil {
		if IsIncomplete(err) {
			return SinglePartExtension{}, 0, err
		}
		return ext, i, nil
	}
	ext.Location = &loc
	i = j + locn
	return ext, i, nil
}

func parseDisposition(p []byte, offset int, q Quirks) (disp *Disposition, n int, ok bool, err error) {
	if len(p) == 0 {
		return nil, 0, false, errIncomplete
	}
	if p[0] == 'N' || p[0] == 'n' {
		partial, isNil := matchPrefix(p, []byte("NIL"))
		if isNil {
			return nil, 3, true, nil
		}
		if partial {
			return nil, 0, false, errIncomplete
		}
		return nil, 0, false, nil
	}
	if p[0] != '(' {
		return nil, 0, false, nil
	}
	i := 1
	typ, tn, err := parseString(p[i:], offset+i, q, 0)
	if err != nil {
		return nil, 0, false, err
	}
	i += tn
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return nil, 0, false, err
	}
	i += spn
	params, pn, err := parseBodyFieldParamList(p[i:], offset+i, q)
	if err != nil {
		return nil, 0, false, err
	}
	i += pn
	if i >= len(p) {
		return nil, 0, false, errIncomplete
	}
	if p[i] != ')' {
		return nil, 0, false, malformed(CategoryCharacterClass, offset+i, "expected ')' closing disposition")
	}
	return &Disposition{Type: typ, Params: params}, i + 1, true, nil
}

func parseBodyLanguage(p []byte, offset int, q Quirks) (langs []AString, n int, ok bool, err error) {
	if len(p) == 0 {
		return nil, 0, false, errIncomplete
	}
	if p[0] == 'N' || p[0] == 'n' {
		partial, isNil := matchPrefix(p, []byte("NIL"))
		if isNil {
			return nil, 3, true, nil
		}
		if partial {
			return nil, 0, false, errIncomplete
		}
		return nil, 0, false, nil
	}
	if p[0] == '"' || p[0] == '{' {
		s, sn, err := parseString(p, offset, q, 0)
		if err != nil {
			return nil, 0, false, err
		}
		return []AString{{Str: &s}}, sn, true, nil
	}
	if p[0] != '(' {
		return nil, 0, false, nil
	}
	i := 1
	for {
		s, sn, err := parseString(p[i:], offset+i, q, 0)
		if err != nil {
			return nil, 0, false, err
		}
		langs = append(langs, AString{Str: &s})
		i += sn
		if i < len(p) && p[i] == ' ' {
			i++
			continue
		}
		break
	}
	if i >= len(p) {
		return nil, 0, false, errIncomplete
	}
	if p[i] != ')' {
		return nil, 0, false, malformed(CategoryCharacterClass, offset+i, "expected ')' closing language list")
	}
	return langs, i + 1, true, nil
}

func parseBodyTypeMPart(p []byte, offset int, q Quirks, budget int) (mb MultiBody, n int, err error) {
	i := 0
	for {
		b, bn, err := parseBody(p[i:], offset+i, q, budget)
		if err != nil {
			return MultiBody{}, 0, err
		}
		mb.Bodies = append(mb.Bodies, b)
		i += bn
		if i < len(p) && p[i] == '(' {
			continue
		}
		break
	}
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return MultiBody{}, 0, err
	}
	i += spn
	subtype, stn, err := parseString(p[i:], offset+i, q, 0)
	if err != nil {
		return MultiBody{}, 0, err
	}
	mb.Subtype = subtype
	i += stn

	ext, en, extErr := parseMultiPartExtension(p[i:], offset+i, q)
	if extErr != nil {
		return MultiBody{}, 0, extErr
	}
	i += en
	var extPtr *MultiPartExtension
	if en > 0 {
		extPtr = &ext
	}
	mb.Extension = extPtr
	return mb, i, nil
}

func parseMultiPartExtension(p []byte, offset int, q Quirks) (ext MultiPartExtension, n int, err error) {
	if len(p) == 0 || p[0] != ' ' {
		return MultiPartExtension{}, 0, nil
	}
	spn, _ := sp(p, offset)
	i := spn
	params, pn, err := parseBodyFieldParamList(p[i:], offset+i, q)
	if err != nil {
		if IsIncomplete(err) {
			return MultiPartExtension{}, 0, err
		}
		return MultiPartExtension{}, 0, nil
	}
	ext.Params = params
	i += pn

	if i >= len(p) || p[i] != ' ' {
		return ext, i, nil
	}
	spn2, _ := sp(p[i:], offset+i)
	j := i + spn2
	disp, dn, ok, err := parseDisposition(p[j:], offset+j, q)
	if err != nil {
		if IsIncomplete(err) {
			return MultiPartExtension{}, 0, err
		}
		return ext, i, nil
	}
	if !ok {
		return ext, i, nil
	}
	ext.Disposition = disp
	i = j + dn

	if i >= len(p) || p[i] != ' ' {
		return ext, i, nil
	}
	spn3, _ := sp(p[i:], offset+i)
	j = i + spn3
	lang, ln, ok, err := parseBodyLanguage(p[j:], offset+j, q)
	if err != nil {
		if IsIncomplete(err) {
			return MultiPartExtension{}, 0, err
		}
		return ext, i, nil
	}
	if !ok {
		return ext, i, nil
	}
	ext.Language = lang
	i = j + ln

	if i >= len(p) || p[i] != ' ' {
		return ext, i, nil
	}
	spn4, _ := sp(p[i:], offset+i)
	j = i + spn4
	loc, locn, err := parseNString(p[j:], offset+j, q, 0)
	if err != nil {
		if IsIncomplete(err) {
			return MultiPartExtension{}, 0, err
		}
		return ext, i, nil
	}
	ext.Location = &loc
	i = j + locn
	return ext, i, nil
}

// parseEnvelope lexes `envelope = "(" env-date SP env-subject SP
// env-from SP env-sender SP env-reply-to SP env-to SP env-cc SP env-bcc
// SP env-in-reply-to SP env-message-id ")"`.
func parseEnvelope(p []byte, offset int, q Quirks) (env Envelope, n int, err error) {
	if len(p) == 0 || p[0] != '(' {
		if len(p) == 0 {
			return Envelope{}, 0, errIncomplete
		}
		return Envelope{}, 0, malformed(CategoryCharacterClass, offset, "expected '(' opening envelope")
	}
	i := 1
	fields := []*NString{&env.Date, &env.Subject}
	for _, f := range fields {
		v, vn, err := parseNString(p[i:], offset+i, q, 0)
		if err != nil {
			return Envelope{}, 0, err
		}
		*f = v
		i += vn
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return Envelope{}, 0, err
		}
		i += spn
	}
	addrLists := []*[]Address{&env.From, &env.Sender, &env.ReplyTo, &env.To, &env.Cc, &env.Bcc}
	for idx, f := range addrLists {
		v, vn, err := parseAddressList(p[i:], offset+i, q)
		if err != nil {
			return Envelope{}, 0, err
		}
		*f = v
		i += vn
		if idx < len(addrLists)-1 {
			spn, err := sp(p[i:], offset+i)
			if err != nil {
				return Envelope{}, 0, err
			}
			i += spn
		}
	}
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return Envelope{}, 0, err
	}
	i += spn
	inReplyTo, irn, err := parseNString(p[i:], offset+i, q, 0)
	if err != nil {
		return Envelope{}, 0, err
	}
	env.InReplyTo = inReplyTo
	i += irn
	spn2, err := sp(p[i:], offset+i)
	if err != nil {
		return Envelope{}, 0, err
	}
	i += spn2
	msgID, mn, err := parseNString(p[i:], offset+i, q, 0)
	if err != nil {
		return Envelope{}, 0, err
	}
	env.MessageID = msgID
	i += mn
	if i >= len(p) {
		return Envelope{}, 0, errIncomplete
	}
	if p[i] != ')' {
		return Envelope{}, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing envelope")
	}
	return env, i + 1, nil
}

func parseAddressList(p []byte, offset int, q Quirks) (addrs []Address, n int, err error) {
	isNil, nn, err := parseNilOrParen(p, offset)
	if err != nil {
		return nil, 0, err
	}
	if isNil {
		return nil, nn, nil
	}
	i := 1
	for {
		a, an, err := parseAddress(p[i:], offset+i, q)
		if err != nil {
			return nil, 0, err
		}
		addrs = append(addrs, a)
		i += an
		if i < len(p) && p[i] == '(' {
			continue
		}
		break
	}
	if i >= len(p) {
		return nil, 0, errIncomplete
	}
	if p[i] != ')' {
		return nil, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing address list")
	}
	return addrs, i + 1, nil
}

func parseAddress(p []byte, offset int, q Quirks) (a Address, n int, err error) {
	if len(p) == 0 || p[0] != '(' {
		if len(p) == 0 {
			return Address{}, 0, errIncomplete
		}
		return Address{}, 0, malformed(CategoryCharacterClass, offset, "expected '(' opening address")
	}
	i := 1
	fields := []*NString{&a.Name, &a.ADL, &a.Mailbox, &a.Host}
	for idx, f := range fields {
		v, vn, err := parseNString(p[i:], offset+i, q, 0)
		if err != nil {
			return Address{}, 0, err
		}
		*f = v
		i += vn
		if idx < len(fields)-1 {
			spn, err := sp(p[i:], offset+i)
			if err != nil {
				return Address{}, 0, err
			}
			i += spn
		}
	}
	if i >= len(p) {
		return Address{}, 0, errIncomplete
	}
	if p[i] != ')' {
		return Address{}, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing address")
	}
	return a, i + 1, nil
}

// ---------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------

func EncodeBodyStructure(bs BodyStructure) []byte {
	var buf bytes.Buffer
	buf.WriteByte('(')
	if bs.Multi != nil {
		encodeMultiBody(&buf, *bs.Multi)
	} else if bs.Single != nil {
		encodeSingleBody(&buf, *bs.Single)
	}
	buf.WriteByte(')')
	return buf.Bytes()
}

func encodeBodyFieldParams(buf *bytes.Buffer, params []Param) {
	if params == nil {
		buf.WriteString("NIL")
		return
	}
	buf.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.Write(encodeIString(p.Name))
		buf.WriteByte(' ')
		buf.Write(encodeIString(p.Value))
	}
	buf.WriteByte(')')
}

func encodeBodyFields(buf *bytes.Buffer, bf BodyFields) {
	encodeBodyFieldParams(buf, bf.Params)
	buf.WriteByte(' ')
	buf.Write(encodeNString(bf.ID))
	buf.WriteByte(' ')
	buf.Write(encodeNString(bf.Description))
	buf.WriteByte(' ')
	buf.Write(encodeIString(bf.Encoding))
	buf.WriteByte(' ')
	buf.Write(formatNumber(bf.Octets))
}

func encodeSingleBody(buf *bytes.Buffer, sb SingleBody) {
	switch sb.Specific.Kind {
	case SpecificMessage:
		buf.WriteString(`"MESSAGE" "RFC822" `)
		encodeBodyFields(buf, sb.Fields)
		buf.WriteByte(' ')
		buf.Write(EncodeEnvelope(*sb.Specific.Envelope))
		buf.WriteByte(' ')
		buf.Write(EncodeBodyStructure(*sb.Specific.BodyStructure))
		buf.WriteByte(' ')
		buf.Write(formatNumber(sb.Specific.Lines))
	case SpecificText:
		buf.WriteString(`"TEXT" `)
		buf.Write(encodeIString(sb.Specific.Subtype))
		buf.WriteByte(' ')
		encodeBodyFields(buf, sb.Fields)
		buf.WriteByte(' ')
		buf.Write(formatNumber(sb.Specific.Lines))
	default:
		buf.Write(encodeAString(sb.Specific.Type))
		buf.WriteByte(' ')
		buf.Write(encodeIString(sb.Specific.Subtype))
		buf.WriteByte(' ')
		encodeBodyFields(buf, sb.Fields)
	}
	if sb.Extension != nil {
		buf.WriteByte(' ')
		encodeSinglePartExtension(buf, *sb.Extension)
	}
}

func encodeMultiBody(buf *bytes.Buffer, mb MultiBody) {
	for _, b := range mb.Bodies {
		buf.Write(EncodeBodyStructure(b))
	}
	buf.WriteByte(' ')
	buf.Write(encodeIString(mb.Subtype))
	if mb.Extension != nil {
		buf.WriteByte(' ')
		encodeMultiPartExtension(buf, *mb.Extension)
	}
}

func encodeSinglePartExtension(buf *bytes.Buffer, ext SinglePartExtension) {
	buf.Write(encodeNString(ext.MD5))
	if ext.Disposition == nil && ext.Language == nil && ext.Location == nil {
		return
	}
	buf.WriteByte(' ')
	encodeDisposition(buf, ext.Disposition)
	if ext.Language == nil && ext.Location == nil {
		return
	}
	buf.WriteByte(' ')
	encodeLanguage(buf, ext.Language)
	if ext.Location == nil {
		return
	}
	buf.WriteByte(' ')
	buf.Write(encodeNString(*ext.Location))
}

func encodeMultiPartExtension(buf *bytes.Buffer, ext MultiPartExtension) {
	encodeBodyFieldParams(buf, ext.Params)
	if ext.Disposition == nil && ext.Language == nil && ext.Location == nil {
		return
	}
	buf.WriteByte(' ')
	encodeDisposition(buf, ext.Disposition)
	if ext.Language == nil && ext.Location == nil {
		return
	}
	buf.WriteByte(' ')
	encodeLanguage(buf, ext.Language)
	if ext.Location == nil {
		return
	}
	buf.WriteByte(' ')
	buf.Write(encodeNString(*ext.Location))
}

func encodeDisposition(buf *bytes.Buffer, d *Disposition) {
	if d == nil {
		buf.WriteString("NIL")
		return
	}
	buf.WriteByte('(')
	buf.Write(encodeIString(d.Type))
	buf.WriteByte(' ')
	encodeBodyFieldParams(buf, d.Params)
	buf.WriteByte(')')
}

func encodeLanguage(buf *bytes.Buffer, langs []AString) {
	if langs == nil {
		buf.WriteString("NIL")
		return
	}
	if len(langs) == 1 {
		buf.Write(encodeAString(langs[0]))
		return
	}
	buf.WriteByte('(')
	for i, l := range langs {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.Write(encodeAString(l))
	}
	buf.WriteByte(')')
}

func EncodeEnvelope(e Envelope) []byte {
	var buf bytes.Buffer
	buf.WriteByte('(')
	buf.Write(encodeNString(e.Date))
	buf.WriteByte(' ')
	buf.Write(encodeNString(e.Subject))
	for _, list := range [][]Address{e.From, e.Sender, e.ReplyTo, e.To, e.Cc, e.Bcc} {
		buf.WriteByte(' ')
		encodeAddressList(&buf, list)
	}
	buf.WriteByte(' ')
	buf.Write(encodeNString(e.InReplyTo))
	buf.WriteByte(' ')
	buf.Write(encodeNString(e.MessageID))
	buf.WriteByte(')')
	return buf.Bytes()
}

func encodeAddressList(buf *bytes.Buffer, addrs []Address) {
	if addrs == nil {
		buf.WriteString("NIL")
		return
	}
	buf.WriteByte('(')
	for _, a := range addrs {
		buf.WriteByte('(')
		buf.Write(encodeNString(a.Name))
		buf.WriteByte(' ')
		buf.Write(encodeNString(a.ADL))
		buf.WriteByte(' ')
		buf.Write(encodeNString(a.Mailbox))
		buf.WriteByte(' ')
		buf.Write(encodeNString(a.Host))
		buf.WriteByte(')')
	}
	buf.WriteByte(')')
}
