package wire

import "bytes"

// DataKind is the closed set of untagged `mailbox-data` / `message-data`
// / extension-data variants this codec parses.
type DataKind int

const (
	DataCapability DataKind = iota
	DataList
	DataLsub
	DataStatus
	DataFlags
	DataSearch
	DataExists
	DataRecent
	DataExpunge
	DataFetch
	DataEnabled
	DataQuota
	DataQuotaRoot
)

// Data is an untagged server data response.
type Data struct {
	Kind DataKind

	Capabilities []Atom // DataCapability

	// DataList, DataLsub
	ListFlags MbxListFlags
	Delimiter *QuotedChar
	Mailbox   Mailbox

	// DataStatus
	StatusMailbox Mailbox
	StatusItems   []StatusAttr

	Flags []Flag // DataFlags

	Search []uint32 // DataSearch, nz-numbers

	Number uint32 // DataExists, DataRecent, DataExpunge (Expunge is nz-number)

	// DataFetch
	FetchSeq   uint32
	FetchItems []FetchAttributeValue

	Enabled []Atom // DataEnabled

	// DataQuota
	QuotaRoot    AString
	QuotaTriples []QuotaTriple

	// DataQuotaRoot
	QuotaRootMailbox Mailbox
	QuotaRootNames   []AString
}

// QuotaTriple is RFC 2087 `resource-name SP current SP limit`.
type QuotaTriple struct {
	Resource Atom
	Current  uint32
	Limit    uint32
}

// StatusAttrKind is the closed set of STATUS response items.
type StatusAttrKind int

const (
	StatusMessages StatusAttrKind = iota
	StatusRecentCount
	StatusUIDNextItem
	StatusUIDValidityItem
	StatusUnseenItem
	StatusHighestModSeq
)

type StatusAttr struct {
	Kind  StatusAttrKind
	Value uint32
}

var statusAttrNames = map[string]StatusAttrKind{
	"MESSAGES":       StatusMessages,
	"RECENT":         StatusRecentCount,
	"UIDNEXT":        StatusUIDNextItem,
	"UIDVALIDITY":    StatusUIDValidityItem,
	"UNSEEN":         StatusUnseenItem,
	"HIGHESTMODSEQ":  StatusHighestModSeq,
}

func parseStatusAttList(p []byte, offset int, q Quirks) (items []StatusAttr, n int, err error) {
	i := 0
	for {
		kw, kn, err := atom(p[i:], offset+i)
		if err != nil {
			return nil, 0, err
		}
		kind, ok := statusAttrNames[string(asciiUpper(kw))]
		if !ok {
			return nil, 0, malformed(CategoryCharacterClass, offset+i, "unknown status-att %q", kw)
		}
		i += kn
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return nil, 0, err
		}
		i += spn
		v, vn, err := number(p[i:], offset+i, q)
		if err != nil {
			return nil, 0, err
		}
		i += vn
		items = append(items, StatusAttr{Kind: kind, Value: v})
		if i < len(p) && p[i] == ' ' {
			i++
			continue
		}
		break
	}
	return items, i, nil
}

// parseMailboxList lexes `mailbox-list = "(" [mbx-list-flags] ")" SP
// (DQUOTE QUOTED-CHAR DQUOTE / nil) SP mailbox`.
func parseMailboxList(p []byte, offset int, q Quirks, maxLen uint32) (flags MbxListFlags, delim *QuotedChar, mbox Mailbox, n int, err error) {
	if len(p) == 0 || p[0] != '(' {
		if len(p) == 0 {
			return MbxListFlags{}, nil, Mailbox{}, 0, errIncomplete
		}
		return MbxListFlags{}, nil, Mailbox{}, 0, malformed(CategoryCharacterClass, offset, "expected '(' in mailbox-list")
	}
	i := 1
	flags, fn, err := parseMbxListFlags(p[i:], offset+i)
	if err != nil {
		return MbxListFlags{}, nil, Mailbox{}, 0, err
	}
	i += fn
	if i >= len(p) {
		return MbxListFlags{}, nil, Mailbox{}, 0, errIncomplete
	}
	if p[i] != ')' {
		return MbxListFlags{}, nil, Mailbox{}, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing mailbox-list flags")
	}
	i++
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return MbxListFlags{}, nil, Mailbox{}, 0, err
	}
	i += spn
	if i >= len(p) {
		return MbxListFlags{}, nil, Mailbox{}, 0, errIncomplete
	}
	switch {
	case hasCIPrefix(p[i:], "NIL"):
		i += 3
	case p[i] == '"':
		qc, qn, err := quotedChar(p[i+1:], offset+i+1)
		if err != nil {
			return MbxListFlags{}, nil, Mailbox{}, 0, err
		}
		if i+1+qn >= len(p) {
			return MbxListFlags{}, nil, Mailbox{}, 0, errIncomplete
		}
		if p[i+1+qn] != '"' {
			return MbxListFlags{}, nil, Mailbox{}, 0, malformed(CategoryCharacterClass, offset+i+1+qn, "unterminated delimiter quote")
		}
		d := QuotedChar(qc)
		delim = &d
		i = i + 1 + qn + 1
	default:
		return MbxListFlags{}, nil, Mailbox{}, 0, malformed(CategoryCharacterClass, offset+i, "expected NIL or quoted delimiter")
	}
	spn2, err := sp(p[i:], offset+i)
	if err != nil {
		return MbxListFlags{}, nil, Mailbox{}, 0, err
	}
	i += spn2
	mbox, mn, err := parseMailbox(p[i:], offset+i, q, maxLen)
	if err != nil {
		return MbxListFlags{}, nil, Mailbox{}, 0, err
	}
	i += mn
	return flags, delim, mbox, i, nil
}

// parseMailboxData lexes the keyword-first forms of `mailbox-data`
// (FLAGS/LIST/LSUB/SEARCH/STATUS). EXISTS/RECENT and the RFC 2087
// QUOTA/QUOTAROOT data are parsed elsewhere.
func parseMailboxData(p []byte, offset int, q Quirks, maxLen uint32) (d Data, n int, ok bool, err error) {
	switch {
	case hasCIPrefix(p, "FLAGS"):
		i := 5
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += spn
		flags, fn, err := parseFlagListParen(p[i:], offset+i, q)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += fn
		return Data{Kind: DataFlags, Flags: flags}, i, true, nil
	case hasCIPrefix(p, "LIST"):
		return parseListOrLsub(p, offset, q, maxLen, DataList, 4)
	case hasCIPrefix(p, "LSUB"):
		return parseListOrLsub(p, offset, q, maxLen, DataLsub, 4)
	case hasCIPrefix(p, "SEARCH"):
		i := 6
		var nums []uint32
		for i < len(p) && p[i] == ' ' {
			spn, err := sp(p[i:], offset+i)
			if err != nil {
				return Data{}, 0, false, err
			}
			v, vn, err := nzNumber(p[i+spn:], offset+i+spn, q)
			if err != nil {
				return Data{}, 0, false, err
			}
			nums = append(nums, v)
			i += spn + vn
		}
		return Data{Kind: DataSearch, Search: nums}, i, true, nil
	case hasCIPrefix(p, "STATUS"):
		i := 6
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += spn
		mbox, mn, err := parseMailbox(p[i:], offset+i, q, maxLen)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += mn
		spn2, err := sp(p[i:], offset+i)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += spn2
		if i >= len(p) {
			return Data{}, 0, false, errIncomplete
		}
		if p[i] != '(' {
			return Data{}, 0, false, malformed(CategoryCharacterClass, offset+i, "expected '(' in STATUS data")
		}
		i++
		var items []StatusAttr
		if i < len(p) && p[i] != ')' {
			its, in, err := parseStatusAttList(p[i:], offset+i, q)
			if err != nil {
				return Data{}, 0, false, err
			}
			items = its
			i += in
		}
		if i >= len(p) {
			return Data{}, 0, false, errIncomplete
		}
		if p[i] != ')' {
			return Data{}, 0, false, malformed(CategoryCharacterClass, offset+i, "expected ')' closing STATUS data")
		}
		i++
		return Data{Kind: DataStatus, StatusMailbox: mbox, StatusItems: items}, i, true, nil
	}
	return Data{}, 0, false, nil
}

func parseListOrLsub(p []byte, offset int, q Quirks, maxLen uint32, kind DataKind, kwLen int) (d Data, n int, ok bool, err error) {
	i := kwLen
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return Data{}, 0, false, err
	}
	i += spn
	flags, delim, mbox, ln, err := parseMailboxList(p[i:], offset+i, q, maxLen)
	if err != nil {
		return Data{}, 0, false, err
	}
	i += ln
	return Data{Kind: kind, ListFlags: flags, Delimiter: delim, Mailbox: mbox}, i, true, nil
}

func parseFlagListParen(p []byte, offset int, q Quirks) (flags []Flag, n int, err error) {
	if len(p) == 0 || p[0] != '(' {
		if len(p) == 0 {
			return nil, 0, errIncomplete
		}
		return nil, 0, malformed(CategoryCharacterClass, offset, "expected '(' in flag-list")
	}
	i := 1
	if i < len(p) && p[i] != ')' {
		for {
			f, fn, err := parseFlag(p[i:], offset+i, q)
			if err != nil {
				return nil, 0, err
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
		return nil, 0, errIncomplete
	}
	if p[i] != ')' {
		return nil, 0, malformed(CategoryCharacterClass, offset+i, "expected ')' closing flag-list")
	}
	i++
	return flags, i, nil
}

// parseNumberedData lexes `number SP ("EXISTS" / "RECENT")` and
// `nz-number SP ("EXPUNGE" / ("FETCH" SP msg-att))`.
func parseNumberedData(p []byte, offset int, q Quirks) (d Data, n int, ok bool, err error) {
	v, vn, err := number(p, offset, q)
	if err != nil {
		if IsIncomplete(err) {
			return Data{}, 0, false, errIncomplete
		}
		return Data{}, 0, false, nil
	}
	i := vn
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return Data{}, 0, false, err
	}
	i += spn
	switch {
	case hasCIPrefix(p[i:], "EXISTS"):
		return Data{Kind: DataExists, Number: v}, i + 6, true, nil
	case hasCIPrefix(p[i:], "RECENT"):
		return Data{Kind: DataRecent, Number: v}, i + 6, true, nil
	case hasCIPrefix(p[i:], "EXPUNGE"):
		if v == 0 {
			return Data{}, 0, false, malformed(CategoryOverflow, offset, "EXPUNGE seq must be nz-number")
		}
		return Data{Kind: DataExpunge, Number: v}, i + 7, true, nil
	case hasCIPrefix(p[i:], "FETCH"):
		if v == 0 {
			return Data{}, 0, false, malformed(CategoryOverflow, offset, "FETCH seq must be nz-number")
		}
		j := i + 5
		spn2, err := sp(p[j:], offset+j)
		if err != nil {
			return Data{}, 0, false, err
		}
		j += spn2
		items, jn, err := parseMsgAtt(p[j:], offset+j, q)
		if err != nil {
			return Data{}, 0, false, err
		}
		j += jn
		return Data{Kind: DataFetch, FetchSeq: v, FetchItems: items}, j, true, nil
	}
	if _, incomplete := ciPrefixCouldMatch(p[i:], "EXISTS", "RECENT", "EXPUNGE", "FETCH"); incomplete {
		return Data{}, 0, false, errIncomplete
	}
	return Data{}, 0, false, nil
}

// parseEnableData lexes RFC 5161 `enable-data = "ENABLED" *(SP capability)`.
func parseEnableData(p []byte, offset int, q Quirks) (d Data, n int, ok bool, err error) {
	m, mn, merr := matchKeyword(p, offset, "ENABLED")
	if merr != nil {
		if IsIncomplete(merr) {
			return Data{}, 0, false, errIncomplete
		}
		return Data{}, 0, false, nil
	}
	_ = m
	i := mn
	var caps []Atom
	for i < len(p) && p[i] == ' ' {
		spn, err := sp(p[i:], offset+i)
		if err != nil {
			return Data{}, 0, false, err
		}
		a, an, err := atom(p[i+spn:], offset+i+spn)
		if err != nil {
			return Data{}, 0, false, err
		}
		caps = append(caps, Atom(a))
		i += spn + an
	}
	return Data{Kind: DataEnabled, Enabled: caps}, i, true, nil
}

// parseQuotaData lexes RFC 2087 `quota-response = "QUOTA" SP astring SP
// quota-list`, `quota-list = "(" *quota-resource ")"`,
// `quota-resource = atom SP number SP number`.
func parseQuotaData(p []byte, offset int, q Quirks, maxLen uint32) (d Data, n int, ok bool, err error) {
	m, mn, merr := matchKeyword(p, offset, "QUOTA")
	if merr != nil {
		if IsIncomplete(merr) {
			return Data{}, 0, false, errIncomplete
		}
		return Data{}, 0, false, nil
	}
	_ = m
	i := mn
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return Data{}, 0, false, err
	}
	i += spn
	root, rn, err := parseAString(p[i:], offset+i, q, maxLen)
	if err != nil {
		return Data{}, 0, false, err
	}
	i += rn
	spn2, err := sp(p[i:], offset+i)
	if err != nil {
		return Data{}, 0, false, err
	}
	i += spn2
	if i >= len(p) {
		return Data{}, 0, false, errIncomplete
	}
	if p[i] != '(' {
		return Data{}, 0, false, malformed(CategoryCharacterClass, offset+i, "expected '(' in quota-list")
	}
	i++
	var triples []QuotaTriple
	for i < len(p) && p[i] != ')' {
		res, resn, err := atom(p[i:], offset+i)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += resn
		spn3, err := sp(p[i:], offset+i)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += spn3
		cur, curn, err := number(p[i:], offset+i, q)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += curn
		spn4, err := sp(p[i:], offset+i)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += spn4
		lim, limn, err := number(p[i:], offset+i, q)
		if err != nil {
			return Data{}, 0, false, err
		}
		i += limn
		triples = append(triples, QuotaTriple{Resource: Atom(res), Current: cur, Limit: lim})
		if i < len(p) && p[i] == ' ' {
			i++
			continue
		}
		break
	}
	if i >= len(p) {
		return Data{}, 0, false, errIncomplete
	}
	if p[i] != ')' {
		return Data{}, 0, false, malformed(CategoryCharacterClass, offset+i, "expected ')' closing quota-list")
	}
	i++
	return Data{Kind: DataQuota, QuotaRoot: root, QuotaTriples: triples}, i, true, nil
}

// parseQuotaRootData lexes RFC 2087
// `quotaroot-response = "QUOTAROOT" SP mailbox *(SP astring)`.
func parseQuotaRootData(p []byte, offset int, q Quirks, maxLen uint32) (d Data, n int, ok bool, err error) {
	m, mn, merr := matchKeyword(p, offset, "QUOTAROOT")
	if merr != nil {
		if IsIncomplete(merr) {
			return Data{}, 0, false, errIncomplete
		}
		return Data{}, 0, false, nil
	}
	_ = m
	i := mn
	spn, err := sp(p[i:], offset+i)
	if err != nil {
		return Data{}, 0, false, err
	}
	i += spn
	mbox, mbn, err := parseMailbox(p[i:], offset+i, q, maxLen)
	if err != nil {
		return Data{}, 0, false, err
	}
	i += mbn
	var roots []AString
	for i < len(p) && p[i] == ' ' {
		spn2, err := sp(p[i:], offset+i)
		if err != nil {
			return Data{}, 0, false, err
		}
		a, an, err := parseAString(p[i+spn2:], offset+i+spn2, q, maxLen)
		if err != nil {
			return Data{}, 0, false, err
		}
		roots = append(roots, a)
		i += spn2 + an
	}
	return Data{Kind: DataQuotaRoot, QuotaRootMailbox: mbox, QuotaRootNames: roots}, i, true, nil
}

// ParseData tries every untagged data alternative in turn.
func ParseData(p []byte, offset int, q Quirks, maxLen uint32) (d Data, n int, err error) {
	if d, dn, ok, err := parseMailboxData(p, offset, q, maxLen); err != nil {
		return Data{}, 0, err
	} else if ok {
		return d, dn, nil
	}
	if d, dn, ok, err := parseNumberedData(p, offset, q); err != nil {
		return Data{}, 0, err
	} else if ok {
		return d, dn, nil
	}
	if caps, cn, err := parseCapabilityData(p, offset); err == nil {
		return Data{Kind: DataCapability, Capabilities: caps}, cn, nil
	} else if IsIncomplete(err) {
		return Data{}, 0, errIncomplete
	}
	if d, dn, ok, err := parseEnableData(p, offset, q); err != nil {
		return Data{}, 0, err
	} else if ok {
		return d, dn, nil
	}
	if d, dn, ok, err := parseQuotaRootData(p, offset, q, maxLen); err != nil {
		return Data{}, 0, err
	} else if ok {
		return d, dn, nil
	}
	if d, dn, ok, err := parseQuotaData(p, offset, q, maxLen); err != nil {
		return Data{}, 0, err
	} else if ok {
		return d, dn, nil
	}
	return Data{}, 0, malformed(CategoryCharacterClass, offset, "unrecognized untagged data")
}

// EncodeData renders d as it would appear after "* " in an untagged line
// (without the leading "* " or trailing CRLF, added by the Response
// encoder).
func EncodeData(d Data) []byte {
	var buf bytes.Buffer
	switch d.Kind {
	case DataCapability:
		buf.WriteString("CAPABILITY")
		for _, c := range d.Capabilities {
			buf.WriteByte(' ')
			buf.Write(c)
		}
	case DataList, DataLsub:
		if d.Kind == DataList {
			buf.WriteString("LIST (")
		} else {
			buf.WriteString("LSUB (")
		}
		buf.Write(EncodeMbxListFlags(d.ListFlags))
		buf.WriteString(") ")
		if d.Delimiter != nil {
			buf.WriteByte('"')
			buf.WriteByte(byte(*d.Delimiter))
			buf.WriteByte('"')
		} else {
			buf.WriteString("NIL")
		}
		buf.WriteByte(' ')
		buf.Write(EncodeMailbox(d.Mailbox))
	case DataStatus:
		buf.WriteString("STATUS ")
		buf.Write(EncodeMailbox(d.StatusMailbox))
		buf.WriteString(" (")
		for i, it := range d.StatusItems {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(encodeStatusAttr(it))
		}
		buf.WriteByte(')')
	case DataFlags:
		buf.WriteString("FLAGS ")
		buf.Write(EncodeFlagList(d.Flags))
	case DataSearch:
		buf.WriteString("SEARCH")
		for _, n := range d.Search {
			buf.WriteByte(' ')
			buf.Write(formatNumber(n))
		}
	case DataExists:
		buf.Write(formatNumber(d.Number))
		buf.WriteString(" EXISTS")
	case DataRecent:
		buf.Write(formatNumber(d.Number))
		buf.WriteString(" RECENT")
	case DataExpunge:
		buf.Write(formatNumber(d.Number))
		buf.WriteString(" EXPUNGE")
	case DataFetch:
		buf.Write(formatNumber(d.FetchSeq))
		buf.WriteString(" FETCH (")
		for i, it := range d.FetchItems {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(EncodeFetchAttributeValue(it))
		}
		buf.WriteByte(')')
	case DataEnabled:
		buf.WriteString("ENABLED")
		for _, c := range d.Enabled {
			buf.WriteByte(' ')
			buf.Write(c)
		}
	case DataQuota:
		buf.WriteString("QUOTA ")
		buf.Write(encodeAString(d.QuotaRoot))
		buf.WriteString(" (")
		for i, t := range d.QuotaTriples {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(t.Resource)
			buf.WriteByte(' ')
			buf.Write(formatNumber(t.Current))
			buf.WriteByte(' ')
			buf.Write(formatNumber(t.Limit))
		}
		buf.WriteByte(')')
	case DataQuotaRoot:
		buf.WriteString("QUOTAROOT ")
		buf.Write(EncodeMailbox(d.QuotaRootMailbox))
		for _, r := range d.QuotaRootNames {
			buf.WriteByte(' ')
			buf.Write(encodeAString(r))
		}
	}
	return buf.Bytes()
}

func encodeStatusAttr(a StatusAttr) []byte {
	var buf bytes.Buffer
	switch a.Kind {
	case StatusMessages:
		buf.WriteString("MESSAGES ")
	case StatusRecentCount:
		buf.WriteString("RECENT ")
	case StatusUIDNextItem:
		buf.WriteString("UIDNEXT ")
	case StatusUIDValidityItem:
		buf.WriteString("UIDVALIDITY ")
	case StatusUnseenItem:
		buf.WriteString("UNSEEN ")
	case StatusHighestModSeq:
		buf.WriteString("HIGHESTMODSEQ ")
	}
	buf.Write(formatNumber(a.Value))
	return buf.Bytes()
}

// EncodeMailbox renders Mailbox, folding Inbox to the canonical "INBOX" atom.
func EncodeMailbox(m Mailbox) []byte {
	if m.Inbox {
		return []byte("INBOX")
	}
	return encodeAString(m.Other)
}

func encodeAString(a AString) []byte {
	if a.Str != nil {
		return encodeIString(*a.Str)
	}
	return a.Raw
}

func encodeIString(s IString) []byte {
	if s.Quot != nil {
		return encodeQuoted(*s.Quot)
	}
	if s.Lit != nil {
		return encodeLiteral(*s.Lit)
	}
	return nil
}

func encodeQuoted(q Quoted) []byte {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, b := range q {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	buf.WriteByte('"')
	return buf.Bytes()
}

func encodeLiteral(l Literal) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.Write(formatNumber(uint32(len(l))))
	buf.WriteString("}\r\n")
	buf.Write(l)
	return buf.Bytes()
}

func encodeNString(s NString) []byte {
	if s.Str == nil {
		return []byte("NIL")
	}
	return encodeIString(*s.Str)
}
