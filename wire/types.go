// Package wire implements an IMAP4rev1 (RFC 3501) wire-format codec: a
// bidirectional transformation between a typed abstract syntax tree of
// IMAP messages and their on-the-wire byte representation.
//
// The package is organized the way imapparser.Scanner/Parser organizes
// the command grammar, generalized to also parse (not just encode) the
// response/greeting/continuation grammar a server emits. See DESIGN.md
// for the mapping from each file to the corresponding grammar component.
package wire

import "time"

// Atom is one-or-more ATOM-CHAR bytes: printable ASCII excluding the
// atom-specials. Validated at construction.
type Atom []byte

// Tag is an atom-like command identifier; like Atom but also excludes '+'.
type Tag []byte

// Quoted is a quoted string's content (the bytes between the
// surrounding DQUOTEs, already unescaped): arbitrary text excluding '"',
// '\\', CR and LF.
type Quoted []byte

// Literal is a literal string's payload: arbitrary bytes, including NUL
// and CRLF, framed on the wire as "{N}\r\n" followed by N bytes.
type Literal []byte

// IString is `string = quoted / literal`.
type IString struct {
	Lit  *Literal
	Quot *Quoted
}

// NewIString picks the canonical representation for value: quoted if
// every byte is a valid QUOTED-CHAR, literal otherwise. This is the
// construction-time canonicalization spec.md §4.10 describes; it is
// applied once, at construction, not re-derived at encode time so that
// a value the parser produced from a literal stays a literal through a
// round trip.
func NewIString(value []byte) IString {
	if isQuotable(value) {
		q := Quoted(value)
		return IString{Quot: &q}
	}
	l := Literal(value)
	return IString{Lit: &l}
}

func isQuotable(value []byte) bool {
	for _, b := range value {
		switch b {
		case '"', '\\', '\r', '\n', 0:
			return false
		}
		if !is7BitPrint(b) {
			return false
		}
	}
	return true
}

// Value returns the string's raw content regardless of representation.
func (s IString) Value() []byte {
	if s.Quot != nil {
		return []byte(*s.Quot)
	}
	if s.Lit != nil {
		return []byte(*s.Lit)
	}
	return nil
}

// NString is `nstring = NIL / string`.
type NString struct {
	Str *IString
}

func NilNString() NString           { return NString{} }
func SomeNString(s IString) NString { return NString{Str: &s} }

// AString is `astring = 1*ASTRING-CHAR / string`. Raw carries the bytes
// when the unquoted astring-token form was used; Str carries them when
// a quoted/literal string was used. Exactly one is set.
type AString struct {
	Raw Atom
	Str *IString
}

// Value returns the astring's raw content regardless of representation.
func (a AString) Value() []byte {
	if a.Str != nil {
		return a.Str.Value()
	}
	return []byte(a.Raw)
}

// Mailbox is `mailbox = "INBOX" / astring`, with case-insensitive
// folding of any case variant of "INBOX" into the Inbox variant.
type Mailbox struct {
	Inbox bool
	Other AString
}

// NewMailbox folds a into the Inbox variant when its bytes are a
// case-insensitive match for "INBOX".
func NewMailbox(a AString) Mailbox {
	v := a.Value()
	if len(v) == 5 && asciiEqualFold(v, []byte("INBOX")) {
		return Mailbox{Inbox: true}
	}
	return Mailbox{Other: a}
}

// Name returns the mailbox's raw byte name, "INBOX" uppercased by
// convention for the folded variant.
func (m Mailbox) Name() []byte {
	if m.Inbox {
		return []byte("INBOX")
	}
	return m.Other.Value()
}

// SeqRange is a seq-range: Min/Max preserve authored order
// (unlike imapparser.SeqRange, which always normalizes Min <= Max) so
// the encoder can round-trip "5:3" the way it was written. A value of 0
// is the placeholder for '*' (seq-number "largest").
type SeqRange struct {
	Min, Max uint32 // 0 means '*'
}

// Single reports whether r names exactly one sequence number.
func (r SeqRange) Single() bool { return r.Min == r.Max }

// QuotedChar is a single DQUOTE QUOTED-CHAR DQUOTE value used as a
// mailbox-list hierarchy delimiter.
type QuotedChar byte

// FlagKind distinguishes the closed set of system flags from
// extension/keyword atoms and the response-only \Recent flag.
type FlagKind int

const (
	FlagSystemSeen FlagKind = iota
	FlagSystemAnswered
	FlagSystemFlagged
	FlagSystemDeleted
	FlagSystemDraft
	FlagRecent // response-only
	FlagKeyword
	FlagExtension // backslash-atom not in the system set
)

// Flag is `flag = "\Answered" / "\Flagged" / "\Deleted" / "\Seen" /
// "\Draft" / flag-keyword / flag-extension`.
type Flag struct {
	Name Atom // the raw atom, e.g. "Seen" or a keyword/extension name
	Kind FlagKind
}

// FlagPerm additionally permits the literal wildcard flag "\*"
// (`flag-perm = flag / "\*"`), meaning the client may define new
// keywords.
type FlagPerm struct {
	Flag      *Flag
	AnyKeyword bool // "\*"
}

// DateTime is the IMAP date-time / date used by INTERNALDATE and
// SEARCH date keys.
type DateTime struct {
	time.Time
}
