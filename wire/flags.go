package wire

import "bytes"

var systemFlagNames = map[string]FlagKind{
	"ANSWERED": FlagSystemAnswered,
	"FLAGGED":  FlagSystemFlagged,
	"DELETED":  FlagSystemDeleted,
	"SEEN":     FlagSystemSeen,
	"DRAFT":    FlagSystemDraft,
}

var systemFlagAtom = map[FlagKind]string{
	FlagSystemAnswered: "Answered",
	FlagSystemFlagged:  "Flagged",
	FlagSystemDeleted:  "Deleted",
	FlagSystemSeen:     "Seen",
	FlagSystemDraft:    "Draft",
	FlagRecent:         "Recent",
}

// parseFlag lexes `flag = "\Answered" / "\Flagged" / "\Deleted" / "\Seen" /
// "\Draft" / flag-keyword / flag-extension`, mirroring
// imapparser.Scanner.readFlag.
func parseFlag(p []byte, offset int, q Quirks) (value Flag, n int, err error) {
	if len(p) == 0 {
		return Flag{}, 0, errIncomplete
	}
	if p[0] != '\\' {
		name, an, err := atom(p, offset)
		if err != nil {
			return Flag{}, 0, err
		}
		return Flag{Name: Atom(name), Kind: FlagKeyword}, an, nil
	}
	name, an, err := atom(p[1:], offset+1)
	if err != nil {
		return Flag{}, 0, err
	}
	n = an + 1
	upper := string(asciiUpper(name))
	if upper == "RECENT" {
		return Flag{Name: Atom(name), Kind: FlagRecent}, n, nil
	}
	if kind, ok := systemFlagNames[upper]; ok {
		return Flag{Name: Atom(name), Kind: kind}, n, nil
	}
	return Flag{Name: Atom(name), Kind: FlagExtension}, n, nil
}

// parseFlagPerm lexes `flag-perm = flag / "\*"`.
func parseFlagPerm(p []byte, offset int, q Quirks) (value FlagPerm, n int, err error) {
	if len(p) >= 2 && p[0] == '\\' && p[1] == '*' {
		return FlagPerm{AnyKeyword: true}, 2, nil
	}
	if len(p) == 1 && p[0] == '\\' {
		return FlagPerm{}, 0, errIncomplete
	}
	f, fn, err := parseFlag(p, offset, q)
	if err != nil {
		return FlagPerm{}, 0, err
	}
	return FlagPerm{Flag: &f}, fn, nil
}

// EncodeFlag writes system flags and \Recent in their canonical
// capitalization (e.g. \Seen) and uppercases keywords and extension
// flags, matching the teacher's asciiUpper convention for wire output.
func EncodeFlag(f Flag) []byte {
	switch f.Kind {
	case FlagRecent:
		return []byte(`\Recent`)
	case FlagSystemAnswered, FlagSystemFlagged, FlagSystemDeleted, FlagSystemSeen, FlagSystemDraft:
		return append([]byte{'\\'}, systemFlagAtom[f.Kind]...)
	case FlagExtension:
		return append([]byte{'\\'}, asciiUpper(f.Name)...)
	default: // FlagKeyword
		return asciiUpper(f.Name)
	}
}

func EncodeFlagPerm(f FlagPerm) []byte {
	if f.AnyKeyword {
		return []byte(`\*`)
	}
	return EncodeFlag(*f.Flag)
}

func EncodeFlagList(flags []Flag) []byte {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, f := range flags {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.Write(EncodeFlag(f))
	}
	buf.WriteByte(')')
	return buf.Bytes()
}

// MbxListOFlag is the single optional "\Noinferiors" mailbox-list flag.
type MbxListOFlag int

const (
	OFlagNone MbxListOFlag = iota
	OFlagNoinferiors
)

// MbxListSFlag is the single-valued selectability flag:
// "\Noselect" / "\Marked" / "\Unmarked".
type MbxListSFlag int

const (
	SFlagNone MbxListSFlag = iota
	SFlagNoselect
	SFlagMarked
	SFlagUnmarked
)

// MbxListFlags is `mbx-list-flags`, per RFC 3501 ABNF a set of
// OFlags followed by an optional single SFlag (or vice versa); this
// codec keeps OFlags before the mandatory single SFlag if present, as
// spec.md §4.4 directs.
type MbxListFlags struct {
	Extensions []Atom // \Extension flags not in the closed O/S sets
	OFlag      MbxListOFlag
	SFlag      MbxListSFlag
}

var sFlagNames = map[string]MbxListSFlag{
	"NOSELECT": SFlagNoselect,
	"MARKED":   SFlagMarked,
	"UNMARKED": SFlagUnmarked,
}

// parseMbxListFlags lexes the space-separated flag-list content between
// the "(" ")" of `mailbox-list`.
func parseMbxListFlags(p []byte, offset int) (value MbxListFlags, n int, err error) {
	var out MbxListFlags
	i := 0
	first := true
	for {
		if !first {
			if i < len(p) && p[i] == ' ' {
				spn, err := sp(p[i:], offset+i)
				if err != nil {
					return MbxListFlags{}, 0, err
				}
				i += spn
			} else {
				break
			}
		}
		if i >= len(p) || p[i] != '\\' {
			if first {
				break
			}
			return MbxListFlags{}, 0, malformed(CategoryCharacterClass, offset+i, "expected mailbox-list flag after SP")
		}
		name, an, err := atom(p[i+1:], offset+i+1)
		if err != nil {
			return MbxListFlags{}, 0, err
		}
		upper := string(asciiUpper(name))
		switch {
		case upper == "NOINFERIORS":
			out.OFlag = OFlagNoinferiors
		case sFlagNames[upper] != 0:
			out.SFlag = sFlagNames[upper]
		default:
			out.Extensions = append(out.Extensions, Atom(name))
		}
		i += 1 + an
		first = false
	}
	return out, i, nil
}

func EncodeMbxListFlags(f MbxListFlags) []byte {
	var parts [][]byte
	if f.OFlag == OFlagNoinferiors {
		parts = append(parts, []byte(`\Noinferiors`))
	}
	for _, ext := range f.Extensions {
		parts = append(parts, append([]byte{'\\'}, ext...))
	}
	switch f.SFlag {
	case SFlagNoselect:
		parts = append(parts, []byte(`\Noselect`))
	case SFlagMarked:
		parts = append(parts, []byte(`\Marked`))
	case SFlagUnmarked:
		parts = append(parts, []byte(`\Unmarked`))
	}
	return bytes.Join(parts, []byte(" "))
}
