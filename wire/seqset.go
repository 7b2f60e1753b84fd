package wire

import "bytes"

// parseSeqNumber lexes `seq-number = nz-number / "*"`. 0 stands for '*'.
func parseSeqNumber(p []byte, offset int, q Quirks) (value uint32, n int, err error) {
	if len(p) == 0 {
		return 0, 0, errIncomplete
	}
	if p[0] == '*' {
		return 0, 1, nil
	}
	return nzNumber(p, offset, q)
}

// parseSeqRange lexes `seq-number / (seq-number ":" seq-number)`. Either
// endpoint may be '*'; authored order is preserved (the parser does not
// normalize Min <= Max, unlike imapparser.SeqRange, so the encoder can
// round-trip "5:3" exactly as written).
func parseSeqRange(p []byte, offset int, q Quirks) (value SeqRange, n int, err error) {
	first, fn, err := parseSeqNumber(p, offset, q)
	if err != nil {
		return SeqRange{}, 0, err
	}
	i := fn
	if i >= len(p) {
		return SeqRange{Min: first, Max: first}, i, nil
	}
	if p[i] != ':' {
		return SeqRange{Min: first, Max: first}, i, nil
	}
	i++
	second, sn, err := parseSeqNumber(p[i:], offset+i, q)
	if err != nil {
		return SeqRange{}, 0, err
	}
	i += sn
	return SeqRange{Min: first, Max: second}, i, nil
}

// ParseSequenceSet lexes `sequence-set = (seq-number / seq-range)
// *("," (seq-number / seq-range))`.
func ParseSequenceSet(p []byte, offset int, q Quirks) (value []SeqRange, n int, err error) {
	r, rn, err := parseSeqRange(p, offset, q)
	if err != nil {
		return nil, 0, err
	}
	ranges := []SeqRange{r}
	i := rn
	for i < len(p) && p[i] == ',' {
		r, rn, err := parseSeqRange(p[i+1:], offset+i+1, q)
		if err != nil {
			return nil, 0, err
		}
		ranges = append(ranges, r)
		i += 1 + rn
	}
	return ranges, i, nil
}

// EncodeSeqNumber renders a single sequence endpoint; 0 is '*'.
func EncodeSeqNumber(v uint32) []byte {
	if v == 0 {
		return []byte("*")
	}
	return formatNumber(v)
}

// EncodeSequenceSet renders ranges in their authored Min:Max order,
// comma-joined.
func EncodeSequenceSet(ranges []SeqRange) []byte {
	var buf bytes.Buffer
	for i, r := range ranges {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(EncodeSeqNumber(r.Min))
		if !r.Single() {
			buf.WriteByte(':')
			buf.Write(EncodeSeqNumber(r.Max))
		}
	}
	return buf.Bytes()
}

// ToSequence mirrors imap-codec's `ToSequence` trait (src/types/sequence.rs):
// it accepts a single SeqRange, a []SeqRange, or a textual sequence-set,
// normalizing all three to a []SeqRange.
//
// The textual form is parsed by running the streaming parser against
// `input + sentinel` and requiring the sentinel to remain untouched,
// exactly as the original's `to_sequence` appends a "|" blocker byte so
// a streaming ("incomplete" by default at end-of-input) grammar can be
// driven to completion without a real Driver.
func ToSequence(v interface{}) ([]SeqRange, error) {
	switch t := v.(type) {
	case SeqRange:
		return []SeqRange{t}, nil
	case []SeqRange:
		return t, nil
	case string:
		return parseSequenceSetText(t)
	default:
		return nil, malformed(CategoryCharacterClass, 0, "unsupported ToSequence input type %T", v)
	}
}

const sequenceSetSentinel = '|'

func parseSequenceSetText(s string) ([]SeqRange, error) {
	blocked := append([]byte(s), sequenceSetSentinel)
	ranges, n, err := ParseSequenceSet(blocked, 0, Quirks{})
	if err != nil {
		return nil, err
	}
	if n != len(blocked)-1 || blocked[n] != sequenceSetSentinel {
		return nil, malformed(CategoryCharacterClass, n, "trailing bytes after sequence-set")
	}
	return ranges, nil
}
