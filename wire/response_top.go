package wire

// Response is `response = CommandContinuationRequest / Data / Status`.
// Exactly one field is set.
type Response struct {
	Continuation *ContinuationRequest
	Data         *Data
	Status       *Status
}

// ParseResponse tries, in order, continuation ('+'), untagged data or
// status ('*'), and tagged response-done — the same
// first-byte-based disambiguation spec.md §4.7 describes.
func ParseResponse(p []byte, q Quirks, maxLen uint32) (r Response, n int, err error) {
	if len(p) == 0 {
		return Response{}, 0, errIncomplete
	}
	switch p[0] {
	case '+':
		c, cn, err := parseContinuation(p, q)
		if err != nil {
			return Response{}, 0, err
		}
		return Response{Continuation: &c}, cn, nil
	case '*':
		return parseResponseData(p, q, maxLen)
	default:
		return parseResponseDone(p, q, maxLen)
	}
}

// parseResponseData lexes `response-data = "*" SP (resp-cond-state /
// resp-cond-bye / mailbox-data / message-data / capability-data /
// enable-data) CRLF`.
func parseResponseData(p []byte, q Quirks, maxLen uint32) (r Response, n int, err error) {
	i := 1
	spn, err := sp(p[i:], i)
	if err != nil {
		return Response{}, 0, err
	}
	i += spn
	if hasCIPrefix(p[i:], "OK") || hasCIPrefix(p[i:], "NO") || hasCIPrefix(p[i:], "BAD") {
		kind, kn, err := parseCondStateKeyword(p[i:], i)
		if err != nil {
			return Response{}, 0, err
		}
		j := i + kn
		spn2, err := sp(p[j:], j)
		if err != nil {
			return Response{}, 0, err
		}
		j += spn2
		rt, rn, err := parseRespText(p[j:], j, q)
		if err != nil {
			return Response{}, 0, err
		}
		j += rn
		cn, err := q.crlf(p[j:], j)
		if err != nil {
			return Response{}, 0, err
		}
		j += cn
		st := Status{Kind: kind, Code: rt.Code, Text: rt.Text}
		return Response{Status: &st}, j, nil
	}
	if hasCIPrefix(p[i:], "BYE") {
		j := i + 3
		spn2, err := sp(p[j:], j)
		if err != nil {
			return Response{}, 0, err
		}
		j += spn2
		rt, rn, err := parseRespText(p[j:], j, q)
		if err != nil {
			return Response{}, 0, err
		}
		j += rn
		cn, err := q.crlf(p[j:], j)
		if err != nil {
			return Response{}, 0, err
		}
		j += cn
		st := Status{Kind: StatusBye, Code: rt.Code, Text: rt.Text}
		return Response{Status: &st}, j, nil
	}
	d, dn, err := ParseData(p[i:], i, q, maxLen)
	if err != nil {
		return Response{}, 0, err
	}
	j := i + dn
	cn, err := q.crlf(p[j:], j)
	if err != nil {
		return Response{}, 0, err
	}
	j += cn
	return Response{Data: &d}, j, nil
}

func parseCondStateKeyword(p []byte, offset int) (kind StatusKind, n int, err error) {
	switch {
	case hasCIPrefix(p, "OK"):
		return StatusOk, 2, nil
	case hasCIPrefix(p, "NO"):
		return StatusNo, 2, nil
	case hasCIPrefix(p, "BAD"):
		return StatusBad, 3, nil
	}
	if _, incomplete := ciPrefixCouldMatch(p, "OK", "NO", "BAD"); incomplete {
		return 0, 0, errIncomplete
	}
	return 0, 0, malformed(CategoryCharacterClass, offset, "expected OK/NO/BAD")
}

// parseResponseDone lexes `response-tagged`; the untagged fatal
// "* BYE" line is parsed by parseResponseData.
func parseResponseDone(p []byte, q Quirks, maxLen uint32) (r Response, n int, err error) {
	tagVal, tn, err := tagAtom(p, 0)
	if err != nil {
		return Response{}, 0, err
	}
	i := tn
	spn, err := sp(p[i:], i)
	if err != nil {
		return Response{}, 0, err
	}
	i += spn
	kind, kn, err := parseCondStateKeyword(p[i:], i)
	if err != nil {
		return Response{}, 0, err
	}
	i += kn
	spn2, err := sp(p[i:], i)
	if err != nil {
		return Response{}, 0, err
	}
	i += spn2
	rt, rn, err := parseRespText(p[i:], i, q)
	if err != nil {
		return Response{}, 0, err
	}
	i += rn
	cn, err := q.crlf(p[i:], i)
	if err != nil {
		return Response{}, 0, err
	}
	i += cn
	tag := Tag(tagVal)
	st := Status{Kind: kind, Tag: &tag, Code: rt.Code, Text: rt.Text}
	return Response{Status: &st}, i, nil
}

// EncodeResponse renders r back to wire bytes.
func EncodeResponse(r Response) []byte {
	switch {
	case r.Continuation != nil:
		return EncodeContinuation(*r.Continuation)
	case r.Status != nil:
		return EncodeStatus(*r.Status)
	case r.Data != nil:
		out := append([]byte("* "), EncodeData(*r.Data)...)
		return append(out, "\r\n"...)
	}
	return nil
}
