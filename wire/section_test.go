package wire

import "testing"

func TestParseSectionEmpty(t *testing.T) {
	sec, n, err := parseSection([]byte(""), 0, Quirks{})
	if err != nil || n != 0 || sec.Kind != SectionNone || len(sec.Path) != 0 {
		t.Fatalf("got %+v %d %v", sec, n, err)
	}
}

func TestParseSectionHeaderFields(t *testing.T) {
	input := `HEADER.FIELDS (SUBJECT FROM)`
	sec, n, err := parseSection([]byte(input), 0, Quirks{})
	if err != nil || n != len(input) {
		t.Fatalf("got %+v %d %v", sec, n, err)
	}
	if sec.Kind != SectionHeaderFields || len(sec.Headers) != 2 {
		t.Fatalf("got %+v", sec)
	}
	if string(sec.Headers[0]) != "SUBJECT" || string(sec.Headers[1]) != "FROM" {
		t.Fatalf("got %+v", sec.Headers)
	}
}

func TestParseSectionPartPath(t *testing.T) {
	input := `1.2.MIME]`
	sec, n, err := parseSection([]byte(input), 0, Quirks{})
	if err != nil || n != len(input)-1 {
		t.Fatalf("got %+v %d %v", sec, n, err)
	}
	if len(sec.Path) != 2 || sec.Path[0] != 1 || sec.Path[1] != 2 || sec.Kind != SectionMime {
		t.Fatalf("got %+v", sec)
	}
}

func TestEncodeSectionRoundTrip(t *testing.T) {
	sec := Section{Path: []uint32{1, 2}, Kind: SectionHeaderFieldsNot, Headers: [][]byte{[]byte("X-A"), []byte("X-B")}}
	encoded := string(EncodeSection(sec))
	if encoded != "1.2.HEADER.FIELDS.NOT (X-A X-B)" {
		t.Fatalf("got %q", encoded)
	}
	parsed, n, err := parseSection([]byte(encoded), 0, Quirks{})
	if err != nil || n != len(encoded) {
		t.Fatalf("reparse: %d %v", n, err)
	}
	if len(parsed.Path) != 2 || parsed.Kind != SectionHeaderFieldsNot || len(parsed.Headers) != 2 {
		t.Fatalf("got %+v", parsed)
	}
}

func TestParsePartial(t *testing.T) {
	p, n, err := parsePartial([]byte("<0.512>"), 0, Quirks{})
	if err != nil || n != len("<0.512>") {
		t.Fatalf("got %+v %d %v", p, n, err)
	}
	if p == nil || p.Offset != 0 || p.Length != 512 {
		t.Fatalf("got %+v", p)
	}
	p, n, err = parsePartial([]byte("no partial here"), 0, Quirks{})
	if err != nil || p != nil || n != 0 {
		t.Fatalf("expected nil partial, got %+v %d %v", p, n, err)
	}
}

func TestEncodePartial(t *testing.T) {
	got := string(EncodePartial(&Partial{Offset: 10, Length: 20}))
	if got != "<10.20>" {
		t.Fatalf("got %q", got)
	}
	if EncodePartial(nil) != nil {
		t.Fatalf("expected nil for nil partial")
	}
}
