package wire

import "testing"

func TestAtom(t *testing.T) {
	v, n, err := atom([]byte("NOOP\r\n"), 0)
	if err != nil || string(v) != "NOOP" || n != 4 {
		t.Fatalf("got %q %d %v", v, n, err)
	}
	if _, _, err := atom([]byte("NOOP"), 0); !IsIncomplete(err) {
		t.Fatalf("expected incomplete, got %v", err)
	}
	if _, _, err := atom([]byte(" "), 0); err == nil {
		t.Fatalf("expected malformed for atom starting with SP")
	} else if _, ok := AsMalformed(err); !ok {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestTagAtom(t *testing.T) {
	v, n, err := tagAtom([]byte("a1+ "), 0)
	if err != nil || string(v) != "a1" || n != 2 {
		t.Fatalf("got %q %d %v", v, n, err)
	}
}

func TestNumber(t *testing.T) {
	v, n, err := number([]byte("123 "), 0, Quirks{})
	if err != nil || v != 123 || n != 3 {
		t.Fatalf("got %d %d %v", v, n, err)
	}
	if _, _, err := number([]byte("01 "), 0, Quirks{}); err == nil {
		t.Fatalf("expected leading zero to be malformed")
	}
	v, n, err = number([]byte("01 "), 0, Quirks{RectifyNumbers: true})
	if err != nil || v != 1 {
		t.Fatalf("rectified leading zero: got %d %d %v", v, n, err)
	}
	if _, _, err := number([]byte("4294967296 "), 0, Quirks{}); err == nil {
		t.Fatalf("expected overflow to be malformed")
	}
}

func TestNzNumber(t *testing.T) {
	if _, _, err := nzNumber([]byte("0 "), 0, Quirks{}); err == nil {
		t.Fatalf("expected nz-number 0 to be malformed")
	}
	v, _, err := nzNumber([]byte("7 "), 0, Quirks{})
	if err != nil || v != 7 {
		t.Fatalf("got %d %v", v, err)
	}
}

func TestSP(t *testing.T) {
	n, err := sp([]byte("  a"), 0)
	if err != nil || n != 2 {
		t.Fatalf("got %d %v", n, err)
	}
	if _, err := sp([]byte("a"), 0); err == nil {
		t.Fatalf("expected malformed for missing SP")
	}
}

func TestAstringToken(t *testing.T) {
	v, n, err := astringToken([]byte("INBOX "), 0)
	if err != nil || string(v) != "INBOX" || n != 5 {
		t.Fatalf("got %q %d %v", v, n, err)
	}
}

func TestQuotedChar(t *testing.T) {
	b, n, err := quotedChar([]byte(`a`), 0)
	if err != nil || b != 'a' || n != 1 {
		t.Fatalf("got %q %d %v", b, n, err)
	}
	b, n, err = quotedChar([]byte(`\"rest`), 0)
	if err != nil || b != '"' || n != 2 {
		t.Fatalf("got %q %d %v", b, n, err)
	}
	if _, _, err := quotedChar([]byte(`"`), 0); err == nil {
		t.Fatalf("expected malformed for unescaped quote")
	}
	if _, _, err := quotedChar([]byte("\r"), 0); err == nil {
		t.Fatalf("expected malformed for CR in quoted-char")
	}
}
