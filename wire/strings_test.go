package wire

import "testing"

func TestParseQuoted(t *testing.T) {
	v, n, err := parseQuoted([]byte(`"hello \"world\""`), 0)
	if err != nil {
		t.Fatalf("parseQuoted: %v", err)
	}
	if n != len(`"hello \"world\""`) {
		t.Fatalf("consumed %d", n)
	}
	if string(v) != `hello "world"` {
		t.Fatalf("got %q", v)
	}
	if _, _, err := parseQuoted([]byte(`"unterminated`), 0); !IsIncomplete(err) {
		t.Fatalf("expected incomplete, got %v", err)
	}
	if _, _, err := parseQuoted([]byte("\"bad\r\n\""), 0); err == nil {
		t.Fatalf("expected malformed for CR/LF inside quoted string")
	}
}

func TestParseLiteralHeader(t *testing.T) {
	hdr, n, err := parseLiteralHeader([]byte("{5}\r\nhello"), 0, Quirks{}, 0)
	if err != nil || n != 5 || hdr.Length != 5 || hdr.NonSync {
		t.Fatalf("got %+v %d %v", hdr, n, err)
	}
	hdr, n, err = parseLiteralHeader([]byte("{5+}\r\nhello"), 0, Quirks{}, 0)
	if err != nil || n != 6 || !hdr.NonSync {
		t.Fatalf("got %+v %d %v", hdr, n, err)
	}
	if _, _, err := parseLiteralHeader([]byte("{99999999999}\r\n"), 0, Quirks{}, 0); err == nil {
		t.Fatalf("expected malformed for number overflow")
	}
	if _, _, err := parseLiteralHeader([]byte("{999999999}\r\n"), 0, Quirks{}, 100); err == nil {
		t.Fatalf("expected malformed for exceeding maxLen")
	}
}

func TestParseString(t *testing.T) {
	v, n, err := parseString([]byte(`"abc" rest`), 0, Quirks{}, 0)
	if err != nil || n != 5 || v.Quot == nil || string(*v.Quot) != "abc" {
		t.Fatalf("got %+v %d %v", v, n, err)
	}
	v, n, err = parseString([]byte("{3}\r\nabc"), 0, Quirks{}, 0)
	if err != nil || n != 8 || v.Lit == nil || string(*v.Lit) != "abc" {
		t.Fatalf("got %+v %d %v", v, n, err)
	}
	if _, _, err := parseString([]byte("{3}\r\nab"), 0, Quirks{}, 0); !IsIncomplete(err) {
		t.Fatalf("expected incomplete for truncated literal payload, got %v", err)
	}
}

func TestParseNString(t *testing.T) {
	v, n, err := parseNString([]byte("NIL rest"), 0, Quirks{}, 0)
	if err != nil || n != 3 || v.Str != nil {
		t.Fatalf("got %+v %d %v", v, n, err)
	}
	v, n, err = parseNString([]byte(`"abc"`), 0, Quirks{}, 0)
	if err != nil || v.Str == nil || n != 5 {
		t.Fatalf("got %+v %d %v", v, n, err)
	}
	if _, _, err := parseNString([]byte("NI"), 0, Quirks{}, 0); !IsIncomplete(err) {
		t.Fatalf("expected incomplete for partial NIL, got %v", err)
	}
}

func TestParseAString(t *testing.T) {
	v, n, err := parseAString([]byte("INBOX "), 0, Quirks{}, 0)
	if err != nil || n != 5 || string(v.Raw) != "INBOX" {
		t.Fatalf("got %+v %d %v", v, n, err)
	}
	v, n, err = parseAString([]byte(`"has space"`), 0, Quirks{}, 0)
	if err != nil || v.Str == nil {
		t.Fatalf("got %+v %d %v", v, n, err)
	}
}

func TestParseMailbox(t *testing.T) {
	mbx, n, err := parseMailbox([]byte("INBOX "), 0, Quirks{}, 0)
	if err != nil || n != 5 || !mbx.Inbox {
		t.Fatalf("got %+v %d %v", mbx, n, err)
	}
	mbx, n, err = parseMailbox([]byte("Other "), 0, Quirks{}, 0)
	if err != nil || mbx.Inbox || string(mbx.Name()) != "Other" {
		t.Fatalf("got %+v %d %v", mbx, n, err)
	}
}

func TestMatchPrefix(t *testing.T) {
	if partial, ok := matchPrefix([]byte("NIL"), []byte("NIL")); partial || !ok {
		t.Fatalf("got partial=%v ok=%v", partial, ok)
	}
	if partial, ok := matchPrefix([]byte("NI"), []byte("NIL")); !partial || ok {
		t.Fatalf("got partial=%v ok=%v", partial, ok)
	}
	if partial, ok := matchPrefix([]byte("XYZ"), []byte("NIL")); partial || ok {
		t.Fatalf("got partial=%v ok=%v", partial, ok)
	}
}
