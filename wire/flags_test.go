package wire

import "testing"

func TestParseFlag(t *testing.T) {
	f, n, err := parseFlag([]byte(`\Seen `), 0, Quirks{})
	if err != nil || f.Kind != FlagSystemSeen || n != 5 {
		t.Fatalf("got %+v %d %v", f, n, err)
	}
	f, n, err = parseFlag([]byte(`\Extra `), 0, Quirks{})
	if err != nil || f.Kind != FlagExtension || string(f.Name) != "Extra" {
		t.Fatalf("got %+v %d %v", f, n, err)
	}
	f, n, err = parseFlag([]byte(`Keyword `), 0, Quirks{})
	if err != nil || f.Kind != FlagKeyword || string(f.Name) != "Keyword" {
		t.Fatalf("got %+v %d %v", f, n, err)
	}
	f, n, err = parseFlag([]byte(`\Recent `), 0, Quirks{})
	if err != nil || f.Kind != FlagRecent {
		t.Fatalf("got %+v %d %v", f, n, err)
	}
}

func TestEncodeFlag(t *testing.T) {
	got := string(EncodeFlag(Flag{Kind: FlagSystemSeen, Name: Atom("Seen")}))
	if got != `\Seen` {
		t.Fatalf("got %q", got)
	}
	got = string(EncodeFlag(Flag{Kind: FlagKeyword, Name: Atom("custom")}))
	if got != "CUSTOM" {
		t.Fatalf("got %q", got)
	}
}

func TestParseFlagPerm(t *testing.T) {
	fp, n, err := parseFlagPerm([]byte(`\*`), 0, Quirks{})
	if err != nil || !fp.AnyKeyword || n != 2 {
		t.Fatalf("got %+v %d %v", fp, n, err)
	}
	fp, n, err = parseFlagPerm([]byte(`\Deleted `), 0, Quirks{})
	if err != nil || fp.AnyKeyword || fp.Flag.Kind != FlagSystemDeleted {
		t.Fatalf("got %+v %d %v", fp, n, err)
	}
}

func TestParseMbxListFlags(t *testing.T) {
	f, n, err := parseMbxListFlags([]byte(`\Noinferiors \Marked)`), 0)
	if err != nil {
		t.Fatalf("parseMbxListFlags: %v", err)
	}
	if n != len(`\Noinferiors \Marked`) {
		t.Fatalf("consumed %d", n)
	}
	if f.OFlag != OFlagNoinferiors || f.SFlag != SFlagMarked {
		t.Fatalf("got %+v", f)
	}
}

func TestEncodeMbxListFlags(t *testing.T) {
	got := string(EncodeMbxListFlags(MbxListFlags{OFlag: OFlagNoinferiors, SFlag: SFlagMarked}))
	if got != `\Noinferiors \Marked` {
		t.Fatalf("got %q", got)
	}
}
