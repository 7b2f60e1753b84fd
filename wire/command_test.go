package wire

import (
	"reflect"
	"testing"
)

func mustParseCommand(t *testing.T, input string) (Command, int) {
	t.Helper()
	cmd, n, err := ParseCommand([]byte(input), 0, Quirks{}, 0)
	if err != nil {
		t.Fatalf("ParseCommand(%q): %v", input, err)
	}
	if n != len(input) {
		t.Fatalf("ParseCommand(%q): consumed %d, want %d", input, n, len(input))
	}
	return cmd, n
}

func TestParseCommandBasics(t *testing.T) {
	tests := []struct {
		input string
		check func(t *testing.T, cmd Command)
	}{
		{"a1 NOOP\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdNoop || string(cmd.Tag) != "a1" {
				t.Fatalf("got %+v", cmd)
			}
		}},
		{"a2 CAPABILITY\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdCapability {
				t.Fatalf("got %+v", cmd)
			}
		}},
		{"a3 LOGIN alice secret\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdLogin {
				t.Fatalf("got %+v", cmd)
			}
			if string(cmd.Auth.Username.Value()) != "alice" || string(cmd.Auth.Password.Value()) != "secret" {
				t.Fatalf("got %+v", cmd.Auth)
			}
		}},
		{"a4 AUTHENTICATE PLAIN\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdAuthenticate || string(cmd.Auth.Mechanism) != "PLAIN" {
				t.Fatalf("got %+v", cmd)
			}
			if cmd.Auth.InitialResponse != nil {
				t.Fatalf("unexpected initial response")
			}
		}},
		{"a5 SELECT INBOX\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdSelect || !cmd.Mailbox.Inbox {
				t.Fatalf("got %+v", cmd)
			}
		}},
		{"a6 SELECT INBOX (CONDSTORE)\r\n", func(t *testing.T, cmd Command) {
			if !cmd.Select.Condstore {
				t.Fatalf("got %+v", cmd.Select)
			}
		}},
		{"a7 UID FETCH 1:5 (FLAGS UID)\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdFetch || !cmd.UID {
				t.Fatalf("got %+v", cmd)
			}
			if len(cmd.Sequences) != 1 || cmd.Sequences[0].Min != 1 || cmd.Sequences[0].Max != 5 {
				t.Fatalf("got %+v", cmd.Sequences)
			}
		}},
		{"a8 FETCH 1:* ALL\r\n", func(t *testing.T, cmd Command) {
			if cmd.Fetch.Macro != FetchMacroAll {
				t.Fatalf("got %+v", cmd.Fetch)
			}
		}},
		{"a9 STORE 1:5 +FLAGS.SILENT (\\Seen)\r\n", func(t *testing.T, cmd Command) {
			if cmd.Store.Mode != StoreAdd || !cmd.Store.Silent {
				t.Fatalf("got %+v", cmd.Store)
			}
			if len(cmd.Store.Flags) != 1 {
				t.Fatalf("got %+v", cmd.Store.Flags)
			}
		}},
		{"a10 SEARCH UNSEEN\r\n", func(t *testing.T, cmd Command) {
			if cmd.Search.Op.Kind != SearchUnseen {
				t.Fatalf("got %+v", cmd.Search.Op)
			}
		}},
		{"a11 SEARCH OR SEEN UNSEEN\r\n", func(t *testing.T, cmd Command) {
			if cmd.Search.Op.Kind != SearchOr || len(cmd.Search.Op.Children) != 2 {
				t.Fatalf("got %+v", cmd.Search.Op)
			}
		}},
		{"a12 SEARCH NOT DELETED\r\n", func(t *testing.T, cmd Command) {
			if cmd.Search.Op.Kind != SearchNot || cmd.Search.Op.Children[0].Kind != SearchDeleted {
				t.Fatalf("got %+v", cmd.Search.Op)
			}
		}},
		{"a13 SEARCH SEEN FLAGGED\r\n", func(t *testing.T, cmd Command) {
			if cmd.Search.Op.Kind != SearchAnd || len(cmd.Search.Op.Children) != 2 {
				t.Fatalf("got %+v", cmd.Search.Op)
			}
		}},
		{"a14 SEARCH HEADER \"Subject\" \"hello\"\r\n", func(t *testing.T, cmd Command) {
			op := cmd.Search.Op
			if op.Kind != SearchHeader || string(op.HeaderField.Value()) != "Subject" || string(op.HeaderValue.Value()) != "hello" {
				t.Fatalf("got %+v", op)
			}
		}},
		{"a15 SEARCH SINCE 1-Jan-2020\r\n", func(t *testing.T, cmd Command) {
			op := cmd.Search.Op
			if op.Kind != SearchSince || op.Date != (SearchDate{Year: 2020, Month: 1, Day: 1}) {
				t.Fatalf("got %+v", op)
			}
		}},
		{"a15b SEARCH UNDRAFT\r\n", func(t *testing.T, cmd Command) {
			if cmd.Search.Op.Kind != SearchUndraft {
				t.Fatalf("got %+v", cmd.Search.Op)
			}
		}},
		{"a16 UID EXPUNGE 1:5\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdExpunge || !cmd.UID {
				t.Fatalf("got %+v", cmd)
			}
		}},
		{"a17 LIST \"\" \"*\"\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdList {
				t.Fatalf("got %+v", cmd)
			}
		}},
		{"a18 STATUS INBOX (MESSAGES UIDNEXT)\r\n", func(t *testing.T, cmd Command) {
			if len(cmd.Status.Items) != 2 || cmd.Status.Items[0] != StatusMessages {
				t.Fatalf("got %+v", cmd.Status)
			}
		}},
		{"a19 ENABLE CONDSTORE QRESYNC\r\n", func(t *testing.T, cmd Command) {
			if len(cmd.Capabilities) != 2 {
				t.Fatalf("got %+v", cmd.Capabilities)
			}
		}},
		{"a20 ID NIL\r\n", func(t *testing.T, cmd Command) {
			if cmd.IDParams != nil {
				t.Fatalf("got %+v", cmd.IDParams)
			}
		}},
		{"a21 COMPRESS DEFLATE\r\n", func(t *testing.T, cmd Command) {
			if string(cmd.CompressMechanism) != "DEFLATE" {
				t.Fatalf("got %+v", cmd)
			}
		}},
		{"a22 GETQUOTAROOT INBOX\r\n", func(t *testing.T, cmd Command) {
			if cmd.Kind != CmdGetQuotaRoot {
				t.Fatalf("got %+v", cmd)
			}
		}},
		{"a23 SETQUOTA \"\" (STORAGE 512)\r\n", func(t *testing.T, cmd Command) {
			if len(cmd.QuotaLimits) != 1 || cmd.QuotaLimits[0].Limit != 512 {
				t.Fatalf("got %+v", cmd.QuotaLimits)
			}
		}},
	}
	for _, tc := range tests {
		cmd, _ := mustParseCommand(t, tc.input)
		tc.check(t, cmd)
	}
}

func TestParseCommandMalformed(t *testing.T) {
	tests := []string{
		"a1 FOO\r\n",
		"a1 UID LOGIN\r\n",
		"a1 COMPRESS GZIP\r\n",
		"a1 SEARCH BOGUSKEY\r\n",
	}
	for _, input := range tests {
		_, _, err := ParseCommand([]byte(input), 0, Quirks{}, 0)
		if _, ok := AsMalformed(err); !ok {
			t.Errorf("ParseCommand(%q): want Malformed, got %v", input, err)
		}
	}
}

func TestParseCommandIncomplete(t *testing.T) {
	full := "a1 LOGIN alice secret\r\n"
	for i := 0; i < len(full); i++ {
		_, _, err := ParseCommand([]byte(full[:i]), 0, Quirks{}, 0)
		if !IsIncomplete(err) {
			if m, ok := AsMalformed(err); ok {
				t.Fatalf("prefix %q: unexpected Malformed: %v", full[:i], m)
			}
		}
	}
}

func TestSASLPlainCredentials(t *testing.T) {
	// base64("\x00alice\x00secret")
	const encoded = "AGFsaWNlAHNlY3JldA=="
	user, pass, err := ParseSASLPlainCredentials([]byte(encoded))
	if err != nil {
		t.Fatalf("ParseSASLPlainCredentials: %v", err)
	}
	if string(user) != "alice" || string(pass) != "secret" {
		t.Fatalf("got user=%q pass=%q", user, pass)
	}
}

func TestRecognizeMechanism(t *testing.T) {
	if !RecognizeMechanism("plain") {
		t.Fatalf("want PLAIN recognized")
	}
	if RecognizeMechanism("NOT-A-MECHANISM") {
		t.Fatalf("want unknown mechanism unrecognized")
	}
}

func TestEncodeCommandRoundTrip(t *testing.T) {
	inputs := []string{
		"a1 NOOP\r\n",
		"a2 LOGIN alice secret\r\n",
		"a3 SELECT INBOX\r\n",
		"a4 UID FETCH 1:5 (FLAGS UID)\r\n",
		"a5 STORE 1:5 +FLAGS.SILENT (\\Seen)\r\n",
		"a6 SEARCH OR SEEN UNSEEN\r\n",
		"a7 STATUS INBOX (MESSAGES UIDNEXT)\r\n",
		"a8 SEARCH UNDRAFT\r\n",
	}
	for _, input := range inputs {
		cmd, n, err := ParseCommand([]byte(input), 0, Quirks{}, 0)
		if err != nil || n != len(input) {
			t.Fatalf("ParseCommand(%q): n=%d err=%v", input, n, err)
		}
		encoded := EncodeCommand(cmd)
		cmd2, n2, err := ParseCommand(encoded, 0, Quirks{}, 0)
		if err != nil || n2 != len(encoded) {
			t.Fatalf("re-parse of encoded %q: n=%d err=%v", encoded, n2, err)
		}
		if !reflect.DeepEqual(cmd, cmd2) {
			t.Fatalf("round trip mismatch for %q:\n  got  %+v\n  want %+v", input, cmd2, cmd)
		}
	}
}
