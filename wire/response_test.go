package wire

import "testing"

func TestParseResponseTaggedOK(t *testing.T) {
	input := "a1 OK LOGIN completed\r\n"
	r, n, err := ParseResponse([]byte(input), Quirks{}, 0)
	if err != nil || n != len(input) {
		t.Fatalf("got %+v %d %v", r, n, err)
	}
	if r.Status == nil || r.Status.Kind != StatusOk || string(*r.Status.Tag) != "a1" {
		t.Fatalf("got %+v", r.Status)
	}
}

func TestParseResponseUntaggedBye(t *testing.T) {
	input := "* BYE logging out\r\n"
	r, n, err := ParseResponse([]byte(input), Quirks{}, 0)
	if err != nil || n != len(input) {
		t.Fatalf("got %+v %d %v", r, n, err)
	}
	if r.Status == nil || r.Status.Kind != StatusBye || r.Status.Tag != nil {
		t.Fatalf("got %+v", r.Status)
	}
}

func TestParseResponseContinuation(t *testing.T) {
	r, n, err := ParseResponse([]byte("+ ready\r\n"), Quirks{}, 0)
	if err != nil || n != len("+ ready\r\n") {
		t.Fatalf("got %+v %d %v", r, n, err)
	}
	if r.Continuation == nil || r.Continuation.Text == nil || string(r.Continuation.Text.Text) != "ready" {
		t.Fatalf("got %+v", r.Continuation)
	}
}

func TestParseResponseContinuationBase64(t *testing.T) {
	r, n, err := ParseResponse([]byte("+ AGFsaWNl\r\n"), Quirks{}, 0)
	if err != nil || n != len("+ AGFsaWNl\r\n") {
		t.Fatalf("got %+v %d %v", r, n, err)
	}
	if r.Continuation == nil || string(r.Continuation.Base64) != "\x00alice" {
		t.Fatalf("got %+v", r.Continuation)
	}
}

func TestEncodeResponseRoundTrip(t *testing.T) {
	inputs := []string{
		"a1 OK done\r\n",
		"a2 NO failed\r\n",
		"a3 BAD huh\r\n",
		"* BYE bye\r\n",
		"+ continue\r\n",
	}
	for _, input := range inputs {
		r, n, err := ParseResponse([]byte(input), Quirks{}, 0)
		if err != nil || n != len(input) {
			t.Fatalf("ParseResponse(%q): n=%d err=%v", input, n, err)
		}
		encoded := EncodeResponse(r)
		r2, n2, err := ParseResponse(encoded, Quirks{}, 0)
		if err != nil || n2 != len(encoded) {
			t.Fatalf("re-parse of encoded %q: n=%d err=%v", encoded, n2, err)
		}
		if r2.Status != nil && r.Status != nil {
			if r2.Status.Kind != r.Status.Kind {
				t.Fatalf("round trip mismatch for %q: got %+v want %+v", input, r2.Status, r.Status)
			}
		}
	}
}
