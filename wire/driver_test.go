package wire

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"crawshaw.io/iox"
)

func feedAll(t *testing.T, d *Driver, chunks ...string) []FeedOutcome {
	t.Helper()
	var outcomes []FeedOutcome
	for _, c := range chunks {
		outcomes = append(outcomes, d.Feed([]byte(c)))
	}
	return outcomes
}

func TestDriverSimpleCommand(t *testing.T) {
	d := NewDriver(DirectionCommand, Quirks{}, 0, nil)
	out := d.Feed([]byte("a1 NOOP\r\n"))
	if out.Kind != OutcomeReady {
		t.Fatalf("got %+v", out)
	}
	if out.Value.Command == nil || out.Value.Command.Kind != CmdNoop {
		t.Fatalf("got %+v", out.Value)
	}
}

func TestDriverPartialFeed(t *testing.T) {
	d := NewDriver(DirectionCommand, Quirks{}, 0, nil)
	out := d.Feed([]byte("a1 NO"))
	if out.Kind != OutcomeNeedMoreBytes {
		t.Fatalf("got %+v", out)
	}
	out = d.Feed([]byte("OP\r\n"))
	if out.Kind != OutcomeReady {
		t.Fatalf("got %+v", out)
	}
}

func TestDriverLiteralAck(t *testing.T) {
	d := NewDriver(DirectionCommand, Quirks{}, 0, nil)
	out := d.Feed([]byte("a1 LOGIN {5}\r\n"))
	if out.Kind != OutcomeLiteralAck || out.LiteralN != 5 {
		t.Fatalf("got %+v", out)
	}
	out = d.Feed([]byte("alice secret\r\n"))
	if out.Kind != OutcomeReady {
		t.Fatalf("got %+v", out)
	}
	cmd := out.Value.Command
	if cmd == nil || string(cmd.Auth.Username.Value()) != "alice" || string(cmd.Auth.Password.Value()) != "secret" {
		t.Fatalf("got %+v", cmd)
	}
}

func TestDriverLiteralNonSync(t *testing.T) {
	d := NewDriver(DirectionCommand, Quirks{}, 0, nil)
	out := d.Feed([]byte("a1 LOGIN {5+}\r\nalic"))
	if out.Kind != OutcomeNeedMoreBytes {
		t.Fatalf("got %+v", out)
	}
	out = d.Feed([]byte("e secret\r\n"))
	if out.Kind != OutcomeReady {
		t.Fatalf("got %+v", out)
	}
}

func TestDriverMalformedPoisons(t *testing.T) {
	d := NewDriver(DirectionCommand, Quirks{}, 0, nil)
	out := d.Feed([]byte("a1 BOGUSCOMMAND\r\n"))
	if out.Kind != OutcomeMalformed {
		t.Fatalf("got %+v", out)
	}
	out = d.Feed([]byte("a2 NOOP\r\n"))
	if out.Kind != OutcomeMalformed {
		t.Fatalf("poisoned driver should stay malformed, got %+v", out)
	}
}

func TestDriverPipelining(t *testing.T) {
	d := NewDriver(DirectionCommand, Quirks{}, 0, nil)
	out := d.Feed([]byte("a1 NOOP\r\na2 NOOP\r\n"))
	if out.Kind != OutcomeReady || out.Value.Command.Tag[0] != 'a' {
		t.Fatalf("got %+v", out)
	}
	out = d.attempt()
	if out.Kind != OutcomeReady {
		t.Fatalf("second pipelined command: got %+v", out)
	}
	if string(out.Value.Command.Tag) != "a2" {
		t.Fatalf("got tag %q", out.Value.Command.Tag)
	}
}

func TestEncodeCommandFragmentsSplitsLiteral(t *testing.T) {
	cmd, _, err := ParseCommand([]byte("a1 LOGIN {5}\r\nalice secret\r\n"), 0, Quirks{}, 0)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	frags := EncodeCommandFragments(cmd, Quirks{})
	sawLiteral := false
	for _, f := range frags {
		if len(f.Literal) > 0 {
			sawLiteral = true
			if string(f.Literal) != "alice" {
				t.Fatalf("got literal fragment %q", f.Literal)
			}
		}
	}
	if !sawLiteral {
		t.Fatalf("expected a literal fragment, got %+v", frags)
	}
}

func TestDriverSpillsLargeLiteral(t *testing.T) {
	filer := iox.NewFiler(0)
	defer func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		filer.Shutdown(ctx)
	}()

	d := NewDriver(DirectionCommand, Quirks{}, 0, filer)
	body := strings.Repeat("x", InlineLiteralThreshold+1024)
	header := []byte("a1 LOGIN {" + strconv.Itoa(len(body)) + "}\r\n")

	out := d.Feed(header)
	if out.Kind != OutcomeLiteralAck || out.LiteralN != uint32(len(body)) {
		t.Fatalf("got %+v", out)
	}
	if d.sink == nil {
		t.Fatalf("expected large literal to open a sink")
	}

	out = d.Feed([]byte(body))
	if d.sink != nil {
		t.Fatalf("sink should be cleared once the literal payload is fully received")
	}
	if out.Kind != OutcomeNeedMoreBytes {
		t.Fatalf("got %+v", out)
	}

	out = d.Feed([]byte(" secret\r\n"))
	if out.Kind != OutcomeReady {
		t.Fatalf("got %+v", out)
	}
	if string(out.Value.Command.Auth.Username.Value()) != body {
		t.Fatalf("username mismatch after spill round trip")
	}
}
