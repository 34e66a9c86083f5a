package cli

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "usage https://a.example", want: []string{"usage", "https://a.example"}},
		{line: "  cookies   --json ", want: []string{"cookies", "--json"}},
		{line: `send Storage.getCookies '{"browserContextId": "X"}'`, want: []string{"send", "Storage.getCookies", `{"browserContextId": "X"}`}},
		{line: `cookies set a "two words" --domain x`, want: []string{"cookies", "set", "a", "two words", "--domain", "x"}},
		{line: `cookies set a ''`, want: []string{"cookies", "set", "a", ""}},
		{line: "", want: nil},
	}

	for _, tt := range tests {
		if got := splitArgs(tt.line); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestExpandAbbreviation(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
		ok     bool
	}{
		{prefix: "e", want: "exit", ok: true},
		{prefix: "q", want: "quit", ok: true},
		{prefix: "HI", want: "history", ok: true},
		{prefix: "h", ok: false},
		{prefix: "x", ok: false},
	}

	for _, tt := range tests {
		got, ok := expandAbbreviation(tt.prefix, replCommands)
		if got != tt.want || ok != tt.ok {
			t.Errorf("expandAbbreviation(%q) = %q, %v; want %q, %v", tt.prefix, got, ok, tt.want, tt.ok)
		}
	}
}

func TestHandleSpecialCommand(t *testing.T) {
	r := &REPL{history: []string{"usage https://a.example"}}

	tests := []struct {
		line    string
		exit    bool
		handled bool
	}{
		{line: "exit", exit: true, handled: true},
		{line: "qu", exit: true, handled: true},
		{line: "?", handled: true},
		{line: "history", handled: true},
		{line: "usage https://a.example", handled: false},
	}

	for _, tt := range tests {
		var exit, handled bool
		capture(t, func() {
			exit, handled = r.handleSpecialCommand(tt.line)
		})
		if exit != tt.exit || handled != tt.handled {
			t.Errorf("handleSpecialCommand(%q) = %v, %v; want %v, %v", tt.line, exit, handled, tt.exit, tt.handled)
		}
	}
}

func TestREPL_ExecuteCommand(t *testing.T) {
	var got []string
	r := &REPL{exec: func(args []string) (bool, error) {
		got = args
		return args[0] != "frob", nil
	}}

	capture(t, func() { r.executeCommand("us https://a.example") })
	if !reflect.DeepEqual(got, []string{"usage", "https://a.example"}) {
		t.Errorf("expected abbreviation expanded, got %q", got)
	}

	_, stderr := capture(t, func() { r.executeCommand("frob") })
	if !strings.Contains(stderr, "unknown command: frob") {
		t.Errorf("unexpected stderr: %q", stderr)
	}

	got = nil
	_, stderr = capture(t, func() { r.executeCommand("repl") })
	if got != nil || !strings.Contains(stderr, "already in a repl") {
		t.Errorf("nested repl not rejected: %q", stderr)
	}
}

func TestREPL_Complete(t *testing.T) {
	r := &REPL{}

	got := r.complete("wa")
	if !reflect.DeepEqual(got, []string{"watch"}) {
		t.Errorf("complete(wa) = %q", got)
	}
	if got := r.complete("usage h"); got != nil {
		t.Errorf("expected no completion after first word, got %q", got)
	}
}
