package protocol

import (
	"errors"
	"testing"

	"github.com/pichat-dev/pichat-go-server/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line     string
		expected Command
	}{
		{"PING", Command{Name: "PING", Args: map[string]string{}}},
		{"help", Command{Name: "help", Args: map[string]string{}}},
		{"ECHO|msg=hello world", Command{Name: "ECHO", Args: map[string]string{"msg": "hello world"}}},
		{"SEND|username=alice|msg=hi", Command{Name: "SEND", Args: map[string]string{"username": "alice", "msg": "hi"}}},
		{"SNDALL|msg=qwe zxc", Command{Name: "SNDALL", Args: map[string]string{"msg": "qwe zxc"}}},
		{"LOGIN| username =bob|password=p", Command{Name: "LOGIN", Args: map[string]string{"username": "bob", "password": "p"}}},
		{"_DELUSER|username=bob", Command{Name: "_DELUSER", Args: map[string]string{"username": "bob"}}},
	}

	for _, tt := range tests {
		result, err := Parse(tt.line)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", tt.line, err)
		}
		if result.Name != tt.expected.Name {
			t.Errorf("Parse(%q): expected name %q, got %q", tt.line, tt.expected.Name, result.Name)
		}
		if len(result.Args) != len(tt.expected.Args) {
			t.Fatalf("Parse(%q): expected %d args, got %d", tt.line, len(tt.expected.Args), len(result.Args))
		}
		for k, v := range tt.expected.Args {
			if result.Args[k] != v {
				t.Errorf("Parse(%q): arg %q: expected %q, got %q", tt.line, k, v, result.Args[k])
			}
		}
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	lines := []string{
		"",
		"|msg=hi",
		"SEND|msg",
		"SEND|msg=",
		"SEND|=value",
		"SEND|us3r=bob",
		"PING PONG",
	}

	for _, line := range lines {
		_, err := Parse(line)
		var syntaxErr *model.SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("Parse(%q): expected syntax error, got %v", line, err)
		}
	}
}

// Parsing the serialized form of a parsed command must recover the same
// key/value pairs, regardless of argument order.
func TestParseFormatRoundTrip(t *testing.T) {
	lines := []string{
		"SENDALL|MSG=qwe|TO=asde zxc",
		"LOGIN|username=Петя|password=секрет",
		"ECHO|msg=a=b=c",
		"EXIT",
	}

	for _, line := range lines {
		first, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", line, err)
		}
		second, err := Parse(FormatCommand(first))
		if err != nil {
			t.Fatalf("re-Parse(%q): unexpected error %v", FormatCommand(first), err)
		}
		if second.Name != first.Name || len(second.Args) != len(first.Args) {
			t.Fatalf("round trip of %q changed the command: %+v -> %+v", line, first, second)
		}
		for k, v := range first.Args {
			if second.Args[k] != v {
				t.Errorf("round trip of %q lost arg %q=%q", line, k, v)
			}
		}
	}
}

func TestFormatDelivery(t *testing.T) {
	job := model.NewMessageJob("2024-05-01 10:00:00", "alice", "привет")
	line := FormatDelivery(job)
	expected := "MSGFROM [2024-05-01 10:00:00 alice] (6): привет"
	if line != expected {
		t.Errorf("FormatDelivery: expected %q, got %q", expected, line)
	}
}
