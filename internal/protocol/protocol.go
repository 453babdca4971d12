// Package protocol implements the line codec of the chat protocol: a command
// name followed by |name=value sections, e.g. SEND|username=alice|msg=hi there.
package protocol

import (
	"strings"

	"github.com/pichat-dev/pichat-go-server/internal/model"
)

const Separator = "|"

// Command is one parsed request line. Name is kept as received; the
// dispatcher normalizes case on lookup.
type Command struct {
	Name string
	Args map[string]string
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// Parse decodes a request line. A bare command without the separator is valid
// and yields an empty argument map. Parse is pure and safe for concurrent use.
func Parse(line string) (Command, error) {
	parts := strings.Split(line, Separator)

	name := strings.TrimSpace(parts[0])
	if !isAlpha(strings.TrimPrefix(name, "_")) {
		return Command{}, &model.SyntaxError{Input: parts[0]}
	}

	cmd := Command{Name: name, Args: make(map[string]string, len(parts)-1)}
	for _, section := range parts[1:] {
		key, value, found := strings.Cut(section, "=")
		key = strings.TrimSpace(key)
		if !found || !isAlpha(key) || value == "" {
			return Command{}, &model.SyntaxError{Input: section}
		}
		cmd.Args[key] = value
	}
	return cmd, nil
}
