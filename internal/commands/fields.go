package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"todoctl/internal/todo"
)

// pairList collects repeated key=value flags in order.
type pairList struct {
	keys   []string
	values []string
}

func (p *pairList) String() string {
	if p == nil {
		return ""
	}
	parts := make([]string, len(p.keys))
	for i := range p.keys {
		parts[i] = p.keys[i] + "=" + p.values[i]
	}
	return strings.Join(parts, ",")
}

// Set implements flag.Value.
func (p *pairList) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
	return nil
}

func (p *pairList) reset() {
	p.keys = nil
	p.values = nil
}

// applyTo copies the pairs into data, later pairs overwriting earlier ones.
func (p *pairList) applyTo(data todo.Payload) {
	for i, k := range p.keys {
		data[k] = parseFieldValue(p.values[i])
	}
}

// parseFieldValue turns a command-line value into a JSON value:
// true/false, integers, null, otherwise the string itself.
func parseFieldValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// parseID returns id as a number when it is one, so payloads carry it the way the backend stores it.
func parseID(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}

// parseWhen accepts YYYY-MM-DD or YYYY-MM-DDTHH:MM[:SS] and returns the
// backend's datetime form. Date-only values start at midnight.
func parseWhen(s string) (string, error) {
	s = strings.TrimSpace(s)
	layouts := []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", todo.DateLayout}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timestampLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time: %s", s)
}

const timestampLayout = "2006-01-02T15:04:05"
