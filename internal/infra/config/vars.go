package config

import (
	"fmt"
	"strings"
)

// expandVars replaces {{name}} placeholders with values from vars.
// Unknown names and malformed placeholders are errors.
func expandVars(input string, vars map[string]string) (string, error) {
	if !strings.Contains(input, "{{") {
		return input, nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", fmt.Errorf("unclosed placeholder")
		}

		name := strings.TrimSpace(rest[:end])
		if name == "" {
			return "", fmt.Errorf("empty placeholder")
		}

		value, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("undefined variable %q", name)
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}
