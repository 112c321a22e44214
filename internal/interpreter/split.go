package interpreter

import (
	"regexp"
	"strings"
)

var (
	thenPattern        = regexp.MustCompile(`(?i)[,\s]+(?:and\s+)?then\s+`)
	leadingThenPattern = regexp.MustCompile(`(?i)^(?:and\s+)?then\s+`)
)

// SplitCommand breaks a multi-action command into ordered segments on ";",
// newlines, "then" and "and then".
func SplitCommand(command string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(command, func(r rune) bool { return r == ';' || r == '\n' || r == '\r' }) {
		for _, part := range thenPattern.Split(line, -1) {
			part = leadingThenPattern.ReplaceAllString(strings.TrimSpace(part), "")
			part = strings.TrimSpace(strings.TrimRight(part, ".!"))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
