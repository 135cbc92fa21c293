package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	bareKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	lineBreaks     = regexp.MustCompile(`[ \t]*[\r\n]+[ \t]*`)
)

// commentGap separates an entry's value from its description comment
const commentGap = "  "

// SanitizeDescription collapses line breaks into single spaces, replaces the
// control characters TOML forbids in comments and trims the result, so a
// description always fits in one inline comment.
func SanitizeDescription(s string) string {
	s = lineBreaks.ReplaceAllString(strings.ToValidUTF8(s, ""), " ")
	return strings.TrimSpace(strings.Map(commentSafe, s))
}

func commentSafe(r rune) rune {
	if (r < 0x20 && r != '\t') || r == 0x7f {
		return ' '
	}
	return r
}

// formatKey renders a key bare when TOML allows it and as a basic string otherwise
func formatKey(key string) string {
	if bareKeyPattern.MatchString(key) {
		return key
	}
	return quote(key)
}

// quote renders s as a TOML basic string
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatEntry renders the canonical line for an entry
func formatEntry(key, source, description string) string {
	line := formatKey(key) + " = " + quote(source)
	if description != "" {
		line += commentGap + "# " + description
	}
	return line
}

// formatHeader renders a standard table header for a group
func formatHeader(name string) string {
	return "[" + formatKey(name) + "]"
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func allBlank(lines []string) bool {
	for _, l := range lines {
		if !isBlank(l) {
			return false
		}
	}
	return true
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if !isBlank(l) {
			out = append(out, l)
		}
	}
	return out
}
