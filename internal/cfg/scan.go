package cfg

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// The simulator's config files are historically cp1252. Valid UTF-8 input
// is taken as-is; anything else is decoded as cp1252 and re-encoded the
// same way on serialization.
func decodeBytes(data []byte) (string, bool) {
	if utf8.Valid(data) {
		return string(data), false
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data), false
	}
	return string(s), true
}

// splitLines cuts text into lines without terminators and reports the
// dominant end-of-line flavor and whether the text ends with a newline.
func splitLines(text string) (lines []string, eol string, finalEOL bool) {
	eol = "\r\n"
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		if i == 0 || text[i-1] != '\r' {
			eol = "\n"
		}
	}
	if text == "" {
		return nil, eol, false
	}
	finalEOL = strings.HasSuffix(text, "\n")
	body := strings.TrimSuffix(text, "\n")
	body = strings.TrimSuffix(body, "\r")
	lines = strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, eol, finalEOL
}

type lineClass int

const (
	classBlank lineClass = iota
	classComment
	classHeader
	classBadHeader
	classProperty
)

// classify follows the simulator's rules: a trimmed line that starts with
// "[", ends with "]" and is longer than two runes opens a section. "#"
// lines are decoration. Everything else is a positional property.
func classify(line string) (lineClass, string) {
	t := strings.TrimSpace(line)
	switch {
	case t == "":
		return classBlank, ""
	case strings.HasPrefix(t, "#"):
		return classComment, ""
	case strings.HasPrefix(t, "["):
		if len(t) > 2 && strings.HasSuffix(t, "]") {
			return classHeader, t[1 : len(t)-1]
		}
		return classBadHeader, ""
	default:
		return classProperty, ""
	}
}

// splitKeyValue detects key=value lines. The key must be a bare
// identifier; anything else stays a plain positional value.
func splitKeyValue(line string) (key, sep string) {
	t := strings.TrimSpace(line)
	eq := strings.IndexByte(t, '=')
	if eq <= 0 {
		return "", ""
	}
	k := strings.TrimRight(t[:eq], " \t")
	if !isIdent(k) {
		return "", ""
	}
	end := eq + 1
	for end < len(t) && (t[end] == ' ' || t[end] == '\t') {
		end++
	}
	return k, t[len(k):end]
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
