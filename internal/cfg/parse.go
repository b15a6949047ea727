package cfg

import (
	"fmt"
	"os"
	"strings"
)

// Parse builds a Document from raw file bytes. Structural problems are
// reported as warnings and the offending lines kept verbatim; parsing
// itself never fails.
func Parse(data []byte) (*Document, []Warning) {
	text, legacy := decodeBytes(data)
	doc, warns := parseText(text)
	doc.legacy1252 = legacy
	return doc, warns
}

// ParseString parses already-decoded text.
func ParseString(text string) (*Document, []Warning) {
	return parseText(text)
}

// ParseFile reads and parses one config file.
func ParseFile(path string) (*Document, []Warning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cfg: read %s: %w", path, err)
	}
	doc, warns := Parse(raw)
	return doc, warns, nil
}

func parseText(text string) (*Document, []Warning) {
	doc := &Document{}
	if t, ok := strings.CutPrefix(text, "\ufeff"); ok {
		doc.bom = true
		text = t
	}

	lines, eol, finalEOL := splitLines(text)
	doc.EOL = eol
	doc.FinalEOL = finalEOL

	var warns []Warning
	var cur *Section
	var pending []string

	for i, line := range lines {
		class, name := classify(line)

		if cur == nil && class != classHeader {
			if class == classBadHeader {
				warns = append(warns, Warning{Line: i + 1, Message: "malformed section header " + strings.TrimSpace(line)})
			}
			doc.Prolog = append(doc.Prolog, line)
			continue
		}

		switch class {
		case classHeader:
			cur = &Section{Name: name, Raw: line, Comments: pending}
			pending = nil
			doc.Sections = append(doc.Sections, cur)
		case classBlank, classComment:
			pending = append(pending, line)
		case classBadHeader:
			warns = append(warns, Warning{Line: i + 1, Message: "malformed section header " + strings.TrimSpace(line)})
			fallthrough
		case classProperty:
			key, sep := splitKeyValue(line)
			cur.Props = append(cur.Props, &Property{
				Key:      key,
				Sep:      sep,
				Raw:      line,
				Comments: pending,
			})
			pending = nil
		}
	}
	doc.Epilog = pending
	return doc, warns
}
