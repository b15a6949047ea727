package cfg

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// String serializes the document back to text: every preserved line
// verbatim, in order, with the recorded line-ending flavor.
func (d *Document) String() string {
	var lines []string
	lines = append(lines, d.Prolog...)
	for _, s := range d.Sections {
		lines = append(lines, s.Comments...)
		lines = append(lines, s.Raw)
		for _, p := range s.Props {
			lines = append(lines, p.Comments...)
			lines = append(lines, p.Raw)
		}
	}
	lines = append(lines, d.Epilog...)

	eol := d.EOL
	if eol == "" {
		eol = "\r\n"
	}
	out := strings.Join(lines, eol)
	if d.FinalEOL && len(lines) > 0 {
		out += eol
	}
	if d.bom {
		out = "\ufeff" + out
	}
	return out
}

// Serialize returns the document as file bytes, re-encoding to cp1252
// when the input was cp1252. Characters without a cp1252 form degrade to
// substitutes rather than failing the write.
func (d *Document) Serialize() []byte {
	text := d.String()
	if !d.legacy1252 {
		return []byte(text)
	}
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	out, err := enc.Bytes([]byte(text))
	if err != nil {
		return []byte(text)
	}
	return out
}
