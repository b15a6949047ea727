// Package cfg parses and serializes the bracketed-section text format
// used by model and scenery configuration files. Parsing preserves every
// input line so untouched documents serialize back byte for byte.
package cfg

import (
	"strconv"
	"strings"
)

// Document is an ordered sequence of sections plus the loose lines around
// them. EOL and FinalEOL record the input's line-ending flavor so
// serialization reproduces it.
type Document struct {
	EOL      string
	FinalEOL bool

	// Prolog holds verbatim lines appearing before the first section
	// header. Epilog holds trailing decoration after the last property.
	Prolog []string
	Epilog []string

	Sections []*Section

	// legacy1252 marks input that was decoded from cp1252 bytes;
	// Serialize encodes back to cp1252 in that case. bom restores a
	// leading UTF-8 byte-order mark.
	legacy1252 bool
	bom        bool
}

// Section is one [name] block. Comments are the decoration lines
// immediately preceding the header.
type Section struct {
	Name     string
	Raw      string
	Comments []string
	Props    []*Property
}

// Property is one value line inside a section. Params are positional:
// the n-th property of a section is that section's n-th parameter.
// Comments are the decoration lines immediately preceding this line.
type Property struct {
	// Key and Sep are set only for lines of the form key=value; the
	// positional Value always remains the authoritative content.
	Key string
	Sep string

	Raw      string
	Comments []string

	val *Value
}

// ValueKind tags the parsed interpretation of a property value.
type ValueKind int

const (
	ValueRaw ValueKind = iota
	ValueNumber
	ValueText
	ValuePath
)

// Value is the parsed-value cache entry: a tagged variant with the raw
// string always recoverable from the owning Property.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Warning reports a line the tokenizer could not interpret structurally.
// The line is preserved as an opaque property; parsing never aborts.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return "line " + strconv.Itoa(w.Line) + ": " + w.Message
}

// Is reports whether the section has the given name, compared
// case-insensitively as the simulator does.
func (s *Section) Is(name string) bool {
	return strings.EqualFold(s.Name, name)
}

// Param returns the i-th positional parameter value, or "" when absent.
func (s *Section) Param(i int) string {
	if i < 0 || i >= len(s.Props) {
		return ""
	}
	return s.Props[i].Value()
}

// Params returns all positional parameter values in order.
func (s *Section) Params() []string {
	out := make([]string, len(s.Props))
	for i, p := range s.Props {
		out[i] = p.Value()
	}
	return out
}

// Float returns the i-th parameter as a float, with ok=false when the
// parameter is missing or not numeric.
func (s *Section) Float(i int) (float64, bool) {
	v, err := strconv.ParseFloat(s.Param(i), 64)
	return v, err == nil
}

// Int returns the i-th parameter as an int.
func (s *Section) Int(i int) (int, bool) {
	v, err := strconv.Atoi(s.Param(i))
	return v, err == nil
}

// Append adds a canonical positional parameter line.
func (s *Section) Append(value string) *Property {
	p := &Property{Raw: value}
	s.Props = append(s.Props, p)
	return p
}

// Value returns the line's content: for key=value lines the part after
// the separator, otherwise the whole line, whitespace-trimmed.
func (p *Property) Value() string {
	if p.Sep != "" {
		return strings.TrimSpace(p.Raw[strings.Index(p.Raw, "=")+1:])
	}
	return strings.TrimSpace(p.Raw)
}

// SetValue rewrites the line with canonical formatting and drops the
// parse cache.
func (p *Property) SetValue(v string) {
	if p.Key != "" && p.Sep != "" {
		p.Raw = p.Key + p.Sep + v
	} else {
		p.Raw = v
	}
	p.val = nil
}

// Float parses the value as a number.
func (p *Property) Float() (float64, bool) {
	v, err := strconv.ParseFloat(p.Value(), 64)
	return v, err == nil
}

// Parsed classifies the value once and caches the result. The raw line
// is never lost, so unknown values survive round trips untouched.
func (p *Property) Parsed() Value {
	if p.val == nil {
		v := classifyValue(p.Value())
		p.val = &v
	}
	return *p.val
}

func classifyValue(s string) Value {
	if s == "" {
		return Value{Kind: ValueRaw, Str: s}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return Value{Kind: ValueNumber, Num: n, Str: s}
	}
	if looksLikePath(s) {
		return Value{Kind: ValuePath, Str: s}
	}
	return Value{Kind: ValueText, Str: s}
}

func looksLikePath(s string) bool {
	if strings.ContainsAny(s, "\\/") {
		return true
	}
	dot := strings.LastIndexByte(s, '.')
	return dot > 0 && dot < len(s)-1 && !strings.ContainsRune(s[dot+1:], ' ')
}

// Section returns the first section with the given name, or nil.
func (d *Document) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Is(name) {
			return s
		}
	}
	return nil
}

// Has reports whether any section with the given name exists.
func (d *Document) Has(name string) bool {
	return d.Section(name) != nil
}

// AddSection appends a new section with canonical formatting and the
// given positional parameters.
func (d *Document) AddSection(name string, params ...string) *Section {
	s := &Section{Name: name, Raw: "[" + name + "]"}
	for _, v := range params {
		s.Append(v)
	}
	d.Sections = append(d.Sections, s)
	return s
}

// RemoveSections drops every section with the given name, keeping
// document order otherwise.
func (d *Document) RemoveSections(name string) {
	kept := d.Sections[:0]
	for _, s := range d.Sections {
		if !s.Is(name) {
			kept = append(kept, s)
		}
	}
	d.Sections = kept
}
