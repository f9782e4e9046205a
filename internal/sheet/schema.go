// Package sheet turns a raw spreadsheet export into a normalized frame with
// a stable, predictable column schema.
package sheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is a canonical column and the header variants that map onto it.
type Field struct {
	Name    string
	Aliases []string
}

// Schema describes the canonical columns of one export.
type Schema struct {
	Fields []Field
	// Required fields are synthesized with the placeholder when the export
	// lacks them.
	Required []string
	// Keys are uppercased and trimmed so they can be compared for equality.
	Keys []string

	byFolded map[string]string
}

// NewSchema builds a Schema and indexes every alias by its folded form.
// A field's canonical name always matches itself.
func NewSchema(fields []Field, required, keys []string) *Schema {
	s := &Schema{
		Fields:   fields,
		Required: required,
		Keys:     keys,
		byFolded: make(map[string]string),
	}
	for _, f := range fields {
		s.byFolded[FoldHeader(f.Name)] = f.Name
		for _, a := range f.Aliases {
			s.byFolded[FoldHeader(a)] = f.Name
		}
	}
	return s
}

// Columns returns the canonical column names in declaration order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Resolve maps a source header to its canonical name. Matching ignores case,
// accents and repeated whitespace, so "LÍNEA", "linea" and " Línea " all
// resolve the same way.
func (s *Schema) Resolve(header string) (string, bool) {
	name, ok := s.byFolded[FoldHeader(header)]
	return name, ok
}

func (s *Schema) isRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

func (s *Schema) isKey(name string) bool {
	for _, k := range s.Keys {
		if k == name {
			return true
		}
	}
	return false
}

// FoldHeader reduces a header to a comparison form: accents stripped,
// case folded, whitespace collapsed to single spaces, and ends trimmed.
func FoldHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, h)
	if err != nil {
		stripped = h
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// NormalizeKey uppercases and trims a group key value. It is idempotent.
func NormalizeKey(v string) string {
	return strings.TrimSpace(cases.Upper(language.Und).String(v))
}
