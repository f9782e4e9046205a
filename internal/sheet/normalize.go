package sheet

import (
	"fmt"
	"strings"
)

// DefaultPlaceholder fills required columns missing from an export.
const DefaultPlaceholder = "NOT AVAILABLE"

// Normalize converts raw rows (header first) into a Frame with every
// schema column present:
//
//   - headers are trimmed and renamed to canonical names via Schema.Resolve
//   - required columns missing from the export are filled with placeholder
//   - other missing schema columns are present but empty (null)
//   - key columns are uppercased and trimmed
//   - unrecognized headers pass through after the schema columns
//   - rows with only blank cells are dropped
//
// Problems are reported as warnings, never errors.
func Normalize(source string, raw [][]string, s *Schema, placeholder string) (*Frame, []Warning) {
	var warnings []Warning
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	var header []string
	var body [][]string
	if len(raw) > 0 {
		header, body = raw[0], raw[1:]
	}

	// canonical name -> source index
	srcIdx := make(map[string]int)
	type passthrough struct {
		name string
		idx  int
	}
	var extra []passthrough
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			continue
		}
		name, ok := s.Resolve(h)
		if !ok {
			extra = append(extra, passthrough{name: h, idx: i})
			continue
		}
		if _, claimed := srcIdx[name]; claimed {
			warnings = append(warnings, Warning{
				Kind:    KindSchema,
				Source:  source,
				Field:   name,
				Message: fmt.Sprintf("column %q duplicates %q and was ignored", h, name),
			})
			extra = append(extra, passthrough{name: h, idx: i})
			continue
		}
		srcIdx[name] = i
	}

	columns := s.Columns()
	for _, f := range columns {
		if _, ok := srcIdx[f]; ok || !s.isRequired(f) {
			continue
		}
		warnings = append(warnings, Warning{
			Kind:    KindSchema,
			Source:  source,
			Field:   f,
			Message: fmt.Sprintf("column %q not found; using %q", f, placeholder),
		})
	}
	for _, e := range extra {
		columns = append(columns, e.name)
	}

	rows := make([][]string, 0, len(body))
	for _, r := range body {
		if blankRow(r) {
			continue
		}
		row := make([]string, len(columns))
		for j, f := range s.Fields {
			i, ok := srcIdx[f.Name]
			switch {
			case ok:
				row[j] = cell(r, i)
			case s.isRequired(f.Name):
				row[j] = placeholder
			}
			if s.isKey(f.Name) {
				row[j] = NormalizeKey(row[j])
			}
		}
		for k, e := range extra {
			row[len(s.Fields)+k] = cell(r, e.idx)
		}
		rows = append(rows, row)
	}

	return NewFrame(columns, rows), warnings
}

// EmptyFrame returns a zero-row frame carrying every schema column.
func EmptyFrame(s *Schema) *Frame {
	return NewFrame(s.Columns(), nil)
}

func cell(r []string, i int) string {
	if i < len(r) {
		return r[i]
	}
	return ""
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
