package activity

import (
	"strings"

	"github.com/sells-group/dco-dashboard/internal/sheet"
)

// All disables a filter predicate. Normalized keys are uppercase, so the
// sentinel never collides with a real value.
const All = "all"

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All
}

// Filter keeps the records matching line and machine, preserving order.
// Either value may be All to match everything. Values are key-normalized
// before comparison.
func Filter(t *Table, line, machine string) *Table {
	if isAll(line) && isAll(machine) {
		return t
	}
	wantLine, wantMachine := sheet.NormalizeKey(line), sheet.NormalizeKey(machine)
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		if !isAll(line) && r.Line != wantLine {
			continue
		}
		if !isAll(machine) && r.Machine != wantMachine {
			continue
		}
		out = append(out, r)
	}
	return t.derive(out)
}

// LatestPerGroup keeps the first record of each (line, machine) group in
// table order. On a newest-first table that is the most recent record.
// Groups appear in order of first occurrence; blank keys form a group too.
func LatestPerGroup(t *Table) *Table {
	seen := make(map[Key]struct{})
	out := make([]Record, 0)
	for _, r := range t.records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return t.derive(out)
}

// HistoryForGroup returns every record for the exact key, newest first.
// Callers pass the unfiltered table. No match yields an empty table.
func HistoryForGroup(t *Table, line, machine string) *Table {
	k := Key{Line: sheet.NormalizeKey(line), Machine: sheet.NormalizeKey(machine)}
	out := make([]Record, 0)
	for _, r := range t.records {
		if r.Key() == k {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return t.derive(out)
}
