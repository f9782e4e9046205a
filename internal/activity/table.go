package activity

import (
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/dco-dashboard/internal/sheet"
)

// Table is an immutable, ordered set of records. Queries never modify a
// table; they return a new one.
type Table struct {
	generation uuid.UUID
	records    []Record
	warnings   []sheet.Warning
	fetchedAt  time.Time
}

// NewTable wraps records without reordering them. The slice is copied.
func NewTable(records []Record, warnings []sheet.Warning, fetchedAt time.Time) *Table {
	return &Table{
		generation: uuid.New(),
		records:    slices.Clone(records),
		warnings:   slices.Clone(warnings),
		fetchedAt:  fetchedAt,
	}
}

// derive builds a query result that shares the parent's load metadata.
func (t *Table) derive(records []Record) *Table {
	return &Table{
		generation: t.generation,
		records:    records,
		warnings:   t.warnings,
		fetchedAt:  t.fetchedAt,
	}
}

// Generation identifies the load that produced the table. Query results
// keep the generation of the table they were derived from.
func (t *Table) Generation() uuid.UUID {
	return t.generation
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the records in table order.
func (t *Table) Records() []Record {
	return slices.Clone(t.records)
}

// Warnings returns the notices raised while loading the table.
func (t *Table) Warnings() []sheet.Warning {
	return slices.Clone(t.warnings)
}

// FetchedAt returns when the source was fetched.
func (t *Table) FetchedAt() time.Time {
	return t.fetchedAt
}

// Lines returns the distinct non-blank line values, sorted.
func (t *Table) Lines() []string {
	return t.distinct(func(r Record) string { return r.Line })
}

// Machines returns the distinct non-blank machine values, sorted.
func (t *Table) Machines() []string {
	return t.distinct(func(r Record) string { return r.Machine })
}

func (t *Table) distinct(field func(Record) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range t.records {
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// sortNewestFirst orders records by timestamp descending. Records without a
// timestamp go last; ties keep their relative order.
func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.HasTimestamp() != b.HasTimestamp() {
			return a.HasTimestamp()
		}
		return a.Timestamp.After(b.Timestamp)
	})
}
