// Package library loads the technical document library: manuals, PLC
// programs and procedures uploaded through a form, each linked to a
// machine and a category.
package library

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/dco-dashboard/internal/metrics"
	"github.com/sells-group/dco-dashboard/internal/sheet"
)

// All disables a filter predicate.
const All = "all"

// Canonical column names.
const (
	ColTimestamp    = "timestamp"
	ColName         = "name"
	ColEquipment    = "equipment"
	ColCategory     = "category"
	ColDescription  = "description"
	ColDocumentLink = "document_link"
)

// Schema maps the library form's headers onto canonical columns.
var Schema = sheet.NewSchema(
	[]sheet.Field{
		{Name: ColTimestamp, Aliases: []string{"Marca temporal"}},
		{Name: ColName, Aliases: []string{"Nombre del documento", "Nombre"}},
		{Name: ColEquipment, Aliases: []string{"Equipo o maquina relacionado", "Equipo"}},
		{Name: ColCategory, Aliases: []string{"Categoria del recurso", "Categoria"}},
		{Name: ColDescription, Aliases: []string{"Descripcion breve", "Descripcion"}},
		{Name: ColDocumentLink, Aliases: []string{"Subir archivo_rec", "Archivo"}},
	},
	[]string{ColName, ColEquipment, ColCategory},
	[]string{ColName, ColEquipment, ColCategory},
)

// Document is one library entry. Name, Equipment and Category are
// uppercased.
type Document struct {
	Timestamp   time.Time `json:"timestamp"`
	Name        string    `json:"name"`
	Equipment   string    `json:"equipment"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"document_link,omitempty"`
}

// Catalog is an immutable list of documents sorted by name.
type Catalog struct {
	generation uuid.UUID
	docs       []Document
	warnings   []sheet.Warning
	fetchedAt  time.Time
}

// NewCatalog sorts docs by name and wraps them.
func NewCatalog(docs []Document, warnings []sheet.Warning, fetchedAt time.Time) *Catalog {
	docs = slices.Clone(docs)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return &Catalog{
		generation: uuid.New(),
		docs:       docs,
		warnings:   slices.Clone(warnings),
		fetchedAt:  fetchedAt,
	}
}

// Generation identifies the load that produced the catalog.
func (c *Catalog) Generation() uuid.UUID { return c.generation }

// Len returns the number of documents.
func (c *Catalog) Len() int { return len(c.docs) }

// Documents returns a copy of the documents.
func (c *Catalog) Documents() []Document { return slices.Clone(c.docs) }

// Warnings returns the notices raised while loading.
func (c *Catalog) Warnings() []sheet.Warning { return slices.Clone(c.warnings) }

// FetchedAt returns when the source was fetched.
func (c *Catalog) FetchedAt() time.Time { return c.fetchedAt }

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	return c.distinct(func(d Document) string { return d.Category })
}

// Equipment returns the distinct equipment values, sorted.
func (c *Catalog) Equipment() []string {
	return c.distinct(func(d Document) string { return d.Equipment })
}

func (c *Catalog) distinct(field func(Document) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, d := range c.docs {
		v := field(d)
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Filter keeps documents matching category and equipment. All or "" match
// everything.
func (c *Catalog) Filter(category, equipment string) *Catalog {
	isAll := func(v string) bool {
		v = strings.TrimSpace(v)
		return v == "" || v == All
	}
	if isAll(category) && isAll(equipment) {
		return c
	}
	wantCat, wantEq := sheet.NormalizeKey(category), sheet.NormalizeKey(equipment)
	out := make([]Document, 0, len(c.docs))
	for _, d := range c.docs {
		if !isAll(category) && d.Category != wantCat {
			continue
		}
		if !isAll(equipment) && d.Equipment != wantEq {
			continue
		}
		out = append(out, d)
	}
	return &Catalog{
		generation: c.generation,
		docs:       out,
		warnings:   c.warnings,
		fetchedAt:  c.fetchedAt,
	}
}

// Loader produces catalogs from a configured source.
type Loader struct {
	sheets *sheet.Loader
	source sheet.Source
	times  sheet.TimeParser
}

// NewLoader creates a Loader reading src through sheets.
func NewLoader(sheets *sheet.Loader, src sheet.Source, times sheet.TimeParser) *Loader {
	return &Loader{sheets: sheets, source: src, times: times}
}

// Load fetches the library export. It never fails and never returns nil.
func (l *Loader) Load(ctx context.Context) *Catalog {
	res := l.sheets.Load(ctx, l.source, Schema)
	f := res.Frame

	warnings := res.Warnings
	stamps, w := l.times.Column(l.source.Name, f, ColTimestamp)
	if w != nil {
		zap.L().Warn("unreadable upload timestamps",
			zap.String("source", l.source.Name),
			zap.Int("rows", w.Rows),
		)
		metrics.AddWarning(l.source.Name, string(w.Kind))
		warnings = append(warnings, *w)
	}
	docs := make([]Document, f.Len())
	for i := range docs {
		docs[i] = Document{
			Timestamp:   stamps[i],
			Name:        f.Get(i, ColName),
			Equipment:   f.Get(i, ColEquipment),
			Category:    f.Get(i, ColCategory),
			Description: f.Get(i, ColDescription),
			Link:        f.Get(i, ColDocumentLink),
		}
	}

	c := NewCatalog(docs, warnings, res.FetchedAt)
	metrics.SetRows(l.source.Name, c.Len())
	return c
}
