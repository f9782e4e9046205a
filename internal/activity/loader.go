package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/dco-dashboard/internal/metrics"
	"github.com/sells-group/dco-dashboard/internal/sheet"
)

// Canonical column names.
const (
	ColTimestamp    = "timestamp"
	ColActivity     = "activity"
	ColDescription  = "description"
	ColDate         = "date"
	ColLine         = "line"
	ColMachine      = "machine"
	ColDocumentLink = "document_link"
)

// Schema maps the form's header variants onto canonical columns. Matching
// ignores case and accents, so only spelling variants are listed.
var Schema = sheet.NewSchema(
	[]sheet.Field{
		{Name: ColTimestamp, Aliases: []string{"Marca temporal", "Timestamp"}},
		{Name: ColActivity, Aliases: []string{"Nombre de la Actividad", "Actividad"}},
		{Name: ColDescription, Aliases: []string{"Descipcion", "Descripcion", "Descripcion de la actividad"}},
		{Name: ColDate, Aliases: []string{"Fecha"}},
		{Name: ColLine, Aliases: []string{"Linea"}},
		{Name: ColMachine, Aliases: []string{"Maquina"}},
		{Name: ColDocumentLink, Aliases: []string{"Agrega el archivo PDF o escaneado", "Documento", "Archivo"}},
	},
	[]string{ColLine, ColMachine, ColActivity, ColDescription},
	[]string{ColLine, ColMachine},
)

// Loader produces activity tables from a configured source.
type Loader struct {
	sheets *sheet.Loader
	source sheet.Source
	times  sheet.TimeParser
}

// NewLoader creates a Loader reading src through sheets.
func NewLoader(sheets *sheet.Loader, src sheet.Source, times sheet.TimeParser) *Loader {
	return &Loader{sheets: sheets, source: src, times: times}
}

// Load fetches and normalizes the activity export. It never fails and never
// returns nil: problems surface as table warnings and an unreachable source
// yields an empty table.
func (l *Loader) Load(ctx context.Context) *Table {
	res := l.sheets.Load(ctx, l.source, Schema)
	t := FromFrame(l.source.Name, res.Frame, l.times, res.Warnings, res.FetchedAt)
	metrics.SetRows(l.source.Name, t.Len())
	return t
}

// FromFrame converts a normalized frame into a table sorted newest first.
func FromFrame(source string, f *sheet.Frame, times sheet.TimeParser, warnings []sheet.Warning, fetchedAt time.Time) *Table {
	stamps, w := times.Column(source, f, ColTimestamp)
	if w != nil {
		zap.L().Warn("unreadable timestamps",
			zap.String("source", source),
			zap.Int("rows", w.Rows),
		)
		metrics.AddWarning(source, string(w.Kind))
		warnings = append(warnings, *w)
	}

	records := make([]Record, f.Len())
	for i := range records {
		records[i] = Record{
			Timestamp:    stamps[i],
			Line:         f.Get(i, ColLine),
			Machine:      f.Get(i, ColMachine),
			Activity:     f.Get(i, ColActivity),
			Description:  f.Get(i, ColDescription),
			Date:         f.Get(i, ColDate),
			DocumentLink: f.Get(i, ColDocumentLink),
		}
	}
	sortNewestFirst(records)

	t := NewTable(nil, warnings, fetchedAt)
	t.records = records
	return t
}
