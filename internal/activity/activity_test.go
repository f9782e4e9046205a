package activity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dco-dashboard/internal/fetcher"
	"github.com/sells-group/dco-dashboard/internal/sheet"
)

type stubFetcher struct {
	body string
	err  error
}

func (s stubFetcher) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func loadCSV(t *testing.T, body string) *Table {
	t.Helper()
	l := NewLoader(
		sheet.NewLoader(stubFetcher{body: body}),
		sheet.Source{Name: "activities", URL: "https://example.com/export?format=csv"},
		sheet.TimeParser{Location: time.UTC},
	)
	tbl := l.Load(context.Background())
	require.NotNil(t, tbl)
	return tbl
}

func rec(ts string, line, machine, activity string) Record {
	r := Record{Line: line, Machine: machine, Activity: activity}
	if ts != "" {
		r.Timestamp, _ = time.Parse("2006-01-02", ts)
	}
	return r
}

func TestLoad_SpanishHeaders(t *testing.T) {
	tbl := loadCSV(t, "Marca temporal,Linea,Maquina,Nombre de la actividad\n"+
		"2024-01-01 10:00,linea a ,maquina 1,Inspección\n")

	require.Equal(t, 1, tbl.Len())
	r := tbl.Records()[0]
	assert.Equal(t, "LINEA A", r.Line)
	assert.Equal(t, "MAQUINA 1", r.Machine)
	assert.Equal(t, "Inspección", r.Activity)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), r.Timestamp)

	// description was missing from the export.
	assert.Equal(t, sheet.DefaultPlaceholder, r.Description)
	require.Len(t, tbl.Warnings(), 1)
	assert.Equal(t, ColDescription, tbl.Warnings()[0].Field)
}

func TestLoad_AllColumns(t *testing.T) {
	tbl := loadCSV(t, "Marca temporal,Nombre de la Actividad,Descipcion,Fecha,Linea,Maquina,Agrega el archivo PDF o escaneado\n"+
		"12/22/2025 15:42:59,Cambio de rodillo,Se cambió,22/12/2025,L1,m-01,https://drive.google.com/open?id=abc\n")

	require.Equal(t, 1, tbl.Len())
	assert.Empty(t, tbl.Warnings())
	r := tbl.Records()[0]
	assert.Equal(t, "Cambio de rodillo", r.Activity)
	assert.Equal(t, "Se cambió", r.Description)
	assert.Equal(t, "22/12/2025", r.Date)
	assert.Equal(t, "M-01", r.Machine)
	assert.Equal(t, "https://drive.google.com/open?id=abc", r.DocumentLink)
}

func TestLoad_MissingMachineColumn(t *testing.T) {
	tbl := loadCSV(t, "Marca temporal,Linea,Nombre de la Actividad,Descripcion\n"+
		"2024-01-01,L1,a,d\n"+
		"2024-01-02,L2,b,d\n")

	require.Equal(t, 2, tbl.Len())
	for _, r := range tbl.Records() {
		assert.Equal(t, sheet.DefaultPlaceholder, r.Machine)
	}
	assert.Equal(t, []string{sheet.DefaultPlaceholder}, tbl.Machines())
	assert.Equal(t, []string{"L1", "L2"}, tbl.Lines())

	require.Len(t, tbl.Warnings(), 1)
	assert.Equal(t, sheet.KindSchema, tbl.Warnings()[0].Kind)
}

func TestLoad_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	l := NewLoader(
		sheet.NewLoader(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})),
		sheet.Source{Name: "activities", URL: srv.URL},
		sheet.TimeParser{},
	)
	tbl := l.Load(context.Background())
	require.NotNil(t, tbl)
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Lines())
	assert.Empty(t, tbl.Machines())
	require.Len(t, tbl.Warnings(), 1)
	assert.Equal(t, sheet.KindFetch, tbl.Warnings()[0].Kind)

	assert.Equal(t, 0, LatestPerGroup(tbl).Len())
	assert.Equal(t, 0, HistoryForGroup(tbl, "L1", "M1").Len())
}

func TestLoad_SortsNewestFirstNullsLast(t *testing.T) {
	tbl := loadCSV(t, "Marca temporal,Linea,Maquina,Nombre de la Actividad,Descripcion\n"+
		"2024-01-01,L,M,old,\n"+
		"ayer,L,M,bad,\n"+
		"2024-03-01,L,M,new,\n"+
		",L,M,blank,\n"+
		"2024-03-01,L,M,new-tie,\n")

	var got []string
	for _, r := range tbl.Records() {
		got = append(got, r.Activity)
	}
	assert.Equal(t, []string{"new", "new-tie", "old", "bad", "blank"}, got)

	var parse []sheet.Warning
	for _, w := range tbl.Warnings() {
		if w.Kind == sheet.KindParse {
			parse = append(parse, w)
		}
	}
	require.Len(t, parse, 1)
	assert.Equal(t, 1, parse[0].Rows)
}

func TestLoad_NewGenerationPerLoad(t *testing.T) {
	a := loadCSV(t, "Linea,Maquina\nL,M\n")
	b := loadCSV(t, "Linea,Maquina\nL,M\n")
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.Equal(t, a.Generation(), Filter(a, "L", All).Generation())
}

func TestFilter_AllIsIdentity(t *testing.T) {
	tbl := NewTable([]Record{
		rec("2024-02-01", "L1", "M1", "a"),
		rec("2024-01-01", "L2", "M1", "b"),
		rec("", "", "", "c"),
	}, nil, time.Time{})

	for _, tc := range [][2]string{{All, All}, {"", ""}, {" all ", All}} {
		got := Filter(tbl, tc[0], tc[1])
		assert.Equal(t, tbl.Records(), got.Records())
	}
}

func TestFilter(t *testing.T) {
	tbl := NewTable([]Record{
		rec("2024-03-01", "L1", "M1", "a"),
		rec("2024-02-01", "L2", "M1", "b"),
		rec("2024-01-01", "L1", "M2", "c"),
	}, nil, time.Time{})

	acts := func(t *Table) []string {
		var out []string
		for _, r := range t.Records() {
			out = append(out, r.Activity)
		}
		return out
	}

	assert.Equal(t, []string{"a", "c"}, acts(Filter(tbl, "L1", All)))
	assert.Equal(t, []string{"a", "b"}, acts(Filter(tbl, All, "m1")))
	assert.Equal(t, []string{"c"}, acts(Filter(tbl, " l1", "M2 ")))
	assert.Empty(t, acts(Filter(tbl, "L3", All)))
	assert.Equal(t, 3, tbl.Len())
}

func TestLatestPerGroup_TwoRowsSameKey(t *testing.T) {
	tbl := loadCSV(t, "Marca temporal,Linea,Maquina,Nombre de la Actividad,Descripcion\n"+
		"2024-01-01,LINE A,M1,january,\n"+
		"2024-02-01,line a,m1,february,\n")

	latest := LatestPerGroup(tbl)
	require.Equal(t, 1, latest.Len())
	assert.Equal(t, "february", latest.Records()[0].Activity)
	assert.Equal(t, Key{Line: "LINE A", Machine: "M1"}, latest.Records()[0].Key())
	assert.Equal(t, 2, tbl.Len())
}

func TestLatestPerGroup_OneRowPerKeyWithMaxTimestamp(t *testing.T) {
	records := []Record{
		rec("2024-01-05", "L1", "M1", ""),
		rec("2024-01-09", "L1", "M2", ""),
		rec("2024-01-07", "L1", "M1", ""),
		rec("", "L2", "M1", ""),
		rec("2024-01-01", "L2", "M1", ""),
		rec("", "", "", ""),
		rec("", "", "", ""),
	}
	sortNewestFirst(records)
	tbl := NewTable(records, nil, time.Time{})

	latest := LatestPerGroup(tbl)
	counts := make(map[Key]int)
	for _, r := range latest.Records() {
		counts[r.Key()]++
		for _, other := range tbl.Records() {
			if other.Key() == r.Key() && other.HasTimestamp() {
				assert.False(t, other.Timestamp.After(r.Timestamp), "key %s", r.Key())
			}
		}
	}
	assert.Len(t, counts, 4)
	for k, n := range counts {
		assert.Equal(t, 1, n, "key %s", k)
	}
	assert.Equal(t, Key{Line: "L1", Machine: "M2"}, latest.Records()[0].Key())
}

func TestHistoryForGroup(t *testing.T) {
	tbl := NewTable([]Record{
		rec("2024-01-01", "L1", "M1", "old"),
		rec("", "L1", "M1", "undated"),
		rec("2024-02-01", "L2", "M1", "other"),
		rec("2024-03-01", "L1", "M1", "new"),
	}, nil, time.Time{})

	h := HistoryForGroup(tbl, "l1", "m1")
	var got []string
	for _, r := range h.Records() {
		got = append(got, r.Activity)
	}
	assert.Equal(t, []string{"new", "old", "undated"}, got)

	// the source table is untouched
	assert.Equal(t, "old", tbl.Records()[0].Activity)
}

func TestHistoryForGroup_NoMatch(t *testing.T) {
	tbl := NewTable([]Record{rec("2024-01-01", "L1", "M1", "a")}, nil, time.Time{})
	h := HistoryForGroup(tbl, "L9", "M9")
	require.NotNil(t, h)
	assert.Equal(t, 0, h.Len())
	assert.NotNil(t, h.Records())
}

func TestTable_RecordsIsCopy(t *testing.T) {
	tbl := NewTable([]Record{rec("2024-01-01", "L1", "M1", "a")}, nil, time.Time{})
	rs := tbl.Records()
	rs[0].Activity = "mutated"
	assert.Equal(t, "a", tbl.Records()[0].Activity)
}

func TestNormalizationIsIdempotentThroughFilter(t *testing.T) {
	tbl := loadCSV(t, "Linea,Maquina\n linea a ,maquina 1\n")
	r := tbl.Records()[0]
	got := Filter(tbl, r.Line, r.Machine)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, r, got.Records()[0])
	assert.Equal(t, r.Line, sheet.NormalizeKey(r.Line))
}
