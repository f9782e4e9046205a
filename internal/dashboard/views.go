package dashboard

import (
	"net/url"
	"time"

	"github.com/sells-group/dco-dashboard/internal/activity"
	"github.com/sells-group/dco-dashboard/internal/library"
	"github.com/sells-group/dco-dashboard/internal/sheet"
)

// recordJSON is the API form of a record. Timestamp is null when absent.
type recordJSON struct {
	Timestamp    *time.Time `json:"timestamp"`
	Line         string     `json:"line"`
	Machine      string     `json:"machine"`
	Activity     string     `json:"activity"`
	Description  string     `json:"description"`
	Date         string     `json:"date"`
	DocumentLink string     `json:"document_link"`
}

func toRecordJSON(rs []activity.Record) []recordJSON {
	out := make([]recordJSON, len(rs))
	for i, r := range rs {
		out[i] = recordJSON{
			Line:         r.Line,
			Machine:      r.Machine,
			Activity:     r.Activity,
			Description:  r.Description,
			Date:         r.Date,
			DocumentLink: r.DocumentLink,
		}
		if r.HasTimestamp() {
			ts := r.Timestamp
			out[i].Timestamp = &ts
		}
	}
	return out
}

type tableJSON struct {
	Generation string          `json:"generation"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Count      int             `json:"count"`
	Records    []recordJSON    `json:"records"`
	Warnings   []sheet.Warning `json:"warnings"`
}

func toTableJSON(t *activity.Table) tableJSON {
	w := t.Warnings()
	if w == nil {
		w = []sheet.Warning{}
	}
	return tableJSON{
		Generation: t.Generation().String(),
		FetchedAt:  t.FetchedAt(),
		Count:      t.Len(),
		Records:    toRecordJSON(t.Records()),
		Warnings:   w,
	}
}

type catalogJSON struct {
	Generation string             `json:"generation"`
	FetchedAt  time.Time          `json:"fetched_at"`
	Count      int                `json:"count"`
	Documents  []library.Document `json:"documents"`
	Warnings   []sheet.Warning    `json:"warnings"`
}

func toCatalogJSON(c *library.Catalog) catalogJSON {
	w := c.Warnings()
	if w == nil {
		w = []sheet.Warning{}
	}
	return catalogJSON{
		Generation: c.Generation().String(),
		FetchedAt:  c.FetchedAt(),
		Count:      c.Len(),
		Documents:  c.Documents(),
		Warnings:   w,
	}
}

// activityCard is one summary card: the latest record of a group and the
// link that opens its history.
type activityCard struct {
	activity.Record
	HistoryURL string
}

type activitiesPage struct {
	Nav         string
	Title       string
	Footer      string
	RefreshSecs int
	AutoRefresh bool
	Warnings    []sheet.Warning

	Lines       []string
	Machines    []string
	LineSel     string
	MachineSel  string
	Count       int
	Rows        [][]activityCard
	ColumnWidth string

	Detail   activity.DetailView
	History  []activity.Record
	CloseURL string
}

type libraryPage struct {
	Nav         string
	Title       string
	Footer      string
	RefreshSecs int
	AutoRefresh bool
	Warnings    []sheet.Warning
	Loaded      bool
	Categories  []string
	Equipment   []string
	CategorySel string
	EquipSel    string
	Count       int
	Rows        [][]library.Document
	ColumnWidth string
}

// chunk splits items into rows of n.
func chunk[T any](items []T, n int) [][]T {
	if n < 1 {
		n = 1
	}
	var rows [][]T
	for i := 0; i < len(items); i += n {
		end := min(i+n, len(items))
		rows = append(rows, items[i:end])
	}
	return rows
}

// pageURL builds a dashboard link carrying filters and the detail view.
func pageURL(path, line, machine string, detail activity.DetailView) string {
	q := url.Values{}
	if line != "" && line != activity.All {
		q.Set("line", line)
	}
	if machine != "" && machine != activity.All {
		q.Set("machine", machine)
	}
	detail.Encode(q)
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
