package dashboard

import (
	"net/http"
	"strings"

	"github.com/sells-group/dco-dashboard/internal/activity"
	"github.com/sells-group/dco-dashboard/internal/sheet"
)

type handlers struct {
	svc  *Service
	opts Options
}

// selection reads a filter parameter, defaulting to All. Concrete values
// are key-normalized so they match the option list.
func selection(r *http.Request, name string) string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" || v == activity.All {
		return activity.All
	}
	return sheet.NormalizeKey(v)
}

func (h *handlers) activitiesPage(w http.ResponseWriter, r *http.Request) {
	full := h.svc.Activities(r.Context())
	line, machine := selection(r, "line"), selection(r, "machine")
	detail := activity.DetailFromQuery(r.URL.Query())

	latest := activity.LatestPerGroup(activity.Filter(full, line, machine))
	cards := make([]activityCard, 0, latest.Len())
	for _, rec := range latest.Records() {
		cards = append(cards, activityCard{
			Record:     rec,
			HistoryURL: pageURL("/", line, machine, detail.Open(rec.Key())),
		})
	}

	page := activitiesPage{
		Nav:         "activities",
		Title:       h.opts.Title,
		Footer:      h.opts.Footer,
		RefreshSecs: h.opts.RefreshSecs,
		AutoRefresh: detail.AutoRefresh(),
		Warnings:    full.Warnings(),
		Lines:       full.Lines(),
		Machines:    full.Machines(),
		LineSel:     line,
		MachineSel:  machine,
		Count:       len(cards),
		Rows:        chunk(cards, h.opts.Columns),
		ColumnWidth: columnWidth(h.opts.Columns),
		Detail:      detail,
		CloseURL:    pageURL("/", line, machine, detail.Close()),
	}
	if detail.IsOpen() {
		k := detail.Key()
		page.History = activity.HistoryForGroup(full, k.Line, k.Machine).Records()
	}
	render(w, "activities", page)
}

func (h *handlers) libraryPage(w http.ResponseWriter, r *http.Request) {
	full := h.svc.Library(r.Context())
	category, equipment := selection(r, "category"), selection(r, "equipment")
	filtered := full.Filter(category, equipment)

	render(w, "library", libraryPage{
		Nav:         "library",
		Title:       "Biblioteca Técnica",
		Footer:      h.opts.Footer,
		Warnings:    full.Warnings(),
		Loaded:      full.Len() > 0,
		Categories:  full.Categories(),
		Equipment:   full.Equipment(),
		CategorySel: category,
		EquipSel:    equipment,
		Count:       filtered.Len(),
		Rows:        chunk(filtered.Documents(), h.opts.Columns),
		ColumnWidth: columnWidth(h.opts.Columns),
	})
}

// apiActivities returns the filtered table, or its latest-per-group
// projection with view=latest.
func (h *handlers) apiActivities(w http.ResponseWriter, r *http.Request) {
	t := activity.Filter(h.svc.Activities(r.Context()), selection(r, "line"), selection(r, "machine"))
	switch r.URL.Query().Get("view") {
	case "", "all":
	case "latest":
		t = activity.LatestPerGroup(t)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "view must be all or latest"})
		return
	}
	writeJSON(w, http.StatusOK, toTableJSON(t))
}

func (h *handlers) apiHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("line") || !q.Has("machine") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "line and machine are required"})
		return
	}
	t := activity.HistoryForGroup(h.svc.Activities(r.Context()), q.Get("line"), q.Get("machine"))
	writeJSON(w, http.StatusOK, toTableJSON(t))
}

func (h *handlers) apiOptions(w http.ResponseWriter, r *http.Request) {
	t := h.svc.Activities(r.Context())
	writeJSON(w, http.StatusOK, map[string][]string{
		"lines":    t.Lines(),
		"machines": t.Machines(),
	})
}

func (h *handlers) apiLibrary(w http.ResponseWriter, r *http.Request) {
	c := h.svc.Library(r.Context()).Filter(selection(r, "category"), selection(r, "equipment"))
	writeJSON(w, http.StatusOK, toCatalogJSON(c))
}

// apiRefresh drops the cached tables so the next read refetches.
func (h *handlers) apiRefresh(w http.ResponseWriter, _ *http.Request) {
	h.svc.Invalidate()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "invalidated"})
}
