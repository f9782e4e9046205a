package activity

import (
	"net/url"
	"strings"
)

// Query parameters carrying the detail view across requests.
const (
	ParamHistoryLine    = "hline"
	ParamHistoryMachine = "hmachine"
)

// DetailView is the per-session history modal state: closed, or open on
// one group key. Auto-refresh is suspended while it is open. The zero value
// is closed.
type DetailView struct {
	open bool
	key  Key
}

// Closed returns a closed view.
func Closed() DetailView {
	return DetailView{}
}

// Opened returns a view open on k.
func Opened(k Key) DetailView {
	return DetailView{open: true, key: k}
}

// Open transitions to the open state on k. Opening an open view switches
// its key.
func (v DetailView) Open(k Key) DetailView {
	return Opened(k)
}

// Close transitions to the closed state.
func (v DetailView) Close() DetailView {
	return Closed()
}

// IsOpen reports whether the view is open.
func (v DetailView) IsOpen() bool {
	return v.open
}

// Key returns the open group key; the zero Key when closed.
func (v DetailView) Key() Key {
	return v.key
}

// AutoRefresh reports whether periodic refresh may run.
func (v DetailView) AutoRefresh() bool {
	return !v.open
}

// DetailFromQuery decodes the view from request parameters. The view is
// open when either history parameter is present.
func DetailFromQuery(q url.Values) DetailView {
	if !q.Has(ParamHistoryLine) && !q.Has(ParamHistoryMachine) {
		return Closed()
	}
	return Opened(Key{
		Line:    strings.TrimSpace(q.Get(ParamHistoryLine)),
		Machine: strings.TrimSpace(q.Get(ParamHistoryMachine)),
	})
}

// Encode writes the view into q, removing the history parameters when
// closed.
func (v DetailView) Encode(q url.Values) {
	if !v.open {
		q.Del(ParamHistoryLine)
		q.Del(ParamHistoryMachine)
		return
	}
	q.Set(ParamHistoryLine, v.key.Line)
	q.Set(ParamHistoryMachine, v.key.Machine)
}
