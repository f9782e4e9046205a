package dashboard

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/dco-dashboard/internal/metrics"
)

// Options configures page chrome and the API.
type Options struct {
	Title       string
	Footer      string
	RefreshSecs int
	Columns     int
	CORSOrigins []string
}

// ── Template helpers ──────────────────────────────────────────────────────────

var funcMap = template.FuncMap{
	"fmtStamp": func(t time.Time) string {
		if t.IsZero() {
			return "—"
		}
		return t.Format("2006-01-02 15:04")
	},
	"orDash": func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	},
}

var pages = map[string]*template.Template{
	"activities": template.Must(template.New("page").Funcs(funcMap).Parse(tmplBase + tmplActivities)),
	"library":    template.Must(template.New("page").Funcs(funcMap).Parse(tmplBase + tmplLibrary)),
}

func render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages[page].ExecuteTemplate(w, "base", data); err != nil {
		zap.L().Error("template error", zap.String("page", page), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write json response", zap.Error(err))
	}
}

// NewRouter wires every page and API route.
func NewRouter(svc *Service, opts Options) http.Handler {
	if opts.Columns < 1 {
		opts.Columns = 3
	}
	h := &handlers{svc: svc, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/", h.activitiesPage)
	r.Get("/library", h.libraryPage)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		origins := opts.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/activities", h.apiActivities)
		r.Get("/activities/history", h.apiHistory)
		r.Get("/activities/options", h.apiOptions)
		r.Get("/library", h.apiLibrary)
		r.Post("/refresh", h.apiRefresh)
	})

	return r
}

// accessLog logs each request through zap once it completes.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func columnWidth(n int) string {
	return fmt.Sprintf("%.2f%%", 100/float64(n))
}
