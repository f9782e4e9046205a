package sheet

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dco-dashboard/internal/fetcher"
	"github.com/sells-group/dco-dashboard/internal/metrics"
)

// Format is the encoding of a source export.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultMaxBytes caps the size of an export read into memory.
const DefaultMaxBytes = 32 << 20

// Source identifies one remotely fetchable export.
type Source struct {
	Name   string
	URL    string
	Format Format
	// Sheet selects an XLSX worksheet by name; the first sheet when empty.
	Sheet string
	// Delimiter separates CSV fields. Default ','.
	Delimiter rune
}

// Result is the outcome of one load. Frame is never nil.
type Result struct {
	Frame     *Frame
	Warnings  []Warning
	FetchedAt time.Time
}

// Loader fetches exports and normalizes them against a schema.
type Loader struct {
	fetcher     fetcher.Fetcher
	placeholder string
	maxBytes    int64
	now         func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithPlaceholder sets the value synthesized for missing required columns.
func WithPlaceholder(p string) Option {
	return func(l *Loader) { l.placeholder = p }
}

// WithMaxBytes caps the export size.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) { l.maxBytes = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// NewLoader creates a Loader backed by f.
func NewLoader(f fetcher.Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     f,
		placeholder: DefaultPlaceholder,
		maxBytes:    DefaultMaxBytes,
		now:         time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load fetches src and normalizes it against s. It never fails: a fetch
// error yields an empty frame with the full schema plus a KindFetch warning.
func (l *Loader) Load(ctx context.Context, src Source, s *Schema) Result {
	start := l.now()
	raw, err := l.fetch(ctx, src)
	metrics.ObserveFetch(src.Name, err == nil, l.now().Sub(start))

	var res Result
	res.FetchedAt = start
	if err != nil {
		zap.L().Warn("source fetch failed, serving empty table",
			zap.String("source", src.Name),
			zap.Error(err),
		)
		res.Frame = EmptyFrame(s)
		res.Warnings = []Warning{{
			Kind:    KindFetch,
			Source:  src.Name,
			Message: "could not load data: " + rootMessage(err),
		}}
	} else {
		res.Frame, res.Warnings = Normalize(src.Name, raw, s, l.placeholder)
	}

	for _, w := range res.Warnings {
		metrics.AddWarning(src.Name, string(w.Kind))
		if w.Kind != KindFetch {
			zap.L().Warn("source load warning",
				zap.String("source", src.Name),
				zap.String("kind", string(w.Kind)),
				zap.String("field", w.Field),
				zap.String("message", w.Message),
			)
		}
	}

	zap.L().Debug("source loaded",
		zap.String("source", src.Name),
		zap.Int("rows", res.Frame.Len()),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res
}

func (l *Loader) fetch(ctx context.Context, src Source) ([][]string, error) {
	wrap := func(err error) error {
		return &FetchError{Source: src.Name, URL: src.URL, Err: err}
	}

	if strings.TrimSpace(src.URL) == "" {
		return nil, wrap(eris.New("no source url configured"))
	}

	body, err := l.fetcher.Download(ctx, src.URL)
	if err != nil {
		return nil, wrap(err)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(body, l.maxBytes+1))
	if err != nil {
		return nil, wrap(eris.Wrap(err, "read export"))
	}
	if int64(len(data)) > l.maxBytes {
		return nil, wrap(eris.Errorf("export exceeds %d bytes", l.maxBytes))
	}

	rows, err := decode(ctx, data, src)
	if err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

var zipMagic = []byte("PK\x03\x04")

func decode(ctx context.Context, data []byte, src Source) ([][]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, eris.New("export is empty")
	}
	if looksLikeHTML(data) {
		return nil, eris.New("export returned an HTML page instead of a table (is the sheet shared publicly?)")
	}

	format := src.Format
	if format == "" || format == FormatAuto {
		format = FormatCSV
		if bytes.HasPrefix(data, zipMagic) {
			format = FormatXLSX
		}
	}

	switch format {
	case FormatXLSX:
		return fetcher.ReadXLSX(data, fetcher.XLSXOptions{SheetName: src.Sheet})
	case FormatCSV:
		return fetcher.ReadCSV(ctx, bytes.NewReader(data), fetcher.CSVOptions{Delimiter: src.Delimiter, LazyQuotes: true})
	default:
		return nil, eris.Errorf("unknown export format %q", format)
	}
}

func looksLikeHTML(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if strings.HasPrefix(http.DetectContentType(head), "text/html") {
		return true
	}
	lower := bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html"))
}

// rootMessage returns the innermost error message, which is the readable one
// for a dashboard notice.
func rootMessage(err error) string {
	for {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err.Error()
		}
		next := u.Unwrap()
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
