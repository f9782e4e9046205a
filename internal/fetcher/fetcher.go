// Package fetcher downloads spreadsheet exports over HTTP, FTP, or the local
// filesystem and parses them as CSV or XLSX rows.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading a remote export.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Mux dispatches downloads to a Fetcher by URL scheme. Bare paths and
// file:// URLs go to File.
type Mux struct {
	HTTP Fetcher
	FTP  Fetcher
	File Fetcher
}

// Download routes rawURL to the fetcher registered for its scheme.
func (m *Mux) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	f, err := m.route(rawURL)
	if err != nil {
		return nil, err
	}
	return f.Download(ctx, rawURL)
}

func (m *Mux) route(rawURL string) (Fetcher, error) {
	scheme := ""
	if i := strings.Index(rawURL, "://"); i > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, eris.Wrap(err, "parse source url")
		}
		scheme = strings.ToLower(u.Scheme)
	}

	var f Fetcher
	switch scheme {
	case "http", "https":
		f = m.HTTP
	case "ftp":
		f = m.FTP
	case "", "file":
		f = m.File
	default:
		return nil, eris.Errorf("unsupported source scheme %q", scheme)
	}
	if f == nil {
		return nil, eris.Errorf("no fetcher configured for scheme %q", scheme)
	}
	return f, nil
}
