package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(HTTPOptions{
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		Backoff:    time.Millisecond,
		RatePerSec: 1000,
	})
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close() //nolint:errcheck
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestHTTPFetcher_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte("Linea,Maquina\nA,1\n"))
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL+"/export?format=csv")
	require.NoError(t, err)
	assert.Equal(t, "Linea,Maquina\nA,1\n", readAll(t, body))
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", readAll(t, body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_NoRetriesMakesOneRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Backoff: time.Second, RatePerSec: 1000})
	start := time.Now()
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(1), calls.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPFetcher_NegativeRetriesClampedToZero(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{MaxRetries: -2})
	assert.Equal(t, 0, f.opts.MaxRetries)
}

func TestHTTPFetcher_NotFoundNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_RateLimitedHalvesRate(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	body, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	_ = readAll(t, body)

	lim := f.limiterFor(srv.URL)
	// halved to 500, then +20% on success
	assert.InDelta(t, 600, float64(lim.currentRate), 0.01)
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestFetcher().Download(ctx, srv.URL)
	require.Error(t, err)
}

func TestHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{})
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
	assert.Equal(t, 0, f.opts.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, f.opts.Backoff)
	assert.InDelta(t, 5.0, f.opts.RatePerSec, 0.001)
	assert.Equal(t, "dco-dashboard/1.0", f.opts.UserAgent)
}

func TestHTTPFetcher_LimiterPerHost(t *testing.T) {
	f := newTestFetcher()
	a := f.limiterFor("https://docs.google.com/spreadsheets/d/x/export")
	b := f.limiterFor("https://docs.google.com/spreadsheets/d/y/export")
	c := f.limiterFor("https://other.example.com/file.csv")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestAdaptiveLimiter_Bounds(t *testing.T) {
	lim := NewAdaptiveLimiter(rate.Limit(10), 10)
	for range 20 {
		lim.OnSuccess()
	}
	assert.InDelta(t, 20, float64(lim.currentRate), 0.001)
	for range 20 {
		lim.OnRateLimit()
	}
	assert.InDelta(t, 2.5, float64(lim.currentRate), 0.001)
}

func TestMux_Routes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("from http"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))

	m := &Mux{HTTP: newTestFetcher(), File: FileFetcher{}}

	body, err := m.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "from http", readAll(t, body))

	body, err = m.Download(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "from file", readAll(t, body))

	body, err = m.Download(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "from file", readAll(t, body))

	_, err = m.Download(context.Background(), "ftp://nas/dco.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fetcher configured")

	_, err = m.Download(context.Background(), "gopher://nas/dco.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source scheme")
}

func TestFileFetcher_Missing(t *testing.T) {
	_, err := FileFetcher{}.Download(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
