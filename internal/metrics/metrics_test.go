package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch(t *testing.T) {
	before := testutil.ToFloat64(fetchTotal.WithLabelValues("metrics-test", "error"))
	ObserveFetch("metrics-test", false, 10*time.Millisecond)
	ObserveFetch("metrics-test", true, 5*time.Millisecond)
	assert.InDelta(t, before+1, testutil.ToFloat64(fetchTotal.WithLabelValues("metrics-test", "error")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(fetchTotal.WithLabelValues("metrics-test", "ok")), 0.001)
}

func TestSetRowsAndWarnings(t *testing.T) {
	SetRows("metrics-rows", 12)
	assert.InDelta(t, 12, testutil.ToFloat64(sourceRows.WithLabelValues("metrics-rows")), 0.001)

	AddWarning("metrics-rows", "schema")
	AddWarning("metrics-rows", "schema")
	assert.InDelta(t, 2, testutil.ToFloat64(loadWarnings.WithLabelValues("metrics-rows", "schema")), 0.001)
}

func TestCacheLookup(t *testing.T) {
	CacheLookup("metrics-cache", true)
	CacheLookup("metrics-cache", true)
	CacheLookup("metrics-cache", false)
	assert.InDelta(t, 2, testutil.ToFloat64(cacheRequests.WithLabelValues("metrics-cache", "hit")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(cacheRequests.WithLabelValues("metrics-cache", "miss")), 0.001)
}

func TestHandler(t *testing.T) {
	SetRows("metrics-handler", 3)

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `dco_source_rows{source="metrics-handler"} 3`)
}
