package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpsert(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveUpsert("example.com", 4, 1, 2*time.Second)
	m.ObserveSkipped("example.com", 2)
	m.ObserveFile(true)

	assert.InDelta(t, 4, testutil.ToFloat64(m.RecipesUpserted.WithLabelValues("example.com")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RecipesFailed.WithLabelValues("example.com")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.RowsSkipped.WithLabelValues("example.com")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FilesIngested.WithLabelValues("processed")), 0)
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpsert("x", 1, 1, time.Second)
		m.ObserveSkipped("x", 1)
		m.ObserveFile(false)
		m.ObserveKeywords("rotation", 1)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveKeywords("themed", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `recipescanner_keywords_generated_total{mode="themed"} 3`))
}
