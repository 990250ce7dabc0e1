package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range metric.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok {
			if v != lp.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestMetrics_Render(t *testing.T) {
	m := NewMetrics()

	m.ObserveRender("svg", nil, 3*time.Millisecond)
	m.ObserveRender("svg", nil, time.Millisecond)
	m.ObserveRender("png", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m, "city_renders_total", map[string]string{"format": "svg", "outcome": OutcomeOK}))
	assert.Equal(t, 1.0, counterValue(t, m, "city_renders_total", map[string]string{"format": "png", "outcome": OutcomeError}))
}

func TestMetrics_CacheAndRefresh(t *testing.T) {
	m := NewMetrics()

	m.CacheResult("hit")
	m.CacheResult("miss")
	m.CacheResult("hit")
	m.Refresh(nil)

	assert.Equal(t, 2.0, counterValue(t, m, "city_source_cache_total", map[string]string{"result": "hit"}))
	assert.Equal(t, 1.0, counterValue(t, m, "city_refresh_total", map[string]string{"outcome": OutcomeOK}))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRender("svg", nil, time.Second)
		m.CacheResult("hit")
		m.Refresh(errors.New("x"))
	})
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/cities/:username", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cities/octocat", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, counterValue(t, m, "http_requests_total", map[string]string{
		"route":  "/api/v1/cities/:username",
		"status": "200",
	}))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "http_requests_total")
}
