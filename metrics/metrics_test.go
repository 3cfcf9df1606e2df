package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong-realm/metrics"
)

func TestHTTPMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(metrics.NewHTTPMetrics("test", registry).Handler())
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/fail", func(c *gin.Context) { c.JSON(500, gin.H{"error": "boom"}) })

	for _, path := range []string{"/ok", "/fail", "/missing"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		r.ServeHTTP(w, req)
	}

	families, err := registry.Gather()
	require.NoError(t, err)

	var durationFound, errorsFound bool
	for _, mf := range families {
		switch mf.GetName() {
		case "test_http_request_duration_seconds":
			durationFound = true
			assert.Len(t, mf.Metric, 3)
		case "test_http_request_errors_total":
			errorsFound = true
			// 500 on /fail and 404 on the unmatched route.
			assert.Len(t, mf.Metric, 2)
		}
	}
	assert.True(t, durationFound, "duration metric not found")
	assert.True(t, errorsFound, "errors metric not found")
}

func TestGameMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewGameMetrics("mahjong", registry)
	m.GameStarted()
	m.Matched()
	m.Matched()
	m.Solved("pair")
	m.SetActiveSessions(3)
	m.ClientConnected()

	values := map[string]float64{}
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, metric := range mf.Metric {
			switch {
			case metric.Counter != nil:
				values[mf.GetName()] += metric.Counter.GetValue()
			case metric.Gauge != nil:
				values[mf.GetName()] = metric.Gauge.GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, values["mahjong_games_started_total"])
	assert.Equal(t, 2.0, values["mahjong_matches_total"])
	assert.Equal(t, 1.0, values["mahjong_boards_solved_total"])
	assert.Equal(t, 3.0, values["mahjong_active_sessions"])
	assert.Equal(t, 1.0, values["mahjong_connected_clients"])
}

func TestNilGameMetrics(t *testing.T) {
	var m *metrics.GameMetrics
	assert.NotPanics(t, func() {
		m.GameStarted()
		m.Solved("pair")
		m.ClientDisconnected()
	})
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics.NewGameMetrics("mahjong", registry).GameStarted()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	metrics.RegisterMetricsEndpoint(r, registry)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "mahjong_games_started_total 1"))
}
