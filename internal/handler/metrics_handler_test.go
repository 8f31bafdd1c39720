package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/service"
)

func TestMetricsReady(t *testing.T) {
	healthy := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	handler := NewMetricsHandler(nil, map[string]Pinger{"postgres": healthy})
	c, w := testContext(http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)

	handler = NewMetricsHandler(nil, map[string]Pinger{"postgres": healthy, "redis": down})
	c, w = testContext(http.MethodGet, "/ready", nil, nil)
	handler.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), `"degraded"`)
}

func TestMetricsPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordGeneration(true, "", 4, 0)
	handler := NewMetricsHandler(metrics, nil)

	c, w := testContext(http.MethodGet, "/metrics", nil, nil)
	handler.Prometheus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "timetable_generation_runs_total")

	handler = NewMetricsHandler(nil, nil)
	c, w = testContext(http.MethodGet, "/metrics", nil, nil)
	handler.Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsSnapshot(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordGeneration(false, "placement_infeasible", 0, 0)
	handler := NewMetricsHandler(metrics, nil)

	c, w := testContext(http.MethodGet, "/metrics/snapshot", nil, adminClaims())
	handler.Snapshot(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"generationFailures":1`)
}
