package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type memoryCacheRepo struct {
	values map[string][]byte
	getErr error
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.values {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.values, key)
		}
	}
	return nil
}

func TestCacheServiceHitMissAndInvalidate(t *testing.T) {
	repo := &memoryCacheRepo{values: map[string][]byte{}}
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()
	key := timetableCacheKey(models.TimetableFilter{StreamID: "s1"})
	assert.Equal(t, "timetable:s1:all", key)

	var out []string
	hit, err := cache.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, key, []string{"a"}, 0))
	hit, err = cache.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a"}, out)
	assert.InDelta(t, 0.5, metrics.Snapshot().CacheHitRatio, 0.001)

	require.NoError(t, cache.Invalidate(ctx, timetableCacheAll))
	assert.Empty(t, repo.values)
}

func TestCacheServiceDisabledIsAlwaysMiss(t *testing.T) {
	repo := &memoryCacheRepo{values: map[string][]byte{"timetable:all:all": []byte(`[]`)}}
	cache := NewCacheService(repo, nil, time.Minute, nil, false)

	var out []string
	hit, err := cache.Get(context.Background(), "timetable:all:all", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	var nilCache *CacheService
	hit, err = nilCache.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilCache.Invalidate(context.Background(), timetableCacheAll))
}

func TestCacheServiceBackendError(t *testing.T) {
	repo := &memoryCacheRepo{values: map[string][]byte{}, getErr: errors.New("connection refused")}
	cache := NewCacheService(repo, nil, 0, nil, true)

	var out []string
	hit, err := cache.Get(context.Background(), "k", &out)
	require.Error(t, err)
	assert.False(t, hit)
}

func TestMetricsServiceCountsRunsAndEvents(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordGeneration(true, "", 12, time.Second)
	metrics.RecordGeneration(false, "placement_infeasible", 0, time.Second)
	metrics.RecordEventPublish("timetable.generated", nil)
	metrics.RecordEventPublish("timetable.generated", errors.New("closed"))
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/timetable", http.StatusOK, time.Millisecond)

	snapshot := metrics.Snapshot()
	assert.Equal(t, float64(2), snapshot.GenerationRuns)
	assert.Equal(t, float64(1), snapshot.GenerationFailures)
	assert.Equal(t, float64(1), snapshot.EventsPublished)
	assert.Equal(t, float64(1), snapshot.RequestCount)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `timetable_generation_runs_total{reason="placement_infeasible",status="aborted"} 1`)
	assert.Contains(t, rec.Body.String(), "timetable_placements_total 12")

	var disabled *MetricsService
	disabled.RecordGeneration(true, "", 1, time.Second)
	assert.Equal(t, float64(0), disabled.Snapshot().GenerationRuns)
}
