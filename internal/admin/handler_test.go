// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(
	t *testing.T,
	rec *httptest.ResponseRecorder,
	data any,
) bool {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))

	if data != nil && envelope.Data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}

	return envelope.Success
}

func TestInvalidateSessions(t *testing.T) {
	t.Run("revokes every session", func(t *testing.T) {
		var called bool
		authSvc := NewFakeAuthService()
		authSvc.InvalidateAllSessionsFunc = func(_ context.Context) error {
			called = true
			return nil
		}
		h := NewHandler(HandlerConfig{AuthSvc: authSvc})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(
			http.MethodPost, "/admin/maintenance/sessions/invalidate", nil)

		h.InvalidateSessions(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
		assert.True(t, decodeEnvelope(t, rec, nil))
	})

	t.Run("propagates failures", func(t *testing.T) {
		authSvc := NewFakeAuthService()
		authSvc.InvalidateAllSessionsFunc = func(_ context.Context) error {
			return errors.New("db down")
		}
		h := NewHandler(HandlerConfig{AuthSvc: authSvc})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(
			http.MethodPost, "/admin/maintenance/sessions/invalidate", nil)

		h.InvalidateSessions(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("unconfigured auth service", func(t *testing.T) {
		h := NewHandler(HandlerConfig{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(
			http.MethodPost, "/admin/maintenance/sessions/invalidate", nil)

		h.InvalidateSessions(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetSystemStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBStats: func() sql.DBStats {
			return sql.DBStats{
				MaxOpenConnections: 25,
				OpenConnections:    3,
				WaitDuration:       2 * time.Second,
			}
		},
		RedisStats: func() *redis.PoolStats {
			return &redis.PoolStats{Hits: 10, TotalConns: 4}
		},
		DBPing: func(_ context.Context) error { return nil },
		RedisPing: func(_ context.Context) error {
			return errors.New("connection refused")
		},
	})

	rec := httptest.NewRecorder()
	h.GetSystemStats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var stats SystemStatsResponse
	assert.True(t, decodeEnvelope(t, rec, &stats))

	assert.True(t, stats.Database.Healthy)
	require.NotNil(t, stats.Database.Stats)
	assert.Equal(t, 25, stats.Database.Stats.MaxOpenConnections)
	assert.Equal(t, "2s", stats.Database.Stats.WaitDuration)

	assert.False(t, stats.Redis.Healthy)
	require.NotNil(t, stats.Redis.Stats)
	assert.Equal(t, uint32(10), stats.Redis.Stats.Hits)

	assert.NotEmpty(t, stats.Runtime.GoVersion)
	assert.Positive(t, stats.Runtime.NumGoroutine)
}

func TestGetSystemStatsWithoutBackends(t *testing.T) {
	h := NewHandler(HandlerConfig{})

	rec := httptest.NewRecorder()
	h.GetSystemStats(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var stats SystemStatsResponse
	assert.True(t, decodeEnvelope(t, rec, &stats))

	// Missing probes read as healthy, missing pools as absent.
	assert.True(t, stats.Database.Healthy)
	assert.Nil(t, stats.Database.Stats)
	assert.True(t, stats.Redis.Healthy)
	assert.Nil(t, stats.Redis.Stats)
}

func TestGetPlatformStats(t *testing.T) {
	t.Run("reports both breakdowns", func(t *testing.T) {
		counters := NewFakeCounters()
		counters.CountUsersByRoleFunc = func(
			_ context.Context,
		) (map[string]int64, error) {
			return map[string]int64{"user": 120, "moderator": 4, "admin": 1}, nil
		}
		counters.CountSchedulesByStatusFunc = func(
			_ context.Context,
		) (map[string]int64, error) {
			return map[string]int64{"scheduled": 3, "finished": 17}, nil
		}
		h := NewHandler(HandlerConfig{Users: counters, Schedules: counters})

		rec := httptest.NewRecorder()
		h.GetPlatformStats(
			rec, httptest.NewRequest(http.MethodGet, "/admin/stats/platform", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var stats PlatformStatsResponse
		assert.True(t, decodeEnvelope(t, rec, &stats))
		assert.Equal(t, int64(120), stats.UsersByRole["user"])
		assert.Equal(t, int64(17), stats.SchedulesByStatus["finished"])
	})

	t.Run("counter failure", func(t *testing.T) {
		counters := NewFakeCounters()
		counters.CountUsersByRoleFunc = func(
			_ context.Context,
		) (map[string]int64, error) {
			return nil, errors.New("db down")
		}
		h := NewHandler(HandlerConfig{Users: counters, Schedules: counters})

		rec := httptest.NewRecorder()
		h.GetPlatformStats(
			rec, httptest.NewRequest(http.MethodGet, "/admin/stats/platform", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("unconfigured counters", func(t *testing.T) {
		h := NewHandler(HandlerConfig{})

		rec := httptest.NewRecorder()
		h.GetPlatformStats(
			rec, httptest.NewRequest(http.MethodGet, "/admin/stats/platform", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAdminRoutesSitBehindGates(t *testing.T) {
	var order []string
	gate := func(name string, admit bool) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				if !admit {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
			})
		}
	}

	t.Run("both gates admit", func(t *testing.T) {
		order = nil
		router := chi.NewRouter()
		NewHandler(HandlerConfig{}).RegisterRoutes(
			router, gate("authenticator", true), gate("adminOnly", true))

		rec := httptest.NewRecorder()
		router.ServeHTTP(
			rec, httptest.NewRequest(http.MethodGet, "/admin/stats/runtime", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"authenticator", "adminOnly"}, order)
	})

	t.Run("role gate refuses", func(t *testing.T) {
		order = nil
		router := chi.NewRouter()
		NewHandler(HandlerConfig{}).RegisterRoutes(
			router, gate("authenticator", true), gate("adminOnly", false))

		rec := httptest.NewRecorder()
		router.ServeHTTP(
			rec, httptest.NewRequest(http.MethodGet, "/admin/stats/runtime", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
