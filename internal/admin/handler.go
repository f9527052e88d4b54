// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/codeclash-gg/backend/internal/core"
)

type AuthService interface {
	InvalidateAllSessions(ctx context.Context) error
}

type UserCounter interface {
	CountUsersByRole(ctx context.Context) (map[string]int64, error)
}

type ScheduleCounter interface {
	CountSchedulesByStatus(ctx context.Context) (map[string]int64, error)
}

// Handler serves the operator endpoints. Every dependency is injected
// as a narrow function or interface, so a deployment can leave out what
// it does not run and the affected endpoint degrades instead of the
// whole group.
type Handler struct {
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	redisPing  func(ctx context.Context) error
	dbPing     func(ctx context.Context) error
	authSvc    AuthService
	users      UserCounter
	schedules  ScheduleCounter
}

type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	RedisPing  func(ctx context.Context) error
	DBPing     func(ctx context.Context) error
	AuthSvc    AuthService
	Users      UserCounter
	Schedules  ScheduleCounter
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
		redisPing:  cfg.RedisPing,
		dbPing:     cfg.DBPing,
		authSvc:    cfg.AuthSvc,
		users:      cfg.Users,
		schedules:  cfg.Schedules,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)
		r.Get("/stats/platform", h.GetPlatformStats)

		r.Post("/maintenance/sessions/invalidate", h.InvalidateSessions)
	})
}

// InvalidateSessions is the panic button: every refresh token platform
// wide is revoked and all users have to sign in again.
func (h *Handler) InvalidateSessions(w http.ResponseWriter, r *http.Request) {
	if h.authSvc == nil {
		core.InternalServerError(
			w,
			errors.New("auth service not configured"),
		)
		return
	}

	if err := h.authSvc.InvalidateAllSessions(r.Context()); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]string{"message": "all sessions revoked"})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	core.OK(w, SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: h.pingOK(ctx, h.dbPing),
			Stats:   h.getDBStats(),
		},
		Redis: RedisStatus{
			Healthy: h.pingOK(ctx, h.redisPing),
			Stats:   h.getRedisStats(),
		},
		Runtime: collectRuntimeStats(),
	})
}

// GetPlatformStats reports how many accounts and events the platform
// carries, broken down the way the operator dashboard charts them.
func (h *Handler) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	if h.users == nil || h.schedules == nil {
		core.InternalServerError(
			w,
			errors.New("platform counters not configured"),
		)
		return
	}

	ctx := r.Context()

	usersByRole, err := h.users.CountUsersByRole(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	schedulesByStatus, err := h.schedules.CountSchedulesByStatus(ctx)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PlatformStatsResponse{
		UsersByRole:       usersByRole,
		SchedulesByStatus: schedulesByStatus,
	})
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getDBStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.getRedisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, collectRuntimeStats())
}

// pingOK reports a backend as healthy when no probe is wired, absence
// of a check is not an outage.
func (h *Handler) pingOK(
	ctx context.Context,
	ping func(ctx context.Context) error,
) bool {
	if ping == nil {
		return true
	}
	return ping(ctx) == nil
}

func (h *Handler) getDBStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}
	return toDBPoolStats(h.dbStats())
}

func (h *Handler) getRedisStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}
	return toRedisPoolStats(h.redisStats())
}
