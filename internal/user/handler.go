// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/codeclash-gg/backend/internal/core"
	"github.com/codeclash-gg/backend/internal/game"
	"github.com/codeclash-gg/backend/internal/middleware"
)

type Handler struct {
	service   *Service
	games     *game.Service
	validator *validator.Validate
}

func NewHandler(service *Service, games *game.Service) *Handler {
	return &Handler{
		service:   service,
		games:     games,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)

		r.Route("/me", func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/", h.GetMe)
			r.Patch("/", h.UpdateMe)
			r.Delete("/", h.DeleteMe)
			r.Patch("/profile", h.UpdateProfile)
			r.Get("/activities", h.ListActivities)
			r.Get("/stats", h.GetStats)
			r.Get("/games", h.ListGameStats)
			r.Get("/applications", h.ListApplications)
			r.Get("/linked-accounts", h.ListLinkedAccounts)
			r.Delete("/linked-accounts/{provider}", h.UnlinkAccount)
			r.Get("/email-opt-in", h.GetEmailOptIn)
			r.Put("/email-opt-in", h.UpdateEmailOptIn)
		})

		r.Get("/{userID}", h.GetPublicProfile)
		r.With(authenticator).Delete("/{userID}", h.DeleteUser)
	})
}

// ListUsers serves the public competitor directory. Search matches
// username prefixes.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToPublicUserSummaryList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	u, profile, stats, err := h.service.GetPublicProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PublicUserResponse{
		ID:       u.ID,
		Username: u.Username,
		Profile:  ToProfileResponse(profile),
		Stats:    ToStatsResponse(stats),
		JoinedAt: u.CreatedAt,
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateMe(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		if errors.Is(err, core.ErrDuplicateKey) {
			core.Conflict(w, "username already taken")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

// DeleteMe removes the caller's own account and everything attached
// to it. Responds with the deleted user id.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	role := middleware.GetUserRole(r.Context())

	deletedID, err := h.service.DeleteAccount(r.Context(), userID, role, userID)
	if err != nil {
		writeDeleteError(w, err)
		return
	}

	core.OK(w, DeletedUserResponse{User: deletedID})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "profile")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(profile))
}

func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit := parseIntQuery(r, "limit", 20)

	activities, err := h.service.ListActivities(r.Context(), userID, limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToActivityResponseList(activities))
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.service.GetStats(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "stats")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToStatsResponse(stats))
}

func (h *Handler) ListGameStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit := parseIntQuery(r, "limit", 20)

	stats, err := h.service.ListGameStats(r.Context(), userID, limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToGameStatResponseList(stats))
}

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	apps, err := h.games.ListUserApplications(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, game.ToUserApplicationResponseList(apps))
}

func (h *Handler) ListLinkedAccounts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	accounts, err := h.service.ListLinkedAccounts(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToLinkedAccountResponseList(accounts))
}

func (h *Handler) UnlinkAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	provider := chi.URLParam(r, "provider")

	if err := h.service.UnlinkAccount(r.Context(), userID, provider); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "linked account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetEmailOptIn(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	optIn, err := h.service.GetEmailOptIn(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.OK(w, EmailOptInResponse{})
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToEmailOptInResponse(optIn))
}

func (h *Handler) UpdateEmailOptIn(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateEmailOptInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	optIn, err := h.service.UpdateEmailOptIn(r.Context(), userID, req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToEmailOptInResponse(optIn))
}

// RegisterAdminRoutes registers admin-only user management endpoints.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.AdminListUsers)
		r.Get("/{userID}", h.AdminGetUser)
		r.Put("/{userID}/role", h.UpdateUserRole)
		r.Delete("/{userID}", h.DeleteUser)
	})
}

// AdminListUsers returns a paginated list of users with optional
// filtering.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid role filter")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

// AdminGetUser returns a specific user by ID (admin only).
func (h *Handler) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

// UpdateUserRole changes a user's role (admin only). Demoting a
// moderator here is the required first step before their account can
// be deleted.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	var req UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateUserRole(r.Context(), userID, req.Role)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid role")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

// DeleteUser removes a user account and its dependents. Users can
// delete their own account, admins can delete anyone below moderator.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	role := middleware.GetUserRole(r.Context())

	targetID, err := parseIDParam(r, "userID")
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	deletedID, err := h.service.DeleteAccount(
		r.Context(), requesterID, role, targetID)
	if err != nil {
		writeDeleteError(w, err)
		return
	}

	core.OK(w, DeletedUserResponse{User: deletedID})
}

func writeDeleteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProtectedRole):
		core.BadRequest(
			w, "moderator and admin accounts must be demoted before deletion")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.InternalServerError(w, err)
	}
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
