// AngelaMos | 2026
// handler.go

package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/codeclash-gg/backend/internal/core"
	"github.com/codeclash-gg/backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/schedules", func(r chi.Router) {
		r.Get("/", h.ListSchedules)
		r.Get("/{scheduleID}", h.GetSchedule)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/{scheduleID}/applications", h.Apply)
			r.Delete("/{scheduleID}/applications", h.Withdraw)
		})
	})
}

// RegisterAdminRoutes mounts the schedule lifecycle endpoints. Moderators
// run events, so the gate admits moderators as well as admins.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, moderatorOrAdmin func(http.Handler) http.Handler,
) {
	r.Route("/admin/schedules", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(moderatorOrAdmin)

		r.Post("/", h.CreateSchedule)
		r.Post("/{scheduleID}/start", h.StartSchedule)
		r.Post("/{scheduleID}/finish", h.FinishSchedule)
		r.Post("/{scheduleID}/cancel", h.CancelSchedule)
	})
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	params := ListSchedulesParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Status:   r.URL.Query().Get("status"),
	}

	schedules, total, err := h.service.ListSchedules(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToScheduleResponseList(schedules),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := parseIDParam(r, "scheduleID")
	if err != nil {
		core.BadRequest(w, "invalid schedule ID")
		return
	}

	schedule, gameEntity, err := h.service.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "schedule")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ScheduleDetailResponse{
		ScheduleResponse: ToScheduleResponse(schedule),
		Game:             ToGameResponse(gameEntity),
	})
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	scheduleID, err := parseIDParam(r, "scheduleID")
	if err != nil {
		core.BadRequest(w, "invalid schedule ID")
		return
	}

	var req ApplyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}

		if err := h.validator.Struct(req); err != nil {
			core.BadRequest(w, core.FormatValidationError(err))
			return
		}
	}

	app, err := h.service.Apply(r.Context(), userID, scheduleID, req.Team)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "schedule")
		case errors.Is(err, ErrScheduleClosed):
			core.Conflict(w, "schedule is not open for applications")
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError("application"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, ToApplicationResponse(app))
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	scheduleID, err := parseIDParam(r, "scheduleID")
	if err != nil {
		core.BadRequest(w, "invalid schedule ID")
		return
	}

	if err := h.service.Withdraw(r.Context(), userID, scheduleID); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "application")
		case errors.Is(err, ErrScheduleClosed):
			core.Conflict(w, "schedule is not open for applications")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.NoContent(w)
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	createdBy := middleware.GetUserID(r.Context())

	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), createdBy, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "starts_at must be in the future")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToScheduleResponse(schedule))
}

func (h *Handler) StartSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := parseIDParam(r, "scheduleID")
	if err != nil {
		core.BadRequest(w, "invalid schedule ID")
		return
	}

	schedule, err := h.service.StartSchedule(r.Context(), scheduleID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "schedule")
		case errors.Is(err, ErrInvalidTransition):
			core.Conflict(w, "schedule cannot be started from its current status")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToScheduleResponse(schedule))
}

func (h *Handler) FinishSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := parseIDParam(r, "scheduleID")
	if err != nil {
		core.BadRequest(w, "invalid schedule ID")
		return
	}

	var req FinishScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.FinishSchedule(r.Context(), scheduleID, req); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "schedule")
		case errors.Is(err, ErrInvalidTransition):
			core.Conflict(w, "schedule cannot be finished from its current status")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "results reference users outside this game")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.NoContent(w)
}

func (h *Handler) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := parseIDParam(r, "scheduleID")
	if err != nil {
		core.BadRequest(w, "invalid schedule ID")
		return
	}

	if err := h.service.CancelSchedule(r.Context(), scheduleID); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "schedule")
		case errors.Is(err, ErrInvalidTransition):
			core.Conflict(w, "schedule cannot be canceled from its current status")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.NoContent(w)
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
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
