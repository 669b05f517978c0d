package usershandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cmcs/internal/domain/audit"
	"cmcs/internal/domain/auth"
	"cmcs/internal/domain/users"
	"cmcs/internal/transport/http/api"
	"cmcs/internal/transport/http/middleware"
	"cmcs/internal/transport/http/shared"
)

type Handler struct {
	Store *users.Store
	Audit *audit.Service
}

func NewHandler(store *users.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.AllRoles...)).Get("/users/me", h.handleMe)
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleHR))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{userID}", h.handleGet)
		r.Put("/{userID}/rate", h.handleUpdateRate)
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	profile, err := h.Store.Get(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_list_failed", "failed to list users", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload users.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	v.Required("firstName", payload.FirstName, "first name is required")
	v.Required("lastName", payload.LastName, "last name is required")
	v.Required("role", payload.Role, "role is required")
	v.Enum("role", payload.Role, auth.AllRoles, "role is not recognized")
	if payload.Role == auth.RoleLecturer {
		v.Positive("hourlyRate", payload.HourlyRate, "hourly rate must be positive")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.Create(r.Context(), payload)
	if err != nil {
		if errors.Is(err, users.ErrInvalidRole) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "role is not recognized", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), actor.UserID, "user.create", "user", id, middleware.GetRequestID(r.Context()), map[string]any{
			"email": payload.Email,
			"role":  payload.Role,
		}); err != nil {
			slog.Warn("audit user.create failed", "err", err)
		}
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_get_failed", "failed to get user", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, user, middleware.GetRequestID(r.Context()))
}

type updateRatePayload struct {
	HourlyRate float64 `json:"hourlyRate"`
}

func (h *Handler) handleUpdateRate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())

	var payload updateRatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Positive("hourlyRate", payload.HourlyRate, "hourly rate must be positive")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := h.Store.UpdateRate(r.Context(), userID, payload.HourlyRate); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_rate_update_failed", "failed to update rate", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), actor.UserID, "user.rate.update", "user", userID, middleware.GetRequestID(r.Context()), map[string]any{
			"hourlyRate": payload.HourlyRate,
		}); err != nil {
			slog.Warn("audit user.rate.update failed", "err", err)
		}
	}
	api.Success(w, map[string]any{"id": userID, "hourlyRate": payload.HourlyRate}, middleware.GetRequestID(r.Context()))
}
