package reportshandler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cmcs/internal/domain/auth"
	"cmcs/internal/domain/reports"
	"cmcs/internal/transport/http/api"
	"cmcs/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleCoordinator, auth.RoleManager, auth.RoleHR))
		r.Get("/claims", h.handleClaimSummaries)
		r.Get("/claims/export", h.handleClaimSummariesExport)
	})
}

func (h *Handler) handleClaimSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Service.LecturerSummaries(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClaimSummariesExport(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Service.LecturerSummaries(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", middleware.GetRequestID(r.Context()))
		return
	}

	generatedAt := time.Now().UTC()
	pdf, err := reports.RenderPDF(summaries, generatedAt)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_export_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}

	fileName := fmt.Sprintf("claim-report-%s.pdf", generatedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("report export write failed", "err", err)
	}
}
