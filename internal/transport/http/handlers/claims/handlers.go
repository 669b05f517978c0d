package claimshandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"cmcs/internal/domain/audit"
	"cmcs/internal/domain/auth"
	"cmcs/internal/domain/claims"
	"cmcs/internal/domain/notifications"
	"cmcs/internal/platform/storage"
	"cmcs/internal/transport/http/api"
	"cmcs/internal/transport/http/middleware"
)

type Handler struct {
	Service     *claims.Service
	Notify      *notifications.Service
	Audit       *audit.Service
	Idempotency *middleware.IdempotencyStore
	Limits      UploadLimits
}

// UploadLimits bounds document uploads per claim. Zero fields fall back to
// the defaults below.
type UploadLimits struct {
	MaxDocuments     int
	MaxDocumentBytes int64
}

const (
	defaultMaxClaimDocuments     = 5
	defaultMaxClaimDocumentBytes = 2 * 1024 * 1024
	// memory budget for ParseMultipartForm; the overall request size is
	// already capped by the body limit middleware
	maxClaimMultipartBytes = 8 * 1024 * 1024
)

func (l UploadLimits) withDefaults() UploadLimits {
	if l.MaxDocuments <= 0 {
		l.MaxDocuments = defaultMaxClaimDocuments
	}
	if l.MaxDocumentBytes <= 0 {
		l.MaxDocumentBytes = defaultMaxClaimDocumentBytes
	}
	return l
}

func NewHandler(service *claims.Service, notify *notifications.Service, auditSvc *audit.Service, idempotency *middleware.IdempotencyStore, limits UploadLimits) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc, Idempotency: idempotency, Limits: limits.withDefaults()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/claims", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleLecturer)).Post("/", h.handleSubmit)
		r.With(middleware.RequireRole(auth.AllRoles...)).Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.AllRoles...)).Get("/{claimID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleLecturer)).Post("/{claimID}/documents", h.handleUploadDocuments)
		r.With(middleware.RequireRole(auth.AllRoles...)).Get("/{claimID}/documents/{documentID}/download", h.handleDownloadDocument)
		r.With(middleware.RequireRole(auth.RoleCoordinator)).Post("/{claimID}/coordinator-decision", h.handleCoordinatorDecision)
		r.With(middleware.RequireRole(auth.RoleManager)).Post("/{claimID}/manager-decision", h.handleManagerDecision)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/{claimID}/finalize", h.handleFinalize)
	})
}

type submitPayload struct {
	HoursWorked float64 `json:"hoursWorked"`
	Notes       string  `json:"notes"`
}

type decisionPayload struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	payload, documents, err := decodeSubmitPayload(r, h.Limits)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	requestHash := ""
	if idempotencyKey != "" {
		hashInput, err := json.Marshal(map[string]any{
			"hoursWorked": payload.HoursWorked,
			"notes":       payload.Notes,
			"documents":   len(documents),
		})
		if err == nil {
			requestHash = middleware.RequestHash(hashInput)
			stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, "claims.submit", idempotencyKey, requestHash)
			if errors.Is(err, middleware.ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
				return
			}
			if err != nil {
				slog.Warn("claims submit idempotency check failed", "err", err)
			} else if found {
				var replay claims.Claim
				if err := json.Unmarshal(stored, &replay); err == nil {
					api.Created(w, replay, middleware.GetRequestID(r.Context()))
					return
				}
			}
		}
	}

	claim, err := h.Service.Submit(r.Context(), user.UserID, claims.SubmitInput{
		HoursWorked: payload.HoursWorked,
		Notes:       payload.Notes,
		Documents:   documents,
	})
	if err != nil {
		h.failClaimError(w, r, "claim_submit_failed", "failed to submit claim", err)
		return
	}

	if idempotencyKey != "" && requestHash != "" {
		if encoded, err := json.Marshal(claim); err == nil {
			if err := h.Idempotency.Save(r.Context(), user.UserID, "claims.submit", idempotencyKey, requestHash, encoded); err != nil {
				slog.Warn("claims submit idempotency save failed", "err", err)
			}
		}
	}

	h.record(r, user.UserID, "claim.submit", claim.ID, map[string]any{
		"hoursWorked": claim.HoursWorked,
		"totalAmount": claim.TotalAmount,
		"documents":   len(claim.Documents),
	})
	api.Created(w, claim, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if user.Role == auth.RoleLecturer {
		list, err := h.Service.ListForUser(r.Context(), user.UserID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "claim_list_failed", "failed to list claims", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, list, middleware.GetRequestID(r.Context()))
		return
	}

	status := defaultQueueStatus(user.Role)
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := claims.ParseStatus(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown claim status", middleware.GetRequestID(r.Context()))
			return
		}
		status = parsed
	}

	list, err := h.Service.ListByStatus(r.Context(), status)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "claim_list_failed", "failed to list claims", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

// defaultQueueStatus picks the work queue each reviewer role sees when no
// status filter is given.
func defaultQueueStatus(role string) claims.Status {
	switch role {
	case auth.RoleCoordinator:
		return claims.StatusPending
	case auth.RoleManager:
		return claims.StatusCoordinatorApproved
	default:
		return claims.StatusManagerApproved
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	claim, err := h.Service.Get(r.Context(), chi.URLParam(r, "claimID"))
	if err != nil {
		h.failClaimError(w, r, "claim_get_failed", "failed to get claim", err)
		return
	}
	if !canAccessClaim(user, claim) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, claim, middleware.GetRequestID(r.Context()))
}

func canAccessClaim(user auth.UserContext, claim claims.Claim) bool {
	if user.Role == auth.RoleLecturer {
		return claim.UserID == user.UserID
	}
	return true
}

func (h *Handler) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	claimID := chi.URLParam(r, "claimID")
	claim, err := h.Service.Get(r.Context(), claimID)
	if err != nil {
		h.failClaimError(w, r, "claim_get_failed", "failed to get claim", err)
		return
	}
	if claim.UserID != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	if err := r.ParseMultipartForm(maxClaimMultipartBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart payload", middleware.GetRequestID(r.Context()))
		return
	}
	documents, err := parseMultipartDocuments(r.MultipartForm.File["documents"], h.Limits)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if len(documents) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "at least one document is required", middleware.GetRequestID(r.Context()))
		return
	}

	attached := make([]claims.Document, 0, len(documents))
	for _, doc := range documents {
		created, err := h.Service.Attach(r.Context(), claimID, doc)
		if err != nil {
			h.failClaimError(w, r, "document_upload_failed", "failed to attach document", err)
			return
		}
		attached = append(attached, created)
	}

	h.record(r, user.UserID, "claim.document.upload", claimID, map[string]any{
		"documentCount": len(attached),
	})
	api.Created(w, map[string]any{"documents": attached}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	claimID := chi.URLParam(r, "claimID")
	documentID := chi.URLParam(r, "documentID")

	claim, err := h.Service.Get(r.Context(), claimID)
	if err != nil {
		h.failClaimError(w, r, "claim_get_failed", "failed to get claim", err)
		return
	}
	if !canAccessClaim(user, claim) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	document, data, err := h.Service.DocumentData(r.Context(), claimID, documentID)
	if err != nil {
		h.failClaimError(w, r, "document_download_failed", "failed to download document", err)
		return
	}

	contentType := document.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("claim document download write failed", "claimId", claimID, "documentId", documentID, "err", err)
	}
}

func (h *Handler) handleCoordinatorDecision(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "claim.coordinator_decision", h.Service.CoordinatorDecide)
}

func (h *Handler) handleManagerDecision(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "claim.manager_decision", h.Service.ManagerDecide)
}

type decideFunc func(ctx context.Context, claimID string, decision claims.Decision, comment string) (claims.Claim, error)

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, action string, decide decideFunc) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	claimID := chi.URLParam(r, "claimID")
	claim, err := decide(r.Context(), claimID, claims.Decision(strings.ToLower(strings.TrimSpace(payload.Decision))), strings.TrimSpace(payload.Comment))
	if err != nil {
		h.failClaimError(w, r, "claim_decision_failed", "failed to record decision", err)
		return
	}

	h.record(r, user.UserID, action, claim.ID, map[string]any{
		"decision": payload.Decision,
		"status":   claim.Status,
	})
	h.notifyOwner(r, claim, notifications.TypeClaimDecision, "Claim reviewed",
		fmt.Sprintf("Your claim for %.2f hours is now %s.", claim.HoursWorked, claim.Status))
	api.Success(w, claim, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	claimID := chi.URLParam(r, "claimID")
	claim, err := h.Service.Finalize(r.Context(), claimID)
	if err != nil {
		h.failClaimError(w, r, "claim_finalize_failed", "failed to finalize claim", err)
		return
	}

	h.record(r, user.UserID, "claim.finalize", claim.ID, map[string]any{"status": claim.Status})
	h.notifyOwner(r, claim, notifications.TypeClaimProcessed, "Claim processed",
		fmt.Sprintf("Your claim for %.2f hours has been processed for payment.", claim.HoursWorked))
	api.Success(w, claim, middleware.GetRequestID(r.Context()))
}

func decodeSubmitPayload(r *http.Request, limits UploadLimits) (submitPayload, []claims.DocumentUpload, error) {
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxClaimMultipartBytes); err != nil {
			return submitPayload{}, nil, fmt.Errorf("invalid multipart payload")
		}

		hours, err := parseHours(r.FormValue("hoursWorked"))
		if err != nil {
			return submitPayload{}, nil, err
		}
		documents, err := parseMultipartDocuments(r.MultipartForm.File["documents"], limits)
		if err != nil {
			return submitPayload{}, nil, err
		}

		return submitPayload{
			HoursWorked: hours,
			Notes:       strings.TrimSpace(r.FormValue("notes")),
		}, documents, nil
	}

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return submitPayload{}, nil, fmt.Errorf("invalid request payload")
	}
	return payload, nil, nil
}

func parseHours(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("hoursWorked is required")
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hoursWorked value")
	}
	return parsed, nil
}

func parseMultipartDocuments(files []*multipart.FileHeader, limits UploadLimits) ([]claims.DocumentUpload, error) {
	if len(files) > limits.MaxDocuments {
		return nil, fmt.Errorf("too many documents")
	}

	documents := make([]claims.DocumentUpload, 0, len(files))
	for _, header := range files {
		if header == nil {
			continue
		}
		if header.Size > limits.MaxDocumentBytes {
			return nil, fmt.Errorf("document exceeds maximum size")
		}

		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open document")
		}
		content, err := io.ReadAll(io.LimitReader(file, limits.MaxDocumentBytes+1))
		closeErr := file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read document")
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close document")
		}
		if int64(len(content)) > limits.MaxDocumentBytes {
			return nil, fmt.Errorf("document exceeds maximum size")
		}
		if len(content) == 0 {
			return nil, fmt.Errorf("empty document is not allowed")
		}

		fileName := sanitizeUploadedFileName(header.Filename)
		contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
		if contentType == "" {
			contentType = http.DetectContentType(content)
		}

		documents = append(documents, claims.DocumentUpload{
			FileName:    fileName,
			ContentType: contentType,
			FileSize:    int64(len(content)),
			Data:        content,
		})
	}

	return documents, nil
}

func sanitizeUploadedFileName(name string) string {
	cleaned := strings.TrimSpace(filepath.Base(name))
	cleaned = strings.ReplaceAll(cleaned, "\x00", "")
	if cleaned == "" {
		return "document.bin"
	}
	return cleaned
}

func (h *Handler) record(r *http.Request, actorID, action, claimID string, details any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, action, "claim", claimID, middleware.GetRequestID(r.Context()), details); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

func (h *Handler) notifyOwner(r *http.Request, claim claims.Claim, ntype, title, body string) {
	if h.Notify == nil {
		return
	}
	if err := h.Notify.Notify(r.Context(), claim.UserID, ntype, title, body); err != nil {
		slog.Warn("claim notification failed", "claimId", claim.ID, "err", err)
	}
}

// failClaimError maps domain errors onto the API error taxonomy. Anything
// unrecognized is reported as the caller-supplied fallback.
func (h *Handler) failClaimError(w http.ResponseWriter, r *http.Request, fallbackCode, fallbackMessage string, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var ve *claims.ValidationError
	if errors.As(err, &ve) {
		api.Fail(w, http.StatusBadRequest, ve.Code, ve.Message, requestID)
		return
	}
	var storageErr *storage.Error
	if errors.As(err, &storageErr) {
		api.Fail(w, http.StatusBadGateway, "storage_failed", "document storage is unavailable", requestID)
		return
	}

	switch {
	case errors.Is(err, claims.ErrInvalidDecision):
		api.Fail(w, http.StatusBadRequest, "invalid_decision", "decision must be approve or reject", requestID)
	case errors.Is(err, claims.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "claim not found", requestID)
	case errors.Is(err, claims.ErrDocumentNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "document not found", requestID)
	case errors.Is(err, claims.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", "claim status does not allow this action", requestID)
	case errors.Is(err, claims.ErrConcurrencyConflict):
		api.Fail(w, http.StatusConflict, "conflict", "claim was modified by another request", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, requestID)
	}
}
