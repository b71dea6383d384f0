package submissions

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hhsystems1/Intakeform/internal/httpx"
	"github.com/hhsystems1/Intakeform/internal/intake"
	"github.com/hhsystems1/Intakeform/internal/middleware"
	"github.com/hhsystems1/Intakeform/internal/preview"
	"github.com/hhsystems1/Intakeform/internal/transport"
	"github.com/hhsystems1/Intakeform/internal/validation"
)

const maxUploadFiles = 20

type Handler struct {
	service   *Service
	val       *validation.Validator
	log       *slog.Logger
	previews  *preview.Registry
	maxUpload int64
}

func NewHandler(service *Service, val *validation.Validator, previews *preview.Registry, maxUpload int64, log *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		val:       val,
		log:       log,
		previews:  previews,
		maxUpload: maxUpload,
	}
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"fields":          intake.FieldNames,
		"required":        intake.RequiredFields,
		"features":        intake.FeatureCatalog,
		"timeline":        intake.TimelineOptions,
		"budget":          intake.BudgetOptions,
		"primary_color":   intake.DefaultPrimaryColor,
		"secondary_color": intake.DefaultSecondaryColor,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("intake create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn("intake create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	status, err := h.service.CreateOneShot(context.WithoutCancel(r.Context()), req)
	if err != nil {
		h.writeFormError(w, log, "intake create", status, err)
		return
	}

	log.Info("intake create: delivered", slog.String("company_name", req.CompanyName))
	writeStatus(w, http.StatusCreated, status)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, form, err := h.service.Sessions().Create()
	if err != nil {
		if errors.Is(err, ErrSessionLimit) {
			log.Warn("session create: limit reached")
			transport.WriteError(w, http.StatusServiceUnavailable, ErrSessionLimit.Error(), nil)
			return
		}
		log.Error("session create: unexpected error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}
	log.Info("session create: ok", slog.String("session_id", id))
	transport.WriteJSON(w, http.StatusCreated, sessionView(id, form))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}
	transport.WriteJSON(w, http.StatusOK, sessionView(id, form))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if err := h.service.Sessions().Delete(id); err != nil {
		log.Warn("session delete: not found", slog.String("session_id", id))
		transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	log.Info("session delete: ok", slog.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}

	var req FieldUpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	if err := form.SetField(chi.URLParam(r, "name"), *req.Value); err != nil {
		h.writeFormError(w, log, "session set field", intake.Status{}, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, sessionView(id, form))
}

func (h *Handler) ToggleFeature(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}

	var req FeatureToggleRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	if err := form.ToggleFeature(req.Feature); err != nil {
		h.writeFormError(w, log, "session toggle feature", intake.Status{}, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, sessionView(id, form))
}

func (h *Handler) SetColor(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ColorUpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	if err := form.SetColor(intake.ColorTarget(chi.URLParam(r, "which")), req.Hex); err != nil {
		h.writeFormError(w, log, "session set color", intake.Status{}, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, sessionView(id, form))
}

func (h *Handler) TogglePicker(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := form.TogglePicker(intake.ColorTarget(chi.URLParam(r, "which"))); err != nil {
		h.writeFormError(w, log, "session toggle picker", intake.Status{}, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, sessionView(id, form))
}

func (h *Handler) AddAttachments(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload*maxUploadFiles)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Warn("session attachments: invalid upload", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "invalid upload", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	uploads, err := httpx.ReadImages(r.MultipartForm, "files", h.maxUpload)
	if err != nil {
		switch {
		case errors.Is(err, httpx.ErrFileTooLarge):
			transport.WriteError(w, http.StatusRequestEntityTooLarge, err.Error(), nil)
		case errors.Is(err, httpx.ErrNotImage):
			transport.WriteError(w, http.StatusUnsupportedMediaType, err.Error(), nil)
		default:
			log.Error("session attachments: read failed", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusBadRequest, "invalid upload", nil)
		}
		return
	}
	if len(uploads) == 0 {
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"files": "required"})
		return
	}

	files := make([]intake.File, len(uploads))
	for i, u := range uploads {
		files[i] = intake.File{Name: u.Name, ContentType: u.ContentType, Data: u.Data}
	}
	if err := form.AddAttachments(files...); err != nil {
		h.writeFormError(w, log, "session attachments", intake.Status{}, err)
		return
	}

	log.Info("session attachments: ok", slog.String("session_id", id), slog.Int("count", len(files)))
	transport.WriteJSON(w, http.StatusCreated, sessionView(id, form))
}

func (h *Handler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"index": "int"})
		return
	}
	if err := form.RemoveAttachment(index); err != nil {
		h.writeFormError(w, log, "session remove attachment", intake.Status{}, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, sessionView(id, form))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}

	if details := h.requiredDetails(form); len(details) > 0 {
		log.Warn("session submit: validation error", slog.String("session_id", id))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	// The delivery call is not cancelled when the browser goes away.
	status, err := form.Submit(context.WithoutCancel(r.Context()))
	if err != nil {
		h.writeFormError(w, log, "session submit", status, err)
		return
	}

	log.Info("session submit: delivered", slog.String("session_id", id))
	writeStatus(w, http.StatusOK, status)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, form, ok := h.session(w, r)
	if !ok {
		return
	}
	form.Reset()
	transport.WriteJSON(w, http.StatusOK, sessionView(id, form))
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	_, contentType, data, err := h.previews.Lookup(chi.URLParam(r, "handle"))
	if err != nil {
		transport.WriteError(w, http.StatusNotFound, "preview not found", nil)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	transport.WriteBytes(w, http.StatusOK, contentType, data)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		log.Warn("admin submissions list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := ListFilter{
		Email:   strings.TrimSpace(r.URL.Query().Get("email")),
		Company: r.URL.Query().Get("company"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.ListAdmin(ctx, filter, limit, offset)
	if err != nil {
		if errors.Is(err, ErrArchiveDisabled) {
			transport.WriteError(w, http.StatusNotImplemented, "submission archive disabled", nil)
			return
		}
		log.Error("admin submissions list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin submissions list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

// requiredDetails is the advisory check made before a session submit.
func (h *Handler) requiredDetails(form *intake.Form) map[string]string {
	details := map[string]string{}
	for _, name := range form.MissingRequired() {
		details[name] = "required"
	}
	if _, missing := details[intake.FieldEmail]; !missing {
		email, _ := form.Field(intake.FieldEmail)
		if err := h.val.Var(strings.TrimSpace(email), "email"); err != nil {
			details[intake.FieldEmail] = "email"
		}
	}
	return details
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, *intake.Form, bool) {
	id := chi.URLParam(r, "id")
	form, err := h.service.Sessions().Get(id)
	if err != nil {
		transport.WriteError(w, http.StatusNotFound, "session not found", nil)
		return "", nil, false
	}
	return id, form, true
}

func (h *Handler) writeFormError(w http.ResponseWriter, log *slog.Logger, op string, status intake.Status, err error) {
	switch {
	case errors.Is(err, intake.ErrUnknownField):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"field": "unknown"})
	case errors.Is(err, intake.ErrUnknownFeature):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"feature": "unknown"})
	case errors.Is(err, intake.ErrUnknownColor):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"color": "unknown"})
	case errors.Is(err, intake.ErrInvalidColorFormat):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"hex": "colorhex"})
	case errors.Is(err, intake.ErrIndexOutOfRange):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"index": "out_of_range"})
	case errors.Is(err, intake.ErrTooManyAttachments):
		transport.WriteError(w, http.StatusRequestEntityTooLarge, "validation error", map[string]string{"files": "too_many"})
	case errors.Is(err, preview.ErrEmptyName):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"files": "name"})
	case errors.Is(err, intake.ErrStoreClosed):
		transport.WriteError(w, http.StatusGone, "session closed", nil)
	case errors.Is(err, intake.ErrAlreadyInFlight):
		log.Warn(op+": already in flight")
		transport.WriteError(w, http.StatusConflict, intake.ErrAlreadyInFlight.Error(), nil)
	case errors.Is(err, intake.ErrDeliveryFailure):
		log.Error(op+": delivery failed", slog.String("error", err.Error()))
		writeStatus(w, http.StatusBadGateway, status)
	default:
		log.Error(op+": unexpected error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func writeStatus(w http.ResponseWriter, code int, status intake.Status) {
	transport.WriteJSON(w, code, map[string]interface{}{
		"success": status.Succeeded(),
		"message": status.Message,
		"status":  status,
	})
}

type sessionResponse struct {
	ID string `json:"id"`
	intake.View
}

func sessionView(id string, form *intake.Form) sessionResponse {
	return sessionResponse{ID: id, View: form.View()}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
