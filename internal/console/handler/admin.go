package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/ams-passport/internal/domain"
	"go.uber.org/zap"
)

// AdminProvider — операции управления учетными записями.
type AdminProvider interface {
	AddNew(ctx context.Context, req *domain.AdminAddRequest) (int64, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	DeleteByID(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Admin, error)
}

type AdminHandler struct {
	service AdminProvider
	logger  *zap.Logger
}

func NewAdminHandler(s AdminProvider, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: s, logger: logger.Named("admin-handler")}
}

// AddNew — POST /admins/add-new.
func (h *AdminHandler) AddNew(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.Username == "" {
		writeBadRequest(w, "username is required")
		return
	}
	if req.Password == "" {
		writeBadRequest(w, "password is required")
		return
	}

	id, err := h.service.AddNew(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, map[string]int64{"id": id})
}

// Delete — POST /admins/{id}/delete.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, nil)
}

// Enable — POST /admins/{id}/enable.
func (h *AdminHandler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

// Disable — POST /admins/{id}/disable.
func (h *AdminHandler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *AdminHandler) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	if err := h.service.SetEnabled(r.Context(), id, enabled); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, nil)
}

// List — GET /admins.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, admins)
}

func (h *AdminHandler) adminID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
