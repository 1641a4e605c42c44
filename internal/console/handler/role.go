package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/ams-passport/internal/domain"
	"go.uber.org/zap"
)

// RoleProvider — операции чтения ролей.
type RoleProvider interface {
	List(ctx context.Context) ([]*domain.Role, error)
}

type RoleHandler struct {
	service RoleProvider
	logger  *zap.Logger
}

func NewRoleHandler(s RoleProvider, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{service: s, logger: logger.Named("role-handler")}
}

// List — GET /roles. Доступно любому аутентифицированному администратору.
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeOK(w, roles)
}
