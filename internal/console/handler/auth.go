package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/ams-passport/internal/domain"
	"go.uber.org/zap"
)

// AuthProvider — то, что нужно хендлеру логина от сервисного слоя.
type AuthProvider interface {
	Login(ctx context.Context, username, password string) (*domain.TokenResponse, error)
}

type AuthHandler struct {
	service AuthProvider
	logger  *zap.Logger
}

func NewAuthHandler(s AuthProvider, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: s, logger: logger.Named("auth-handler")}
}

// Login — POST /admins/login. Принимает учетные данные, отдает токен.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	resp, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// Какая именно часть учетных данных неверна — не уточняем
		writeError(w, h.logger, err)
		return
	}

	writeOK(w, resp)
}
