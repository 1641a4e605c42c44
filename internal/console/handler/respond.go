package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/ams-passport/internal/domain"
	"go.uber.org/zap"
)

// JsonResult — единая обертка ответа: бизнес-код состояния, сообщение
// и полезные данные. Код состояния детальнее HTTP-статуса (например,
// 40110 отличает «аккаунт отключен» от обычного 40100).
type JsonResult struct {
	State   int         `json:"state"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, JsonResult{State: domain.CodeOK, Data: data})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, JsonResult{State: domain.CodeBadRequest, Message: message})
}

// writeError переводит бизнес-ошибку в пару «HTTP-статус + код состояния».
// Все, что не входит в таксономию, — внутренняя ошибка: полностью
// логируется на сервере, клиенту уходит обезличенное сообщение.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, JsonResult{
			State: domain.CodeUnauthorized, Message: "login failed: bad username or password"})
	case errors.Is(err, domain.ErrAccountDisabled):
		writeJSON(w, http.StatusUnauthorized, JsonResult{
			State: domain.CodeAccountDisabled, Message: "login failed: account is disabled"})
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, JsonResult{
			State: domain.CodeUnauthorized, Message: "authentication required"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, JsonResult{
			State: domain.CodeForbidden, Message: "insufficient permissions"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, JsonResult{
			State: domain.CodeNotFound, Message: "requested record does not exist"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, JsonResult{
			State: domain.CodeConflict, Message: err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, JsonResult{
			State: domain.CodeRateLimited, Message: "too many attempts, slow down"})
	case errors.Is(err, domain.ErrPersistence):
		logger.Error("persistence failure", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, JsonResult{
			State: domain.CodePersistenceFailure, Message: "server is busy, please try again later"})
	default:
		logger.Error("unexpected error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, JsonResult{
			State: domain.CodeInternal, Message: "internal error, please contact the administrator"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body JsonResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
