package auth

import (
	"encoding/json"
	"net/http"

	"github.com/xela07ax/ams-passport/internal/domain"
)

// RequirePermission — гейт авторизации защищенной операции.
// Доступ только при ТОЧНОМ вхождении требуемого права в набор прав
// контекста безопасности. Два различимых отказа:
//   - Principal отсутствует (анонимный запрос) → 401 Unauthenticated;
//   - Principal есть, права нет → 403 Forbidden.
func RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFrom(r.Context())
			if p == nil {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !p.HasPermission(perm) {
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated пропускает любой аутентифицированный запрос.
// Используется там, где операция доступна каждому администратору
// независимо от конкретных прав (например, список ролей).
func RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFrom(r.Context()) == nil {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError отвечает единой JSON-оберткой, не завися от пакета handler
// (иначе получили бы цикл импортов).
func writeAuthError(w http.ResponseWriter, status int, message string) {
	state := domain.CodeUnauthorized
	if status == http.StatusForbidden {
		state = domain.CodeForbidden
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"state":   state,
		"message": message,
	})
}
