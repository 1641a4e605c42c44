package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// minTokenLength — минимальная правдоподобная длина подписанного JWT.
// Все, что короче, даже не пытаемся парсить: считаем, что токена нет.
const minTokenLength = 80

// NewMiddleware возвращает chi-совместимый middleware, который строит
// контекст безопасности запроса из заголовка Authorization.
//
// Три исхода:
//  1. Заголовка нет или он заведомо короче токена — пропускаем запрос
//     дальше БЕЗ Principal. Отказ (или допуск к публичной операции)
//     решит гейт авторизации, а не мы.
//  2. Токен есть и валиден — кладем Principal в контекст запроса.
//  3. Токен есть, но битый/истекший — это отличимый от «нет токена»
//     случай: сразу 401, до обработчика запрос не доходит.
func NewMiddleware(v *BaseValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.Named("auth-middleware")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(header) < minTokenLength {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.VerifyToken(header)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					logger.Debug("token expired", zap.String("path", r.URL.Path))
				} else {
					logger.Warn("token verification failed", zap.Error(err))
				}
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			principal, err := NewPrincipal(claims)
			if err != nil {
				// Подпись сошлась, но permissions-claim не разбирается —
				// такой токен мы не выдавали, трактуем как битый.
				logger.Warn("malformed permissions claim", zap.Error(err))
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
