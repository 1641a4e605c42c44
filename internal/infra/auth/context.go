package auth

import (
	"context"

	"github.com/xela07ax/ams-passport/internal/domain"
)

// Principal — контекст безопасности одного запроса: проверенная
// личность плюс набор прав из токена. Собирается заново на каждый
// запрос и живет только в context.Context этого запроса — никакого
// ambient-состояния, которое могло бы протечь между запросами.
type Principal struct {
	AdminID  int64
	Username string

	permissions map[string]struct{}
}

// NewPrincipal строит контекст безопасности из проверенных claims.
// Вызывается строго ПОСЛЕ успешной проверки подписи и срока действия.
func NewPrincipal(claims *domain.CustomClaims) (*Principal, error) {
	perms, err := claims.PermissionList()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return &Principal{
		AdminID:     claims.AdminID,
		Username:    claims.Username,
		permissions: set,
	}, nil
}

// HasPermission проверяет точное вхождение права в набор.
// Иерархий и префиксных совпадений нет намеренно.
func (p *Principal) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	_, ok := p.permissions[perm]
	return ok
}

// Тип для ключа в контексте (избегаем коллизий)
type principalKey struct{}

// WithPrincipal кладет контекст безопасности в context.Context запроса.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom достает контекст безопасности; nil — запрос анонимный.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
