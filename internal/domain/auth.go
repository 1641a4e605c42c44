package domain

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// Имена прав доступа, которые требуют защищенные операции консоли.
// Сопоставление строгое: никаких wildcard и префиксов.
const (
	PermAdminRead   = "/ams/admin/read"
	PermAdminAddNew = "/ams/admin/add-new"
	PermAdminUpdate = "/ams/admin/update"
	PermAdminDelete = "/ams/admin/delete"
)

// CustomClaims — полезная нагрузка JWT.
// Permissions хранится как JSON-строка (сериализованный []string),
// чтобы payload оставался плоским набором строковых claims.
type CustomClaims struct {
	AdminID     int64  `json:"id"`
	Username    string `json:"username"`
	Permissions string `json:"permissions"`
	jwt.RegisteredClaims
}

// PermissionList разворачивает строковый claim обратно в список прав.
// Пустая строка трактуется как пустой набор (аккаунт без прав — не ошибка).
func (c *CustomClaims) PermissionList() ([]string, error) {
	if c.Permissions == "" {
		return nil, nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(c.Permissions), &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}
