package domain

import "time"

// Admin — учетная запись администратора в том виде, в котором она
// отдается наружу (список, карточка). Хэш пароля наружу не уходит.
type Admin struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Nickname    string    `json:"nickname,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	LoginCount  int       `json:"login_count"`
	LastLogin   time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdminLoginInfo — срез данных, необходимый ровно для одной цели:
// проверить учетные данные и собрать claims токена.
// Permissions — права, действующие НА МОМЕНТ логина; в токен они
// зашиваются как есть и до следующего логина не обновляются.
type AdminLoginInfo struct {
	ID           int64
	Username     string
	PasswordHash string
	Enabled      bool
	Permissions  []string
}

// AdminAddRequest — параметры операции добавления администратора.
type AdminAddRequest struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	Nickname    string  `json:"nickname"`
	Avatar      string  `json:"avatar"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Description string  `json:"description"`
	Enabled     bool    `json:"enabled"`
	RoleIDs     []int64 `json:"role_ids"`
}
