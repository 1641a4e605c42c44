package domain

// Role — роль, на которую ссылается учетная запись администратора.
// Набор прав доступа вычисляется из ролей на этапе логина.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Sort        int    `json:"sort"`
}
