package audit

import "time"

// Действия, фиксируемые в аудите.
const (
	ActionLogin        = "login"
	ActionAdminAdd     = "admin.add"
	ActionAdminEnable  = "admin.enable"
	ActionAdminDisable = "admin.disable"
	ActionAdminDelete  = "admin.delete"
)

// Исходы действий.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeDenied  = "DENIED"
	OutcomeFailed  = "FAILED"
)

// Event — одна запись аудита консоли: кто, что и чем закончилось.
type Event struct {
	ID        string    `json:"id"`       // UUID события
	TraceID   string    `json:"trace_id"` // Сквозной ID запроса
	AdminID   int64     `json:"admin_id"` // Кто делал (0 — аноним/неудачный логин)
	Username  string    `json:"username"` // Логин инициатора или цели (для login)
	Action    string    `json:"action"`   // login, admin.add, admin.disable...
	Outcome   string    `json:"outcome"`  // SUCCESS, DENIED, FAILED
	Detail    string    `json:"detail"`   // Краткий контекст (без секретов!)
	Timestamp time.Time `json:"timestamp"`
}
