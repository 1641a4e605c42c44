package domain

import "errors"

// Таксономия бизнес-ошибок. Сервисы возвращают эти sentinel-ошибки
// (возможно, обернутые через %w), а HTTP-слой переводит их в пару
// «HTTP-статус + бизнес-код состояния».
var (
	// ErrInvalidCredentials — неизвестный логин ИЛИ неверный пароль.
	// Снаружи не различаются, чтобы не раскрывать существование аккаунта.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled — пароль верный, но аккаунт отключен.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrUnauthenticated — защищенная операция без валидного токена
	// (токен отсутствует, битый или истек).
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden — личность установлена, но нужного права нет.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict — нарушение уникальности или конфликт состояния
	// (например, повторное включение уже включенного аккаунта).
	ErrConflict = errors.New("conflict")

	// ErrNotFound — операция адресует несуществующий id.
	ErrNotFound = errors.New("not found")

	// ErrPersistence — insert/update/delete затронул неожиданное число
	// строк. Клиенту отдается обезличенное «попробуйте позже».
	ErrPersistence = errors.New("persistence failure")

	// ErrRateLimited — превышен лимит попыток логина.
	ErrRateLimited = errors.New("rate limited")
)

// Бизнес-коды состояния в JSON-обертке ответа.
const (
	CodeOK                 = 20000
	CodeBadRequest         = 40000
	CodeUnauthorized       = 40100
	CodeAccountDisabled    = 40110
	CodeForbidden          = 40300
	CodeNotFound           = 40400
	CodeConflict           = 40900
	CodeRateLimited        = 42900
	CodePersistenceFailure = 50000
	CodeInternal           = 59900
)
