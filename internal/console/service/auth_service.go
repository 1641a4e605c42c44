package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/ams-passport/internal/audit"
	"github.com/xela07ax/ams-passport/internal/domain"
	"github.com/xela07ax/ams-passport/internal/infra"
	"github.com/xela07ax/ams-passport/internal/infra/auth"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CredentialProvider описывает требования пайплайна логина к хранилищу.
type CredentialProvider interface {
	GetLoginInfoByUsername(ctx context.Context, username string) (*domain.AdminLoginInfo, error)
	RecordLogin(ctx context.Context, id int64) error
}

// AuthService реализует пайплайн аутентификации:
// учетные данные → bcrypt-проверка → выпуск HS256-токена.
// Проверку входящих токенов отдаем наружу через embedding BaseValidator
// (один секрет на выпуск и проверку).
type AuthService struct {
	*auth.BaseValidator

	repo    CredentialProvider
	encoder *auth.PasswordEncoder
	issuer  *auth.TokenIssuer
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	auditor audit.Auditor
	logger  *zap.Logger
}

func NewAuthService(
	repo CredentialProvider,
	encoder *auth.PasswordEncoder,
	issuer *auth.TokenIssuer,
	validator *auth.BaseValidator,
	loginRPS float64,
	loginBurst int,
	auditor audit.Auditor,
	logger *zap.Logger,
) *AuthService {
	// Предохранитель на лукапы учетных данных: если база легла,
	// не даем шторму логинов добивать ее до конца.
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "credential-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	if auditor == nil {
		auditor = audit.Nop{}
	}
	if loginRPS <= 0 {
		loginRPS = 5
	}
	if loginBurst <= 0 {
		loginBurst = 10
	}

	return &AuthService{
		BaseValidator: validator,
		repo:          repo,
		encoder:       encoder,
		issuer:        issuer,
		cb:            cb,
		limiter:       rate.NewLimiter(rate.Limit(loginRPS), loginBurst),
		auditor:       auditor,
		logger:        logger.Named("auth-service"),
	}
}

// Login проверяет учетные данные и выдает токен.
//
// Порядок проверок фиксирован: пароль раньше флага enabled, иначе по
// «аккаунт отключен» можно было бы узнать о существовании логина, не
// зная пароля. Несуществующий логин и неверный пароль снаружи
// неразличимы (ErrInvalidCredentials).
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.TokenResponse, error) {
	if !s.limiter.Allow() {
		s.logger.Warn("login rate limit exceeded", zap.String("username", username))
		return nil, domain.ErrRateLimited
	}

	// 1. Лукап учетных данных через предохранитель.
	// «Не найдено» — штатный исход, сбоем для breaker не считается.
	res, err := s.cb.Execute(func() (interface{}, error) {
		info, err := s.repo.GetLoginInfoByUsername(ctx, username)
		if errors.Is(err, domain.ErrNotFound) {
			return (*domain.AdminLoginInfo)(nil), nil
		}
		return info, err
	})
	if err != nil {
		s.logger.Error("credential lookup failed", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("credential store unavailable: %w", err)
	}

	info, _ := res.(*domain.AdminLoginInfo)
	if info == nil {
		s.recordAttempt(ctx, 0, username, audit.OutcomeFailed, "unknown username")
		return nil, domain.ErrInvalidCredentials
	}

	// 2. Проверка пароля (bcrypt, соль внутри digest)
	if !s.encoder.Verify(password, info.PasswordHash) {
		s.recordAttempt(ctx, info.ID, username, audit.OutcomeFailed, "password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Пароль верен — теперь можно честно сказать, что аккаунт отключен
	if !info.Enabled {
		s.recordAttempt(ctx, info.ID, username, audit.OutcomeDenied, "account disabled")
		return nil, domain.ErrAccountDisabled
	}

	// 4. Выпуск токена. Права зашиваются те, что действуют СЕЙЧАС;
	// до следующего логина они в токене не обновятся.
	token, err := s.issuer.Issue(info)
	if err != nil {
		s.logger.Error("token issue failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	// 5. Бухгалтерия входа — best effort, логин уже состоялся
	if err := s.repo.RecordLogin(ctx, info.ID); err != nil {
		s.logger.Warn("login bookkeeping failed", zap.Int64("admin_id", info.ID), zap.Error(err))
	}

	s.recordAttempt(ctx, info.ID, username, audit.OutcomeSuccess, "")
	s.logger.Info("admin logged in",
		zap.Int64("admin_id", info.ID),
		zap.String("username", username),
		zap.Int("permissions", len(info.Permissions)))

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.issuer.TTL().Seconds()),
	}, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, adminID int64, username, outcome, detail string) {
	s.auditor.Log(audit.Event{
		ID:       uuid.NewString(),
		TraceID:  infra.TraceIDFrom(ctx),
		AdminID:  adminID,
		Username: username,
		Action:   audit.ActionLogin,
		Outcome:  outcome,
		Detail:   detail,
	})
}
