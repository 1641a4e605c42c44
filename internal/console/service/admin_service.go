package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/ams-passport/internal/audit"
	"github.com/xela07ax/ams-passport/internal/domain"
	"github.com/xela07ax/ams-passport/internal/infra"
	"github.com/xela07ax/ams-passport/internal/infra/auth"
	"go.uber.org/zap"
)

// AdminRepository описывает требования к хранилищу учетных записей.
type AdminRepository interface {
	CountByUsername(ctx context.Context, username string) (int, error)
	Insert(ctx context.Context, a *domain.Admin, passwordHash string) (int64, error)
	InsertRoleLinks(ctx context.Context, adminID int64, roleIDs []int64) error
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	UpdateEnabled(ctx context.Context, id int64, enabled bool) error
	DeleteByID(ctx context.Context, id int64) error
	DeleteRoleLinksByAdminID(ctx context.Context, adminID int64) error
	List(ctx context.Context) ([]*domain.Admin, error)
}

type AdminService struct {
	repo    AdminRepository
	encoder *auth.PasswordEncoder
	rdb     *redis.Client
	auditor audit.Auditor
	logger  *zap.Logger
}

func NewAdminService(repo AdminRepository, encoder *auth.PasswordEncoder, rdb *redis.Client, auditor audit.Auditor, logger *zap.Logger) *AdminService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &AdminService{
		repo:    repo,
		encoder: encoder,
		rdb:     rdb,
		auditor: auditor,
		logger:  logger.Named("admin-service"),
	}
}

// AddNew создает учетную запись администратора с привязкой ролей.
//
// Проверка count→insert не атомарна: конкурентные добавления одного
// username могут обе пройти предварительную проверку. Финальную точку
// ставит уникальный индекс в базе — его нарушение тоже ErrConflict.
func (s *AdminService) AddNew(ctx context.Context, req *domain.AdminAddRequest) (int64, error) {
	count, err := s.repo.CountByUsername(ctx, req.Username)
	if err != nil {
		return 0, fmt.Errorf("username check failed: %w", err)
	}
	if count > 0 {
		s.logger.Warn("admin add rejected: username taken", zap.String("username", req.Username))
		return 0, fmt.Errorf("%w: username %q is already taken", domain.ErrConflict, req.Username)
	}

	// Пароль уходит в базу только в виде bcrypt-digest
	passwordHash, err := s.encoder.Hash(req.Password)
	if err != nil {
		return 0, fmt.Errorf("password hashing failed: %w", err)
	}

	admin := &domain.Admin{
		Username:    req.Username,
		Nickname:    req.Nickname,
		Avatar:      req.Avatar,
		Phone:       req.Phone,
		Email:       req.Email,
		Description: req.Description,
		Enabled:     req.Enabled,
	}

	id, err := s.repo.Insert(ctx, admin, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("admin insert failed: %w", err)
	}

	if err := s.repo.InsertRoleLinks(ctx, id, req.RoleIDs); err != nil {
		return 0, fmt.Errorf("role links insert failed: %w", err)
	}

	s.record(ctx, id, req.Username, audit.ActionAdminAdd, audit.OutcomeSuccess,
		fmt.Sprintf("roles=%d", len(req.RoleIDs)))
	s.logger.Info("admin created",
		zap.Int64("admin_id", id),
		zap.String("username", req.Username),
		zap.Int("roles", len(req.RoleIDs)))
	return id, nil
}

// SetEnabled включает или отключает учетную запись.
// Повторное включение включенного (или отключение отключенного) —
// конфликт состояния: мутация не выполняется.
func (s *AdminService) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	action := audit.ActionAdminDisable
	signal := "disabled"
	if enabled {
		action = audit.ActionAdminEnable
		signal = "enabled"
	}

	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("admin lookup failed: %w", err)
	}
	if admin.Enabled == enabled {
		return fmt.Errorf("%w: account is already %s", domain.ErrConflict, signal)
	}

	if err := s.repo.UpdateEnabled(ctx, id, enabled); err != nil {
		return fmt.Errorf("enabled update failed: %w", err)
	}

	s.publishState(ctx, id, signal)
	s.record(ctx, id, admin.Username, action, audit.OutcomeSuccess, "")
	s.logger.Info("admin state updated",
		zap.Int64("admin_id", id),
		zap.String("username", admin.Username),
		zap.Bool("enabled", enabled))
	return nil
}

// DeleteByID удаляет учетную запись вместе с привязками ролей.
func (s *AdminService) DeleteByID(ctx context.Context, id int64) error {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("admin lookup failed: %w", err)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("admin delete failed: %w", err)
	}
	if err := s.repo.DeleteRoleLinksByAdminID(ctx, id); err != nil {
		return fmt.Errorf("role links delete failed: %w", err)
	}

	s.publishState(ctx, id, "deleted")
	s.record(ctx, id, admin.Username, audit.ActionAdminDelete, audit.OutcomeSuccess, "")
	s.logger.Info("admin deleted", zap.Int64("admin_id", id), zap.String("username", admin.Username))
	return nil
}

// List возвращает список администраторов.
func (s *AdminService) List(ctx context.Context) ([]*domain.Admin, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list admins", zap.Error(err))
		return nil, fmt.Errorf("could not fetch admins: %w", err)
	}
	// Гарантируем, что фронтенд получит пустой массив [], а не null
	if admins == nil {
		return []*domain.Admin{}, nil
	}
	return admins, nil
}

// publishState транслирует смену состояния аккаунта в Redis.
// Токены stateless, поэтому шлюзы, которым нужно среагировать раньше
// естественного истечения токена, слушают этот канал. Сигнал —
// best effort: его недоставка не откатывает изменение в базе.
func (s *AdminService) publishState(ctx context.Context, id int64, state string) {
	if s.rdb == nil {
		return
	}
	payload := fmt.Sprintf("%d:%s", id, state)
	if err := s.rdb.Publish(ctx, infra.RedisChanAdminState, payload).Err(); err != nil {
		s.logger.Warn("state signal delivery failed",
			zap.String("channel", infra.RedisChanAdminState),
			zap.String("payload", payload),
			zap.Error(err))
	}
}

func (s *AdminService) record(ctx context.Context, adminID int64, username, action, outcome, detail string) {
	actorID := adminID
	actorName := username
	if p := auth.PrincipalFrom(ctx); p != nil {
		actorID = p.AdminID
		actorName = p.Username
	}
	s.auditor.Log(audit.Event{
		ID:       uuid.NewString(),
		TraceID:  infra.TraceIDFrom(ctx),
		AdminID:  actorID,
		Username: actorName,
		Action:   action,
		Outcome:  outcome,
		Detail:   detail,
	})
}
