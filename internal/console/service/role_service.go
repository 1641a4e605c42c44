package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/ams-passport/internal/domain"
	"go.uber.org/zap"
)

// RoleRepository описывает требования к хранилищу ролей.
type RoleRepository interface {
	List(ctx context.Context) ([]*domain.Role, error)
}

type RoleService struct {
	repo   RoleRepository
	logger *zap.Logger
}

func NewRoleService(repo RoleRepository, logger *zap.Logger) *RoleService {
	return &RoleService{repo: repo, logger: logger.Named("role-service")}
}

// List возвращает роли в порядке сортировки.
func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", zap.Error(err))
		return nil, fmt.Errorf("could not fetch roles: %w", err)
	}
	if roles == nil {
		return []*domain.Role{}, nil
	}
	return roles, nil
}
