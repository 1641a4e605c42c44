package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/ams-passport/internal/domain"
)

type RoleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) *RoleRepo {
	return &RoleRepo{pool: pool}
}

// List возвращает роли в порядке пользовательской сортировки.
func (r *RoleRepo) List(ctx context.Context) ([]*domain.Role, error) {
	query := `SELECT id, name, COALESCE(description, ''), sort FROM ams_role ORDER BY sort DESC, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: role list query failed: %w", err)
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role := &domain.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.Sort); err != nil {
			return nil, fmt.Errorf("postgres: role list scan failed: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
