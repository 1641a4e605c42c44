package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/ams-passport/internal/domain"
)

// uniqueViolation — код PostgreSQL для нарушения unique-констрейнта.
// Уникальный индекс по username — страховка от гонки count→insert:
// проверка и вставка не атомарны, и при конкурентных добавлениях
// одинаковых username именно констрейнт дает финальный Conflict.
const uniqueViolation = "23505"

type AdminRepo struct {
	pool *pgxpool.Pool
}

// NewAdminRepo создает репозиторий учетных записей администраторов.
func NewAdminRepo(pool *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

// GetLoginInfoByUsername возвращает данные для проверки учетных данных
// и набор прав, действующий на момент логина (через роли аккаунта).
// Отсутствие аккаунта — domain.ErrNotFound, решать, что с этим делать,
// будет сервис (наружу уйдет обезличенный InvalidCredentials).
func (r *AdminRepo) GetLoginInfoByUsername(ctx context.Context, username string) (*domain.AdminLoginInfo, error) {
	query := `
		SELECT a.id, a.username, a.password_hash, a.enabled,
		       COALESCE(array_agg(DISTINCT p.value) FILTER (WHERE p.value IS NOT NULL), '{}')
		FROM ams_admin a
		LEFT JOIN ams_admin_role ar ON ar.admin_id = a.id
		LEFT JOIN ams_role_permission rp ON rp.role_id = ar.role_id
		LEFT JOIN ams_permission p ON p.id = rp.permission_id
		WHERE a.username = $1
		GROUP BY a.id`

	info := &domain.AdminLoginInfo{}
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&info.ID, &info.Username, &info.PasswordHash, &info.Enabled, &info.Permissions,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: login info query failed: %w", err)
	}
	return info, nil
}

// CountByUsername — количество аккаунтов с данным username (0 или 1).
func (r *AdminRepo) CountByUsername(ctx context.Context, username string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ams_admin WHERE username = $1`, username,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count by username failed: %w", err)
	}
	return count, nil
}

// Insert вставляет нового администратора и возвращает его id.
// Дубликат username на уровне констрейнта превращается в ErrConflict.
func (r *AdminRepo) Insert(ctx context.Context, a *domain.Admin, passwordHash string) (int64, error) {
	query := `
		INSERT INTO ams_admin
			(username, password_hash, nickname, avatar, phone, email, description, enabled, login_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, NOW(), NOW())
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		a.Username, passwordHash, a.Nickname, a.Avatar, a.Phone, a.Email, a.Description, a.Enabled,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, domain.ErrConflict
		}
		return 0, fmt.Errorf("postgres: admin insert failed: %w", err)
	}
	return id, nil
}

// GetByID возвращает учетную запись или domain.ErrNotFound.
func (r *AdminRepo) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	query := `
		SELECT id, username, nickname, avatar, phone, email, description,
		       enabled, login_count, COALESCE(last_login, 'epoch'), created_at, updated_at
		FROM ams_admin WHERE id = $1`

	a := &domain.Admin{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Username, &a.Nickname, &a.Avatar, &a.Phone, &a.Email, &a.Description,
		&a.Enabled, &a.LoginCount, &a.LastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: admin query failed: %w", err)
	}
	return a, nil
}

// UpdateEnabled переключает флаг enabled.
// Ровно одна затронутая строка — инвариант; иначе хранилище в
// неожиданном состоянии и наружу уходит PersistenceFailure.
func (r *AdminRepo) UpdateEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ams_admin SET enabled = $1, updated_at = NOW() WHERE id = $2`, enabled, id)
	if err != nil {
		return fmt.Errorf("postgres: enabled update failed: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrPersistence
	}
	return nil
}

// DeleteByID удаляет учетную запись (жесткое удаление).
func (r *AdminRepo) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ams_admin WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: admin delete failed: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrPersistence
	}
	return nil
}

// InsertRoleLinks привязывает роли к администратору пакетной вставкой.
func (r *AdminRepo) InsertRoleLinks(ctx context.Context, adminID int64, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}

	// Динамически строим запрос для пакетной вставки
	placeholders := make([]string, 0, len(roleIDs))
	vals := make([]interface{}, 0, len(roleIDs)*2)
	for i, roleID := range roleIDs {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, NOW(), NOW())", i*2+1, i*2+2))
		vals = append(vals, adminID, roleID)
	}

	query := fmt.Sprintf(
		"INSERT INTO ams_admin_role (admin_id, role_id, created_at, updated_at) VALUES %s",
		strings.Join(placeholders, ","),
	)

	tag, err := r.pool.Exec(ctx, query, vals...)
	if err != nil {
		return fmt.Errorf("postgres: role links insert failed: %w", err)
	}
	if tag.RowsAffected() < int64(len(roleIDs)) {
		return domain.ErrPersistence
	}
	return nil
}

// DeleteRoleLinksByAdminID снимает все привязки ролей (каскад удаления).
// Ноль строк — валидный случай: у аккаунта могло не быть ролей.
func (r *AdminRepo) DeleteRoleLinksByAdminID(ctx context.Context, adminID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM ams_admin_role WHERE admin_id = $1`, adminID)
	if err != nil {
		return fmt.Errorf("postgres: role links delete failed: %w", err)
	}
	return nil
}

// RecordLogin фиксирует успешный вход: счетчик и отметка времени.
func (r *AdminRepo) RecordLogin(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE ams_admin SET login_count = login_count + 1, last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: login record failed: %w", err)
	}
	return nil
}

// List возвращает всех администраторов (без хэшей паролей).
func (r *AdminRepo) List(ctx context.Context) ([]*domain.Admin, error) {
	query := `
		SELECT id, username, nickname, avatar, phone, email, description,
		       enabled, login_count, COALESCE(last_login, 'epoch'), created_at, updated_at
		FROM ams_admin ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: admin list query failed: %w", err)
	}
	defer rows.Close()

	var admins []*domain.Admin
	for rows.Next() {
		a := &domain.Admin{}
		if err := rows.Scan(
			&a.ID, &a.Username, &a.Nickname, &a.Avatar, &a.Phone, &a.Email, &a.Description,
			&a.Enabled, &a.LoginCount, &a.LastLogin, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: admin list scan failed: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// Ping проверяет доступность базы при старте.
func (r *AdminRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
