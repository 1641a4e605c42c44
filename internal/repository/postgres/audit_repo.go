package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xela07ax/ams-passport/internal/audit"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// WriteBatch сохраняет пачку событий аудита за один запрос.
func (r *AuditRepo) WriteBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в таблице ams_audit_log
	const numFields = 8
	placeholders := make([]string, 0, len(events))
	vals := make([]interface{}, 0, len(events)*numFields)

	// Динамически строим запрос для пакетной вставки
	for i, e := range events {
		p := i * numFields
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8))

		vals = append(vals,
			e.ID, e.TraceID, e.AdminID, e.Username,
			e.Action, e.Outcome, e.Detail, e.Timestamp,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO ams_audit_log (id, trace_id, admin_id, username, action, outcome, detail, timestamp) VALUES %s",
		strings.Join(placeholders, ","),
	)

	_, err := r.pool.Exec(ctx, query, vals...)
	return err
}
