package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
)

type auditRepository struct {
	q Querier
}

func (r auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (staff_id, action, detail, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return translate(r.q.QueryRow(ctx, query,
		entry.StaffID,
		string(entry.Action),
		entry.Detail,
		utc(entry.CreatedAt),
	).Scan(&entry.ID))
}

func (r auditRepository) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	query := `SELECT id, staff_id, action, detail, created_at FROM audit_log`
	args := []any{}
	clauses := []string{}

	if filter.StaffID != nil {
		args = append(args, *filter.StaffID)
		clauses = append(clauses, fmt.Sprintf("staff_id=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, utc(*filter.From))
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, utc(*filter.To))
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var (
			entry  domain.AuditEntry
			action string
		)
		if err := rows.Scan(&entry.ID, &entry.StaffID, &action, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, translate(err)
		}
		entry.Action = domain.AuditAction(action)
		entry.CreatedAt = entry.CreatedAt.UTC()
		result = append(result, entry)
	}
	return result, translate(rows.Err())
}
