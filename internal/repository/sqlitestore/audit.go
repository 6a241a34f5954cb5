package sqlitestore

import (
	"context"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
)

type auditRepository struct {
	s *Store
}

func (r auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `INSERT INTO audit_log (staff_id, action, detail, created_at) VALUES (?, ?, ?, ?)`
	return r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{
				entry.StaffID,
				string(entry.Action),
				entry.Detail,
				formatTime(entry.CreatedAt),
			},
		})
		if err != nil {
			return err
		}
		entry.ID = conn.LastInsertRowID()
		return nil
	})
}

func (r auditRepository) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	query := `SELECT id, staff_id, action, detail, created_at FROM audit_log`
	clauses := []string{}
	args := []any{}

	if filter.StaffID != nil {
		args = append(args, *filter.StaffID)
		clauses = append(clauses, "staff_id=?")
	}
	if filter.From != nil {
		args = append(args, formatTime(*filter.From))
		clauses = append(clauses, "created_at>=?")
	}
	if filter.To != nil {
		args = append(args, formatTime(*filter.To))
		clauses = append(clauses, "created_at<?")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, int64(filter.Limit))
		query += " LIMIT ?"
	}

	var result []domain.AuditEntry
	err := r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result = append(result, domain.AuditEntry{
					ID:        stmt.ColumnInt64(0),
					StaffID:   stmt.ColumnInt64(1),
					Action:    domain.AuditAction(stmt.ColumnText(2)),
					Detail:    stmt.ColumnText(3),
					CreatedAt: columnTime(stmt, 4),
				})
				return nil
			},
		})
	})
	return result, err
}
