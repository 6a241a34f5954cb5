package sqlitestore

import (
	"context"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
)

type reportRepository struct {
	s *Store
}

func (r reportRepository) WeeklyCategoryCounts(ctx context.Context) ([]domain.WeeklyCategoryCount, error) {
	const query = `
        SELECT strftime('%Y-%W', created_at) AS week, category, COUNT(*)
        FROM tickets
        GROUP BY week, category
        ORDER BY week DESC, category ASC`
	var result []domain.WeeklyCategoryCount
	err := r.run(ctx, query, nil, func(stmt *sqlite.Stmt) {
		result = append(result, domain.WeeklyCategoryCount{
			Week:     stmt.ColumnText(0),
			Category: domain.TicketCategory(stmt.ColumnText(1)),
			Count:    stmt.ColumnInt64(2),
		})
	})
	return result, err
}

func (r reportRepository) AverageCloseTimes(ctx context.Context) ([]domain.CategoryCloseTime, error) {
	const query = `
        SELECT category, ROUND(AVG((julianday(closed_at) - julianday(created_at)) * 24), 2)
        FROM tickets
        WHERE status = 'Closed' AND closed_at IS NOT NULL
        GROUP BY category
        ORDER BY category`
	var result []domain.CategoryCloseTime
	err := r.run(ctx, query, nil, func(stmt *sqlite.Stmt) {
		result = append(result, domain.CategoryCloseTime{
			Category: domain.TicketCategory(stmt.ColumnText(0)),
			AvgHours: stmt.ColumnFloat(1),
		})
	})
	return result, err
}

func (r reportRepository) BusiestDates(ctx context.Context, limit int) ([]domain.DateCount, error) {
	if limit <= 0 {
		limit = repository.DefaultBusiestDates
	}
	const query = `
        SELECT substr(start_at, 1, 10) AS day, COUNT(*) AS n
        FROM appointments
        GROUP BY day
        ORDER BY n DESC, day ASC
        LIMIT ?`
	var result []domain.DateCount
	err := r.run(ctx, query, []any{int64(limit)}, func(stmt *sqlite.Stmt) {
		result = append(result, domain.DateCount{
			Date:  stmt.ColumnText(0),
			Count: stmt.ColumnInt64(1),
		})
	})
	return result, err
}

func (r reportRepository) run(ctx context.Context, query string, args []any, row func(stmt *sqlite.Stmt)) error {
	return r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				row(stmt)
				return nil
			},
		})
	})
}
