package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
)

type reportRepository struct {
	q Querier
}

// The week expression reproduces SQLite's strftime('%Y-%W'): weeks start on
// Monday and days before the year's first Monday fall in week 00.
func (r reportRepository) WeeklyCategoryCounts(ctx context.Context) ([]domain.WeeklyCategoryCount, error) {
	const query = `
        WITH t AS (SELECT created_at AT TIME ZONE 'UTC' AS ts, category FROM tickets)
        SELECT to_char(ts, 'YYYY') || '-' ||
               lpad(((EXTRACT(DOY FROM ts)::int + 7 - EXTRACT(ISODOW FROM ts)::int) / 7)::text, 2, '0') AS week,
               category,
               COUNT(*)
        FROM t
        GROUP BY week, category
        ORDER BY week DESC, category ASC`
	return collect(ctx, r.q, query, nil, func(row pgx.Rows) (domain.WeeklyCategoryCount, error) {
		var (
			out      domain.WeeklyCategoryCount
			category string
		)
		err := row.Scan(&out.Week, &category, &out.Count)
		out.Category = domain.TicketCategory(category)
		return out, err
	})
}

func (r reportRepository) AverageCloseTimes(ctx context.Context) ([]domain.CategoryCloseTime, error) {
	const query = `
        SELECT category,
               ROUND((AVG(EXTRACT(EPOCH FROM (closed_at - created_at))) / 3600)::numeric, 2)::float8
        FROM tickets
        WHERE status = 'Closed' AND closed_at IS NOT NULL
        GROUP BY category
        ORDER BY category`
	return collect(ctx, r.q, query, nil, func(row pgx.Rows) (domain.CategoryCloseTime, error) {
		var (
			out      domain.CategoryCloseTime
			category string
		)
		err := row.Scan(&category, &out.AvgHours)
		out.Category = domain.TicketCategory(category)
		return out, err
	})
}

func (r reportRepository) BusiestDates(ctx context.Context, limit int) ([]domain.DateCount, error) {
	if limit <= 0 {
		limit = repository.DefaultBusiestDates
	}
	const query = `
        SELECT to_char(start_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*) AS n
        FROM appointments
        GROUP BY day
        ORDER BY n DESC, day ASC
        LIMIT $1`
	return collect(ctx, r.q, query, []any{limit}, func(row pgx.Rows) (domain.DateCount, error) {
		var out domain.DateCount
		err := row.Scan(&out.Date, &out.Count)
		return out, err
	})
}

func collect[T any](ctx context.Context, q Querier, query string, args []any, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, translate(err)
		}
		result = append(result, item)
	}
	return result, translate(rows.Err())
}
