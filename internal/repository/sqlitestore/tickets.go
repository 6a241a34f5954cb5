package sqlitestore

import (
	"context"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

const ticketSelect = `
        SELECT t.id, t.customer_id, t.category, t.description, t.urgency, t.status,
               t.created_at, t.closed_at, t.assigned_staff_id, t.resolution,
               c.name, c.vulnerable
        FROM tickets t JOIN customers c ON c.id = t.customer_id`

type ticketRepository struct {
	s *Store
}

func (r ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, category, description, urgency, status, created_at,
                             closed_at, assigned_staff_id, resolution)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{
				ticket.CustomerID,
				string(ticket.Category),
				ticket.Description,
				string(ticket.Urgency),
				string(ticket.Status),
				formatTime(ticket.CreatedAt),
				nullableTime(ticket.ClosedAt),
				nullableInt64(ticket.AssignedStaffID),
				nullableResolution(ticket.Resolution),
			},
		})
		if err != nil {
			return err
		}
		ticket.ID = conn.LastInsertRowID()
		return nil
	})
}

func (r ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=?, closed_at=?, assigned_staff_id=?, resolution=?
        WHERE id=?`
	return r.s.execChanged(ctx, "ticket", ticket.ID, query,
		string(ticket.Status),
		nullableTime(ticket.ClosedAt),
		nullableInt64(ticket.AssignedStaffID),
		nullableResolution(ticket.Resolution),
		ticket.ID,
	)
}

func (r ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	tickets, err := r.query(ctx, ticketSelect+` WHERE t.id=?`, id)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return &tickets[0], nil
}

// GetForUpdate is GetByID: the IMMEDIATE transaction already holds the
// database write lock.
func (r ticketRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, string(status))
			placeholders[i] = "?"
		}
		clauses = append(clauses, "t.status IN ("+strings.Join(placeholders, ",")+")")
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		clauses = append(clauses, "t.category=?")
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, "t.customer_id=?")
	}
	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		clauses = append(clauses, "t.assigned_staff_id=?")
	}

	query := ticketSelect + ` WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY t.id`
	return r.query(ctx, query, args...)
}

func (r ticketRepository) Search(ctx context.Context, term string) ([]domain.Ticket, error) {
	query := ticketSelect + `
        WHERE casefold(t.description) LIKE ?1 ESCAPE '\' OR casefold(c.name) LIKE ?1 ESCAPE '\'
        ORDER BY t.id`
	return r.query(ctx, query, repository.LikePattern(term))
}

func (r ticketRepository) Delete(ctx context.Context, id int64) error {
	return r.s.execChanged(ctx, "ticket", id, `DELETE FROM tickets WHERE id=?`, id)
}

func (r ticketRepository) CountForCustomer(ctx context.Context, customerID int64) (int64, error) {
	return r.s.countRows(ctx, `SELECT COUNT(*) FROM tickets WHERE customer_id=?`, customerID)
}

func (r ticketRepository) CountForStaff(ctx context.Context, staffID int64) (int64, error) {
	return r.s.countRows(ctx, `SELECT COUNT(*) FROM tickets WHERE assigned_staff_id=?`, staffID)
}

func (r ticketRepository) query(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	var result []domain.Ticket
	err := r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result = append(result, scanTicket(stmt))
				return nil
			},
		})
	})
	return result, err
}

func scanTicket(stmt *sqlite.Stmt) domain.Ticket {
	ticket := domain.Ticket{
		ID:                 stmt.ColumnInt64(0),
		CustomerID:         stmt.ColumnInt64(1),
		Category:           domain.TicketCategory(stmt.ColumnText(2)),
		Description:        stmt.ColumnText(3),
		Urgency:            domain.TicketUrgency(stmt.ColumnText(4)),
		Status:             domain.TicketStatus(stmt.ColumnText(5)),
		CreatedAt:          columnTime(stmt, 6),
		ClosedAt:           columnTimePtr(stmt, 7),
		AssignedStaffID:    columnInt64Ptr(stmt, 8),
		CustomerName:       stmt.ColumnText(10),
		CustomerVulnerable: stmt.ColumnInt64(11) != 0,
	}
	if !stmt.ColumnIsNull(9) {
		resolution := domain.Resolution(stmt.ColumnText(9))
		ticket.Resolution = &resolution
	}
	return ticket
}

func nullableResolution(r *domain.Resolution) any {
	if r == nil {
		return nil
	}
	return string(*r)
}
