package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
)

const ticketSelect = `
        SELECT t.id, t.customer_id, t.category, t.description, t.urgency, t.status,
               t.created_at, t.closed_at, t.assigned_staff_id, t.resolution,
               c.name, c.vulnerable
        FROM tickets t JOIN customers c ON c.id = t.customer_id`

type ticketRepository struct {
	q Querier
}

func (r ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, category, description, urgency, status, created_at,
                             closed_at, assigned_staff_id, resolution)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	err := r.q.QueryRow(ctx, query,
		ticket.CustomerID,
		string(ticket.Category),
		ticket.Description,
		string(ticket.Urgency),
		string(ticket.Status),
		utc(ticket.CreatedAt),
		utcPtr(ticket.ClosedAt),
		ticket.AssignedStaffID,
		resolutionArg(ticket.Resolution),
	).Scan(&ticket.ID)
	return translate(err)
}

func (r ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, closed_at=$2, assigned_staff_id=$3, resolution=$4
        WHERE id=$5`
	tag, err := r.q.Exec(ctx, query,
		string(ticket.Status),
		utcPtr(ticket.ClosedAt),
		ticket.AssignedStaffID,
		resolutionArg(ticket.Resolution),
		ticket.ID,
	)
	return requireAffected(tag, err, "ticket", ticket.ID)
}

func (r ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.q.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id))
	if err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	return ticket, nil
}

func (r ticketRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.q.QueryRow(ctx, ticketSelect+` WHERE t.id=$1 FOR UPDATE OF t`, id))
	if err != nil {
		return nil, notFoundOr(err, "ticket", id)
	}
	return ticket, nil
}

func (r ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("t.status = ANY($%d)", len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		clauses = append(clauses, fmt.Sprintf("t.category=$%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("t.customer_id=$%d", len(args)))
	}
	if filter.AssignedStaffID != nil {
		args = append(args, *filter.AssignedStaffID)
		clauses = append(clauses, fmt.Sprintf("t.assigned_staff_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.id`, ticketSelect, strings.Join(clauses, " AND "))
	return r.list(ctx, query, args...)
}

func (r ticketRepository) Search(ctx context.Context, term string) ([]domain.Ticket, error) {
	query := ticketSelect + `
        WHERE LOWER(t.description) LIKE $1 ESCAPE '\' OR LOWER(c.name) LIKE $1 ESCAPE '\'
        ORDER BY t.id`
	return r.list(ctx, query, repository.LikePattern(term))
}

func (r ticketRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	return requireAffected(tag, err, "ticket", id)
}

func (r ticketRepository) CountForCustomer(ctx context.Context, customerID int64) (int64, error) {
	return countRows(ctx, r.q, `SELECT COUNT(*) FROM tickets WHERE customer_id=$1`, customerID)
}

func (r ticketRepository) CountForStaff(ctx context.Context, staffID int64) (int64, error) {
	return countRows(ctx, r.q, `SELECT COUNT(*) FROM tickets WHERE assigned_staff_id=$1`, staffID)
}

func (r ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, translate(err)
		}
		result = append(result, *ticket)
	}
	return result, translate(rows.Err())
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket                    domain.Ticket
		category, urgency, status string
		resolution                *string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&category,
		&ticket.Description,
		&urgency,
		&status,
		&ticket.CreatedAt,
		&ticket.ClosedAt,
		&ticket.AssignedStaffID,
		&resolution,
		&ticket.CustomerName,
		&ticket.CustomerVulnerable,
	); err != nil {
		return nil, err
	}
	ticket.Category = domain.TicketCategory(category)
	ticket.Urgency = domain.TicketUrgency(urgency)
	ticket.Status = domain.TicketStatus(status)
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	if ticket.ClosedAt != nil {
		closedAt := ticket.ClosedAt.UTC()
		ticket.ClosedAt = &closedAt
	}
	if resolution != nil {
		r := domain.Resolution(*resolution)
		ticket.Resolution = &r
	}
	return &ticket, nil
}

func resolutionArg(r *domain.Resolution) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}
