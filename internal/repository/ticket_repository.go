package repository

import (
	"context"

	"github.com/spec-kit/queuesmart/internal/domain"
)

// TicketFilter narrows a ticket listing. Nil fields match everything.
type TicketFilter struct {
	Statuses        []domain.TicketStatus
	Category        *domain.TicketCategory
	CustomerID      *int64
	AssignedStaffID *int64
}

// TicketRepository encapsulates ticket persistence. Reads return tickets
// joined with the owning customer's name and vulnerable flag.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update writes status, closed_at, assignee and resolution.
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// GetForUpdate reads a ticket and holds its row until the transaction
	// ends, so concurrent updates apply one after the other.
	GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error)
	// List returns matching tickets ordered by id.
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Search matches term case-insensitively against the description or
	// the customer's name.
	Search(ctx context.Context, term string) ([]domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	CountForCustomer(ctx context.Context, customerID int64) (int64, error)
	CountForStaff(ctx context.Context, staffID int64) (int64, error)
}
