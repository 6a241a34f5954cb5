package service

import (
	"context"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/priority"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// AssignmentService handles ticket assignment operations.
type AssignmentService struct {
	tickets *TicketService
}

// NewAssignmentService creates the service on top of the ticket workflow.
func NewAssignmentService(tickets *TicketService) *AssignmentService {
	return &AssignmentService{tickets: tickets}
}

// Assign hands a ticket to a staff member.
func (s *AssignmentService) Assign(ctx context.Context, ticketID, staffID int64, actor *int64) (*domain.Ticket, error) {
	return s.apply(ctx, ticketID, domain.TicketUpdate{AssignedStaffID: &staffID}, actor)
}

// Unassign clears a ticket's assignee.
func (s *AssignmentService) Unassign(ctx context.Context, ticketID int64, actor *int64) (*domain.Ticket, error) {
	return s.apply(ctx, ticketID, domain.TicketUpdate{ClearAssignee: true}, actor)
}

func (s *AssignmentService) apply(ctx context.Context, ticketID int64, update domain.TicketUpdate, actor *int64) (*domain.Ticket, error) {
	updated, err := s.tickets.Update(ctx, ticketID, update, actor)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return s.tickets.Get(ctx, ticketID)
}

// Workload returns the staff member's unfinished tickets, highest priority
// first.
func (s *AssignmentService) Workload(ctx context.Context, staffID int64) ([]priority.ScoredTicket, error) {
	if _, err := s.tickets.store.Staff().GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.store.Tickets().List(ctx, repository.TicketFilter{
		Statuses:        activeStatuses,
		AssignedStaffID: &staffID,
	})
	if err != nil {
		return nil, err
	}
	return priority.Rank(tickets, s.tickets.now()), nil
}
