package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/queuesmart/internal/audit"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/events"
	"github.com/spec-kit/queuesmart/internal/priority"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CustomerID  int64                 `json:"customer_id" validate:"gt=0"`
	Category    domain.TicketCategory `json:"category" validate:"ticket_category"`
	Description string                `json:"description" validate:"required,max=4000"`
	Urgency     domain.TicketUrgency  `json:"urgency" validate:"urgency"`
}

// DashboardFilter narrows the prioritised ticket listing. With no statuses
// given, Closed tickets appear only when IncludeClosed is set.
type DashboardFilter struct {
	Statuses      []domain.TicketStatus
	Category      *domain.TicketCategory
	IncludeClosed bool
}

var activeStatuses = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
	domain.TicketStatusWaiting,
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	base
}

// NewTicketService constructs the service.
func NewTicketService(deps Dependencies) *TicketService {
	return &TicketService{base: newBase(deps)}
}

// Create opens a ticket for an existing customer.
func (s *TicketService) Create(ctx context.Context, in TicketCreateInput, actor *int64) (*domain.Ticket, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		CustomerID:  in.CustomerID,
		Category:    in.Category,
		Description: in.Description,
		Urgency:     in.Urgency,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   s.clock(),
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		ticket.CustomerName = customer.Name
		ticket.CustomerVulnerable = customer.Vulnerable
		return audit.Record(ctx, tx, actor, domain.ActionCreateTicket,
			fmt.Sprintf("ticket #%d for customer #%d (%s, %s)", ticket.ID, customer.ID, ticket.Category, ticket.Urgency),
			ticket.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.New(events.EventTicketCreated, ticket.ID, actor, ticket.CreatedAt, events.TicketCreatedPayload{
		CustomerID: ticket.CustomerID,
		Category:   ticket.Category,
		Urgency:    ticket.Urgency,
	}))
	return ticket, nil
}

// Get returns one ticket joined with its customer.
func (s *TicketService) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	return s.store.Tickets().GetByID(ctx, id)
}

// Update applies the supplied fields. It reports false without error when
// the update is empty or the ticket does not exist.
func (s *TicketService) Update(ctx context.Context, id int64, update domain.TicketUpdate, actor *int64) (bool, error) {
	if update.Empty() {
		return false, nil
	}
	if err := validateTicketUpdate(update); err != nil {
		return false, err
	}

	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
		missing   bool
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetForUpdate(ctx, id)
		if apperrors.IsNotFound(err) {
			missing = true
			return nil
		}
		if err != nil {
			return err
		}
		if update.AssignedStaffID != nil && !update.ClearAssignee {
			if _, err := tx.Staff().GetByID(ctx, *update.AssignedStaffID); err != nil {
				return err
			}
		}

		now := s.clock()
		oldStatus = ticket.Status
		if err := ticket.Apply(update, now); err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionUpdateTicket, describeTicketUpdate(ticket.ID, oldStatus, update), now)
	})
	if err != nil {
		return false, err
	}
	if missing {
		return false, nil
	}

	s.publishEvent(ctx, events.New(events.EventTicketUpdated, ticket.ID, actor, s.clock(), events.TicketUpdatedPayload{
		OldStatus:       oldStatus,
		NewStatus:       ticket.Status,
		AssignedStaffID: ticket.AssignedStaffID,
		Resolution:      ticket.Resolution,
	}))
	return true, nil
}

func validateTicketUpdate(update domain.TicketUpdate) error {
	details := map[string]any{}
	if update.Status != nil && !update.Status.Valid() {
		details["status"] = fmt.Sprintf("unknown status %q", *update.Status)
	}
	if update.Resolution != nil && !update.Resolution.Valid() {
		details["resolution"] = fmt.Sprintf("unknown resolution %q", *update.Resolution)
	}
	if update.AssignedStaffID != nil && *update.AssignedStaffID <= 0 {
		details["assigned_staff_id"] = "assigned_staff_id must be positive"
	}
	if len(details) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid ticket update", details)
}

func describeTicketUpdate(id int64, oldStatus domain.TicketStatus, update domain.TicketUpdate) string {
	parts := []string{fmt.Sprintf("ticket #%d", id)}
	if update.Status != nil {
		parts = append(parts, fmt.Sprintf("status %s -> %s", oldStatus, *update.Status))
	}
	switch {
	case update.ClearAssignee:
		parts = append(parts, "unassigned")
	case update.AssignedStaffID != nil:
		parts = append(parts, fmt.Sprintf("assigned to staff #%d", *update.AssignedStaffID))
	}
	if update.Resolution != nil {
		parts = append(parts, fmt.Sprintf("resolution %s", *update.Resolution))
	}
	return strings.Join(parts, "; ")
}

// Search matches term against the description and the customer's name.
func (s *TicketService) Search(ctx context.Context, term string) ([]domain.Ticket, error) {
	if strings.TrimSpace(term) == "" {
		return s.store.Tickets().List(ctx, repository.TicketFilter{})
	}
	return s.store.Tickets().Search(ctx, term)
}

// ListByCustomer returns every ticket a customer has raised.
func (s *TicketService) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Ticket, error) {
	if _, err := s.store.Customers().GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.store.Tickets().List(ctx, repository.TicketFilter{CustomerID: &customerID})
}

// Dashboard returns matching tickets ordered by descending priority.
func (s *TicketService) Dashboard(ctx context.Context, filter DashboardFilter) ([]priority.ScoredTicket, error) {
	details := map[string]any{}
	for _, status := range filter.Statuses {
		if !status.Valid() {
			details["status"] = fmt.Sprintf("unknown status %q", status)
		}
	}
	if filter.Category != nil && !filter.Category.Valid() {
		details["category"] = fmt.Sprintf("unknown category %q", *filter.Category)
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid dashboard filter", details)
	}

	statuses := filter.Statuses
	if len(statuses) == 0 && !filter.IncludeClosed {
		statuses = activeStatuses
	}
	tickets, err := s.store.Tickets().List(ctx, repository.TicketFilter{
		Statuses: statuses,
		Category: filter.Category,
	})
	if err != nil {
		return nil, err
	}
	return priority.Rank(tickets, s.now()), nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, id int64, actor *int64) error {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Tickets().Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionDeleteTicket,
			fmt.Sprintf("ticket #%d for customer #%d", ticket.ID, ticket.CustomerID), s.clock())
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.New(events.EventTicketDeleted, id, actor, s.clock(), nil))
	return nil
}
