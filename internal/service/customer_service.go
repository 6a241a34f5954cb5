package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/queuesmart/internal/audit"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/events"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// CustomerInput carries the editable customer fields.
type CustomerInput struct {
	Name             string               `json:"name" validate:"required,max=200"`
	Phone            string               `json:"phone" validate:"omitempty,max=50"`
	Email            string               `json:"email" validate:"omitempty,email,max=254"`
	PreferredContact domain.ContactMethod `json:"preferred_contact" validate:"contact_method"`
	Vulnerable       bool                 `json:"vulnerable"`
}

func (in CustomerInput) normalized() CustomerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

// CustomerService manages the people the desk is helping.
type CustomerService struct {
	base
}

// NewCustomerService constructs the service.
func NewCustomerService(deps Dependencies) *CustomerService {
	return &CustomerService{base: newBase(deps)}
}

// Create stores a new customer.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput, actor *int64) (*domain.Customer, error) {
	in = in.normalized()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Name:             in.Name,
		Phone:            in.Phone,
		Email:            in.Email,
		PreferredContact: in.PreferredContact,
		Vulnerable:       in.Vulnerable,
		CreatedAt:        s.clock(),
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Customers().Create(ctx, customer); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionCreateCustomer,
			fmt.Sprintf("customer #%d %s", customer.ID, customer.Name), customer.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.New(events.EventCustomerCreated, customer.ID, actor, customer.CreatedAt, nil))
	return customer, nil
}

// Get returns one customer.
func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.store.Customers().GetByID(ctx, id)
}

// Update replaces the editable fields of an existing customer.
func (s *CustomerService) Update(ctx context.Context, id int64, in CustomerInput, actor *int64) (*domain.Customer, error) {
	in = in.normalized()
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var customer *domain.Customer
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		customer, err = tx.Customers().GetByID(ctx, id)
		if err != nil {
			return err
		}
		customer.Name = in.Name
		customer.Phone = in.Phone
		customer.Email = in.Email
		customer.PreferredContact = in.PreferredContact
		customer.Vulnerable = in.Vulnerable
		if err := tx.Customers().Update(ctx, customer); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionUpdateCustomer,
			fmt.Sprintf("customer #%d %s", customer.ID, customer.Name), s.clock())
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// Search matches term against name, phone and email. An empty term lists
// every customer.
func (s *CustomerService) Search(ctx context.Context, term string) ([]domain.Customer, error) {
	if strings.TrimSpace(term) == "" {
		return s.store.Customers().List(ctx)
	}
	return s.store.Customers().Search(ctx, term)
}

// List returns every customer ordered by id.
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.store.Customers().List(ctx)
}

// Delete removes a customer that has no tickets or appointments.
func (s *CustomerService) Delete(ctx context.Context, id int64, actor *int64) error {
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().GetByID(ctx, id)
		if err != nil {
			return err
		}
		tickets, err := tx.Tickets().CountForCustomer(ctx, id)
		if err != nil {
			return err
		}
		appts, err := tx.Appointments().CountForCustomer(ctx, id)
		if err != nil {
			return err
		}
		if tickets > 0 || appts > 0 {
			return apperrors.NewReferentialConflict("customer still has tickets or appointments", map[string]any{
				"customer_id":  id,
				"tickets":      tickets,
				"appointments": appts,
			})
		}
		if err := tx.Customers().Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionDeleteCustomer,
			fmt.Sprintf("customer #%d %s", customer.ID, customer.Name), s.clock())
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.New(events.EventCustomerDeleted, id, actor, s.clock(), nil))
	return nil
}
