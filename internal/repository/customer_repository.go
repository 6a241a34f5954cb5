package repository

import (
	"context"

	"github.com/spec-kit/queuesmart/internal/domain"
)

// CustomerRepository defines persistence access for customers.
type CustomerRepository interface {
	// Create inserts customer and fills in its ID.
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	// Search matches term case-insensitively against name, phone or email.
	Search(ctx context.Context, term string) ([]domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Delete(ctx context.Context, id int64) error
}
