package repository

import (
	"context"

	"github.com/spec-kit/queuesmart/internal/domain"
)

// StaffRepository handles persistence for staff accounts.
type StaffRepository interface {
	// Create inserts staff; a taken username is a UNIQUENESS_CONFLICT.
	Create(ctx context.Context, staff *domain.StaffAccount) error
	// Update writes the role and password hash.
	Update(ctx context.Context, staff *domain.StaffAccount) error
	GetByID(ctx context.Context, id int64) (*domain.StaffAccount, error)
	GetByUsername(ctx context.Context, username string) (*domain.StaffAccount, error)
	List(ctx context.Context) ([]domain.StaffAccount, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	// LockForBooking serializes bookings against one staff calendar for the
	// rest of the current transaction. NOT_FOUND when the account is missing.
	LockForBooking(ctx context.Context, id int64) error
}
