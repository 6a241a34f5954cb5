package repository

import (
	"context"

	"github.com/spec-kit/queuesmart/internal/domain"
)

// AppointmentRepository stores staff calendar bookings. Listings are ordered
// by start time and carry the customer's name.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	Update(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByStaff(ctx context.Context, staffID int64) ([]domain.Appointment, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error)
	Delete(ctx context.Context, id int64) error
	CountForCustomer(ctx context.Context, customerID int64) (int64, error)
	CountForStaff(ctx context.Context, staffID int64) (int64, error)
}
