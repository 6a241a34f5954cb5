package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/audit"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/events"
	"github.com/spec-kit/queuesmart/internal/repository"
	"github.com/spec-kit/queuesmart/internal/scheduling"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

// BookingInput describes a requested appointment.
type BookingInput struct {
	CustomerID      int64     `json:"customer_id" validate:"gt=0"`
	StaffID         int64     `json:"staff_id" validate:"gt=0"`
	Start           time.Time `json:"start" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"gt=0"`
	Reason          string    `json:"reason" validate:"max=500"`
}

// RescheduleInput moves an existing appointment.
type RescheduleInput struct {
	Start           time.Time `json:"start" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"gt=0"`
}

// AppointmentService books staff calendars without double-booking.
type AppointmentService struct {
	base
	detector scheduling.Detector
}

// NewAppointmentService constructs the service.
func NewAppointmentService(deps Dependencies) *AppointmentService {
	detector := deps.Detector
	if detector == nil {
		detector = scheduling.NewDetector()
	}
	return &AppointmentService{base: newBase(deps), detector: detector}
}

// Book reserves a slot on the staff member's calendar. The staff calendar is
// locked, checked and written in one transaction, so of two overlapping
// concurrent bookings exactly one succeeds.
func (s *AppointmentService) Book(ctx context.Context, in BookingInput, actor *int64) (*domain.Appointment, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	appt := &domain.Appointment{
		CustomerID:      in.CustomerID,
		StaffID:         in.StaffID,
		Start:           in.Start.UTC().Truncate(time.Second),
		DurationMinutes: in.DurationMinutes,
		Reason:          in.Reason,
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Staff().LockForBooking(ctx, in.StaffID); err != nil {
			return err
		}
		customer, err := tx.Customers().GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if err := s.ensureFree(ctx, tx, appt, 0); err != nil {
			return err
		}
		if err := tx.Appointments().Create(ctx, appt); err != nil {
			return err
		}
		appt.CustomerName = customer.Name
		return audit.Record(ctx, tx, actor, domain.ActionBookAppointment,
			fmt.Sprintf("appointment #%d staff #%d customer #%d at %s for %dm",
				appt.ID, appt.StaffID, appt.CustomerID, appt.Start.Format(time.RFC3339), appt.DurationMinutes),
			s.clock())
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.New(events.EventAppointmentBooked, appt.ID, actor, s.clock(), appointmentPayload(appt)))
	return appt, nil
}

// ensureFree fails with SCHEDULING_CONFLICT when appt overlaps another
// booking of the same staff member.
func (s *AppointmentService) ensureFree(ctx context.Context, tx repository.Store, appt *domain.Appointment, ignoreID int64) error {
	candidate := scheduling.NewInterval(appt.Start, appt.DurationMinutes)
	verdict, err := s.detector.Check(ctx, tx.Appointments(), appt.StaffID, candidate, ignoreID)
	if err != nil {
		return err
	}
	if !verdict.Conflict {
		return nil
	}
	s.logger.Info("booking conflict",
		zap.Int64("staff_id", appt.StaffID),
		zap.Time("start", candidate.Start),
		zap.Time("end", candidate.End),
		zap.Int64("conflicts_with", verdict.With.ID))
	return apperrors.NewSchedulingConflict("staff member already has an appointment in that slot", map[string]any{
		"staff_id":                   appt.StaffID,
		"conflicting_appointment_id": verdict.With.ID,
		"conflicting_start":          verdict.With.Start.Format(time.RFC3339),
		"conflicting_end":            verdict.With.End().Format(time.RFC3339),
	})
}

// Get returns one appointment.
func (s *AppointmentService) Get(ctx context.Context, id int64) (*domain.Appointment, error) {
	return s.store.Appointments().GetByID(ctx, id)
}

// ListByStaff returns the staff member's schedule ordered by start.
func (s *AppointmentService) ListByStaff(ctx context.Context, staffID int64) ([]domain.Appointment, error) {
	if _, err := s.store.Staff().GetByID(ctx, staffID); err != nil {
		return nil, err
	}
	return s.store.Appointments().ListByStaff(ctx, staffID)
}

// ListByCustomer returns the customer's appointments ordered by start.
func (s *AppointmentService) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	if _, err := s.store.Customers().GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.store.Appointments().ListByCustomer(ctx, customerID)
}

// Reschedule moves an appointment, checking the new slot against every other
// booking of the same staff member.
func (s *AppointmentService) Reschedule(ctx context.Context, id int64, in RescheduleInput, actor *int64) (*domain.Appointment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	var appt *domain.Appointment
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		appt, err = tx.Appointments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Staff().LockForBooking(ctx, appt.StaffID); err != nil {
			return err
		}
		previous := appt.Start
		appt.Start = in.Start.UTC().Truncate(time.Second)
		appt.DurationMinutes = in.DurationMinutes
		if err := s.ensureFree(ctx, tx, appt, appt.ID); err != nil {
			return err
		}
		if err := tx.Appointments().Update(ctx, appt); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionRescheduleAppt,
			fmt.Sprintf("appointment #%d moved from %s to %s for %dm",
				appt.ID, previous.Format(time.RFC3339), appt.Start.Format(time.RFC3339), appt.DurationMinutes),
			s.clock())
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.New(events.EventAppointmentRescheduled, appt.ID, actor, s.clock(), appointmentPayload(appt)))
	return appt, nil
}

// Cancel deletes an appointment.
func (s *AppointmentService) Cancel(ctx context.Context, id int64, actor *int64) error {
	var appt *domain.Appointment
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		appt, err = tx.Appointments().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Appointments().Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx, actor, domain.ActionCancelAppointment,
			fmt.Sprintf("appointment #%d staff #%d at %s cancelled", appt.ID, appt.StaffID, appt.Start.Format(time.RFC3339)),
			s.clock())
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.New(events.EventAppointmentCancelled, id, actor, s.clock(), appointmentPayload(appt)))
	return nil
}

func appointmentPayload(appt *domain.Appointment) events.AppointmentPayload {
	return events.AppointmentPayload{
		CustomerID:      appt.CustomerID,
		StaffID:         appt.StaffID,
		Start:           appt.Start,
		DurationMinutes: appt.DurationMinutes,
	}
}
