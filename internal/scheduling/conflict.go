// Package scheduling decides whether a proposed appointment fits on a staff
// member's calendar.
package scheduling

import (
	"context"
	"time"

	"github.com/spec-kit/queuesmart/internal/domain"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds the interval covered by an appointment starting at start.
func NewInterval(start time.Time, durationMinutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
}

// Overlaps reports whether i and o share any instant. Touching endpoints do
// not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// AppointmentSource lists a staff member's existing bookings.
type AppointmentSource interface {
	ListByStaff(ctx context.Context, staffID int64) ([]domain.Appointment, error)
}

// Verdict is the outcome of a conflict check.
type Verdict struct {
	Conflict bool
	// With is the first existing appointment found to overlap.
	With *domain.Appointment
}

// Detector checks a candidate interval against a staff member's calendar.
type Detector interface {
	Check(ctx context.Context, src AppointmentSource, staffID int64, candidate Interval, ignoreID int64) (Verdict, error)
}

// LinearDetector scans every existing appointment of the staff member.
type LinearDetector struct{}

// NewDetector returns the default detector.
func NewDetector() Detector {
	return LinearDetector{}
}

// Check returns a conflict verdict for candidate. ignoreID excludes one
// appointment from the scan (used when rescheduling); pass 0 to check all.
// The only error is a failed read from src.
func (LinearDetector) Check(ctx context.Context, src AppointmentSource, staffID int64, candidate Interval, ignoreID int64) (Verdict, error) {
	existing, err := src.ListByStaff(ctx, staffID)
	if err != nil {
		return Verdict{}, err
	}
	if hit, ok := FirstOverlap(existing, candidate, ignoreID); ok {
		return Verdict{Conflict: true, With: &hit}, nil
	}
	return Verdict{}, nil
}

// FirstOverlap returns the first appointment in existing that overlaps candidate.
func FirstOverlap(existing []domain.Appointment, candidate Interval, ignoreID int64) (domain.Appointment, bool) {
	for _, appt := range existing {
		if ignoreID != 0 && appt.ID == ignoreID {
			continue
		}
		if NewInterval(appt.Start, appt.DurationMinutes).Overlaps(candidate) {
			return appt, true
		}
	}
	return domain.Appointment{}, false
}
