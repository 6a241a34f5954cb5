package domain

import "time"

// Appointment is a booked slot on one staff member's calendar.
type Appointment struct {
	ID              int64
	CustomerID      int64
	StaffID         int64
	Start           time.Time
	DurationMinutes int
	Reason          string

	// Read-side field joined from the customer.
	CustomerName string
}

// End returns the exclusive end of the appointment interval.
func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}
