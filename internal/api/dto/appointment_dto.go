package dto

import "time"

// BookAppointmentRequest payload. Start is RFC 3339.
type BookAppointmentRequest struct {
	CustomerID      int64     `json:"customer_id"`
	StaffID         int64     `json:"staff_id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason"`
}

// RescheduleAppointmentRequest payload.
type RescheduleAppointmentRequest struct {
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}

// AppointmentResponse representation.
type AppointmentResponse struct {
	ID              int64     `json:"id"`
	CustomerID      int64     `json:"customer_id"`
	CustomerName    string    `json:"customer_name,omitempty"`
	StaffID         int64     `json:"staff_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason"`
}
