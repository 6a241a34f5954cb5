package dto

import "time"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID  int64  `json:"customer_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
}

// UpdateTicketRequest is a partial update; omitted fields are unchanged.
type UpdateTicketRequest struct {
	Status          *string `json:"status"`
	AssignedStaffID *int64  `json:"assigned_staff_id"`
	Unassign        bool    `json:"unassign"`
	Resolution      *string `json:"resolution"`
}

// UpdateTicketResponse reports whether anything was written.
type UpdateTicketResponse struct {
	Updated bool            `json:"updated"`
	Ticket  *TicketResponse `json:"ticket,omitempty"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	StaffID int64 `json:"staff_id"`
}

// TicketResponse representation. Score is set on prioritised listings.
type TicketResponse struct {
	ID                 int64      `json:"id"`
	CustomerID         int64      `json:"customer_id"`
	CustomerName       string     `json:"customer_name"`
	CustomerVulnerable bool       `json:"customer_vulnerable"`
	Category           string     `json:"category"`
	Description        string     `json:"description"`
	Urgency            string     `json:"urgency"`
	Status             string     `json:"status"`
	AssignedStaffID    *int64     `json:"assigned_staff_id"`
	Resolution         *string    `json:"resolution"`
	CreatedAt          time.Time  `json:"created_at"`
	ClosedAt           *time.Time `json:"closed_at"`
	Score              *int       `json:"score,omitempty"`
}
