package dto

import "time"

// AuditEntryResponse representation.
type AuditEntryResponse struct {
	ID        int64     `json:"id"`
	StaffID   int64     `json:"staff_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
