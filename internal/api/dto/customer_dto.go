package dto

import "time"

// CustomerRequest payload for creating or replacing a customer.
type CustomerRequest struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	PreferredContact string `json:"preferred_contact"`
	Vulnerable       bool   `json:"vulnerable"`
}

// CustomerResponse representation.
type CustomerResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone,omitempty"`
	Email            string    `json:"email,omitempty"`
	PreferredContact string    `json:"preferred_contact"`
	Vulnerable       bool      `json:"vulnerable"`
	CreatedAt        time.Time `json:"created_at"`
}
