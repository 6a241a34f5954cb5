package domain

import "time"

// ContactMethod is the customer's preferred channel.
type ContactMethod string

const (
	ContactPhone    ContactMethod = "Phone"
	ContactEmail    ContactMethod = "Email"
	ContactPost     ContactMethod = "Post"
	ContactInPerson ContactMethod = "In-Person"
)

// Valid reports whether m is a known contact method.
func (m ContactMethod) Valid() bool {
	switch m {
	case ContactPhone, ContactEmail, ContactPost, ContactInPerson:
		return true
	}
	return false
}

// Customer is a member of the public the desk is helping.
type Customer struct {
	ID               int64
	Name             string
	Phone            string
	Email            string
	PreferredContact ContactMethod
	Vulnerable       bool
	CreatedAt        time.Time
}
