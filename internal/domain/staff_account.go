package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleStaff   StaffRole = "Staff"
	StaffRoleManager StaffRole = "Manager"
)

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	return r == StaffRoleStaff || r == StaffRoleManager
}

// StaffAccount models a desk operator who can log in, own appointments and
// be assigned tickets.
type StaffAccount struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         StaffRole
	CreatedAt    time.Time
}

// IsManager reports whether the account holds the Manager role.
func (s *StaffAccount) IsManager() bool {
	return s != nil && s.Role == StaffRoleManager
}
