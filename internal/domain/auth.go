package domain

import "time"

// Session is the result of a successful staff login.
type Session struct {
	Token     string
	Staff     StaffAccount
	ExpiresAt time.Time
}
