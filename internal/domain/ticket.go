package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusWaiting    TicketStatus = "Waiting"
	TicketStatusClosed     TicketStatus = "Closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaiting, TicketStatusClosed:
		return true
	}
	return false
}

// TicketUrgency is the staff-assigned severity tier.
type TicketUrgency string

const (
	UrgencyLow      TicketUrgency = "Low"
	UrgencyMedium   TicketUrgency = "Medium"
	UrgencyHigh     TicketUrgency = "High"
	UrgencyCritical TicketUrgency = "Critical"
)

// Valid reports whether u is a known urgency.
func (u TicketUrgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// TicketCategory is the kind of help requested.
type TicketCategory string

const (
	CategoryHousing        TicketCategory = "Housing"
	CategoryBenefits       TicketCategory = "Benefits"
	CategoryDigitalSupport TicketCategory = "Digital Support"
	CategoryWellbeing      TicketCategory = "Wellbeing"
	CategoryOther          TicketCategory = "Other"
)

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryHousing, CategoryBenefits, CategoryDigitalSupport, CategoryWellbeing, CategoryOther:
		return true
	}
	return false
}

// Resolution records how a closed ticket ended.
type Resolution string

const (
	ResolutionResolved  Resolution = "Resolved"
	ResolutionReferred  Resolution = "Referred"
	ResolutionNoContact Resolution = "No Contact"
	ResolutionDuplicate Resolution = "Duplicate"
)

// Valid reports whether r is a known resolution.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionResolved, ResolutionReferred, ResolutionNoContact, ResolutionDuplicate:
		return true
	}
	return false
}

// Ticket is the aggregate for customer help requests.
type Ticket struct {
	ID              int64
	CustomerID      int64
	Category        TicketCategory
	Description     string
	Urgency         TicketUrgency
	Status          TicketStatus
	CreatedAt       time.Time
	ClosedAt        *time.Time
	AssignedStaffID *int64
	Resolution      *Resolution

	// Read-side fields joined from the owning customer.
	CustomerName       string
	CustomerVulnerable bool
}

// TicketUpdate is a partial update: nil fields are left untouched.
type TicketUpdate struct {
	Status          *TicketStatus
	AssignedStaffID *int64
	// ClearAssignee removes the current assignee. It wins over AssignedStaffID.
	ClearAssignee bool
	Resolution    *Resolution
}

// Empty reports whether the update carries no fields.
func (u TicketUpdate) Empty() bool {
	return u.Status == nil && u.AssignedStaffID == nil && !u.ClearAssignee && u.Resolution == nil
}

// Apply mutates t with the supplied fields. Any known status may follow any
// other, so no state is terminal. closed_at is stamped with now when the
// ticket enters Closed and cleared when it leaves Closed.
func (t *Ticket) Apply(u TicketUpdate, now time.Time) error {
	if u.Status != nil {
		next := *u.Status
		if !next.Valid() {
			return fmt.Errorf("unknown status %q", next)
		}
		switch {
		case next == TicketStatusClosed && t.Status != TicketStatusClosed:
			closedAt := now
			t.ClosedAt = &closedAt
		case next != TicketStatusClosed:
			t.ClosedAt = nil
		}
		t.Status = next
	}
	if u.ClearAssignee {
		t.AssignedStaffID = nil
	} else if u.AssignedStaffID != nil {
		assignee := *u.AssignedStaffID
		t.AssignedStaffID = &assignee
	}
	if u.Resolution != nil {
		if !u.Resolution.Valid() {
			return fmt.Errorf("unknown resolution %q", *u.Resolution)
		}
		resolution := *u.Resolution
		t.Resolution = &resolution
	}
	return nil
}
