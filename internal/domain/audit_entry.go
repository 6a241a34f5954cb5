package domain

import "time"

// AuditAction tags what kind of mutation an entry records.
type AuditAction string

const (
	ActionCreateCustomer      AuditAction = "CREATE_CUSTOMER"
	ActionUpdateCustomer      AuditAction = "UPDATE_CUSTOMER"
	ActionDeleteCustomer      AuditAction = "DELETE_CUSTOMER"
	ActionCreateTicket        AuditAction = "CREATE_TICKET"
	ActionUpdateTicket        AuditAction = "UPDATE_TICKET"
	ActionDeleteTicket        AuditAction = "DELETE_TICKET"
	ActionBookAppointment     AuditAction = "BOOK_APPOINTMENT"
	ActionRescheduleAppt      AuditAction = "RESCHEDULE_APPOINTMENT"
	ActionCancelAppointment   AuditAction = "CANCEL_APPOINTMENT"
	ActionRegisterStaff       AuditAction = "REGISTER_STAFF"
	ActionChangeStaffRole     AuditAction = "CHANGE_STAFF_ROLE"
	ActionChangeStaffPassword AuditAction = "CHANGE_STAFF_PASSWORD"
	ActionDeleteStaff         AuditAction = "DELETE_STAFF"
)

// AuditEntry is an immutable audit trail entry.
type AuditEntry struct {
	ID        int64
	StaffID   int64
	Action    AuditAction
	Detail    string
	CreatedAt time.Time
}
