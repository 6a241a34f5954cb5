// Package repository defines the persistence contracts shared by the
// SQLite and Postgres backends.
//
// Implementations translate driver failures into errorutil domain errors:
// missing rows become NOT_FOUND, unique and foreign key violations become
// UNIQUENESS_CONFLICT and REFERENTIAL_CONFLICT, and lock or transport
// failures become the retryable STORE_UNAVAILABLE.
package repository

import "context"

// Store is a handle on one relational store.
type Store interface {
	Customers() CustomerRepository
	Tickets() TicketRepository
	Appointments() AppointmentRepository
	Staff() StaffRepository
	Audit() AuditRepository
	Reports() ReportRepository

	// WithinTx runs fn inside a single write transaction. The Store passed
	// to fn is bound to that transaction; fn's error rolls everything back.
	// Calling WithinTx on a transaction-bound Store joins the outer
	// transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}
