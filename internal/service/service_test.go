package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/queuesmart/internal/auth"
	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/events"
	"github.com/spec-kit/queuesmart/internal/repository"
	"github.com/spec-kit/queuesmart/internal/repository/sqlitestore"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

var t0 = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	store        *sqlitestore.Store
	clock        *testClock
	events       *recorder
	customers    *CustomerService
	tickets      *TicketService
	assignments  *AssignmentService
	appointments *AppointmentService
	staff        *StaffService
	audit        *AuditService
	reports      *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlitestore.Open(context.Background(), sqlitestore.Config{
		Path:        filepath.Join(t.TempDir(), "service.db"),
		PoolSize:    4,
		LockTimeout: 5 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &testClock{now: t0}
	rec := &recorder{}
	dispatcher := events.NewInMemoryDispatcher()
	events.SubscribeAll(dispatcher, rec.handle)

	deps := Dependencies{Store: store, Dispatcher: dispatcher, Now: clock.Now}
	tickets := NewTicketService(deps)
	return &testEnv{
		store:        store,
		clock:        clock,
		events:       rec,
		customers:    NewCustomerService(deps),
		tickets:      tickets,
		assignments:  NewAssignmentService(tickets),
		appointments: NewAppointmentService(deps),
		staff:        NewStaffService(deps, auth.NewTokenManager("test-secret", time.Hour), bcrypt.MinCost),
		audit:        NewAuditService(deps),
		reports:      NewReportService(deps, nil),
	}
}

func (e *testEnv) customer(t *testing.T, name string, vulnerable bool) *domain.Customer {
	t.Helper()
	c, err := e.customers.Create(context.Background(), CustomerInput{
		Name:             name,
		Phone:            "0161 496 0000",
		PreferredContact: domain.ContactPhone,
		Vulnerable:       vulnerable,
	}, nil)
	if err != nil {
		t.Fatalf("create customer %s: %v", name, err)
	}
	return c
}

func (e *testEnv) member(t *testing.T, username string, role domain.StaffRole) *domain.StaffAccount {
	t.Helper()
	s, err := e.staff.Register(context.Background(), RegisterStaffInput{
		Username: username,
		Password: "password123",
		Role:     role,
	}, nil)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return s
}

func (e *testEnv) ticket(t *testing.T, customerID int64, category domain.TicketCategory, urgency domain.TicketUrgency, actor *int64) *domain.Ticket {
	t.Helper()
	tk, err := e.tickets.Create(context.Background(), TicketCreateInput{
		CustomerID:  customerID,
		Category:    category,
		Description: "needs help with a form",
		Urgency:     urgency,
	}, actor)
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return tk
}

func (e *testEnv) auditCount(t *testing.T) int {
	t.Helper()
	entries, err := e.store.Audit().List(context.Background(), repository.AuditFilter{})
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	return len(entries)
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.HasCode(err, code) {
		t.Fatalf("err = %v, want %s", err, code)
	}
}

func ptr[T any](v T) *T { return &v }
