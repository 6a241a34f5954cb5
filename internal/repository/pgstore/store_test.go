package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

var t0 = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

// openTestStore connects to the database named by QUEUESMART_TEST_POSTGRES_DSN
// and empties every table. Tests are skipped when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("QUEUESMART_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("QUEUESMART_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	store := New(pool, 200*time.Millisecond, zap.NewNop())
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE audit_log, appointments, tickets, customers, staff RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return store
}

func TestPostgresTicketRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	customer := &domain.Customer{Name: "John Doe", PreferredContact: domain.ContactPhone, Vulnerable: true, CreatedAt: t0}
	if err := s.Customers().Create(ctx, customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	ticket := &domain.Ticket{
		CustomerID:  customer.ID,
		Category:    domain.CategoryHousing,
		Description: "eviction notice",
		Urgency:     domain.UrgencyCritical,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   t0,
	}
	if err := s.Tickets().Create(ctx, ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	got, err := s.Tickets().GetByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CustomerName != "John Doe" || !got.CustomerVulnerable || !got.CreatedAt.Equal(t0) {
		t.Errorf("ticket = %+v", got)
	}

	closedAt := t0.Add(2 * time.Hour)
	got.Status = domain.TicketStatusClosed
	got.ClosedAt = &closedAt
	if err := s.Tickets().Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	avg, err := s.Reports().AverageCloseTimes(ctx)
	if err != nil {
		t.Fatalf("AverageCloseTimes: %v", err)
	}
	if len(avg) != 1 || avg[0].AvgHours != 2 {
		t.Errorf("avg = %+v", avg)
	}

	weekly, err := s.Reports().WeeklyCategoryCounts(ctx)
	if err != nil {
		t.Fatalf("WeeklyCategoryCounts: %v", err)
	}
	if len(weekly) != 1 || weekly[0].Week != "2025-01" {
		t.Errorf("weekly = %+v", weekly)
	}

	if err := s.Customers().Delete(ctx, customer.ID); !apperrors.HasCode(err, apperrors.CodeReferentialConflict) {
		t.Errorf("delete referenced customer err = %v", err)
	}
	if _, err := s.Tickets().GetByID(ctx, 424242); !apperrors.IsNotFound(err) {
		t.Errorf("missing ticket err = %v", err)
	}
}

func TestPostgresDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i := 0; i < 2; i++ {
		err := s.Staff().Create(ctx, &domain.StaffAccount{Username: "alice", PasswordHash: "x", Role: domain.StaffRoleStaff, CreatedAt: t0})
		if i == 1 && !apperrors.HasCode(err, apperrors.CodeUniquenessConflict) {
			t.Fatalf("duplicate err = %v", err)
		}
	}
}

func TestPostgresRollback(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Customers().Create(ctx, &domain.Customer{Name: "Ghost", PreferredContact: domain.ContactPost, CreatedAt: t0}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if customers, _ := s.Customers().List(ctx); len(customers) != 0 {
		t.Fatalf("rollback left %d customers", len(customers))
	}
}

func TestPostgresBookingLockTimesOut(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	staff := &domain.StaffAccount{Username: "bob", PasswordHash: "x", Role: domain.StaffRoleStaff, CreatedAt: t0}
	if err := s.Staff().Create(ctx, staff); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithinTx(ctx, func(tx repository.Store) error {
			if err := tx.Staff().LockForBooking(ctx, staff.ID); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Staff().LockForBooking(ctx, staff.ID)
	})
	close(release)
	if !apperrors.IsRetryable(err) {
		t.Fatalf("second locker err = %v, want STORE_UNAVAILABLE", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("lock holder: %v", err)
	}
}

func TestPostgresTicketRowLockedForUpdate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	customer := &domain.Customer{Name: "Jane Roe", PreferredContact: domain.ContactEmail, CreatedAt: t0}
	if err := s.Customers().Create(ctx, customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	ticket := &domain.Ticket{
		CustomerID:  customer.ID,
		Category:    domain.CategoryOther,
		Description: "form help",
		Urgency:     domain.UrgencyLow,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   t0,
	}
	if err := s.Tickets().Create(ctx, ticket); err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithinTx(ctx, func(tx repository.Store) error {
			if _, err := tx.Tickets().GetForUpdate(ctx, ticket.ID); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		_, err := tx.Tickets().GetForUpdate(ctx, ticket.ID)
		return err
	})
	close(release)
	if !apperrors.IsRetryable(err) {
		t.Fatalf("second reader err = %v, want STORE_UNAVAILABLE", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("lock holder: %v", err)
	}

	if _, err := s.Tickets().GetForUpdate(ctx, 9999); !apperrors.IsNotFound(err) {
		t.Fatalf("missing ticket err = %v, want NOT_FOUND", err)
	}
}
