// Package pgstore implements repository.Store on PostgreSQL through pgx.
//
// Write transactions run at READ COMMITTED with a per-transaction
// lock_timeout. Bookings serialize on the staff row (SELECT ... FOR UPDATE)
// so the conflict check and the insert see a stable calendar.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/queuesmart/internal/persistence"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded schema migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a repository.Store over a pgx pool.
type Store struct {
	pool        *pgxpool.Pool
	q           Querier
	inTx        bool
	lockTimeout time.Duration
	logger      *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// New wraps pool. lockTimeout bounds how long a writer waits on row or
// table locks; zero means 2s.
func New(pool *pgxpool.Pool, lockTimeout time.Duration, logger *zap.Logger) *Store {
	if lockTimeout <= 0 {
		lockTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, q: pool, lockTimeout: lockTimeout, logger: logger}
}

// Migrate applies the embedded migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return persistence.RunMigrations(ctx, s.pool, Migrations(), s.logger)
}

func (s *Store) Customers() repository.CustomerRepository       { return customerRepository{s.q} }
func (s *Store) Tickets() repository.TicketRepository           { return ticketRepository{s.q} }
func (s *Store) Appointments() repository.AppointmentRepository { return appointmentRepository{s.q} }
func (s *Store) Staff() repository.StaffRepository              { return staffRepository{s.q} }
func (s *Store) Audit() repository.AuditRepository              { return auditRepository{s.q} }
func (s *Store) Reports() repository.ReportRepository           { return reportRepository{s.q} }

// WithinTx runs fn in one transaction. A non-nil error from fn rolls back.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return translate(err)
	}
	defer func() {
		if rbErr := tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", zap.Error(rbErr))
		}
	}()

	timeout := fmt.Sprintf("%dms", s.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
		return translate(err)
	}

	bound := &Store{pool: s.pool, q: tx, inTx: true, lockTimeout: s.lockTimeout, logger: s.logger}
	if err := fn(bound); err != nil {
		return translate(err)
	}
	return translate(tx.Commit(ctx))
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return translate(s.pool.Ping(ctx))
}

// Close releases the pool. The pool is owned by the caller when it came from
// persistence.Postgres; closing twice is harmless.
func (s *Store) Close() error {
	if s.inTx {
		return errors.New("pgstore: Close called on a transaction-bound store")
	}
	s.pool.Close()
	return nil
}

// SQLSTATE codes the store maps explicitly.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// translate maps pgx failures onto the domain error taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperrors.NewUniquenessConflict("record already exists", map[string]any{"constraint": pgErr.ConstraintName})
		case codeForeignKeyViolation:
			return apperrors.NewReferentialConflict("record is referenced by other records", map[string]any{"constraint": pgErr.ConstraintName})
		case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
			return apperrors.NewStoreUnavailable(err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err) {
		return apperrors.NewStoreUnavailable(err)
	}
	return err
}

func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return translate(err)
}

func requireAffected(tag pgconn.CommandTag, err error, resource string, id int64) error {
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return nil
}

func countRows(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := utc(*t)
	return &v
}
