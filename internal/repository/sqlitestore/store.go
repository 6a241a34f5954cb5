// Package sqlitestore implements repository.Store on a local SQLite file.
//
// Every write transaction is BEGIN IMMEDIATE, which takes the database write
// lock before the first statement. Two transactions that both read then
// write (the appointment conflict check followed by the insert) therefore
// run one after the other. A writer that cannot get the lock within the
// configured busy timeout fails with STORE_UNAVAILABLE.
//
// Timestamps are stored as UTC text in the form 2006-01-02T15:04:05Z.
package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/queuesmart/internal/persistence"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Config holds the parameters for opening a store.
type Config struct {
	Path        string
	PoolSize    int
	LockTimeout time.Duration
}

// Store is a repository.Store over a sqlitex pool. A Store returned to a
// WithinTx callback is bound to one connection with an open transaction.
type Store struct {
	pool   *sqlitex.Pool
	logger *zap.Logger
	conn   *sqlite.Conn
}

var _ repository.Store = (*Store)(nil)

// Open creates the database file when missing and applies the schema.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := persistence.NewSQLite(persistence.SQLiteOptions{
		Path:        cfg.Path,
		PoolSize:    cfg.PoolSize,
		LockTimeout: cfg.LockTimeout,
		OnConnect:   registerCasefold,
	}, logger)
	if err != nil {
		return nil, err
	}

	s := &Store{pool: pool, logger: logger}
	if err := s.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
			return fmt.Errorf("sqlitestore: apply schema: %w", err)
		}
		s.logger.Debug("sqlite schema applied")
		return nil
	})
}

func (s *Store) Customers() repository.CustomerRepository       { return customerRepository{s} }
func (s *Store) Tickets() repository.TicketRepository           { return ticketRepository{s} }
func (s *Store) Appointments() repository.AppointmentRepository { return appointmentRepository{s} }
func (s *Store) Staff() repository.StaffRepository              { return staffRepository{s} }
func (s *Store) Audit() repository.AuditRepository              { return auditRepository{s} }
func (s *Store) Reports() repository.ReportRepository           { return reportRepository{s} }

// WithinTx runs fn in an IMMEDIATE transaction on one pooled connection.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.conn != nil {
		return fn(s)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return translate(err)
	}
	defer s.pool.Put(conn)

	err = func() (err error) {
		endTransaction, err := sqlitex.ImmediateTransaction(conn)
		if err != nil {
			return err
		}
		defer endTransaction(&err)
		return fn(&Store{pool: s.pool, logger: s.logger, conn: conn})
	}()
	return translate(err)
}

// Ping runs a trivial query.
func (s *Store) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.ExecuteTransient(conn, "SELECT 1", nil)
	})
}

// Close closes every pooled connection. It blocks until borrowed
// connections are returned.
func (s *Store) Close() error {
	if s.conn != nil {
		return errors.New("sqlitestore: Close called on a transaction-bound store")
	}
	if err := s.pool.Close(); err != nil {
		s.logger.Error("sqlite pool close error", zap.Error(err))
		return err
	}
	s.logger.Info("sqlite pool closed")
	return nil
}

// withConn runs fn on the bound transaction connection, or on a connection
// borrowed from the pool. Errors come back translated.
func (s *Store) withConn(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	if s.conn != nil {
		return translate(fn(s.conn))
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return translate(err)
	}
	defer s.pool.Put(conn)
	return translate(fn(conn))
}

// translate maps SQLite result codes onto the domain error taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewStoreUnavailable(err)
	}

	code := sqlite.ErrCode(err)
	switch code {
	case sqlite.ResultConstraintUnique, sqlite.ResultConstraintPrimaryKey:
		return apperrors.NewUniquenessConflict("record already exists", nil)
	case sqlite.ResultConstraintForeignKey:
		return apperrors.NewReferentialConflict("record is referenced by other records", nil)
	}
	switch code.ToPrimary() {
	case sqlite.ResultBusy, sqlite.ResultLocked, sqlite.ResultInterrupt:
		return apperrors.NewStoreUnavailable(err)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}

// parseTime returns the zero time for text it cannot parse.
func parseTime(text string) time.Time {
	t, err := time.Parse(timeLayout, text)
	if err != nil {
		return time.Time{}
	}
	return t
}

func columnTime(stmt *sqlite.Stmt, col int) time.Time {
	return parseTime(stmt.ColumnText(col))
}

func columnTimePtr(stmt *sqlite.Stmt, col int) *time.Time {
	if stmt.ColumnIsNull(col) {
		return nil
	}
	t := columnTime(stmt, col)
	return &t
}

func columnInt64Ptr(stmt *sqlite.Stmt, col int) *int64 {
	if stmt.ColumnIsNull(col) {
		return nil
	}
	v := stmt.ColumnInt64(col)
	return &v
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolArg(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// countRows runs a single-column COUNT query.
func (s *Store) countRows(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				n = stmt.ColumnInt64(0)
				return nil
			},
		})
	})
	return n, err
}

// execChanged runs a write and reports NOT_FOUND when it touched no rows.
func (s *Store) execChanged(ctx context.Context, resource string, id int64, query string, args ...any) error {
	return s.withConn(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
			return err
		}
		if conn.Changes() == 0 {
			return apperrors.NewNotFound(resource, map[string]any{"id": id})
		}
		return nil
	})
}

// registerCasefold installs casefold(text), a Unicode-aware lower-casing
// function. The built-in LOWER only folds ASCII, so "Élise" would never match
// a search for "élise".
func registerCasefold(conn *sqlite.Conn) error {
	return conn.CreateFunction("casefold", &sqlite.FunctionImpl{
		NArgs:         1,
		Deterministic: true,
		Scalar: func(_ sqlite.Context, args []sqlite.Value) (sqlite.Value, error) {
			if args[0].Type() == sqlite.TypeNull {
				return sqlite.Value{}, nil
			}
			return sqlite.TextValue(strings.ToLower(args[0].Text())), nil
		},
	})
}
