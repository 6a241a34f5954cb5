package persistence

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// SQLiteOptions configures a local SQLite connection pool.
type SQLiteOptions struct {
	Path     string
	PoolSize int
	// LockTimeout becomes busy_timeout: how long a writer waits for the
	// database write lock before failing with SQLITE_BUSY.
	LockTimeout time.Duration
	// OnConnect runs once per connection after the standard pragmas.
	OnConnect func(conn *sqlite.Conn) error
}

// NewSQLite opens a pool of SQLite connections in WAL mode with foreign
// keys enforced.
func NewSQLite(opts SQLiteOptions, logger *zap.Logger) (*sqlitex.Pool, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}
	busyMS := opts.LockTimeout.Milliseconds()
	if busyMS <= 0 {
		busyMS = 2000
	}

	pool, err := sqlitex.NewPool(opts.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			pragmas := []string{
				"PRAGMA journal_mode=WAL",
				"PRAGMA synchronous=NORMAL",
				fmt.Sprintf("PRAGMA busy_timeout=%d", busyMS),
				"PRAGMA foreign_keys=ON",
			}
			for _, pragma := range pragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("sqlite: %s: %w", pragma, err)
				}
			}
			if opts.OnConnect != nil {
				return opts.OnConnect(conn)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", opts.Path, err)
	}

	logger.Info("sqlite pool opened",
		zap.String("path", opts.Path),
		zap.Int("pool_size", poolSize),
		zap.Int64("busy_timeout_ms", busyMS),
	)
	return pool, nil
}
