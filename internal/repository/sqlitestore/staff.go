package sqlitestore

import (
	"context"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/queuesmart/internal/domain"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

const staffSelect = `SELECT id, username, password_hash, role, created_at FROM staff`

type staffRepository struct {
	s *Store
}

func (r staffRepository) Create(ctx context.Context, staff *domain.StaffAccount) error {
	const query = `INSERT INTO staff (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`
	return r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{
				staff.Username,
				staff.PasswordHash,
				string(staff.Role),
				formatTime(staff.CreatedAt),
			},
		})
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return apperrors.NewUniquenessConflict("username already taken", map[string]any{"username": staff.Username})
		}
		if err != nil {
			return err
		}
		staff.ID = conn.LastInsertRowID()
		return nil
	})
}

func (r staffRepository) Update(ctx context.Context, staff *domain.StaffAccount) error {
	return r.s.execChanged(ctx, "staff account", staff.ID,
		`UPDATE staff SET password_hash=?, role=? WHERE id=?`,
		staff.PasswordHash,
		string(staff.Role),
		staff.ID,
	)
}

func (r staffRepository) GetByID(ctx context.Context, id int64) (*domain.StaffAccount, error) {
	return r.single(ctx, map[string]any{"id": id}, staffSelect+` WHERE id=?`, id)
}

func (r staffRepository) GetByUsername(ctx context.Context, username string) (*domain.StaffAccount, error) {
	return r.single(ctx, map[string]any{"username": username}, staffSelect+` WHERE username=?`, username)
}

func (r staffRepository) List(ctx context.Context) ([]domain.StaffAccount, error) {
	return r.query(ctx, staffSelect+` ORDER BY id`)
}

func (r staffRepository) Delete(ctx context.Context, id int64) error {
	return r.s.execChanged(ctx, "staff account", id, `DELETE FROM staff WHERE id=?`, id)
}

func (r staffRepository) Count(ctx context.Context) (int64, error) {
	return r.s.countRows(ctx, `SELECT COUNT(*) FROM staff`)
}

// LockForBooking only checks existence: the IMMEDIATE transaction already
// holds the database write lock.
func (r staffRepository) LockForBooking(ctx context.Context, id int64) error {
	n, err := r.s.countRows(ctx, `SELECT COUNT(*) FROM staff WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFound("staff account", map[string]any{"id": id})
	}
	return nil
}

func (r staffRepository) single(ctx context.Context, details map[string]any, query string, args ...any) (*domain.StaffAccount, error) {
	staff, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(staff) == 0 {
		return nil, apperrors.NewNotFound("staff account", details)
	}
	return &staff[0], nil
}

func (r staffRepository) query(ctx context.Context, query string, args ...any) ([]domain.StaffAccount, error) {
	var result []domain.StaffAccount
	err := r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result = append(result, domain.StaffAccount{
					ID:           stmt.ColumnInt64(0),
					Username:     stmt.ColumnText(1),
					PasswordHash: stmt.ColumnText(2),
					Role:         domain.StaffRole(stmt.ColumnText(3)),
					CreatedAt:    columnTime(stmt, 4),
				})
				return nil
			},
		})
	})
	return result, err
}
