package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queuesmart/internal/domain"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

const staffSelect = `SELECT id, username, password_hash, role, created_at FROM staff`

type staffRepository struct {
	q Querier
}

func (r staffRepository) Create(ctx context.Context, staff *domain.StaffAccount) error {
	const query = `
        INSERT INTO staff (username, password_hash, role, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	err := translate(r.q.QueryRow(ctx, query,
		staff.Username,
		staff.PasswordHash,
		string(staff.Role),
		utc(staff.CreatedAt),
	).Scan(&staff.ID))
	if apperrors.HasCode(err, apperrors.CodeUniquenessConflict) {
		return apperrors.NewUniquenessConflict("username already taken", map[string]any{"username": staff.Username})
	}
	return err
}

func (r staffRepository) Update(ctx context.Context, staff *domain.StaffAccount) error {
	tag, err := r.q.Exec(ctx, `UPDATE staff SET password_hash=$1, role=$2 WHERE id=$3`,
		staff.PasswordHash,
		string(staff.Role),
		staff.ID,
	)
	return requireAffected(tag, err, "staff account", staff.ID)
}

func (r staffRepository) GetByID(ctx context.Context, id int64) (*domain.StaffAccount, error) {
	staff, err := scanStaff(r.q.QueryRow(ctx, staffSelect+` WHERE id=$1`, id))
	if err != nil {
		return nil, notFoundOr(err, "staff account", id)
	}
	return staff, nil
}

func (r staffRepository) GetByUsername(ctx context.Context, username string) (*domain.StaffAccount, error) {
	staff, err := scanStaff(r.q.QueryRow(ctx, staffSelect+` WHERE username=$1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("staff account", map[string]any{"username": username})
	}
	if err != nil {
		return nil, translate(err)
	}
	return staff, nil
}

func (r staffRepository) List(ctx context.Context) ([]domain.StaffAccount, error) {
	rows, err := r.q.Query(ctx, staffSelect+` ORDER BY id`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.StaffAccount
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, translate(err)
		}
		result = append(result, *staff)
	}
	return result, translate(rows.Err())
}

func (r staffRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM staff WHERE id=$1`, id)
	return requireAffected(tag, err, "staff account", id)
}

func (r staffRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.q, `SELECT COUNT(*) FROM staff`)
}

// LockForBooking holds the staff row until the transaction ends. Concurrent
// bookings for the same staff member queue here, bounded by lock_timeout.
func (r staffRepository) LockForBooking(ctx context.Context, id int64) error {
	var locked int64
	err := r.q.QueryRow(ctx, `SELECT id FROM staff WHERE id=$1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		return notFoundOr(err, "staff account", id)
	}
	return nil
}

func scanStaff(row pgx.Row) (*domain.StaffAccount, error) {
	var (
		staff domain.StaffAccount
		role  string
	)
	if err := row.Scan(
		&staff.ID,
		&staff.Username,
		&staff.PasswordHash,
		&role,
		&staff.CreatedAt,
	); err != nil {
		return nil, err
	}
	staff.Role = domain.StaffRole(role)
	staff.CreatedAt = staff.CreatedAt.UTC()
	return &staff, nil
}
