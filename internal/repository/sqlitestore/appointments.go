package sqlitestore

import (
	"context"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/queuesmart/internal/domain"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

const appointmentSelect = `
        SELECT a.id, a.customer_id, a.staff_id, a.start_at, a.duration_minutes, a.reason, c.name
        FROM appointments a JOIN customers c ON c.id = a.customer_id`

type appointmentRepository struct {
	s *Store
}

func (r appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (customer_id, staff_id, start_at, duration_minutes, reason)
        VALUES (?, ?, ?, ?, ?)`
	return r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{
				appt.CustomerID,
				appt.StaffID,
				formatTime(appt.Start),
				int64(appt.DurationMinutes),
				appt.Reason,
			},
		})
		if err != nil {
			return err
		}
		appt.ID = conn.LastInsertRowID()
		return nil
	})
}

func (r appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET customer_id=?, staff_id=?, start_at=?, duration_minutes=?, reason=?
        WHERE id=?`
	return r.s.execChanged(ctx, "appointment", appt.ID, query,
		appt.CustomerID,
		appt.StaffID,
		formatTime(appt.Start),
		int64(appt.DurationMinutes),
		appt.Reason,
		appt.ID,
	)
}

func (r appointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appts, err := r.query(ctx, appointmentSelect+` WHERE a.id=?`, id)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, apperrors.NewNotFound("appointment", map[string]any{"id": id})
	}
	return &appts[0], nil
}

func (r appointmentRepository) ListByStaff(ctx context.Context, staffID int64) ([]domain.Appointment, error) {
	return r.query(ctx, appointmentSelect+` WHERE a.staff_id=? ORDER BY a.start_at, a.id`, staffID)
}

func (r appointmentRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	return r.query(ctx, appointmentSelect+` WHERE a.customer_id=? ORDER BY a.start_at, a.id`, customerID)
}

func (r appointmentRepository) Delete(ctx context.Context, id int64) error {
	return r.s.execChanged(ctx, "appointment", id, `DELETE FROM appointments WHERE id=?`, id)
}

func (r appointmentRepository) CountForCustomer(ctx context.Context, customerID int64) (int64, error) {
	return r.s.countRows(ctx, `SELECT COUNT(*) FROM appointments WHERE customer_id=?`, customerID)
}

func (r appointmentRepository) CountForStaff(ctx context.Context, staffID int64) (int64, error) {
	return r.s.countRows(ctx, `SELECT COUNT(*) FROM appointments WHERE staff_id=?`, staffID)
}

func (r appointmentRepository) query(ctx context.Context, query string, args ...any) ([]domain.Appointment, error) {
	var result []domain.Appointment
	err := r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result = append(result, domain.Appointment{
					ID:              stmt.ColumnInt64(0),
					CustomerID:      stmt.ColumnInt64(1),
					StaffID:         stmt.ColumnInt64(2),
					Start:           columnTime(stmt, 3),
					DurationMinutes: int(stmt.ColumnInt64(4)),
					Reason:          stmt.ColumnText(5),
					CustomerName:    stmt.ColumnText(6),
				})
				return nil
			},
		})
	})
	return result, err
}
