package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queuesmart/internal/domain"
)

const appointmentSelect = `
        SELECT a.id, a.customer_id, a.staff_id, a.start_at, a.duration_minutes, a.reason, c.name
        FROM appointments a JOIN customers c ON c.id = a.customer_id`

type appointmentRepository struct {
	q Querier
}

func (r appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (customer_id, staff_id, start_at, duration_minutes, reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	err := r.q.QueryRow(ctx, query,
		appt.CustomerID,
		appt.StaffID,
		utc(appt.Start),
		appt.DurationMinutes,
		appt.Reason,
	).Scan(&appt.ID)
	return translate(err)
}

func (r appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET customer_id=$1, staff_id=$2, start_at=$3, duration_minutes=$4, reason=$5
        WHERE id=$6`
	tag, err := r.q.Exec(ctx, query,
		appt.CustomerID,
		appt.StaffID,
		utc(appt.Start),
		appt.DurationMinutes,
		appt.Reason,
		appt.ID,
	)
	return requireAffected(tag, err, "appointment", appt.ID)
}

func (r appointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, err := scanAppointment(r.q.QueryRow(ctx, appointmentSelect+` WHERE a.id=$1`, id))
	if err != nil {
		return nil, notFoundOr(err, "appointment", id)
	}
	return appt, nil
}

func (r appointmentRepository) ListByStaff(ctx context.Context, staffID int64) ([]domain.Appointment, error) {
	return r.list(ctx, appointmentSelect+` WHERE a.staff_id=$1 ORDER BY a.start_at, a.id`, staffID)
}

func (r appointmentRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Appointment, error) {
	return r.list(ctx, appointmentSelect+` WHERE a.customer_id=$1 ORDER BY a.start_at, a.id`, customerID)
}

func (r appointmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	return requireAffected(tag, err, "appointment", id)
}

func (r appointmentRepository) CountForCustomer(ctx context.Context, customerID int64) (int64, error) {
	return countRows(ctx, r.q, `SELECT COUNT(*) FROM appointments WHERE customer_id=$1`, customerID)
}

func (r appointmentRepository) CountForStaff(ctx context.Context, staffID int64) (int64, error) {
	return countRows(ctx, r.q, `SELECT COUNT(*) FROM appointments WHERE staff_id=$1`, staffID)
}

func (r appointmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Appointment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, translate(err)
		}
		result = append(result, *appt)
	}
	return result, translate(rows.Err())
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var appt domain.Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.CustomerID,
		&appt.StaffID,
		&appt.Start,
		&appt.DurationMinutes,
		&appt.Reason,
		&appt.CustomerName,
	); err != nil {
		return nil, err
	}
	appt.Start = appt.Start.UTC()
	return &appt, nil
}
