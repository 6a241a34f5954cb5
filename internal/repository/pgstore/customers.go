package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
)

const customerSelect = `
        SELECT id, name, phone, email, preferred_contact, vulnerable, created_at
        FROM customers`

type customerRepository struct {
	q Querier
}

func (r customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, phone, email, preferred_contact, vulnerable, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err := r.q.QueryRow(ctx, query,
		customer.Name,
		customer.Phone,
		customer.Email,
		string(customer.PreferredContact),
		customer.Vulnerable,
		utc(customer.CreatedAt),
	).Scan(&customer.ID)
	return translate(err)
}

func (r customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET name=$1, phone=$2, email=$3, preferred_contact=$4, vulnerable=$5
        WHERE id=$6`
	tag, err := r.q.Exec(ctx, query,
		customer.Name,
		customer.Phone,
		customer.Email,
		string(customer.PreferredContact),
		customer.Vulnerable,
		customer.ID,
	)
	return requireAffected(tag, err, "customer", customer.ID)
}

func (r customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := scanCustomer(r.q.QueryRow(ctx, customerSelect+` WHERE id=$1`, id))
	if err != nil {
		return nil, notFoundOr(err, "customer", id)
	}
	return customer, nil
}

func (r customerRepository) Search(ctx context.Context, term string) ([]domain.Customer, error) {
	const where = `
        WHERE LOWER(name) LIKE $1 ESCAPE '\' OR LOWER(phone) LIKE $1 ESCAPE '\' OR LOWER(email) LIKE $1 ESCAPE '\'
        ORDER BY id`
	return r.list(ctx, customerSelect+where, repository.LikePattern(term))
}

func (r customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	return r.list(ctx, customerSelect+` ORDER BY id`)
}

func (r customerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	return requireAffected(tag, err, "customer", id)
}

func (r customerRepository) list(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, translate(err)
		}
		result = append(result, *customer)
	}
	return result, translate(rows.Err())
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		customer domain.Customer
		contact  string
	)
	if err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.Email,
		&contact,
		&customer.Vulnerable,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}
	customer.PreferredContact = domain.ContactMethod(contact)
	customer.CreatedAt = customer.CreatedAt.UTC()
	return &customer, nil
}
