package sqlitestore

import (
	"context"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/spec-kit/queuesmart/internal/domain"
	"github.com/spec-kit/queuesmart/internal/repository"
	apperrors "github.com/spec-kit/queuesmart/pkg/util/errorutil"
)

const customerColumns = `id, name, phone, email, preferred_contact, vulnerable, created_at`

type customerRepository struct {
	s *Store
}

func (r customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, phone, email, preferred_contact, vulnerable, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`
	return r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: []any{
				customer.Name,
				customer.Phone,
				customer.Email,
				string(customer.PreferredContact),
				boolArg(customer.Vulnerable),
				formatTime(customer.CreatedAt),
			},
		})
		if err != nil {
			return err
		}
		customer.ID = conn.LastInsertRowID()
		return nil
	})
}

func (r customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET name=?, phone=?, email=?, preferred_contact=?, vulnerable=?
        WHERE id=?`
	return r.s.execChanged(ctx, "customer", customer.ID, query,
		customer.Name,
		customer.Phone,
		customer.Email,
		string(customer.PreferredContact),
		boolArg(customer.Vulnerable),
		customer.ID,
	)
}

func (r customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	customers, err := r.query(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, apperrors.NewNotFound("customer", map[string]any{"id": id})
	}
	return &customers[0], nil
}

func (r customerRepository) Search(ctx context.Context, term string) ([]domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers
        WHERE casefold(name) LIKE ?1 ESCAPE '\'
           OR casefold(phone) LIKE ?1 ESCAPE '\'
           OR casefold(email) LIKE ?1 ESCAPE '\'
        ORDER BY id`
	return r.query(ctx, query, repository.LikePattern(term))
}

func (r customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	return r.query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
}

func (r customerRepository) Delete(ctx context.Context, id int64) error {
	return r.s.execChanged(ctx, "customer", id, `DELETE FROM customers WHERE id=?`, id)
}

func (r customerRepository) query(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	var result []domain.Customer
	err := r.s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				result = append(result, scanCustomer(stmt))
				return nil
			},
		})
	})
	return result, err
}

func scanCustomer(stmt *sqlite.Stmt) domain.Customer {
	return domain.Customer{
		ID:               stmt.ColumnInt64(0),
		Name:             stmt.ColumnText(1),
		Phone:            stmt.ColumnText(2),
		Email:            stmt.ColumnText(3),
		PreferredContact: domain.ContactMethod(stmt.ColumnText(4)),
		Vulnerable:       stmt.ColumnInt64(5) != 0,
		CreatedAt:        columnTime(stmt, 6),
	}
}
