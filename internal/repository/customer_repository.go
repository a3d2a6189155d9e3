package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/customer-service/internal/domain"
)

const uniqueViolation = "23505"

// ErrDuplicateEmail is returned when a write collides with the email unique constraint.
var ErrDuplicateEmail = errors.New("email already exists")

// CustomerRepository defines persistence access for customers.
// Lookups of a single record return pgx.ErrNoRows when nothing matches.
type CustomerRepository interface {
	FindAll(ctx context.Context) ([]domain.Customer, error)
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByName(ctx context.Context, name string) ([]domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const selectCustomer = `
        SELECT customer_id, name, email, annual_spend::text, last_purchase_date
        FROM customers`

func (r *customerRepository) FindAll(ctx context.Context) ([]domain.Customer, error) {
	return r.list(ctx, selectCustomer+` ORDER BY customer_id`)
}

func (r *customerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, selectCustomer+` WHERE customer_id=$1`, id))
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, selectCustomer+` WHERE email=$1`, email))
}

// FindByName matches the name exactly.
func (r *customerRepository) FindByName(ctx context.Context, name string) ([]domain.Customer, error) {
	return r.list(ctx, selectCustomer+` WHERE name=$1 ORDER BY customer_id`, name)
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, email, annual_spend, last_purchase_date)
        VALUES ($1, $2, $3::numeric, $4)
        RETURNING customer_id`

	err := r.pool.QueryRow(ctx, query,
		customer.Name,
		customer.Email,
		customer.AnnualSpend.String(),
		customer.LastPurchaseDate,
	).Scan(&customer.ID)
	return translateWriteError(err)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET name=$1, email=$2, annual_spend=$3::numeric, last_purchase_date=$4
        WHERE customer_id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		customer.Name,
		customer.Email,
		customer.AnnualSpend.String(),
		customer.LastPurchaseDate,
		customer.ID,
	)
	if err != nil {
		return translateWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM customers WHERE customer_id=$1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *customerRepository) DeleteByID(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE customer_id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) list(ctx context.Context, query string, args ...any) ([]domain.Customer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *customer)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var (
		customer domain.Customer
		spend    string
	)
	if err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&spend,
		&customer.LastPurchaseDate,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(spend)
	if err != nil {
		return nil, fmt.Errorf("decode annual_spend %q: %w", spend, err)
	}
	customer.AnnualSpend = parsed
	return &customer, nil
}

func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateEmail, pgErr.ConstraintName)
	}
	return err
}
