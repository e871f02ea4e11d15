package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
)

const customerColumns = `id, client_number, client_name, rfc, direccion, colonia, ciudad, estado, cp, correo, tel, created_at`

type CustomerRepository struct {
	pool DBTX
}

func NewCustomerRepository(pool DBTX) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domcustomer.Customer) (*domcustomer.Customer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (client_number, client_name, rfc, direccion, colonia, ciudad, estado, cp, correo, tel)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+customerColumns,
		c.ClientNumber, c.ClientName, nullable(c.TaxID), nullable(c.Street), nullable(c.District),
		nullable(c.City), nullable(c.State), nullable(c.PostalCode), nullable(c.Email), nullable(c.Phone),
	)
	created, err := scanCustomer(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domcustomer.ErrClientNumberExists
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return created, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domcustomer.Customer) (*domcustomer.Customer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE customers
		SET client_number = $1, client_name = $2, rfc = $3, direccion = $4, colonia = $5,
		    ciudad = $6, estado = $7, cp = $8, correo = $9, tel = $10
		WHERE id = $11
		RETURNING `+customerColumns,
		c.ClientNumber, c.ClientName, nullable(c.TaxID), nullable(c.Street), nullable(c.District),
		nullable(c.City), nullable(c.State), nullable(c.PostalCode), nullable(c.Email), nullable(c.Phone), c.ID,
	)
	updated, err := scanCustomer(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, domcustomer.ErrCustomerNotFound
	case isUniqueViolation(err):
		return nil, domcustomer.ErrClientNumberExists
	case err != nil:
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return updated, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var number string
	err = tx.QueryRow(ctx, `SELECT client_number FROM customers WHERE id = $1 FOR UPDATE`, id).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return domcustomer.ErrCustomerNotFound
	}
	if err != nil {
		return fmt.Errorf("lock customer: %w", err)
	}

	var orders int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE client_number = $1`, number).Scan(&orders); err != nil {
		return fmt.Errorf("count customer orders: %w", err)
	}
	if orders > 0 {
		return domcustomer.ErrCustomerHasOrders
	}

	if _, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domcustomer.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domcustomer.ErrCustomerNotFound
	}
	return c, err
}

func (r *CustomerRepository) GetByClientNumber(ctx context.Context, clientNumber string) (*domcustomer.Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE client_number = $1`, clientNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domcustomer.ErrCustomerNotFound
	}
	return c, err
}

func (r *CustomerRepository) List(ctx context.Context) ([]*domcustomer.Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY client_number`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []*domcustomer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanCustomer(row pgx.Row) (*domcustomer.Customer, error) {
	var c domcustomer.Customer
	var rfc, street, district, city, state, cp, email, phone *string
	if err := row.Scan(&c.ID, &c.ClientNumber, &c.ClientName, &rfc, &street, &district,
		&city, &state, &cp, &email, &phone, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.TaxID = deref(rfc)
	c.Street = deref(street)
	c.District = deref(district)
	c.City = deref(city)
	c.State = deref(state)
	c.PostalCode = deref(cp)
	c.Email = deref(email)
	c.Phone = deref(phone)
	return &c, nil
}
