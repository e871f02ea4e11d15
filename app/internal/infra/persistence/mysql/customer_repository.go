package mysql

import (
	"context"
	"database/sql"
	"errors"

	gomysql "github.com/go-sql-driver/mysql"

	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
)

const customerColumns = `id, client_number, client_name, rfc, direccion, colonia, ciudad, estado, cp, correo, tel, created_at`

// errDuplicateEntry is MySQL's ER_DUP_ENTRY.
const errDuplicateEntry = 1062

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domcustomer.Customer) (*domcustomer.Customer, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO customers (client_number, client_name, rfc, direccion, colonia, ciudad, estado, cp, correo, tel)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, c.ClientNumber, c.ClientName, nullString(c.TaxID), nullString(c.Street), nullString(c.District),
		nullString(c.City), nullString(c.State), nullString(c.PostalCode), nullString(c.Email), nullString(c.Phone))
	if err != nil {
		if isDuplicate(err) {
			return nil, domcustomer.ErrClientNumberExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CustomerRepository) Update(ctx context.Context, c *domcustomer.Customer) (*domcustomer.Customer, error) {
	_, err := r.db.ExecContext(ctx, `
        UPDATE customers
        SET client_number = ?, client_name = ?, rfc = ?, direccion = ?, colonia = ?,
            ciudad = ?, estado = ?, cp = ?, correo = ?, tel = ?
        WHERE id = ?
    `, c.ClientNumber, c.ClientName, nullString(c.TaxID), nullString(c.Street), nullString(c.District),
		nullString(c.City), nullString(c.State), nullString(c.PostalCode), nullString(c.Email), nullString(c.Phone), c.ID)
	if err != nil {
		if isDuplicate(err) {
			return nil, domcustomer.ErrClientNumberExists
		}
		return nil, err
	}
	return r.GetByID(ctx, c.ID)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int64) (retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	var number string
	err = tx.QueryRowContext(ctx, `SELECT client_number FROM customers WHERE id = ? FOR UPDATE`, id).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return domcustomer.ErrCustomerNotFound
	}
	if err != nil {
		return err
	}

	var orders int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE client_number = ?`, number).Scan(&orders); err != nil {
		return err
	}
	if orders > 0 {
		return domcustomer.ErrCustomerHasOrders
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domcustomer.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domcustomer.ErrCustomerNotFound
	}
	return c, err
}

// GetByClientNumber matches exactly; the column collation is binary.
func (r *CustomerRepository) GetByClientNumber(ctx context.Context, clientNumber string) (*domcustomer.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE client_number = ?`, clientNumber)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domcustomer.ErrCustomerNotFound
	}
	return c, err
}

func (r *CustomerRepository) List(ctx context.Context) ([]*domcustomer.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY client_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domcustomer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func scanCustomer(row rowScanner) (*domcustomer.Customer, error) {
	var c domcustomer.Customer
	var rfc, street, district, city, state, cp, email, phone sql.NullString
	if err := row.Scan(&c.ID, &c.ClientNumber, &c.ClientName, &rfc, &street, &district,
		&city, &state, &cp, &email, &phone, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.TaxID = rfc.String
	c.Street = street.String
	c.District = district.String
	c.City = city.String
	c.State = state.String
	c.PostalCode = cp.String
	c.Email = email.String
	c.Phone = phone.String
	return &c, nil
}

func isDuplicate(err error) bool {
	var myErr *gomysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}
