package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

const orderColumns = `id, order_number, client_number, client_name, client_company, client_address,
        client_phone, subtotal, iva, total, status, notes, created_at`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its items in one transaction and reads the
// stored row back before committing, so a nil error always means the order
// exists and an error means it does not. A clash on order_number is
// reported as ErrOrderNumberConflict.
func (r *OrderRepository) Create(ctx context.Context, o *domorder.Order) (_ *domorder.Order, retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
        INSERT INTO orders (
            order_number, client_number, client_name, client_company,
            client_address, client_phone, subtotal, iva, total, status, notes
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, o.OrderNumber, o.ClientNumber, o.ClientName, o.ClientCompany, o.ClientAddress, o.ClientPhone,
		o.Subtotal, o.Tax, o.Total, o.Status, nullString(o.Notes))
	if err != nil {
		if isDuplicate(err) {
			return nil, domorder.ErrOrderNumberConflict
		}
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO order_items (
                order_id, product_id, product_name, product_sku,
                quantity, unit_price, total_price
            ) VALUES (?, ?, ?, ?, ?, ?, ?)
        `, orderID, item.ProductID, item.ProductName, nullString(item.ProductSKU),
			item.Quantity, item.UnitPrice, item.LineTotal)
		if err != nil {
			return nil, err
		}
	}

	created, err := r.getOne(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *OrderRepository) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if filter.ClientNumber != "" {
		query += ` WHERE client_number = ?`
		args = append(args, filter.ClientNumber)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return r.getOne(ctx, r.db, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*domorder.Order, error) {
	return r.getOne(ctx, r.db, `SELECT `+orderColumns+` FROM orders WHERE order_number = ?`, number)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	_, err := r.db.ExecContext(ctx, `
        UPDATE orders SET status = ? WHERE id = ?
    `, status, id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *OrderRepository) getOne(ctx context.Context, q queryer, query string, arg any) (*domorder.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.attachItems(ctx, q, []*domorder.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// attachItems loads the items of all orders with a single query.
func (r *OrderRepository) attachItems(ctx context.Context, q queryer, orders []*domorder.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*domorder.Order, len(orders))
	args := make([]any, 0, len(orders))
	for _, o := range orders {
		o.Items = []domorder.OrderItem{}
		byID[o.ID] = o
		args = append(args, o.ID)
	}

	rows, err := q.QueryContext(ctx, `
        SELECT id, order_id, product_id, product_name, product_sku, quantity, unit_price, total_price
        FROM order_items
        WHERE order_id IN (?`+strings.Repeat(",?", len(args)-1)+`)
        ORDER BY id
    `, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domorder.OrderItem
		var sku sql.NullString
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &sku,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return err
		}
		item.ProductSKU = sku.String
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*domorder.Order, error) {
	var o domorder.Order
	var notes sql.NullString
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.ClientNumber, &o.ClientName, &o.ClientCompany,
		&o.ClientAddress, &o.ClientPhone, &o.Subtotal, &o.Tax, &o.Total, &o.Status, &notes, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Notes = notes.String
	return &o, nil
}
