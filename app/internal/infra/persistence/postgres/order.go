package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

const orderColumns = `id, order_number, client_number, client_name, client_company, client_address,
        client_phone, subtotal, iva, total, status, notes, created_at`

type OrderRepository struct {
	pool DBTX
}

func NewOrderRepository(pool DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and its items in one transaction. A clash on
// order_number is reported as ErrOrderNumberConflict.
func (r *OrderRepository) Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created := *o
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			order_number, client_number, client_name, client_company,
			client_address, client_phone, subtotal, iva, total, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		o.OrderNumber, o.ClientNumber, o.ClientName, o.ClientCompany, o.ClientAddress, o.ClientPhone,
		o.Subtotal, o.Tax, o.Total, string(o.Status), nullable(o.Notes),
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domorder.ErrOrderNumberConflict
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	created.Items = make([]domorder.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		item.OrderID = created.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, product_sku,
				quantity, unit_price, total_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			created.ID, item.ProductID, item.ProductName, nullable(item.ProductSKU),
			item.Quantity, item.UnitPrice, item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		created.Items = append(created.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &created, nil
}

func (r *OrderRepository) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if filter.ClientNumber != "" {
		query += ` WHERE client_number = $1`
		args = append(args, filter.ClientNumber)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domorder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*domorder.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domorder.ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, arg any) (*domorder.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domorder.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.attachItems(ctx, []*domorder.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []*domorder.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int64]*domorder.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		o.Items = []domorder.OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_sku, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domorder.OrderItem
		var sku *string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &sku,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.ProductSKU = deref(sku)
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domorder.Order, error) {
	var o domorder.Order
	var status string
	var notes *string
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.ClientNumber, &o.ClientName, &o.ClientCompany,
		&o.ClientAddress, &o.ClientPhone, &o.Subtotal, &o.Tax, &o.Total, &status, &notes, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = domorder.Status(status)
	o.Notes = deref(notes)
	return &o, nil
}
