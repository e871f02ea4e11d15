package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domcategory "example.com/cleantec-orders/app/internal/domain/category"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
)

const productColumns = `id, name, description, price, price2, category, image_url, stock, sku, active, created_at, updated_at`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO products (name, description, price, price2, category, image_url, stock, sku, active)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, p.Name, p.Description, p.Price, p.Price2, p.Category, p.ImageURL, p.Stock, nullString(p.SKU), p.IsActive)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	_, err := r.db.ExecContext(ctx, `
        UPDATE products
        SET name = ?, description = ?, price = ?, price2 = ?, category = ?, image_url = ?,
            stock = ?, sku = ?, active = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `, p.Name, p.Description, p.Price, p.Price2, p.Category, p.ImageURL, p.Stock, nullString(p.SKU), p.IsActive, p.ID)
	if err != nil {
		return nil, err
	}
	// Zero affected rows also means "unchanged" in MySQL, so re-read to
	// tell a missing product apart.
	return r.GetByID(ctx, p.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domproduct.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domproduct.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE name = ? ORDER BY id LIMIT 1`, name)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domproduct.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var clauses []string
	var args []any

	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		clauses = append(clauses, "(name LIKE ? OR description LIKE ? OR sku LIKE ?)")
		like := fmt.Sprintf("%%%s%%", filter.Search)
		args = append(args, like, like, like)
	}
	if filter.OnlyActive {
		clauses = append(clauses, "active = 1")
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY category, name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	if len(ids) == 0 {
		return []*domproduct.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products
        WHERE id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) Categories(ctx context.Context) ([]*domcategory.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT category, COUNT(*)
        FROM products
        WHERE active = 1
        GROUP BY category
        ORDER BY category
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*domcategory.Category
	for rows.Next() {
		var c domcategory.Category
		if err := rows.Scan(&c.Name, &c.ProductCount); err != nil {
			return nil, err
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domproduct.Product, error) {
	var p domproduct.Product
	var sku sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Price2, &p.Category,
		&p.ImageURL, &p.Stock, &sku, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.SKU = sku.String
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]*domproduct.Product, error) {
	var products []*domproduct.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
