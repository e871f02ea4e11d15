package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	domcategory "example.com/cleantec-orders/app/internal/domain/category"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
)

const productColumns = `id, name, description, price, price2, category, image_url, stock, sku, active, created_at, updated_at`

type ProductRepository struct {
	pool DBTX
}

func NewProductRepository(pool DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, price2, category, image_url, stock, sku, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price, p.Price2, p.Category, p.ImageURL, p.Stock, nullable(p.SKU), p.IsActive,
	)
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, price2 = $4, category = $5, image_url = $6,
		    stock = $7, sku = $8, active = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price, p.Price2, p.Category, p.ImageURL, p.Stock, nullable(p.SKU), p.IsActive, p.ID,
	)
	updated, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domproduct.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domproduct.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domproduct.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*domproduct.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1 ORDER BY id LIMIT 1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domproduct.ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var clauses []string
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR sku ILIKE $%d)", n, n, n))
	}
	if filter.OnlyActive {
		clauses = append(clauses, "active")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY category, name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	if len(ids) == 0 {
		return []*domproduct.Product{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *ProductRepository) Categories(ctx context.Context) ([]*domcategory.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, COUNT(*)
		FROM products
		WHERE active
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []*domcategory.Category
	for rows.Next() {
		var c domcategory.Category
		if err := rows.Scan(&c.Name, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

func scanProduct(row pgx.Row) (*domproduct.Product, error) {
	var p domproduct.Product
	var sku *string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Price2, &p.Category,
		&p.ImageURL, &p.Stock, &sku, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.SKU = deref(sku)
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]*domproduct.Product, error) {
	var products []*domproduct.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
