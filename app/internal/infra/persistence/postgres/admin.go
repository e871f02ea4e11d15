package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
)

type AdminRepository struct {
	pool DBTX
}

func NewAdminRepository(pool DBTX) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) Create(ctx context.Context, a *domadmin.Admin) (*domadmin.Admin, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admin_users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		a.Name, a.Email, a.PasswordHash, string(a.Role),
	).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("insert admin %s: %w", a.Email, err)
	}
	return a, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domadmin.Admin, error) {
	var a domadmin.Admin
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role
		FROM admin_users
		WHERE email = $1`, email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domadmin.ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	a.Role, err = domadmin.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
