package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, a *domadmin.Admin) (*domadmin.Admin, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_users (name, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		a.Name, a.Email, a.PasswordHash, string(a.Role),
	)
	if err != nil {
		return nil, fmt.Errorf("insert admin %s: %w", a.Email, err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("insert admin %s: %w", a.Email, err)
	}
	return a, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domadmin.Admin, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, email, password_hash, role
        FROM admin_users
        WHERE email = ?
    `, email)

	var a domadmin.Admin
	var role string
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domadmin.ErrAdminNotFound
		}
		return nil, err
	}
	parsed, err := domadmin.ParseRole(role)
	if err != nil {
		return nil, err
	}
	a.Role = parsed
	return &a, nil
}
