package auth

import (
	"context"
	"errors"
	"strings"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type Claims struct {
	AdminID int64
	Role    domadmin.Role
	Email   string
	Name    string
}

type TokenService interface {
	GenerateToken(a *domadmin.Admin) (string, error)
	ParseToken(token string) (*Claims, error)
}

type Service struct {
	adminRepo domadmin.Repository
	hasher    PasswordHasher
	tokens    TokenService
}

func NewService(
	adminRepo domadmin.Repository,
	hasher PasswordHasher,
	tokens TokenService,
) *Service {
	return &Service{
		adminRepo: adminRepo,
		hasher:    hasher,
		tokens:    tokens,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	Admin *domadmin.Admin
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domadmin.ErrInvalidCredential
	}

	a, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, domadmin.ErrUnauthorized
	}

	if err := s.hasher.Compare(a.PasswordHash, in.Password); err != nil {
		return nil, domadmin.ErrUnauthorized
	}

	token, err := s.tokens.GenerateToken(a)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		Admin: a,
	}, nil
}

// EnsureAdmin creates the bootstrap account when no admin with that email
// exists yet. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, domadmin.ErrInvalidCredential
	}

	_, err := s.adminRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domadmin.ErrAdminNotFound):
		return false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	if _, err := s.adminRepo.Create(ctx, &domadmin.Admin{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domadmin.RoleSuperAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
