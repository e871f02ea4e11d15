package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
)

type mockAdminRepository struct {
	adminsByEmail map[string]*domadmin.Admin
	getByEmailErr error
	created       *domadmin.Admin
}

func newMockAdminRepository() *mockAdminRepository {
	return &mockAdminRepository{
		adminsByEmail: make(map[string]*domadmin.Admin),
	}
}

func (m *mockAdminRepository) Create(ctx context.Context, a *domadmin.Admin) (*domadmin.Admin, error) {
	a.ID = int64(len(m.adminsByEmail) + 1)
	m.adminsByEmail[a.Email] = a
	m.created = a
	return a, nil
}

func (m *mockAdminRepository) GetByEmail(ctx context.Context, email string) (*domadmin.Admin, error) {
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	if a, ok := m.adminsByEmail[email]; ok {
		cloned := *a
		return &cloned, nil
	}
	return nil, domadmin.ErrAdminNotFound
}

type mockPasswordHasher struct {
	compareErr error
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (m *mockPasswordHasher) Compare(hash string, password string) error {
	return m.compareErr
}

type mockTokenService struct {
	token       string
	generateErr error
}

func (m *mockTokenService) GenerateToken(a *domadmin.Admin) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	if m.token != "" {
		return m.token, nil
	}
	return "mock-token-" + a.Email, nil
}

func (m *mockTokenService) ParseToken(token string) (*Claims, error) {
	return nil, nil
}

func seedAdmin(repo *mockAdminRepository, email string) {
	repo.adminsByEmail[email] = &domadmin.Admin{
		ID:           1,
		Name:         "Ventas CleanTec",
		Email:        email,
		PasswordHash: "hashed_password",
		Role:         domadmin.RoleAdmin,
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newMockAdminRepository()
	seedAdmin(repo, "ventas@cleantec.mx")
	svc := NewService(repo, &mockPasswordHasher{}, &mockTokenService{token: "valid-jwt-token"})

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "ventas@cleantec.mx",
		Password: "correctpassword",
	})

	require.NoError(t, err)
	require.Equal(t, "valid-jwt-token", result.Token)
	require.Equal(t, int64(1), result.Admin.ID)
	require.Equal(t, domadmin.RoleAdmin, result.Admin.Role)
}

func TestLogin_EmailNormalization(t *testing.T) {
	tests := []struct {
		name       string
		inputEmail string
	}{
		{name: "Uppercase email is lowercased", inputEmail: "VENTAS@CLEANTEC.MX"},
		{name: "Email with spaces is trimmed", inputEmail: "  ventas@cleantec.mx  "},
		{name: "Mixed case with spaces", inputEmail: "  Ventas@CleanTec.MX "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockAdminRepository()
			seedAdmin(repo, "ventas@cleantec.mx")
			svc := NewService(repo, &mockPasswordHasher{}, &mockTokenService{})

			result, err := svc.Login(context.Background(), LoginInput{Email: tt.inputEmail, Password: "password123"})

			require.NoError(t, err)
			require.Equal(t, "ventas@cleantec.mx", result.Admin.Email)
		})
	}
}

func TestLogin_AdminNotFound(t *testing.T) {
	svc := NewService(newMockAdminRepository(), &mockPasswordHasher{}, &mockTokenService{})

	result, err := svc.Login(context.Background(), LoginInput{Email: "nadie@cleantec.mx", Password: "x"})

	require.ErrorIs(t, err, domadmin.ErrUnauthorized)
	require.Nil(t, result)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockAdminRepository()
	seedAdmin(repo, "ventas@cleantec.mx")
	svc := NewService(repo, &mockPasswordHasher{compareErr: errors.New("password mismatch")}, &mockTokenService{})

	result, err := svc.Login(context.Background(), LoginInput{Email: "ventas@cleantec.mx", Password: "wrong"})

	require.ErrorIs(t, err, domadmin.ErrUnauthorized)
	require.Nil(t, result)
}

func TestLogin_EmptyEmailOrPassword(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "Empty email", email: "", password: "password123"},
		{name: "Empty password", email: "ventas@cleantec.mx", password: ""},
		{name: "Email with only spaces", email: "   ", password: "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMockAdminRepository(), &mockPasswordHasher{}, &mockTokenService{})

			result, err := svc.Login(context.Background(), LoginInput{Email: tt.email, Password: tt.password})

			require.ErrorIs(t, err, domadmin.ErrInvalidCredential)
			require.Nil(t, result)
		})
	}
}

func TestLogin_TokenGenerationError(t *testing.T) {
	repo := newMockAdminRepository()
	seedAdmin(repo, "ventas@cleantec.mx")
	svc := NewService(repo, &mockPasswordHasher{}, &mockTokenService{generateErr: errors.New("token generation failed")})

	result, err := svc.Login(context.Background(), LoginInput{Email: "ventas@cleantec.mx", Password: "ok"})

	require.EqualError(t, err, "token generation failed")
	require.Nil(t, result)
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	repo := newMockAdminRepository()
	svc := NewService(repo, &mockPasswordHasher{}, &mockTokenService{})

	created, err := svc.EnsureAdmin(context.Background(), "Admin", " Admin@CleanTec.mx ", "s3cret")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "admin@cleantec.mx", repo.created.Email)
	require.Equal(t, "hashed:s3cret", repo.created.PasswordHash)
	require.Equal(t, domadmin.RoleSuperAdmin, repo.created.Role)

	created, err = svc.EnsureAdmin(context.Background(), "Admin", "admin@cleantec.mx", "other")
	require.NoError(t, err)
	require.False(t, created)
}

func TestEnsureAdmin_RepositoryError(t *testing.T) {
	repo := newMockAdminRepository()
	repo.getByEmailErr = errors.New("db down")
	svc := NewService(repo, &mockPasswordHasher{}, &mockTokenService{})

	_, err := svc.EnsureAdmin(context.Background(), "Admin", "admin@cleantec.mx", "s3cret")

	require.Error(t, err)
	require.Nil(t, repo.created)
}
