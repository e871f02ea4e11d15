package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
)

// bcrypt only reads the first 72 bytes of a password.
const maxPasswordBytes = 72

// BcryptService hashes and checks back-office admin passwords.
type BcryptService struct {
	cost int
}

// NewBcryptService falls back to bcrypt.DefaultCost when cost is outside
// the range bcrypt accepts.
func NewBcryptService(cost int) *BcryptService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptService{cost: cost}
}

// Hash refuses passwords bcrypt would silently cut short.
func (s *BcryptService) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", domadmin.ErrInvalidCredential, maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}
	return string(hash), nil
}

// Compare returns domadmin.ErrUnauthorized for a wrong password. Any other
// error means the stored hash itself is unusable.
func (s *BcryptService) Compare(hash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domadmin.ErrUnauthorized
	case err != nil:
		return fmt.Errorf("check admin password: %w", err)
	}
	return nil
}
