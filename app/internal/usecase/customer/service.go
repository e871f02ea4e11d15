package customer

import (
	"context"
	"errors"
	"strings"

	dom "example.com/cleantec-orders/app/internal/domain/customer"
)

type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

// Lookup resolves a client number exactly as typed, minus surrounding
// whitespace.
func (s *Service) Lookup(ctx context.Context, clientNumber string) (*dom.Customer, error) {
	number, err := dom.NormalizeClientNumber(clientNumber)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByClientNumber(ctx, number)
}

func (s *Service) Create(ctx context.Context, c *dom.Customer) (*dom.Customer, error) {
	trimFields(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	_, err := s.repo.GetByClientNumber(ctx, c.ClientNumber)
	switch {
	case err == nil:
		return nil, dom.ErrClientNumberExists
	case !errors.Is(err, dom.ErrCustomerNotFound):
		return nil, err
	}
	return s.repo.Create(ctx, c)
}

// Patch carries the fields of a partial update; nil means unchanged.
type Patch struct {
	ClientNumber *string
	ClientName   *string
	TaxID        *string
	Street       *string
	District     *string
	City         *string
	State        *string
	PostalCode   *string
	Email        *string
	Phone        *string
}

func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*dom.Customer, error) {
	existed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.ClientNumber != nil && strings.TrimSpace(*patch.ClientNumber) != existed.ClientNumber {
		number := strings.TrimSpace(*patch.ClientNumber)
		other, err := s.repo.GetByClientNumber(ctx, number)
		switch {
		case err == nil && other.ID != id:
			return nil, dom.ErrClientNumberExists
		case err != nil && !errors.Is(err, dom.ErrCustomerNotFound):
			return nil, err
		}
		existed.ClientNumber = number
	}
	apply(&existed.ClientName, patch.ClientName)
	apply(&existed.TaxID, patch.TaxID)
	apply(&existed.Street, patch.Street)
	apply(&existed.District, patch.District)
	apply(&existed.City, patch.City)
	apply(&existed.State, patch.State)
	apply(&existed.PostalCode, patch.PostalCode)
	apply(&existed.Email, patch.Email)
	apply(&existed.Phone, patch.Phone)

	if err := existed.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, existed)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*dom.Customer, error) {
	return s.repo.List(ctx)
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func trimFields(c *dom.Customer) {
	for _, f := range []*string{
		&c.ClientNumber, &c.ClientName, &c.TaxID, &c.Street, &c.District,
		&c.City, &c.State, &c.PostalCode, &c.Email, &c.Phone,
	} {
		*f = strings.TrimSpace(*f)
	}
}
