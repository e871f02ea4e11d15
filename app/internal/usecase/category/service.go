package category

import (
	"context"

	dom "example.com/cleantec-orders/app/internal/domain/category"
)

// Source is anything that can report the categories in use. The product
// repository is the only one today.
type Source interface {
	Categories(ctx context.Context) ([]*dom.Category, error)
}

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// List returns the categories of active products, preceded by the
// catch-all entry that carries the total count.
func (s *Service) List(ctx context.Context) ([]*dom.Category, error) {
	cats, err := s.source.Categories(ctx)
	if err != nil {
		return nil, err
	}

	all := &dom.Category{Name: dom.AllLabel}
	for _, c := range cats {
		all.ProductCount += c.ProductCount
	}
	return append([]*dom.Category{all}, cats...), nil
}
