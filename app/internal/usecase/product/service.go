package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domcategory "example.com/cleantec-orders/app/internal/domain/category"
	dom "example.com/cleantec-orders/app/internal/domain/product"
)

type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *dom.Product) (*dom.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = domcategory.DefaultName
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

// Patch carries the fields of a partial update; nil means unchanged.
type Patch struct {
	Name        *string
	Description *string
	Price       *float64
	Price2      *float64
	Category    *string
	ImageURL    *string
	Stock       *int64
	SKU         *string
	IsActive    *bool
}

func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*dom.Product, error) {
	existed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		existed.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		existed.Description = *patch.Description
	}
	if patch.Price != nil {
		existed.Price = *patch.Price
	}
	if patch.Price2 != nil {
		existed.Price2 = *patch.Price2
	}
	if patch.Category != nil {
		existed.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.ImageURL != nil {
		existed.ImageURL = *patch.ImageURL
	}
	if patch.Stock != nil {
		existed.Stock = *patch.Stock
	}
	if patch.SKU != nil {
		existed.SKU = strings.TrimSpace(*patch.SKU)
	}
	if patch.IsActive != nil {
		existed.IsActive = *patch.IsActive
	}
	if err := existed.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, existed)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	if filter.Category == domcategory.AllLabel {
		filter.Category = ""
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter)
}

// ImportRow is one parsed line of a catalog file. Err is set when the
// line could not be turned into a product.
type ImportRow struct {
	Line    int
	Product *dom.Product
	Err     error
}

type ImportSummary struct {
	Processed int      `json:"processed"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// Import upserts catalog rows by product name. Existing products keep
// their stock, SKU and active flag; new ones start active with no stock.
func (s *Service) Import(ctx context.Context, rows []ImportRow) (*ImportSummary, error) {
	summary := &ImportSummary{Errors: []string{}}

	for _, row := range rows {
		summary.Processed++
		if row.Err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", row.Line, row.Err))
			continue
		}
		if err := s.upsert(ctx, row.Product); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", row.Line, err))
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

func (s *Service) upsert(ctx context.Context, p *dom.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	existed, err := s.repo.GetByName(ctx, p.Name)
	switch {
	case errors.Is(err, dom.ErrProductNotFound):
		p.IsActive = true
		_, err = s.repo.Create(ctx, p)
		return err
	case err != nil:
		return err
	}

	existed.Description = p.Description
	existed.Price = p.Price
	existed.Price2 = p.Price2
	existed.Category = p.Category
	existed.ImageURL = p.ImageURL
	_, err = s.repo.Update(ctx, existed)
	return err
}
