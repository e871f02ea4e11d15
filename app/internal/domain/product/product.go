package product

import (
	"math"
	"strings"
	"time"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Price2      float64
	Category    string
	ImageURL    string
	Stock       int64
	SKU         string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields every stored product must carry.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Category) == "" {
		return ErrInvalidProduct
	}
	if !ValidPrice(p.Price) || !ValidPrice(p.Price2) || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}

// ValidPrice reports whether v is a finite amount of zero or more.
func ValidPrice(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

type ListFilter struct {
	Category   string
	Search     string
	OnlyActive bool
}
