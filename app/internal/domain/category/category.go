package category

// Category is derived from the products table; it has no storage of its own.
type Category struct {
	Name         string
	ProductCount int64
}

// AllLabel is the pseudo-category the storefront shows first.
const AllLabel = "Todos"

// DefaultName is assigned to imported products without a category.
const DefaultName = "Otros"
