package customer

import (
	"strings"
	"time"
)

const (
	noAddressLabel = "Dirección no especificada"
	noNameLabel    = "Cliente sin nombre"
)

// Customer is the client record resolved by client number at checkout.
// Optional fields are empty strings when unknown.
type Customer struct {
	ID           int64
	ClientNumber string
	ClientName   string
	TaxID        string
	Street       string
	District     string
	City         string
	State        string
	PostalCode   string
	Email        string
	Phone        string
	CreatedAt    time.Time
}

// FullAddress joins the non-empty address parts into a single line.
func (c *Customer) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{c.Street, c.District, c.City, c.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if cp := strings.TrimSpace(c.PostalCode); cp != "" {
		parts = append(parts, "CP "+cp)
	}
	if len(parts) == 0 {
		return noAddressLabel
	}
	return strings.Join(parts, ", ")
}

// CompanyName is the label printed as the client's company on orders.
func (c *Customer) CompanyName() string {
	if name := strings.TrimSpace(c.ClientName); name != "" {
		return name
	}
	return noNameLabel
}

func (c *Customer) Validate() error {
	if strings.TrimSpace(c.ClientNumber) == "" {
		return ErrEmptyClientNumber
	}
	if strings.TrimSpace(c.ClientName) == "" {
		return ErrInvalidCustomer
	}
	return nil
}

// NormalizeClientNumber trims surrounding whitespace. Case is preserved:
// lookups are exact matches.
func NormalizeClientNumber(raw string) (string, error) {
	n := strings.TrimSpace(raw)
	if n == "" {
		return "", ErrEmptyClientNumber
	}
	return n, nil
}
