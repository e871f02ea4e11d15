// Package catalogcsv reads product catalog spreadsheets exported as CSV.
package catalogcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	domcategory "example.com/cleantec-orders/app/internal/domain/category"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
	"example.com/cleantec-orders/app/internal/usecase/product"
)

const (
	DefaultDescription = "Descripción del producto"
	DefaultImage       = "/images/cleantec-logo.png"
)

var (
	ErrEmptyFile      = errors.New("csv file is empty or has no data rows")
	ErrMissingColumns = errors.New("required columns not found in csv")

	errShortRow    = errors.New("insufficient columns")
	errMissingName = errors.New("missing name")
	errBadPrice    = errors.New("price must be a finite amount")
)

type columns struct {
	name, description, price, price2, image, category int
	width                                             int
}

// Parse reads a header row and one product per following row. Rows that
// cannot become a product are returned with Err set so the import can
// report them; only a malformed file fails the whole parse.
func Parse(r io.Reader) ([]product.ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := locate(header)
	if err != nil {
		return nil, err
	}

	var rows []product.ImportRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if blank(record) {
			continue
		}
		rows = append(rows, parseRow(line, record, cols))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func locate(header []string) (columns, error) {
	cols := columns{name: -1, description: -1, price: -1, price2: -1, image: -1, category: -1, width: len(header)}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch h {
		case "name":
			cols.name = i
		case "description":
			cols.description = i
		case "price":
			cols.price = i
		case "price2":
			cols.price2 = i
		case "image_url":
			cols.image = i
		case "category":
			cols.category = i
		}
	}
	if cols.name < 0 || cols.price < 0 || cols.category < 0 {
		return cols, ErrMissingColumns
	}
	return cols, nil
}

func parseRow(line int, record []string, cols columns) product.ImportRow {
	if len(record) < cols.width {
		return product.ImportRow{Line: line, Err: errShortRow}
	}
	name := field(record, cols.name)
	if name == "" {
		return product.ImportRow{Line: line, Err: errMissingName}
	}
	price, err := parsePrice(field(record, cols.price))
	if err != nil {
		return product.ImportRow{Line: line, Err: err}
	}
	price2, err := parsePrice(field(record, cols.price2))
	if err != nil {
		return product.ImportRow{Line: line, Err: err}
	}
	return product.ImportRow{
		Line: line,
		Product: &domproduct.Product{
			Name:        name,
			Description: orDefault(field(record, cols.description), DefaultDescription),
			Price:       price,
			Price2:      price2,
			Category:    orDefault(field(record, cols.category), domcategory.DefaultName),
			ImageURL:    orDefault(field(record, cols.image), DefaultImage),
		},
	}
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parsePrice accepts thousands separators ("1,250.50"). Anything else
// unparseable counts as zero; NaN and infinities are rejected.
func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	v, err := strconv.ParseFloat(s, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errBadPrice
	}
	if err != nil {
		return 0, nil
	}
	return v, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
