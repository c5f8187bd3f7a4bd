package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/stocktide/stocktide/internal/catalog"
)

// ErrEmptyWorkbook indicates the uploaded workbook has no data rows.
var ErrEmptyWorkbook = errors.New("importer: workbook has no data rows")

// CatalogPort is the slice of the catalog the importer needs.
type CatalogPort interface {
	GetProductByName(ctx context.Context, name string) (catalog.Product, error)
	CreateProduct(ctx context.Context, input catalog.ProductInput) (catalog.Product, error)
	GetOrCreateCategory(ctx context.Context, name string) (catalog.Category, error)
	GetOrCreateBrand(ctx context.Context, name string) (catalog.Brand, error)
}

// RowError reports a data row that could not be imported.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Report summarises an import run. Existing lists product names that were
// already present and therefore skipped.
type Report struct {
	Created  []string   `json:"created"`
	Existing []string   `json:"existing"`
	Errors   []RowError `json:"errors"`
}

// Service imports products from uploaded spreadsheets.
type Service struct {
	catalog CatalogPort
}

// NewService constructs a Service.
func NewService(cat CatalogPort) *Service {
	return &Service{catalog: cat}
}

// Column layout expected in the first sheet, after a header row:
// product name, category, brand, initial stock.
const (
	colName = iota
	colCategory
	colBrand
	colInitialStock
)

// Import reads an xlsx workbook and creates the products it describes.
// Rows naming an existing product are skipped, bad rows are collected in
// the report, and neither aborts the rest of the run.
func (s *Service) Import(ctx context.Context, r io.Reader) (Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Report{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Report{}, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) <= 1 {
		return Report{}, ErrEmptyWorkbook
	}

	report := Report{Created: []string{}, Existing: []string{}, Errors: []RowError{}}
	for idx, row := range rows[1:] {
		rowNum := idx + 2
		name := cell(row, colName)
		if name == "" {
			report.Errors = append(report.Errors, RowError{Row: rowNum, Reason: "product name is empty"})
			continue
		}

		if _, err := s.catalog.GetProductByName(ctx, name); err == nil {
			report.Existing = append(report.Existing, name)
			continue
		} else if !errors.Is(err, catalog.ErrNotFound) {
			report.Errors = append(report.Errors, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		initialStock, err := parseStock(cell(row, colInitialStock))
		if err != nil {
			report.Errors = append(report.Errors, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		input := catalog.ProductInput{Name: name, InitialStock: initialStock}
		if categoryName := cell(row, colCategory); categoryName != "" {
			category, err := s.catalog.GetOrCreateCategory(ctx, categoryName)
			if err != nil {
				report.Errors = append(report.Errors, RowError{Row: rowNum, Reason: err.Error()})
				continue
			}
			input.CategoryID = &category.ID
		}
		if brandName := cell(row, colBrand); brandName != "" {
			brand, err := s.catalog.GetOrCreateBrand(ctx, brandName)
			if err != nil {
				report.Errors = append(report.Errors, RowError{Row: rowNum, Reason: err.Error()})
				continue
			}
			input.BrandID = &brand.ID
		}

		if _, err := s.catalog.CreateProduct(ctx, input); err != nil {
			if errors.Is(err, catalog.ErrDuplicateName) {
				report.Existing = append(report.Existing, name)
				continue
			}
			report.Errors = append(report.Errors, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		report.Created = append(report.Created, name)
	}
	return report, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseStock(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("could not parse initial stock %q", raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("initial stock %q must not be negative", raw)
	}
	value, _ := d.Float64()
	return value, nil
}
