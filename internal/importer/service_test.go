package importer

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stocktide/stocktide/internal/catalog"
)

type memoryCatalog struct {
	products   map[string]catalog.Product
	categories map[string]catalog.Category
	brands     map[string]catalog.Brand
	nextID     int64
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		products:   make(map[string]catalog.Product),
		categories: make(map[string]catalog.Category),
		brands:     make(map[string]catalog.Brand),
	}
}

func (c *memoryCatalog) id() int64 {
	c.nextID++
	return c.nextID
}

func (c *memoryCatalog) GetProductByName(ctx context.Context, name string) (catalog.Product, error) {
	if p, ok := c.products[name]; ok {
		return p, nil
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (c *memoryCatalog) CreateProduct(ctx context.Context, input catalog.ProductInput) (catalog.Product, error) {
	if _, ok := c.products[input.Name]; ok {
		return catalog.Product{}, catalog.ErrDuplicateName
	}
	p := catalog.Product{
		ID:           c.id(),
		Name:         input.Name,
		CategoryID:   input.CategoryID,
		BrandID:      input.BrandID,
		InitialStock: input.InitialStock,
		CurrentStock: input.InitialStock,
		IsActive:     true,
	}
	c.products[p.Name] = p
	return p, nil
}

func (c *memoryCatalog) GetOrCreateCategory(ctx context.Context, name string) (catalog.Category, error) {
	if cat, ok := c.categories[name]; ok {
		return cat, nil
	}
	cat := catalog.Category{ID: c.id(), Name: name}
	c.categories[name] = cat
	return cat, nil
}

func (c *memoryCatalog) GetOrCreateBrand(ctx context.Context, name string) (catalog.Brand, error) {
	if b, ok := c.brands[name]; ok {
		return b, nil
	}
	b := catalog.Brand{ID: c.id(), Name: name}
	c.brands[name] = b
	return b, nil
}

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

var header = []string{"Product Name", "Category", "Brand", "Initial stock"}

func TestImportCreatesProducts(t *testing.T) {
	cat := newMemoryCatalog()
	svc := NewService(cat)

	workbook := buildWorkbook(t, [][]string{
		header,
		{"Widget", "Hardware", "Acme", "40"},
		{"Gadget", "Hardware", "", "12.5"},
		{"Sprocket", "", "", ""},
	})

	report, err := svc.Import(context.Background(), workbook)
	require.NoError(t, err)
	require.Equal(t, []string{"Widget", "Gadget", "Sprocket"}, report.Created)
	require.Empty(t, report.Existing)
	require.Empty(t, report.Errors)

	widget := cat.products["Widget"]
	require.InDelta(t, 40, widget.InitialStock, 0.0001)
	require.InDelta(t, 40, widget.CurrentStock, 0.0001)
	require.NotNil(t, widget.CategoryID)
	require.NotNil(t, widget.BrandID)

	// Category is shared, not duplicated per row.
	require.Len(t, cat.categories, 1)

	gadget := cat.products["Gadget"]
	require.InDelta(t, 12.5, gadget.InitialStock, 0.0001)
	require.Nil(t, gadget.BrandID)

	sprocket := cat.products["Sprocket"]
	require.Zero(t, sprocket.InitialStock)
	require.Nil(t, sprocket.CategoryID)
}

func TestImportSkipsExisting(t *testing.T) {
	cat := newMemoryCatalog()
	_, err := cat.CreateProduct(context.Background(), catalog.ProductInput{Name: "Widget", InitialStock: 99})
	require.NoError(t, err)
	svc := NewService(cat)

	workbook := buildWorkbook(t, [][]string{
		header,
		{"Widget", "", "", "40"},
		{"Gadget", "", "", "5"},
	})

	report, err := svc.Import(context.Background(), workbook)
	require.NoError(t, err)
	require.Equal(t, []string{"Gadget"}, report.Created)
	require.Equal(t, []string{"Widget"}, report.Existing)

	// The existing product keeps its stock.
	require.InDelta(t, 99, cat.products["Widget"].InitialStock, 0.0001)
}

func TestImportCollectsRowErrors(t *testing.T) {
	svc := NewService(newMemoryCatalog())

	workbook := buildWorkbook(t, [][]string{
		header,
		{"", "Hardware", "", "10"},
		{"Widget", "", "", "not-a-number"},
		{"Gadget", "", "", "-3"},
		{"Sprocket", "", "", "7"},
	})

	report, err := svc.Import(context.Background(), workbook)
	require.NoError(t, err)
	require.Equal(t, []string{"Sprocket"}, report.Created)
	require.Len(t, report.Errors, 3)
	require.Equal(t, 2, report.Errors[0].Row)
	require.Equal(t, 3, report.Errors[1].Row)
	require.Equal(t, 4, report.Errors[2].Row)
}

func TestImportRejectsEmptyWorkbook(t *testing.T) {
	svc := NewService(newMemoryCatalog())

	workbook := buildWorkbook(t, [][]string{header})
	_, err := svc.Import(context.Background(), workbook)
	require.ErrorIs(t, err, ErrEmptyWorkbook)
}

func TestImportManyRows(t *testing.T) {
	cat := newMemoryCatalog()
	svc := NewService(cat)

	rows := [][]string{header}
	for i := 0; i < 50; i++ {
		rows = append(rows, []string{fmt.Sprintf("Product %02d", i), "Bulk", "House", "1"})
	}

	report, err := svc.Import(context.Background(), buildWorkbook(t, rows))
	require.NoError(t, err)
	require.Len(t, report.Created, 50)
	require.Len(t, cat.categories, 1)
	require.Len(t, cat.brands, 1)
}
