package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products   map[int64]Product
	categories map[int64]Category
	brands     map[int64]Brand
	suppliers  map[int64]Supplier
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products:   make(map[int64]Product),
		categories: make(map[int64]Category),
		brands:     make(map[int64]Brand),
		suppliers:  make(map[int64]Supplier),
	}
}

func (r *memoryRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryRepo) ListProducts(ctx context.Context, filters ListFilters) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if filters.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) GetProduct(ctx context.Context, id int64) (Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return Product{}, ErrNotFound
}

func (r *memoryRepo) GetProductByName(ctx context.Context, name string) (Product, error) {
	for _, p := range r.products {
		if p.Name == name {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *memoryRepo) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	for _, p := range r.products {
		if p.Name == input.Name {
			return Product{}, ErrDuplicateName
		}
	}
	now := time.Now().UTC()
	p := Product{
		ID:           r.id(),
		Name:         input.Name,
		Description:  input.Description,
		CategoryID:   input.CategoryID,
		BrandID:      input.BrandID,
		InitialStock: input.InitialStock,
		CurrentStock: input.InitialStock,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *memoryRepo) UpdateProduct(ctx context.Context, id int64, input ProductInput) error {
	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Name = input.Name
	p.Description = input.Description
	p.CategoryID = input.CategoryID
	p.BrandID = input.BrandID
	r.products[id] = p
	return nil
}

func (r *memoryRepo) DeactivateProduct(ctx context.Context, id int64) error {
	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = false
	r.products[id] = p
	return nil
}

func (r *memoryRepo) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) CreateCategory(ctx context.Context, name string) (Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return Category{}, ErrDuplicateName
		}
	}
	c := Category{ID: r.id(), Name: name}
	r.categories[c.ID] = c
	return c, nil
}

func (r *memoryRepo) GetOrCreateCategory(ctx context.Context, name string) (Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return r.CreateCategory(ctx, name)
}

func (r *memoryRepo) DeleteCategory(ctx context.Context, id int64) error {
	if _, ok := r.categories[id]; !ok {
		return ErrNotFound
	}
	delete(r.categories, id)
	for pid, p := range r.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			r.products[pid] = p
		}
	}
	return nil
}

func (r *memoryRepo) ListBrands(ctx context.Context) ([]Brand, error) {
	var out []Brand
	for _, b := range r.brands {
		out = append(out, b)
	}
	return out, nil
}

func (r *memoryRepo) CreateBrand(ctx context.Context, name string) (Brand, error) {
	for _, b := range r.brands {
		if b.Name == name {
			return Brand{}, ErrDuplicateName
		}
	}
	b := Brand{ID: r.id(), Name: name}
	r.brands[b.ID] = b
	return b, nil
}

func (r *memoryRepo) GetOrCreateBrand(ctx context.Context, name string) (Brand, error) {
	for _, b := range r.brands {
		if b.Name == name {
			return b, nil
		}
	}
	return r.CreateBrand(ctx, name)
}

func (r *memoryRepo) DeleteBrand(ctx context.Context, id int64) error {
	if _, ok := r.brands[id]; !ok {
		return ErrNotFound
	}
	delete(r.brands, id)
	for pid, p := range r.products {
		if p.BrandID != nil && *p.BrandID == id {
			p.BrandID = nil
			r.products[pid] = p
		}
	}
	return nil
}

func (r *memoryRepo) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (r *memoryRepo) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	supplier.ID = r.id()
	supplier.IsActive = true
	r.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (r *memoryRepo) UpdateSupplier(ctx context.Context, id int64, supplier Supplier) error {
	if _, ok := r.suppliers[id]; !ok {
		return ErrNotFound
	}
	supplier.ID = id
	r.suppliers[id] = supplier
	return nil
}

func (r *memoryRepo) DeactivateSupplier(ctx context.Context, id int64) error {
	s, ok := r.suppliers[id]
	if !ok {
		return ErrNotFound
	}
	s.IsActive = false
	r.suppliers[id] = s
	return nil
}

var _ Repository = (*memoryRepo)(nil)

func TestCreateProductSeedsCurrentStock(t *testing.T) {
	svc := NewService(newMemoryRepo())

	p, err := svc.CreateProduct(context.Background(), ProductInput{Name: "  Widget  ", InitialStock: 40})
	require.NoError(t, err)
	require.Equal(t, "Widget", p.Name)
	require.InDelta(t, 40, p.InitialStock, 0.0001)
	require.InDelta(t, 40, p.CurrentStock, 0.0001)
	require.True(t, p.IsActive)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Widget", InitialStock: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateProductDuplicateName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Widget"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Widget"})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestDeactivateProductKeepsRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Widget", InitialStock: 10})
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateProduct(ctx, p.ID))

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	active, err := svc.ListProducts(ctx, ListFilters{ActiveOnly: true})
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, "Hardware")
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Widget", CategoryID: &cat.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Nil(t, got.CategoryID)
}

func TestSupplierLifecycle(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	s, err := svc.CreateSupplier(ctx, Supplier{Name: "Acme", Email: "acme@example.com"})
	require.NoError(t, err)
	require.True(t, s.IsActive)

	require.NoError(t, svc.DeactivateSupplier(ctx, s.ID))
	suppliers, err := svc.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	require.False(t, suppliers[0].IsActive)

	err = svc.DeactivateSupplier(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}
