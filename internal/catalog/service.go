package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Service implements catalog business rules on top of the repository.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return name, nil
}

// Product operations

func (s *Service) ListProducts(ctx context.Context, filters ListFilters) ([]Product, error) {
	return s.repo.ListProducts(ctx, filters)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", ErrInvalidInput)
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return Product{}, err
	}
	if input.InitialStock < 0 {
		return Product{}, fmt.Errorf("%w: initial stock must not be negative", ErrInvalidInput)
	}
	input.Name = name
	return s.repo.CreateProduct(ctx, input)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", ErrInvalidInput)
	}
	name, err := normalizeName(input.Name)
	if err != nil {
		return err
	}
	input.Name = name
	return s.repo.UpdateProduct(ctx, id, input)
}

func (s *Service) DeactivateProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", ErrInvalidInput)
	}
	return s.repo.DeactivateProduct(ctx, id)
}

// Category operations

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (Category, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Category{}, err
	}
	return s.repo.CreateCategory(ctx, name)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid category id", ErrInvalidInput)
	}
	return s.repo.DeleteCategory(ctx, id)
}

// Brand operations

func (s *Service) ListBrands(ctx context.Context) ([]Brand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *Service) CreateBrand(ctx context.Context, name string) (Brand, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Brand{}, err
	}
	return s.repo.CreateBrand(ctx, name)
}

func (s *Service) DeleteBrand(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid brand id", ErrInvalidInput)
	}
	return s.repo.DeleteBrand(ctx, id)
}

// Supplier operations

func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	name, err := normalizeName(supplier.Name)
	if err != nil {
		return Supplier{}, err
	}
	supplier.Name = name
	return s.repo.CreateSupplier(ctx, supplier)
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, supplier Supplier) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid supplier id", ErrInvalidInput)
	}
	name, err := normalizeName(supplier.Name)
	if err != nil {
		return err
	}
	supplier.Name = name
	return s.repo.UpdateSupplier(ctx, id, supplier)
}

func (s *Service) DeactivateSupplier(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid supplier id", ErrInvalidInput)
	}
	return s.repo.DeactivateSupplier(ctx, id)
}
