package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for the catalog module.
type Repository interface {
	ListProducts(ctx context.Context, filters ListFilters) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetProductByName(ctx context.Context, name string) (Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) error
	DeactivateProduct(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (Category, error)
	GetOrCreateCategory(ctx context.Context, name string) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListBrands(ctx context.Context) ([]Brand, error)
	CreateBrand(ctx context.Context, name string) (Brand, error)
	GetOrCreateBrand(ctx context.Context, name string) (Brand, error)
	DeleteBrand(ctx context.Context, id int64) error

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error)
	UpdateSupplier(ctx context.Context, id int64, supplier Supplier) error
	DeactivateSupplier(ctx context.Context, id int64) error
}

type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a new catalog repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const productColumns = `id, name, description, category_id, brand_id, initial_stock, current_stock, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.BrandID, &p.InitialStock, &p.CurrentStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// Product operations
func (r *repo) ListProducts(ctx context.Context, filters ListFilters) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		query += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	if filters.BrandID != nil {
		args = append(args, *filters.BrandID)
		query += ` AND brand_id = $` + strconv.Itoa(len(args))
	}
	if filters.ActiveOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repo) GetProduct(ctx context.Context, id int64) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *repo) GetProductByName(ctx context.Context, name string) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1`
	return scanProduct(r.db.QueryRow(ctx, query, name))
}

func (r *repo) CreateProduct(ctx context.Context, input ProductInput) (Product, error) {
	query := `INSERT INTO products (name, description, category_id, brand_id, initial_stock, current_stock, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5, TRUE, $6, $6)
	          RETURNING ` + productColumns
	now := time.Now().UTC()
	p, err := scanProduct(r.db.QueryRow(ctx, query, input.Name, input.Description, input.CategoryID, input.BrandID, input.InitialStock, now))
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicateName
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repo) UpdateProduct(ctx context.Context, id int64, input ProductInput) error {
	query := `UPDATE products SET name = $1, description = $2, category_id = $3, brand_id = $4, updated_at = $5 WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, input.Name, input.Description, input.CategoryID, input.BrandID, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateProduct soft-deletes a product so its transaction history and
// archives remain intact.
func (r *repo) DeactivateProduct(ctx context.Context, id int64) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Category operations
func (r *repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repo) CreateCategory(ctx context.Context, name string) (Category, error) {
	query := `INSERT INTO categories (name, created_at, updated_at) VALUES ($1, $2, $2)
	          RETURNING id, name, created_at, updated_at`
	var c Category
	err := r.db.QueryRow(ctx, query, name, time.Now().UTC()).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Category{}, ErrDuplicateName
		}
		return Category{}, err
	}
	return c, nil
}

func (r *repo) GetOrCreateCategory(ctx context.Context, name string) (Category, error) {
	query := `INSERT INTO categories (name, created_at, updated_at) VALUES ($1, $2, $2)
	          ON CONFLICT (name) DO UPDATE SET updated_at = categories.updated_at
	          RETURNING id, name, created_at, updated_at`
	var c Category
	err := r.db.QueryRow(ctx, query, name, time.Now().UTC()).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category. Products keep running with a null
// category through the ON DELETE SET NULL constraint.
func (r *repo) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Brand operations
func (r *repo) ListBrands(ctx context.Context) ([]Brand, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *repo) CreateBrand(ctx context.Context, name string) (Brand, error) {
	query := `INSERT INTO brands (name, created_at, updated_at) VALUES ($1, $2, $2)
	          RETURNING id, name, created_at, updated_at`
	var b Brand
	err := r.db.QueryRow(ctx, query, name, time.Now().UTC()).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Brand{}, ErrDuplicateName
		}
		return Brand{}, err
	}
	return b, nil
}

func (r *repo) GetOrCreateBrand(ctx context.Context, name string) (Brand, error) {
	query := `INSERT INTO brands (name, created_at, updated_at) VALUES ($1, $2, $2)
	          ON CONFLICT (name) DO UPDATE SET updated_at = brands.updated_at
	          RETURNING id, name, created_at, updated_at`
	var b Brand
	err := r.db.QueryRow(ctx, query, name, time.Now().UTC()).Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Brand{}, err
	}
	return b, nil
}

func (r *repo) DeleteBrand(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Supplier operations
func (r *repo) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, phone, email, address, is_active, created_at, updated_at FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.Address, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *repo) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	query := `INSERT INTO suppliers (name, phone, email, address, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, TRUE, $5, $5)
	          RETURNING id, is_active, created_at, updated_at`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, supplier.Name, supplier.Phone, supplier.Email, supplier.Address, now).
		Scan(&supplier.ID, &supplier.IsActive, &supplier.CreatedAt, &supplier.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Supplier{}, ErrDuplicateName
		}
		return Supplier{}, err
	}
	return supplier, nil
}

func (r *repo) UpdateSupplier(ctx context.Context, id int64, supplier Supplier) error {
	query := `UPDATE suppliers SET name = $1, phone = $2, email = $3, address = $4, updated_at = $5 WHERE id = $6`
	tag, err := r.db.Exec(ctx, query, supplier.Name, supplier.Phone, supplier.Email, supplier.Address, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) DeactivateSupplier(ctx context.Context, id int64) error {
	query := `UPDATE suppliers SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*repo)(nil)
