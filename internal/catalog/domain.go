package catalog

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the requested catalog record does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicateName indicates a unique-name collision.
	ErrDuplicateName = errors.New("catalog: duplicate name")
	// ErrInvalidInput indicates the caller supplied an invalid payload.
	ErrInvalidInput = errors.New("catalog: invalid input")
)

// Category groups products for reporting.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Brand identifies a product manufacturer.
type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Supplier represents a purchasing counterparty.
type Supplier struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a tracked inventory item. CurrentStock is maintained by the
// transaction ledger and starts equal to InitialStock.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CategoryID   *int64    `json:"category_id"`
	BrandID      *int64    `json:"brand_id"`
	InitialStock float64   `json:"initial_stock"`
	CurrentStock float64   `json:"current_stock"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name         string
	Description  string
	CategoryID   *int64
	BrandID      *int64
	InitialStock float64
}

// ListFilters represents standard list filters.
type ListFilters struct {
	Search     string
	CategoryID *int64
	BrandID    *int64
	ActiveOnly bool
}
