package stock

import (
	"errors"
	"fmt"
	"time"
)

// Product is the stock ledger's view of a product row.
type Product struct {
	ID           int64
	Name         string
	InitialStock float64
	CurrentStock float64
	ReorderLevel float64
	IsActive     bool
}

// Sale is an immutable ledger entry for one outbound transaction.
type Sale struct {
	ID        int64
	ProductID int64
	Date      time.Time
	Quantity  float64
	UnitPrice float64
	Discount  float64
	CreatedAt time.Time
}

// TotalRevenue derives the money amount of the sale. Never stored.
func (s Sale) TotalRevenue() float64 {
	return s.Quantity*s.UnitPrice - s.Discount
}

// Purchase is an immutable ledger entry for one inbound transaction.
type Purchase struct {
	ID         int64
	ProductID  int64
	SupplierID int64
	Date       time.Time
	Quantity   float64
	UnitPrice  float64
	CreatedAt  time.Time
}

// TotalCost derives the money amount of the purchase. Never stored.
func (p Purchase) TotalCost() float64 {
	return p.Quantity * p.UnitPrice
}

// SaleInput describes a sale to record.
type SaleInput struct {
	ProductID int64
	Quantity  float64
	UnitPrice float64
	Discount  float64
	Date      time.Time
	ActorID   int64
}

// PurchaseInput describes a purchase to record. SupplierID zero means no supplier.
type PurchaseInput struct {
	ProductID  int64
	SupplierID int64
	Quantity   float64
	UnitPrice  float64
	Date       time.Time
	ActorID    int64
}

var (
	// ErrProductNotFound indicates the referenced product does not exist or is inactive.
	ErrProductNotFound = errors.New("stock: product not found")
	// ErrSupplierNotFound indicates the referenced supplier does not exist.
	ErrSupplierNotFound = errors.New("stock: supplier not found")
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("stock: quantity must be positive")
	// ErrInvalidPrice indicates a negative unit price or discount.
	ErrInvalidPrice = errors.New("stock: price and discount must be >= 0")
	// ErrInvalidDate indicates a date outside the current calendar month or in the future.
	ErrInvalidDate = errors.New("stock: date must fall in the current month and not in the future")
	// ErrInsufficientStock indicates the sale quantity exceeds the live stock.
	ErrInsufficientStock = errors.New("stock: insufficient stock")
	// ErrConflict indicates the transaction kept losing write races after retries.
	ErrConflict = errors.New("stock: transaction conflict, retry later")
)

// InsufficientStockError reports the live stock so callers can show it to the user.
type InsufficientStockError struct {
	ProductID int64
	Requested float64
	Available float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock: insufficient stock for product %d: requested %.2f, available %.2f", e.ProductID, e.Requested, e.Available)
}

// Is makes the error match ErrInsufficientStock in errors.Is chains.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
