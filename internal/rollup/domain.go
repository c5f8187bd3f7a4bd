package rollup

import (
	"errors"

	"github.com/stocktide/stocktide/internal/shared"
)

// Archive is the immutable month-end snapshot for one product.
// ending_stock = starting_stock + total_purchases - total_sales.
type Archive struct {
	ID                int64
	ProductID         int64
	ProductName       string
	Year              int
	Month             int
	StartingStock     float64
	TotalPurchases    float64
	TotalSales        float64
	EndingStock       float64
	TotalPurchaseCost float64
	TotalSalesRevenue float64
}

// ProductRef carries the product fields the rollup needs.
type ProductRef struct {
	ID           int64
	Name         string
	InitialStock float64
}

// PurchaseTotals aggregates one product's purchases for a month.
type PurchaseTotals struct {
	Quantity float64
	Cost     float64
}

// SaleTotals aggregates one product's sales for a month.
type SaleTotals struct {
	Quantity float64
	Revenue  float64
}

// ProductError records one product's rollup failure.
type ProductError struct {
	ProductID int64
	Name      string
	Err       error
}

// Result summarises one rollup run.
type Result struct {
	Skipped   bool
	Target    shared.Month
	Succeeded int
	Failed    int
	Errors    []ProductError
}

// ErrArchiveNotFound indicates no archive row exists for the requested month.
var ErrArchiveNotFound = errors.New("rollup: archive not found")
