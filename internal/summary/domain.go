package summary

import "errors"

// ProductSummary is one row of the current-month report: live transaction
// aggregates joined with the archived starting stock.
type ProductSummary struct {
	ProductName       string  `json:"product_name"`
	TotalPurchases    float64 `json:"total_purchases"`
	TotalPurchaseCost float64 `json:"total_purchase_cost"`
	TotalSales        float64 `json:"total_sales"`
	TotalSalesRevenue float64 `json:"total_sales_revenue"`
	CurrentStock      float64 `json:"current_stock"`
	StartingStock     float64 `json:"starting_stock"`
}

// ArchiveRow is one archived month-end record, read verbatim.
type ArchiveRow struct {
	ProductName       string  `json:"product_name"`
	Year              int     `json:"year"`
	Month             int     `json:"month"`
	StartingStock     float64 `json:"starting_stock"`
	TotalPurchases    float64 `json:"total_purchases"`
	TotalSales        float64 `json:"total_sales"`
	EndingStock       float64 `json:"ending_stock"`
	TotalPurchaseCost float64 `json:"total_purchase_cost"`
	TotalSalesRevenue float64 `json:"total_sales_revenue"`
}

// PurchaseAgg aggregates a product's purchases within one month.
type PurchaseAgg struct {
	Quantity float64
	Cost     float64
}

// SaleAgg aggregates a product's sales within one month.
type SaleAgg struct {
	Quantity float64
	Revenue  float64
}

// ErrInvalidMonth indicates a month outside 1..12 or a nonsensical year.
var ErrInvalidMonth = errors.New("summary: invalid year/month")
