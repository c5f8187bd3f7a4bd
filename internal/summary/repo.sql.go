package summary

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocktide/stocktide/internal/shared"
)

// Repository reads report data from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MonthPurchaseTotals aggregates purchases per product name for one month.
func (r *Repository) MonthPurchaseTotals(ctx context.Context, month shared.Month) (map[string]PurchaseAgg, error) {
	if r == nil {
		return nil, errors.New("summary repository not initialised")
	}
	start, end := month.Bounds(nil)
	rows, err := r.pool.Query(ctx, `SELECT p.name, COALESCE(SUM(pu.quantity), 0), COALESCE(SUM(pu.quantity * pu.unit_price), 0)
FROM purchases pu
JOIN products p ON p.id = pu.product_id
WHERE pu.purchase_date >= $1 AND pu.purchase_date < $2
GROUP BY p.name`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := make(map[string]PurchaseAgg)
	for rows.Next() {
		var name string
		var agg PurchaseAgg
		if err := rows.Scan(&name, &agg.Quantity, &agg.Cost); err != nil {
			return nil, err
		}
		totals[name] = agg
	}
	return totals, rows.Err()
}

// MonthSaleTotals aggregates sales per product name for one month.
func (r *Repository) MonthSaleTotals(ctx context.Context, month shared.Month) (map[string]SaleAgg, error) {
	start, end := month.Bounds(nil)
	rows, err := r.pool.Query(ctx, `SELECT p.name, COALESCE(SUM(s.quantity), 0), COALESCE(SUM(s.quantity * s.unit_price - s.discount), 0)
FROM sales s
JOIN products p ON p.id = s.product_id
WHERE s.sale_date >= $1 AND s.sale_date < $2
GROUP BY p.name`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := make(map[string]SaleAgg)
	for rows.Next() {
		var name string
		var agg SaleAgg
		if err := rows.Scan(&name, &agg.Quantity, &agg.Revenue); err != nil {
			return nil, err
		}
		totals[name] = agg
	}
	return totals, rows.Err()
}

// CurrentStocks returns the live stock counter per product name.
func (r *Repository) CurrentStocks(ctx context.Context) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, current_stock FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stocks := make(map[string]float64)
	for rows.Next() {
		var name string
		var stock float64
		if err := rows.Scan(&name, &stock); err != nil {
			return nil, err
		}
		stocks[name] = stock
	}
	return stocks, rows.Err()
}

// ArchivedEndingStocks returns the archived ending stock per product name for one month.
func (r *Repository) ArchivedEndingStocks(ctx context.Context, month shared.Month) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.name, a.ending_stock
FROM monthly_archives a
JOIN products p ON p.id = a.product_id
WHERE a.year = $1 AND a.month = $2`, month.Year, int(month.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stocks := make(map[string]float64)
	for rows.Next() {
		var name string
		var stock float64
		if err := rows.Scan(&name, &stock); err != nil {
			return nil, err
		}
		stocks[name] = stock
	}
	return stocks, rows.Err()
}

// ListArchives returns the archive rows for one month, joined with product names.
func (r *Repository) ListArchives(ctx context.Context, month shared.Month) ([]ArchiveRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.name, a.year, a.month, a.starting_stock, a.total_purchases, a.total_sales, a.ending_stock, a.total_purchase_cost, a.total_sales_revenue
FROM monthly_archives a
JOIN products p ON p.id = a.product_id
WHERE a.year = $1 AND a.month = $2
ORDER BY p.name`, month.Year, int(month.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	archives := []ArchiveRow{}
	for rows.Next() {
		var a ArchiveRow
		if err := rows.Scan(&a.ProductName, &a.Year, &a.Month, &a.StartingStock, &a.TotalPurchases, &a.TotalSales, &a.EndingStock, &a.TotalPurchaseCost, &a.TotalSalesRevenue); err != nil {
			return nil, err
		}
		archives = append(archives, a)
	}
	return archives, rows.Err()
}
