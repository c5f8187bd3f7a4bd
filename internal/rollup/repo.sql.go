package rollup

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocktide/stocktide/internal/platform/db"
	"github.com/stocktide/stocktide/internal/shared"
)

// Repository persists archives in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ArchiveReader reads archive rows.
type ArchiveReader interface {
	GetArchive(ctx context.Context, productID int64, month shared.Month) (Archive, error)
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	ArchiveReader
	SumPurchases(ctx context.Context, productID int64, month shared.Month) (PurchaseTotals, error)
	SumSales(ctx context.Context, productID int64, month shared.Month) (SaleTotals, error)
	UpsertArchive(ctx context.Context, archive Archive) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("rollup repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// ListActiveProducts returns every product the rollup must archive.
func (r *Repository) ListActiveProducts(ctx context.Context) ([]ProductRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, initial_stock FROM products WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []ProductRef
	for rows.Next() {
		var p ProductRef
		if err := rows.Scan(&p.ID, &p.Name, &p.InitialStock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *txRepository) GetArchive(ctx context.Context, productID int64, month shared.Month) (Archive, error) {
	var a Archive
	err := r.tx.QueryRow(ctx, `SELECT id, product_id, year, month, starting_stock, total_purchases, total_sales, ending_stock, total_purchase_cost, total_sales_revenue
FROM monthly_archives WHERE product_id=$1 AND year=$2 AND month=$3`, productID, month.Year, int(month.Month)).
		Scan(&a.ID, &a.ProductID, &a.Year, &a.Month, &a.StartingStock, &a.TotalPurchases, &a.TotalSales, &a.EndingStock, &a.TotalPurchaseCost, &a.TotalSalesRevenue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Archive{}, ErrArchiveNotFound
		}
		return Archive{}, err
	}
	return a, nil
}

func (r *txRepository) SumPurchases(ctx context.Context, productID int64, month shared.Month) (PurchaseTotals, error) {
	start, end := month.Bounds(nil)
	var totals PurchaseTotals
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0), COALESCE(SUM(quantity * unit_price), 0)
FROM purchases WHERE product_id=$1 AND purchase_date >= $2 AND purchase_date < $3`, productID, start, end).
		Scan(&totals.Quantity, &totals.Cost)
	return totals, err
}

func (r *txRepository) SumSales(ctx context.Context, productID int64, month shared.Month) (SaleTotals, error) {
	start, end := month.Bounds(nil)
	var totals SaleTotals
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0), COALESCE(SUM(quantity * unit_price - discount), 0)
FROM sales WHERE product_id=$1 AND sale_date >= $2 AND sale_date < $3`, productID, start, end).
		Scan(&totals.Quantity, &totals.Revenue)
	return totals, err
}

func (r *txRepository) UpsertArchive(ctx context.Context, archive Archive) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO monthly_archives (product_id, year, month, starting_stock, total_purchases, total_sales, ending_stock, total_purchase_cost, total_sales_revenue, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
ON CONFLICT (product_id, year, month) DO UPDATE SET
	starting_stock=EXCLUDED.starting_stock,
	total_purchases=EXCLUDED.total_purchases,
	total_sales=EXCLUDED.total_sales,
	ending_stock=EXCLUDED.ending_stock,
	total_purchase_cost=EXCLUDED.total_purchase_cost,
	total_sales_revenue=EXCLUDED.total_sales_revenue`,
		archive.ProductID, archive.Year, archive.Month, archive.StartingStock, archive.TotalPurchases,
		archive.TotalSales, archive.EndingStock, archive.TotalPurchaseCost, archive.TotalSalesRevenue)
	return err
}
