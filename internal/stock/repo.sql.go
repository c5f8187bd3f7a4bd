package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocktide/stocktide/internal/platform/db"
)

// Repository persists ledger entries and stock counters in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, productID int64) (Product, error)
	SupplierExists(ctx context.Context, supplierID int64) (bool, error)
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertPurchase(ctx context.Context, purchase Purchase) (int64, error)
	UpdateProductStock(ctx context.Context, productID int64, newStock float64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("stock repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, productID int64) (Product, error) {
	var p Product
	err := r.tx.QueryRow(ctx, `SELECT id, name, initial_stock, current_stock, reorder_level, is_active
FROM products WHERE id=$1 AND is_active FOR UPDATE`, productID).
		Scan(&p.ID, &p.Name, &p.InitialStock, &p.CurrentStock, &p.ReorderLevel, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *txRepository) SupplierExists(ctx context.Context, supplierID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id=$1)`, supplierID).Scan(&exists)
	return exists, err
}

func (r *txRepository) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (product_id, sale_date, quantity, unit_price, discount, created_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING id`, sale.ProductID, sale.Date, sale.Quantity, sale.UnitPrice, sale.Discount).Scan(&id)
	return id, err
}

func (r *txRepository) InsertPurchase(ctx context.Context, purchase Purchase) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchases (product_id, supplier_id, purchase_date, quantity, unit_price, created_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING id`, purchase.ProductID, nullInt(purchase.SupplierID), purchase.Date, purchase.Quantity, purchase.UnitPrice).Scan(&id)
	return id, err
}

func (r *txRepository) UpdateProductStock(ctx context.Context, productID int64, newStock float64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET current_stock=$2 WHERE id=$1`, productID, newStock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
