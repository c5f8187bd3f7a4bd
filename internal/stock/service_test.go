package stock

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products  map[int64]Product
	suppliers map[int64]bool
	sales     []Sale
	purchases []Purchase
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(products ...Product) *memoryRepo {
	r := &memoryRepo{products: make(map[int64]Product), suppliers: map[int64]bool{1: true}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (tx *memoryTx) GetProductForUpdate(ctx context.Context, productID int64) (Product, error) {
	p, ok := tx.repo.products[productID]
	if !ok || !p.IsActive {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (tx *memoryTx) SupplierExists(ctx context.Context, supplierID int64) (bool, error) {
	return tx.repo.suppliers[supplierID], nil
}

func (tx *memoryTx) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	tx.repo.nextID++
	sale.ID = tx.repo.nextID
	tx.repo.sales = append(tx.repo.sales, sale)
	return sale.ID, nil
}

func (tx *memoryTx) InsertPurchase(ctx context.Context, purchase Purchase) (int64, error) {
	tx.repo.nextID++
	purchase.ID = tx.repo.nextID
	tx.repo.purchases = append(tx.repo.purchases, purchase)
	return purchase.ID, nil
}

func (tx *memoryTx) UpdateProductStock(ctx context.Context, productID int64, newStock float64) error {
	p, ok := tx.repo.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	p.CurrentStock = newStock
	tx.repo.products[productID] = p
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var now = time.Date(2024, time.September, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo RepositoryPort) *Service {
	svc := NewService(repo, nil, nil)
	svc.WithClock(fixedClock(now))
	return svc
}

func TestRecordPurchaseIncrementsStock(t *testing.T) {
	repo := newMemoryRepo(Product{ID: 1, Name: "Widget", InitialStock: 100, CurrentStock: 100, IsActive: true})
	svc := newTestService(repo)

	purchase, err := svc.RecordPurchase(context.Background(), PurchaseInput{
		ProductID: 1,
		Quantity:  50,
		UnitPrice: 2,
		Date:      time.Date(2024, time.September, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.InDelta(t, 150, repo.products[1].CurrentStock, 0.0001)
	require.Len(t, repo.purchases, 1)
	require.InDelta(t, 100, purchase.TotalCost(), 0.0001)
}

func TestRecordSaleDecrementsStock(t *testing.T) {
	repo := newMemoryRepo(Product{ID: 1, Name: "Widget", InitialStock: 100, CurrentStock: 150, IsActive: true})
	svc := newTestService(repo)

	sale, err := svc.RecordSale(context.Background(), SaleInput{
		ProductID: 1,
		Quantity:  30,
		UnitPrice: 5,
		Date:      time.Date(2024, time.September, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.InDelta(t, 120, repo.products[1].CurrentStock, 0.0001)
	require.Len(t, repo.sales, 1)
	require.InDelta(t, 150, sale.TotalRevenue(), 0.0001)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	repo := newMemoryRepo(Product{ID: 1, Name: "Widget", CurrentStock: 120, IsActive: true})
	svc := newTestService(repo)

	_, err := svc.RecordSale(context.Background(), SaleInput{
		ProductID: 1,
		Quantity:  200,
		UnitPrice: 5,
		Date:      time.Date(2024, time.September, 10, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.InDelta(t, 120, insufficient.Available, 0.0001)

	require.InDelta(t, 120, repo.products[1].CurrentStock, 0.0001)
	require.Empty(t, repo.sales)
}

func TestRecordSaleDateWindow(t *testing.T) {
	repo := newMemoryRepo(Product{ID: 1, Name: "Widget", CurrentStock: 100, IsActive: true})
	svc := newTestService(repo)

	cases := map[string]time.Time{
		"previous month": time.Date(2024, time.August, 31, 0, 0, 0, 0, time.UTC),
		"next month":     time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		"future day":     time.Date(2024, time.September, 20, 0, 0, 0, 0, time.UTC),
		"zero":           {},
	}
	for name, date := range cases {
		_, err := svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: 1, UnitPrice: 1, Date: date})
		require.ErrorIs(t, err, ErrInvalidDate, name)
	}
	require.Empty(t, repo.sales)
	require.InDelta(t, 100, repo.products[1].CurrentStock, 0.0001)
}

func TestRecordSaleSameDayAllowed(t *testing.T) {
	repo := newMemoryRepo(Product{ID: 1, Name: "Widget", CurrentStock: 100, IsActive: true})
	svc := newTestService(repo)

	// Dated today at midnight while the clock reads noon: still valid.
	_, err := svc.RecordSale(context.Background(), SaleInput{
		ProductID: 1,
		Quantity:  1,
		UnitPrice: 1,
		Date:      time.Date(2024, time.September, 15, 23, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestRecordPurchaseUnknownSupplier(t *testing.T) {
	repo := newMemoryRepo(Product{ID: 1, Name: "Widget", CurrentStock: 100, IsActive: true})
	svc := newTestService(repo)

	_, err := svc.RecordPurchase(context.Background(), PurchaseInput{
		ProductID:  1,
		SupplierID: 99,
		Quantity:   5,
		UnitPrice:  1,
		Date:       time.Date(2024, time.September, 5, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrSupplierNotFound)
	require.Empty(t, repo.purchases)
	require.InDelta(t, 100, repo.products[1].CurrentStock, 0.0001)
}

func TestRecordSaleValidation(t *testing.T) {
	repo := newMemoryRepo(Product{ID: 1, CurrentStock: 10, IsActive: true})
	svc := newTestService(repo)
	date := time.Date(2024, time.September, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: 0, UnitPrice: 1, Date: date})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: 1, UnitPrice: -1, Date: date})
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.RecordSale(context.Background(), SaleInput{ProductID: 2, Quantity: 1, UnitPrice: 1, Date: date})
	require.ErrorIs(t, err, ErrProductNotFound)
}

type conflictRepo struct {
	attempts int
	failures int
	inner    *memoryRepo
}

func (r *conflictRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.attempts++
	if r.attempts <= r.failures {
		return &pgconn.PgError{Code: "40001"}
	}
	return r.inner.WithTx(ctx, fn)
}

func TestRecordSaleRetriesSerializationFailure(t *testing.T) {
	inner := newMemoryRepo(Product{ID: 1, CurrentStock: 10, IsActive: true})
	repo := &conflictRepo{failures: 2, inner: inner}
	svc := newTestService(repo)

	_, err := svc.RecordSale(context.Background(), SaleInput{
		ProductID: 1,
		Quantity:  1,
		UnitPrice: 1,
		Date:      time.Date(2024, time.September, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, 3, repo.attempts)
}

func TestRecordSaleSurfacesPersistentConflict(t *testing.T) {
	inner := newMemoryRepo(Product{ID: 1, CurrentStock: 10, IsActive: true})
	repo := &conflictRepo{failures: 10, inner: inner}
	svc := newTestService(repo)

	_, err := svc.RecordSale(context.Background(), SaleInput{
		ProductID: 1,
		Quantity:  1,
		UnitPrice: 1,
		Date:      time.Date(2024, time.September, 10, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, 3, repo.attempts)
	require.Empty(t, inner.sales)
}
