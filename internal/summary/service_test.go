package summary

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stocktide/stocktide/internal/shared"
)

type memoryRepo struct {
	purchases map[string]PurchaseAgg
	sales     map[string]SaleAgg
	stocks    map[string]float64
	archived  map[string]float64
	rows      []ArchiveRow
	calls     int
}

func (r *memoryRepo) MonthPurchaseTotals(ctx context.Context, month shared.Month) (map[string]PurchaseAgg, error) {
	r.calls++
	return r.purchases, nil
}

func (r *memoryRepo) MonthSaleTotals(ctx context.Context, month shared.Month) (map[string]SaleAgg, error) {
	return r.sales, nil
}

func (r *memoryRepo) CurrentStocks(ctx context.Context) (map[string]float64, error) {
	return r.stocks, nil
}

func (r *memoryRepo) ArchivedEndingStocks(ctx context.Context, month shared.Month) (map[string]float64, error) {
	return r.archived, nil
}

func (r *memoryRepo) ListArchives(ctx context.Context, month shared.Month) ([]ArchiveRow, error) {
	var out []ArchiveRow
	for _, row := range r.rows {
		if row.Year == month.Year && row.Month == int(month.Month) {
			out = append(out, row)
		}
	}
	if out == nil {
		out = []ArchiveRow{}
	}
	return out, nil
}

var september = time.Date(2024, time.September, 15, 12, 0, 0, 0, time.UTC)

func TestCurrentMonthMergesSources(t *testing.T) {
	repo := &memoryRepo{
		purchases: map[string]PurchaseAgg{"Widget": {Quantity: 50, Cost: 100}},
		sales:     map[string]SaleAgg{"Widget": {Quantity: 30, Revenue: 150}, "Gadget": {Quantity: 2, Revenue: 20}},
		stocks:    map[string]float64{"Widget": 120, "Gadget": 8, "Sprocket": 5},
		archived:  map[string]float64{"Widget": 100},
	}
	svc := NewService(repo, nil)
	svc.WithClock(func() time.Time { return september })

	rows, err := svc.CurrentMonth(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	byName := make(map[string]ProductSummary)
	for _, row := range rows {
		byName[row.ProductName] = row
	}

	widget := byName["Widget"]
	require.InDelta(t, 50, widget.TotalPurchases, 0.0001)
	require.InDelta(t, 100, widget.TotalPurchaseCost, 0.0001)
	require.InDelta(t, 30, widget.TotalSales, 0.0001)
	require.InDelta(t, 150, widget.TotalSalesRevenue, 0.0001)
	require.InDelta(t, 120, widget.CurrentStock, 0.0001)
	require.InDelta(t, 100, widget.StartingStock, 0.0001)

	gadget := byName["Gadget"]
	require.Zero(t, gadget.TotalPurchases)
	require.InDelta(t, 2, gadget.TotalSales, 0.0001)
	require.Zero(t, gadget.StartingStock)

	// A product with stock but no transactions still appears, zero-filled.
	sprocket := byName["Sprocket"]
	require.Zero(t, sprocket.TotalPurchases)
	require.Zero(t, sprocket.TotalSales)
	require.InDelta(t, 5, sprocket.CurrentStock, 0.0001)
}

func TestCurrentMonthUsesCache(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	cache := NewCache(client, time.Minute)
	cache.WithClock(func() time.Time { return september })

	repo := &memoryRepo{
		stocks: map[string]float64{"Widget": 120},
	}
	svc := NewService(repo, cache)
	svc.WithClock(func() time.Time { return september })

	ctx := context.Background()
	first, err := svc.CurrentMonth(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	second, err := svc.CurrentMonth(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)
	require.Equal(t, first, second)

	require.NoError(t, cache.InvalidateCurrentMonth(ctx))
	_, err = svc.CurrentMonth(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestHistoricalMonthDefaultsToPrevious(t *testing.T) {
	repo := &memoryRepo{
		rows: []ArchiveRow{{ProductName: "Widget", Year: 2024, Month: 8, EndingStock: 90}},
	}
	svc := NewService(repo, nil)
	svc.WithClock(func() time.Time { return september })

	rows, err := svc.HistoricalMonth(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 8, rows[0].Month)
}

func TestHistoricalMonthEmptyNotError(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil)
	svc.WithClock(func() time.Time { return september })

	rows, err := svc.HistoricalMonth(context.Background(), 2020, 1)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.NotNil(t, rows)
}

func TestHistoricalMonthValidatesInput(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil)

	_, err := svc.HistoricalMonth(context.Background(), 2024, 13)
	require.ErrorIs(t, err, ErrInvalidMonth)

	_, err = svc.HistoricalMonth(context.Background(), -1, 5)
	require.ErrorIs(t, err, ErrInvalidMonth)
}
