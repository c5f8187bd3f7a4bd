package summary

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stocktide/stocktide/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	MonthPurchaseTotals(ctx context.Context, month shared.Month) (map[string]PurchaseAgg, error)
	MonthSaleTotals(ctx context.Context, month shared.Month) (map[string]SaleAgg, error)
	CurrentStocks(ctx context.Context) (map[string]float64, error)
	ArchivedEndingStocks(ctx context.Context, month shared.Month) (map[string]float64, error)
	ListArchives(ctx context.Context, month shared.Month) ([]ArchiveRow, error)
}

// Service composes live aggregates with archived snapshots into reports.
// It only ever reads; stock mutation belongs to the accounting engine.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	group singleflight.Group
	clock func() time.Time
}

// NewService builds Service. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *Service) WithClock(clock func() time.Time) {
	if s != nil && clock != nil {
		s.clock = clock
	}
}

// CurrentMonth reports every product that has a purchase, a sale, or a live
// stock reading this month. Starting stock comes from the prior month's
// archived ending stock, zero when absent. Concurrent rebuilds of the same
// month collapse into one repository pass.
func (s *Service) CurrentMonth(ctx context.Context) ([]ProductSummary, error) {
	month := shared.MonthOf(s.clock())
	if rows, ok := s.cache.Get(ctx, month); ok {
		return rows, nil
	}

	v, err, _ := s.group.Do(month.String(), func() (any, error) {
		rows, err := s.buildCurrentMonth(ctx, month)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			_ = s.cache.Set(ctx, month, rows)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ProductSummary), nil
}

func (s *Service) buildCurrentMonth(ctx context.Context, month shared.Month) ([]ProductSummary, error) {
	purchases, err := s.repo.MonthPurchaseTotals(ctx, month)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.MonthSaleTotals(ctx, month)
	if err != nil {
		return nil, err
	}
	stocks, err := s.repo.CurrentStocks(ctx)
	if err != nil {
		return nil, err
	}
	starting, err := s.repo.ArchivedEndingStocks(ctx, month.Prev())
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*ProductSummary)
	row := func(name string) *ProductSummary {
		if r, ok := merged[name]; ok {
			return r
		}
		r := &ProductSummary{ProductName: name, StartingStock: starting[name]}
		merged[name] = r
		return r
	}
	for name, agg := range purchases {
		r := row(name)
		r.TotalPurchases = agg.Quantity
		r.TotalPurchaseCost = agg.Cost
	}
	for name, agg := range sales {
		r := row(name)
		r.TotalSales = agg.Quantity
		r.TotalSalesRevenue = agg.Revenue
	}
	for name, stock := range stocks {
		row(name).CurrentStock = stock
	}

	rows := make([]ProductSummary, 0, len(merged))
	for _, r := range merged {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductName < rows[j].ProductName })
	return rows, nil
}

// HistoricalMonth returns the archived rows for the month verbatim. Zero
// year/month defaults to the month before now. A month with no archive
// yields an empty slice.
func (s *Service) HistoricalMonth(ctx context.Context, year, monthNum int) ([]ArchiveRow, error) {
	var month shared.Month
	switch {
	case year == 0 && monthNum == 0:
		month = shared.MonthOf(s.clock()).Prev()
	case year <= 0 || monthNum < 1 || monthNum > 12:
		return nil, ErrInvalidMonth
	default:
		month = shared.Month{Year: year, Month: time.Month(monthNum)}
	}
	return s.repo.ListArchives(ctx, month)
}
