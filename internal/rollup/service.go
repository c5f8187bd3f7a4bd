package rollup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stocktide/stocktide/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	ListActiveProducts(ctx context.Context) ([]ProductRef, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Per-product rollups are independent; this bounds their parallelism.
const rollupWorkers = 4

// Service computes and persists monthly archives.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Run archives the month before now for every active product. It only acts
// on the first day of a month; any other trigger day is a no-op, which makes
// redundant scheduler deliveries harmless. Re-running for the same target
// month overwrites the same rows via upsert.
func (s *Service) Run(ctx context.Context, now time.Time) (Result, error) {
	if now.Day() != 1 {
		return Result{Skipped: true}, nil
	}
	target := shared.MonthOf(now).Prev()

	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		return Result{Target: target}, err
	}

	result := Result{Target: target}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rollupWorkers)
	for _, product := range products {
		g.Go(func() error {
			if err := s.rollupProduct(gctx, product, target); err != nil {
				s.log().Error("product rollup failed",
					slog.Int64("product_id", product.ID),
					slog.String("product", product.Name),
					slog.String("target", target.String()),
					slog.Any("error", err),
				)
				mu.Lock()
				result.Failed++
				result.Errors = append(result.Errors, ProductError{ProductID: product.ID, Name: product.Name, Err: err})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			result.Succeeded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}

// rollupProduct computes and upserts one product's archive inside a single
// transaction so the read-then-upsert stays atomic under retries.
func (s *Service) rollupProduct(ctx context.Context, product ProductRef, target shared.Month) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		starting, err := ResolveStartingStock(ctx, tx, product, target)
		if err != nil {
			return err
		}
		purchases, err := tx.SumPurchases(ctx, product.ID, target)
		if err != nil {
			return err
		}
		sales, err := tx.SumSales(ctx, product.ID, target)
		if err != nil {
			return err
		}
		return tx.UpsertArchive(ctx, Archive{
			ProductID:         product.ID,
			Year:              target.Year,
			Month:             int(target.Month),
			StartingStock:     starting,
			TotalPurchases:    purchases.Quantity,
			TotalSales:        sales.Quantity,
			EndingStock:       starting + purchases.Quantity - sales.Quantity,
			TotalPurchaseCost: purchases.Cost,
			TotalSalesRevenue: sales.Revenue,
		})
	})
}

// ResolveStartingStock determines the stock a product opened the target month
// with: the archived ending stock of the month before the target wins, and the
// product's initial stock is the fallback. The fallback assumes no archive gap;
// when more than one month is missing it silently understates stock.
func ResolveStartingStock(ctx context.Context, tx ArchiveReader, product ProductRef, target shared.Month) (float64, error) {
	prior, err := tx.GetArchive(ctx, product.ID, target.Prev())
	if err != nil {
		if errors.Is(err, ErrArchiveNotFound) {
			return product.InitialStock, nil
		}
		return 0, err
	}
	return prior.EndingStock, nil
}

func (s *Service) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
