package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stocktide/stocktide/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Invalidator is notified after a transaction lands so derived views can drop caches.
type Invalidator interface {
	InvalidateCurrentMonth(ctx context.Context) error
}

const maxTxRetries = 3

// Service is the only writer of product stock counters.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	invalidator Invalidator
	clock       func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, invalidator Invalidator) *Service {
	return &Service{
		repo:        repo,
		audit:       audit,
		invalidator: invalidator,
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

// RecordSale validates and persists a sale, decrementing the product's live stock.
// The stock mutation and the ledger row commit together or not at all.
func (s *Service) RecordSale(ctx context.Context, input SaleInput) (Sale, error) {
	if input.ProductID == 0 {
		return Sale{}, ErrProductNotFound
	}
	if input.Quantity <= 0 {
		return Sale{}, ErrInvalidQuantity
	}
	if input.UnitPrice < 0 || input.Discount < 0 {
		return Sale{}, ErrInvalidPrice
	}
	if err := s.validateDate(input.Date); err != nil {
		return Sale{}, err
	}

	var sale Sale
	err := s.withRetry(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if input.Quantity > product.CurrentStock {
			return &InsufficientStockError{
				ProductID: product.ID,
				Requested: input.Quantity,
				Available: product.CurrentStock,
			}
		}
		sale = Sale{
			ProductID: input.ProductID,
			Date:      input.Date,
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
			Discount:  input.Discount,
		}
		id, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = id
		return tx.UpdateProductStock(ctx, product.ID, product.CurrentStock-input.Quantity)
	})
	if err != nil {
		return Sale{}, err
	}
	s.afterCommit(ctx, input.ActorID, "stock:sale", sale.ID, map[string]any{
		"product_id": input.ProductID,
		"qty":        input.Quantity,
		"unit_price": input.UnitPrice,
		"discount":   input.Discount,
	})
	return sale, nil
}

// RecordPurchase validates and persists a purchase, incrementing the product's live stock.
func (s *Service) RecordPurchase(ctx context.Context, input PurchaseInput) (Purchase, error) {
	if input.ProductID == 0 {
		return Purchase{}, ErrProductNotFound
	}
	if input.Quantity <= 0 {
		return Purchase{}, ErrInvalidQuantity
	}
	if input.UnitPrice < 0 {
		return Purchase{}, ErrInvalidPrice
	}
	if err := s.validateDate(input.Date); err != nil {
		return Purchase{}, err
	}

	var purchase Purchase
	err := s.withRetry(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if input.SupplierID != 0 {
			ok, err := tx.SupplierExists(ctx, input.SupplierID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrSupplierNotFound
			}
		}
		purchase = Purchase{
			ProductID:  input.ProductID,
			SupplierID: input.SupplierID,
			Date:       input.Date,
			Quantity:   input.Quantity,
			UnitPrice:  input.UnitPrice,
		}
		id, err := tx.InsertPurchase(ctx, purchase)
		if err != nil {
			return err
		}
		purchase.ID = id
		return tx.UpdateProductStock(ctx, product.ID, product.CurrentStock+input.Quantity)
	})
	if err != nil {
		return Purchase{}, err
	}
	s.afterCommit(ctx, input.ActorID, "stock:purchase", purchase.ID, map[string]any{
		"product_id":  input.ProductID,
		"supplier_id": input.SupplierID,
		"qty":         input.Quantity,
		"unit_price":  input.UnitPrice,
	})
	return purchase, nil
}

func (s *Service) validateDate(date time.Time) error {
	if date.IsZero() {
		return ErrInvalidDate
	}
	now := s.clock()
	if !shared.MonthOf(now).Contains(date) {
		return ErrInvalidDate
	}
	// Compare at day precision: a sale dated today is fine regardless of clock time.
	if date.After(now) && !sameDay(date, now) {
		return ErrInvalidDate
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// withRetry re-runs the transactional unit when Postgres reports a
// serialization failure or deadlock, up to maxTxRetries attempts.
func (s *Service) withRetry(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = s.repo.WithTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrConflict, err)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// 40001 serialization_failure, 40P01 deadlock_detected.
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func (s *Service) afterCommit(ctx context.Context, actorID int64, action string, entryID int64, meta map[string]any) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   "ledger_entry",
			EntityID: fmt.Sprintf("%d", entryID),
			Meta:     meta,
		})
	}
	if s.invalidator != nil {
		_ = s.invalidator.InvalidateCurrentMonth(ctx)
	}
}
