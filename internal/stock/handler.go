package stock

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stocktide/stocktide/internal/platform/httpx"
)

// Handler exposes the transaction entry endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes attaches transaction routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.recordSale)
	r.Post("/purchases", h.recordPurchase)
}

type saleRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	Discount  float64 `json:"discount" validate:"gte=0"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
}

type purchaseRequest struct {
	ProductID  int64   `json:"product_id" validate:"required,gt=0"`
	SupplierID int64   `json:"supplier_id" validate:"gte=0"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
}

type saleResponse struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	Date         string  `json:"date"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Discount     float64 `json:"discount"`
	TotalRevenue float64 `json:"total_revenue"`
}

type purchaseResponse struct {
	ID         int64   `json:"id"`
	ProductID  int64   `json:"product_id"`
	SupplierID int64   `json:"supplier_id,omitempty"`
	Date       string  `json:"date"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalCost  float64 `json:"total_cost"`
}

func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	sale, err := h.service.RecordSale(r.Context(), SaleInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Discount:  req.Discount,
		Date:      date,
		ActorID:   actorID(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saleResponse{
		ID:           sale.ID,
		ProductID:    sale.ProductID,
		Date:         sale.Date.Format("2006-01-02"),
		Quantity:     sale.Quantity,
		UnitPrice:    sale.UnitPrice,
		Discount:     sale.Discount,
		TotalRevenue: sale.TotalRevenue(),
	})
}

func (h *Handler) recordPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	purchase, err := h.service.RecordPurchase(r.Context(), PurchaseInput{
		ProductID:  req.ProductID,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		Date:       date,
		ActorID:    actorID(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, purchaseResponse{
		ID:         purchase.ID,
		ProductID:  purchase.ProductID,
		SupplierID: purchase.SupplierID,
		Date:       purchase.Date.Format("2006-01-02"),
		Quantity:   purchase.Quantity,
		UnitPrice:  purchase.UnitPrice,
		TotalCost:  purchase.TotalCost(),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var insufficient *InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", insufficient.Error())
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidPrice):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrSupplierNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("record transaction failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
