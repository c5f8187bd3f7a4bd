package summary

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stocktide/stocktide/internal/platform/httpx"
)

// Handler exposes the reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches summary routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/current", h.currentMonth)
	r.Get("/past", h.pastMonth)
	r.Get("/past/{year}/{month}", h.pastMonth)
}

func (h *Handler) currentMonth(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.CurrentMonth(r.Context())
	if err != nil {
		h.logger.Error("current month summary failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) pastMonth(w http.ResponseWriter, r *http.Request) {
	var year, month int
	if raw := chi.URLParam(r, "year"); raw != "" {
		year, _ = strconv.Atoi(raw)
	}
	if raw := chi.URLParam(r, "month"); raw != "" {
		month, _ = strconv.Atoi(raw)
	}

	rows, err := h.service.HistoricalMonth(r.Context(), year, month)
	if err != nil {
		if errors.Is(err, ErrInvalidMonth) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("historical summary failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
