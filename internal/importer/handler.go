package importer

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stocktide/stocktide/internal/platform/httpx"
)

// 8 MiB upload cap, the same ballpark as a few thousand product rows.
const maxUploadBytes = 8 << 20

// Handler exposes the product upload endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches importer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/products/upload", h.uploadProducts)
}

func (h *Handler) uploadProducts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "could not parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing file field")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "only .xlsx files are allowed")
		return
	}

	report, err := h.service.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, ErrEmptyWorkbook) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		h.logger.Error("product import failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Import Failed", "workbook could not be processed")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
