// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	producterrors "github.com/vivtv/product-service/internal/product/errors"
	"github.com/vivtv/product-service/internal/product/service"
	"github.com/vivtv/product-service/pkg/web"
)

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the product REST API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Patch("/", h.Patch)
			r.Delete("/", h.DeleteByID)
			r.Patch("/stock", h.AdjustStock)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// List retrieves a page of products matching the query options.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	params := r.URL.Query()
	query := service.ListQuery{
		Category:  params.Get("category"),
		MinPrice:  params.Get("minPrice"),
		MaxPrice:  params.Get("maxPrice"),
		InStock:   params.Get("inStock"),
		Search:    params.Get("search"),
		SortBy:    params.Get("sortBy"),
		SortOrder: params.Get("sortOrder"),
		Page:      params.Get("page"),
		Limit:     params.Get("limit"),
	}
	mLogger.DebugContext(r.Context(), "Received request to list products", "query", fmt.Sprintf("%+v", query))
	page, err := h.service.List(r.Context(), query)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing products", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully listed products", "count", len(page.Products), "total", page.Metadata.TotalProducts)
	web.RespondJSON(w, mLogger, http.StatusOK, page)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	payload, ok := h.decodePayload(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product")
	created, err := h.service.Create(r.Context(), payload)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update replaces all mutable fields of a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	payload, ok := h.decodePayload(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	updated, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Patch merges the supplied fields over a product.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	payload, ok := h.decodePayload(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to patch product", "ID", id)
	updated, err := h.service.Patch(r.Context(), id, payload)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to patch product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product patched successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// AdjustStock adds to or subtracts from a product's stock.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	payload, ok := h.decodePayload(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to adjust stock", "ID", id)
	updated, err := h.service.AdjustStock(r.Context(), id, payload)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to adjust stock for product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Stock adjusted successfully", "ID", updated.ID, "NewStock", updated.Stock)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID and returns the removed record.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	removed, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, removed)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// parseID extracts and validates the integer ID from the request path.
func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		idErr := &producterrors.InvalidIdentifierError{Raw: raw}
		logger.WarnContext(r.Context(), "Invalid product id", "raw", raw)
		web.RespondError(w, logger, http.StatusBadRequest, idErr.Error())
		return 0, false
	}
	return id, true
}

// decodePayload decodes the request body into the loosely-typed payload the
// core validates against.
func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (service.Payload, bool) {
	var payload service.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return payload, true
}

// respondServiceError maps the core failure taxonomy onto HTTP status codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	var validationErr *producterrors.ValidationError
	var notFoundErr *producterrors.NotFoundError
	var conflictErr *producterrors.NameConflictError
	var stockErr *producterrors.InsufficientStockError
	var operationErr *producterrors.InvalidOperationError

	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Violations)
		web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"errors": validationErr.Violations})
	case errors.As(err, &notFoundErr):
		logger.WarnContext(r.Context(), "Product not found", "ID", notFoundErr.ID)
		web.RespondError(w, logger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", notFoundErr.ID))
	case errors.As(err, &conflictErr):
		logger.WarnContext(r.Context(), "Product name conflict", "Name", conflictErr.Name)
		web.RespondError(w, logger, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &stockErr):
		logger.WarnContext(r.Context(), "Insufficient stock", "available", stockErr.Available, "requested", stockErr.Requested)
		web.RespondError(w, logger, http.StatusBadRequest, stockErr.Error())
	case errors.As(err, &operationErr):
		logger.WarnContext(r.Context(), "Invalid stock adjustment", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, operationErr.Error())
	default:
		logger.ErrorContext(r.Context(), "Unexpected service error", "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, fallback)
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, found := web.GetRequestID(r.Context())
	if !found {
		reqID = "unknown"
	}
	return h.logger.With("request_id", reqID)
}
