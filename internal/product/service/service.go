// Package service implements the catalog engine: validation, the query
// pipeline and the mutation operations over the product store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	producterrors "github.com/vivtv/product-service/internal/product/errors"
	"github.com/vivtv/product-service/internal/product/store"
	"github.com/vivtv/product-service/pkg/messaging"
	"github.com/vivtv/product-service/pkg/messaging/events"
)

// ProductService defines the operations the transport layer calls into.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns NotFoundError if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// List applies filter, search, sort and pagination over the catalog
	// and returns a result page with metadata.
	List(ctx context.Context, query ListQuery) (*ProductPage, error)

	// Create validates the payload and adds a new product to the catalog.
	Create(ctx context.Context, payload Payload) (*ProductDto, error)

	// Update replaces all mutable fields of an existing product.
	Update(ctx context.Context, id int64, payload Payload) (*ProductDto, error)

	// Patch merges the supplied fields over an existing product.
	Patch(ctx context.Context, id int64, payload Payload) (*ProductDto, error)

	// DeleteByID removes a product and returns the removed record.
	DeleteByID(ctx context.Context, id int64) (*ProductDto, error)

	// AdjustStock adds to or subtracts from a product's stock.
	// A subtract that would go negative is rejected without mutation.
	AdjustStock(ctx context.Context, id int64, payload Payload) (*ProductDto, error)
}

// Service implements ProductService over a ProductStore.
//
// The conflict check and the subsequent write of every mutation must be
// observed as one unit, so all mutations are serialized through mu.
type Service struct {
	mu         sync.Mutex
	repository store.ProductStore
	publisher  messaging.Publisher
	logger     *slog.Logger
	created    prometheus.Counter
	deleted    prometheus.Counter
	now        func() time.Time
}

// NewService creates a new instance of ProductService with the provided
// store, event publisher and mutation counters.
func NewService(repo store.ProductStore, publisher messaging.Publisher, logger *slog.Logger, created, deleted prometheus.Counter) *Service {
	return &Service{
		repository: repo,
		publisher:  publisher,
		logger:     logger.With("component", "service"),
		created:    created,
		deleted:    deleted,
		now:        time.Now,
	}
}

// ProductDto represents the data transfer object for a product.
// UpdatedAt is null until the first successful update.
type ProductDto struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Stock       int64      `json:"stock"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(_ context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(id)
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

// Create validates the payload, enforces name uniqueness and inserts a new
// record with a freshly assigned id.
func (s *Service) Create(ctx context.Context, payload Payload) (*ProductDto, error) {
	if violations := ValidateCreate(payload); len(violations) > 0 {
		return nil, &producterrors.ValidationError{Violations: violations}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name, _ := stringField(payload, "name")
	if s.repository.NameConflicts(name, 0) {
		return nil, &producterrors.NameConflictError{Name: name}
	}

	category, _ := stringField(payload, "category")
	price, _ := numberField(payload, "price")
	stock, _ := integerField(payload, "stock")
	description, _ := stringField(payload, "description")

	product := store.Product{
		ID:          s.repository.NextID(),
		Name:        name,
		Category:    category,
		Price:       price,
		Stock:       stock,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	s.repository.Insert(product)
	s.created.Inc()

	s.publish(ctx, events.ProductCreatedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		Stock:     product.Stock,
		CreatedAt: product.CreatedAt,
	})
	return toDto(&product), nil
}

// Update replaces all mutable fields of an existing product. An absent
// description falls back to the previous value rather than being cleared.
func (s *Service) Update(ctx context.Context, id int64, payload Payload) (*ProductDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repository.FindByID(id)
	if err != nil {
		return nil, err
	}
	if violations := ValidateCreate(payload); len(violations) > 0 {
		return nil, &producterrors.ValidationError{Violations: violations}
	}
	name, _ := stringField(payload, "name")
	if s.repository.NameConflicts(name, id) {
		return nil, &producterrors.NameConflictError{Name: name}
	}

	updated := *existing
	updated.Name = name
	updated.Category, _ = stringField(payload, "category")
	updated.Price, _ = numberField(payload, "price")
	updated.Stock, _ = integerField(payload, "stock")
	if description, ok := stringField(payload, "description"); ok {
		updated.Description = description
	}
	s.stamp(&updated)

	if err := s.repository.Replace(id, updated); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, &updated)
	return toDto(&updated), nil
}

// Patch merges the supplied fields over an existing product. Only the known
// field set is merged; unrecognized payload keys are ignored.
func (s *Service) Patch(ctx context.Context, id int64, payload Payload) (*ProductDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repository.FindByID(id)
	if err != nil {
		return nil, err
	}
	if violations := ValidateUpdate(payload); len(violations) > 0 {
		return nil, &producterrors.ValidationError{Violations: violations}
	}

	updated := *existing
	if name, ok := stringField(payload, "name"); ok {
		if s.repository.NameConflicts(name, id) {
			return nil, &producterrors.NameConflictError{Name: name}
		}
		updated.Name = name
	}
	if category, ok := stringField(payload, "category"); ok {
		updated.Category = category
	}
	if price, ok := numberField(payload, "price"); ok {
		updated.Price = price
	}
	if stock, ok := integerField(payload, "stock"); ok {
		updated.Stock = stock
	}
	if description, ok := stringField(payload, "description"); ok {
		updated.Description = description
	}
	s.stamp(&updated)

	if err := s.repository.Replace(id, updated); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, &updated)
	return toDto(&updated), nil
}

// DeleteByID removes a product and returns the removed record for
// confirmation by the caller. The id is never reissued.
func (s *Service) DeleteByID(ctx context.Context, id int64) (*ProductDto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.repository.DeleteByID(id)
	if err != nil {
		return nil, err
	}
	s.deleted.Inc()

	s.publish(ctx, events.ProductDeletedEvent{
		ProductID: removed.ID,
		Name:      removed.Name,
		DeletedAt: s.now().UTC(),
	})
	return toDto(removed), nil
}

// AdjustStock applies an "add" or "subtract" delta to a product's stock.
// Subtracting more than the available stock is rejected atomically.
func (s *Service) AdjustStock(ctx context.Context, id int64, payload Payload) (*ProductDto, error) {
	operation, ok := stringField(payload, "operation")
	if ok {
		operation = strings.ToLower(operation)
	}
	if !ok || (operation != "add" && operation != "subtract") {
		return nil, &producterrors.InvalidOperationError{
			Value: fmt.Sprintf("operation must be \"add\" or \"subtract\", got %v", payload["operation"]),
		}
	}
	quantity, ok := integerField(payload, "quantity")
	if !ok || quantity <= 0 {
		return nil, &producterrors.InvalidOperationError{
			Value: fmt.Sprintf("quantity must be a positive integer, got %v", payload["quantity"]),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repository.FindByID(id)
	if err != nil {
		return nil, err
	}
	if operation == "subtract" && quantity > existing.Stock {
		return nil, &producterrors.InsufficientStockError{
			Available: existing.Stock,
			Requested: quantity,
		}
	}

	updated := *existing
	if operation == "add" {
		updated.Stock += quantity
	} else {
		updated.Stock -= quantity
	}
	s.stamp(&updated)

	if err := s.repository.Replace(id, updated); err != nil {
		return nil, err
	}
	s.publishUpdated(ctx, &updated)
	return toDto(&updated), nil
}

// stamp refreshes the record's update timestamp.
func (s *Service) stamp(p *store.Product) {
	updatedAt := s.now().UTC()
	p.UpdatedAt = &updatedAt
}

// publish sends an event best-effort: a publish failure is logged, never
// surfaced, since the mutation has already been applied.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "subject", event.Subject(), "error", err)
	}
}

func (s *Service) publishUpdated(ctx context.Context, p *store.Product) {
	s.publish(ctx, events.ProductUpdatedEvent{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		UpdatedAt: *p.UpdatedAt,
	})
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Category:    product.Category,
		Price:       product.Price,
		Stock:       product.Stock,
		Description: product.Description,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
