package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	producterrors "github.com/vivtv/product-service/internal/product/errors"
	"github.com/vivtv/product-service/internal/product/store"
	"github.com/vivtv/product-service/pkg/messaging"
)

// capturingPublisher records every published event.
type capturingPublisher struct {
	events []messaging.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.events = append(p.events, event)
	return nil
}

// failingPublisher simulates a broker outage.
type failingPublisher struct{}

func (failingPublisher) Publish(_ context.Context, _ messaging.Event) error {
	return errors.New("broker unavailable")
}

func newTestService(seed []store.Product) *Service {
	return newTestServiceWithPublisher(seed, messaging.Noop{})
}

func newTestServiceWithPublisher(seed []store.Product, publisher messaging.Publisher) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(
		store.NewInMemoryStore(seed),
		publisher,
		logger,
		prometheus.NewCounter(prometheus.CounterOpts{Name: "test_products_created_total"}),
		prometheus.NewCounter(prometheus.CounterOpts{Name: "test_products_deleted_total"}),
	)
}

func validCreatePayload() Payload {
	return Payload{
		"name":        "Tablet",
		"category":    "Electronics",
		"price":       299.99,
		"stock":       float64(12),
		"description": "10-inch tablet",
	}
}

func Test_Service_Create(t *testing.T) {
	// given
	publisher := &capturingPublisher{}
	s := newTestServiceWithPublisher(store.DefaultCatalog(), publisher)

	// when
	created, err := s.Create(context.Background(), validCreatePayload())

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, "Tablet", created.Name)
	assert.InDelta(t, 299.99, created.Price, 0.001)
	assert.Equal(t, int64(12), created.Stock)
	assert.Nil(t, created.UpdatedAt, "updatedAt must be null until the first update")
	assert.False(t, created.CreatedAt.IsZero())
	require.Len(t, publisher.events, 1)
	assert.Equal(t, messaging.ProductsCreatedSubject, publisher.events[0].Subject())
}

func Test_Service_Create_DescriptionDefaultsToEmpty(t *testing.T) {
	s := newTestService(nil)
	payload := validCreatePayload()
	delete(payload, "description")

	created, err := s.Create(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, "", created.Description)
}

func Test_Service_Create_ValidationFailed(t *testing.T) {
	// given
	s := newTestService(store.DefaultCatalog())

	// when
	_, err := s.Create(context.Background(), Payload{"name": "Tablet"})

	// then: all violations reported, catalog unchanged
	var validationErr *producterrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Len(t, validationErr.Violations, 3)
	page, err := s.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Metadata.TotalProducts)
}

func Test_Service_Create_NameConflict(t *testing.T) {
	// given the seeded catalog containing "Laptop"
	s := newTestService(store.DefaultCatalog())

	// when: creating with a case-insensitive duplicate name
	_, err := s.Create(context.Background(), Payload{
		"name": "laptop", "category": "x", "price": 10.0, "stock": float64(1),
	})

	// then
	var conflictErr *producterrors.NameConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "laptop", conflictErr.Name)
	page, listErr := s.List(context.Background(), ListQuery{})
	require.NoError(t, listErr)
	assert.Equal(t, 4, page.Metadata.TotalProducts)
}

func Test_Service_Create_IDsRemainUniqueAfterDeletion(t *testing.T) {
	// given
	s := newTestService(store.DefaultCatalog())
	seen := map[int64]bool{1: true, 2: true, 3: true, 4: true}

	// when: interleaving creates and deletes
	var lastID int64 = 4
	for i := 0; i < 5; i++ {
		payload := validCreatePayload()
		payload["name"] = "Gadget " + strconv.Itoa(i)
		created, err := s.Create(context.Background(), payload)
		require.NoError(t, err)
		assert.Greater(t, created.ID, lastID, "each id must exceed every previously assigned id")
		assert.False(t, seen[created.ID])
		seen[created.ID] = true
		lastID = created.ID

		_, err = s.DeleteByID(context.Background(), created.ID)
		require.NoError(t, err)
	}
}

func Test_Service_Update(t *testing.T) {
	// given
	s := newTestService(store.DefaultCatalog())
	fixed := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	// when: full update without a description
	updated, err := s.Update(context.Background(), 1, Payload{
		"name": "Laptop Pro", "category": "Electronics", "price": 1299.99, "stock": float64(10),
	})

	// then: description falls back to the previous value
	require.NoError(t, err)
	assert.Equal(t, "Laptop Pro", updated.Name)
	assert.Equal(t, "High-performance laptop with 16GB RAM", updated.Description)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, fixed, *updated.UpdatedAt)
	assert.Equal(t, store.DefaultCatalog()[0].CreatedAt, updated.CreatedAt, "createdAt is immutable")
}

func Test_Service_Update_KeepingOwnNameIsNotAConflict(t *testing.T) {
	s := newTestService(store.DefaultCatalog())

	updated, err := s.Update(context.Background(), 1, Payload{
		"name": "LAPTOP", "category": "Electronics", "price": 999.99, "stock": float64(15),
	})

	require.NoError(t, err)
	assert.Equal(t, "LAPTOP", updated.Name)
}

func Test_Service_Update_NameConflictAgainstOtherRecord(t *testing.T) {
	s := newTestService(store.DefaultCatalog())

	_, err := s.Update(context.Background(), 1, Payload{
		"name": "Smartphone", "category": "Electronics", "price": 999.99, "stock": float64(15),
	})

	var conflictErr *producterrors.NameConflictError
	assert.True(t, errors.As(err, &conflictErr))
}

func Test_Service_Update_NotFound(t *testing.T) {
	s := newTestService(store.DefaultCatalog())

	_, err := s.Update(context.Background(), 999, validCreatePayload())

	var notFoundErr *producterrors.NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
	assert.Equal(t, int64(999), notFoundErr.ID)
}

func Test_Service_Patch_OnlySuppliedFieldsChange(t *testing.T) {
	// given
	s := newTestService(store.DefaultCatalog())
	fixed := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	// when: supplying only the stock
	patched, err := s.Patch(context.Background(), 1, Payload{"stock": float64(5)})

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(5), patched.Stock)
	assert.Equal(t, "Laptop", patched.Name)
	assert.Equal(t, "Electronics", patched.Category)
	assert.InDelta(t, 999.99, patched.Price, 0.001)
	assert.Equal(t, "High-performance laptop with 16GB RAM", patched.Description)
	require.NotNil(t, patched.UpdatedAt)
	assert.Equal(t, fixed, *patched.UpdatedAt)
}

func Test_Service_Patch_UpdatedAtAdvances(t *testing.T) {
	// given a record that was already updated once
	s := newTestService(store.DefaultCatalog())
	first := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return first }
	prior, err := s.Patch(context.Background(), 1, Payload{"price": 899.99})
	require.NoError(t, err)

	// when: patching again later
	second := first.Add(time.Hour)
	s.now = func() time.Time { return second }
	patched, err := s.Patch(context.Background(), 1, Payload{"stock": float64(5)})

	// then: the new timestamp is strictly later than the prior one
	require.NoError(t, err)
	require.NotNil(t, patched.UpdatedAt)
	assert.True(t, patched.UpdatedAt.After(*prior.UpdatedAt))
}

func Test_Service_Patch_UnknownFieldsAreIgnored(t *testing.T) {
	// given
	s := newTestService(store.DefaultCatalog())

	// when: the payload carries keys outside the known field set
	patched, err := s.Patch(context.Background(), 1, Payload{
		"stock":    float64(7),
		"rating":   4.8,
		"warranty": "2 years",
	})

	// then: only the known field is merged
	require.NoError(t, err)
	assert.Equal(t, int64(7), patched.Stock)
	assert.Equal(t, "Laptop", patched.Name)
}

func Test_Service_Patch_NameConflict(t *testing.T) {
	s := newTestService(store.DefaultCatalog())

	_, err := s.Patch(context.Background(), 1, Payload{"name": "SMARTPHONE"})

	var conflictErr *producterrors.NameConflictError
	assert.True(t, errors.As(err, &conflictErr))
}

func Test_Service_Patch_ValidationFailed(t *testing.T) {
	s := newTestService(store.DefaultCatalog())

	_, err := s.Patch(context.Background(), 1, Payload{"price": -5.0})

	var validationErr *producterrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"price must be a non-negative number"}, validationErr.Violations)
}

func Test_Service_DeleteByID(t *testing.T) {
	// given
	publisher := &capturingPublisher{}
	s := newTestServiceWithPublisher(store.DefaultCatalog(), publisher)

	// when
	removed, err := s.DeleteByID(context.Background(), 3)

	// then: the removed record is returned for confirmation
	require.NoError(t, err)
	assert.Equal(t, "Coffee Maker", removed.Name)
	_, err = s.FindByID(context.Background(), 3)
	var notFoundErr *producterrors.NotFoundError
	assert.True(t, errors.As(err, &notFoundErr))
	require.Len(t, publisher.events, 1)
	assert.Equal(t, messaging.ProductsDeletedSubject, publisher.events[0].Subject())
}

func Test_Service_AdjustStock(t *testing.T) {
	testCases := []struct {
		name          string
		productID     int64
		payload       Payload
		expectedStock int64
		expectError   string
	}{
		{
			name:          "add",
			productID:     1,
			payload:       Payload{"operation": "add", "quantity": float64(5)},
			expectedStock: 20,
		},
		{
			name:          "subtract",
			productID:     1,
			payload:       Payload{"operation": "subtract", "quantity": float64(5)},
			expectedStock: 10,
		},
		{
			name:          "operation is case-insensitive",
			productID:     1,
			payload:       Payload{"operation": "SUBTRACT", "quantity": float64(15)},
			expectedStock: 0,
		},
		{
			name:        "subtract below zero is rejected",
			productID:   1,
			payload:     Payload{"operation": "subtract", "quantity": float64(100)},
			expectError: "insufficient_stock",
		},
		{
			name:        "unknown operation",
			productID:   1,
			payload:     Payload{"operation": "remove", "quantity": float64(1)},
			expectError: "invalid_operation",
		},
		{
			name:        "missing operation",
			productID:   1,
			payload:     Payload{"quantity": float64(1)},
			expectError: "invalid_operation",
		},
		{
			name:        "zero quantity",
			productID:   1,
			payload:     Payload{"operation": "add", "quantity": float64(0)},
			expectError: "invalid_operation",
		},
		{
			name:        "fractional quantity",
			productID:   1,
			payload:     Payload{"operation": "add", "quantity": 1.5},
			expectError: "invalid_operation",
		},
		{
			name:        "non-numeric quantity",
			productID:   1,
			payload:     Payload{"operation": "add", "quantity": "ten"},
			expectError: "invalid_operation",
		},
		{
			name:        "product not found",
			productID:   999,
			payload:     Payload{"operation": "add", "quantity": float64(1)},
			expectError: "not_found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := newTestService(store.DefaultCatalog())
			// when
			updated, err := s.AdjustStock(context.Background(), tc.productID, tc.payload)
			// then
			switch tc.expectError {
			case "insufficient_stock":
				var target *producterrors.InsufficientStockError
				require.Error(t, err)
				assert.True(t, errors.As(err, &target))
				return
			case "invalid_operation":
				var target *producterrors.InvalidOperationError
				require.Error(t, err)
				assert.True(t, errors.As(err, &target))
				return
			case "not_found":
				var target *producterrors.NotFoundError
				require.Error(t, err)
				assert.True(t, errors.As(err, &target))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStock, updated.Stock)
			require.NotNil(t, updated.UpdatedAt)
		})
	}
}

func Test_Service_AdjustStock_InsufficientStockLeavesRecordUntouched(t *testing.T) {
	// given the seeded Laptop with stock 15
	s := newTestService(store.DefaultCatalog())

	// when: subtracting 100
	_, err := s.AdjustStock(context.Background(), 1, Payload{"operation": "subtract", "quantity": float64(100)})

	// then: the error carries both quantities and nothing changed
	var stockErr *producterrors.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(15), stockErr.Available)
	assert.Equal(t, int64(100), stockErr.Requested)

	unchanged, err := s.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), unchanged.Stock)
	assert.Nil(t, unchanged.UpdatedAt, "updatedAt must not move on a rejected adjustment")
}

func Test_Service_NameUniquenessHoldsAcrossMutations(t *testing.T) {
	// given
	s := newTestService(store.DefaultCatalog())

	// when: a mix of creates, updates and patches
	_, err := s.Create(context.Background(), Payload{"name": "Monitor", "category": "Electronics", "price": 199.99, "stock": float64(3)})
	require.NoError(t, err)
	_, err = s.Patch(context.Background(), 3, Payload{"name": "Espresso Machine"})
	require.NoError(t, err)

	// then: no two live records compare equal ignoring case
	page, err := s.List(context.Background(), ListQuery{Limit: "100"})
	require.NoError(t, err)
	lower := make(map[string]bool)
	for _, p := range page.Products {
		key := strings.ToLower(p.Name)
		assert.False(t, lower[key], "duplicate name %q", p.Name)
		lower[key] = true
	}
}

func Test_Service_PublishFailureDoesNotFailMutation(t *testing.T) {
	// given a publisher that always errors
	s := newTestServiceWithPublisher(store.DefaultCatalog(), failingPublisher{})

	// when
	created, err := s.Create(context.Background(), validCreatePayload())

	// then: the mutation still succeeds
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
}
