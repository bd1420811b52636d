package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vivtv/product-service/internal/product/errors"
)

// inMemory implements ProductStore using an in-memory map.
type inMemory struct {
	mu       sync.RWMutex
	products map[int64]Product
	nextID   int64
}

// NewInMemoryStore creates a ProductStore pre-populated with the given records.
// The id counter starts at the highest seeded id plus one.
func NewInMemoryStore(seed []Product) ProductStore {
	s := &inMemory{
		products: make(map[int64]Product, len(seed)),
		nextID:   1,
	}
	for _, p := range seed {
		s.products[p.ID] = p
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

// DefaultCatalog returns the fixed records every fresh catalog starts with.
func DefaultCatalog() []Product {
	base := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	return []Product{
		{
			ID:          1,
			Name:        "Laptop",
			Category:    "Electronics",
			Price:       999.99,
			Stock:       15,
			Description: "High-performance laptop with 16GB RAM",
			CreatedAt:   base,
		},
		{
			ID:          2,
			Name:        "Smartphone",
			Category:    "Electronics",
			Price:       699.99,
			Stock:       25,
			Description: "Latest model smartphone with 128GB storage",
			CreatedAt:   base.Add(time.Minute),
		},
		{
			ID:          3,
			Name:        "Coffee Maker",
			Category:    "Appliances",
			Price:       79.99,
			Stock:       8,
			Description: "Programmable coffee maker with 12-cup capacity",
			CreatedAt:   base.Add(2 * time.Minute),
		},
		{
			ID:          4,
			Name:        "Desk Chair",
			Category:    "Furniture",
			Price:       149.99,
			Stock:       0,
			Description: "Ergonomic office chair with lumbar support",
			CreatedAt:   base.Add(3 * time.Minute),
		},
	}
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, &errors.NotFoundError{ID: id}
	}
	return &p, nil
}

// FindAll retrieves a snapshot of all products, ordered by id.
func (s *inMemory) FindAll() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// NextID allocates and returns the next product id.
func (s *inMemory) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	return id
}

// Insert adds a new product record.
func (s *inMemory) Insert(product Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[product.ID] = product
}

// Replace swaps the record stored under id.
func (s *inMemory) Replace(id int64, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return &errors.NotFoundError{ID: id}
	}
	product.ID = id
	s.products[id] = product
	return nil
}

// DeleteByID deletes a product by its ID and returns the removed record.
// The id counter is not rewound, so retired ids are never reissued.
func (s *inMemory) DeleteByID(id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		return nil, &errors.NotFoundError{ID: id}
	}
	delete(s.products, id)
	return &p, nil
}

// NameConflicts reports whether another record holds a case-insensitively equal name.
func (s *inMemory) NameConflicts(name string, excludeID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, p := range s.products {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}
