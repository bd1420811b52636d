// Package store provides the authoritative in-memory product catalog.
package store

import "time"

// Product represents a product record owned by the catalog store.
type Product struct {
	ID          int64
	Name        string
	Category    string
	Price       float64
	Stock       int64
	Description string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ProductStore is the single mutation point for the catalog.
// It abstracts the underlying data store, allowing for different implementations.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns NotFoundError if no product exists with the given ID.
	FindByID(id int64) (*Product, error)

	// FindAll returns a snapshot copy of all records, ordered by id.
	// Mutating the returned slice does not affect the catalog.
	FindAll() []Product

	// NextID allocates the next product id. Ids increase monotonically
	// and are never reused, even after deletion.
	NextID() int64

	// Insert adds a new record to the catalog.
	Insert(product Product)

	// Replace swaps the record stored under id for the given one.
	// Returns NotFoundError if no product exists with the given ID.
	Replace(id int64, product Product) error

	// DeleteByID removes a record and returns it.
	// Returns NotFoundError if no product exists with the given ID.
	DeleteByID(id int64) (*Product, error)

	// NameConflicts reports whether any record other than excludeID has a
	// case-insensitively equal name. Pass excludeID = 0 for creation checks.
	NameConflicts(name string, excludeID int64) bool
}
