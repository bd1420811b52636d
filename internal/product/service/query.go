package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/vivtv/product-service/internal/product/store"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// ListQuery carries the raw query-string options for a catalog listing.
// Numeric coercion happens here; values that do not parse are treated as absent.
type ListQuery struct {
	Category  string
	MinPrice  string
	MaxPrice  string
	InStock   string
	Search    string
	SortBy    string
	SortOrder string
	Page      string
	Limit     string
}

// PageMetadata describes the position of a page within the filtered catalog.
type PageMetadata struct {
	TotalProducts int  `json:"totalProducts"`
	TotalPages    int  `json:"totalPages"`
	CurrentPage   int  `json:"currentPage"`
	PageSize      int  `json:"pageSize"`
	HasNextPage   bool `json:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage"`
}

// AppliedFilters echoes the effective, normalized filter values back to the caller.
type AppliedFilters struct {
	Category  string   `json:"category,omitempty"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	InStock   *bool    `json:"inStock,omitempty"`
	Search    string   `json:"search,omitempty"`
	SortBy    string   `json:"sortBy"`
	SortOrder string   `json:"sortOrder"`
}

// ProductPage is the result of a catalog listing.
type ProductPage struct {
	Metadata PageMetadata   `json:"metadata"`
	Filters  AppliedFilters `json:"filters"`
	Products []ProductDto   `json:"products"`
}

// List runs the query pipeline: filter, search, sort, paginate.
func (s *Service) List(_ context.Context, query ListQuery) (*ProductPage, error) {
	minPrice := parseOptionalFloat(query.MinPrice)
	maxPrice := parseOptionalFloat(query.MaxPrice)
	inStock := parseOptionalBool(query.InStock)
	sortBy := normalizeSortBy(query.SortBy)
	sortOrder := normalizeSortOrder(query.SortOrder)
	page := parsePositiveInt(query.Page, defaultPage)
	limit := parsePositiveInt(query.Limit, defaultLimit)

	// Filter predicates are composed in a fixed order: the result set does not
	// depend on it, but the pipeline must stay deterministic.
	var predicates []func(store.Product) bool
	if query.Category != "" {
		category := query.Category
		predicates = append(predicates, func(p store.Product) bool {
			return strings.EqualFold(p.Category, category)
		})
	}
	if minPrice != nil {
		predicates = append(predicates, func(p store.Product) bool {
			return p.Price >= *minPrice
		})
	}
	if maxPrice != nil {
		predicates = append(predicates, func(p store.Product) bool {
			return p.Price <= *maxPrice
		})
	}
	if inStock != nil {
		predicates = append(predicates, func(p store.Product) bool {
			if *inStock {
				return p.Stock > 0
			}
			return p.Stock == 0
		})
	}
	if query.Search != "" {
		needle := strings.ToLower(query.Search)
		predicates = append(predicates, func(p store.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle)
		})
	}

	filtered := make([]store.Product, 0)
	for _, p := range s.repository.FindAll() {
		matches := true
		for _, predicate := range predicates {
			if !predicate(p) {
				matches = false
				break
			}
		}
		if matches {
			filtered = append(filtered, p)
		}
	}

	sortProducts(filtered, sortBy, sortOrder)

	total := len(filtered)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	products := make([]ProductDto, 0, end-start)
	for _, p := range filtered[start:end] {
		products = append(products, *toDto(&p))
	}

	return &ProductPage{
		Metadata: PageMetadata{
			TotalProducts: total,
			TotalPages:    totalPages,
			CurrentPage:   page,
			PageSize:      limit,
			// Derived from slice boundaries, so an out-of-range page still
			// reports correct neighbors.
			HasNextPage: end < total,
			HasPrevPage: (page-1)*limit > 0 && total > 0,
		},
		Filters: AppliedFilters{
			Category:  query.Category,
			MinPrice:  minPrice,
			MaxPrice:  maxPrice,
			InStock:   inStock,
			Search:    query.Search,
			SortBy:    sortBy,
			SortOrder: sortOrder,
		},
		Products: products,
	}, nil
}

// sortProducts orders the slice stably so that records comparing equal under
// the active field keep their original relative order.
func sortProducts(list []store.Product, sortBy, sortOrder string) {
	less := func(a, b store.Product) bool {
		switch sortBy {
		case "name":
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case "price":
			return a.Price < b.Price
		case "stock":
			return a.Stock < b.Stock
		case "createdAt":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ID < b.ID
		}
	}
	if sortOrder == "desc" {
		sort.SliceStable(list, func(i, j int) bool { return less(list[j], list[i]) })
		return
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

// parseOptionalFloat treats an unparseable bound as "filter absent", never as
// an error.
func parseOptionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseOptionalBool(raw string) *bool {
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

func parsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func normalizeSortBy(raw string) string {
	switch raw {
	case "id", "name", "price", "stock", "createdAt":
		return raw
	default:
		return "id"
	}
}

func normalizeSortOrder(raw string) string {
	if strings.EqualFold(raw, "desc") {
		return "desc"
	}
	return "asc"
}
