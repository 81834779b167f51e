// Package directory serves the public catalog views: top rated, paginated
// library, per-category lists and substring search.
package directory

import (
	"botlibrary/db"
	"botlibrary/model"
)

const (
	// PageSize is the library page length.
	PageSize = 15
	topLimit = 10
	// SearchLimit caps search results, best rated first.
	SearchLimit = 5
	categoryLimit = 15
)

// Engine answers catalog queries.
type Engine struct {
	store *db.Store
}

// New builds a directory engine.
func New(store *db.Store) *Engine {
	return &Engine{store: store}
}

// TopRated returns the best-rated listings.
func (e *Engine) TopRated() ([]*model.Listing, error) {
	return e.store.TopRatedListings(topLimit)
}

// Page returns one library page plus pagination context. Pages past the end
// return an empty slice.
func (e *Engine) Page(page int) (listings []*model.Listing, totalPages, offset int, err error) {
	if page < 0 {
		page = 0
	}
	total, err := e.store.CountListings()
	if err != nil {
		return nil, 0, 0, err
	}
	totalPages = (total + PageSize - 1) / PageSize
	offset = page * PageSize
	listings, err = e.store.ListingsPage(offset, PageSize)
	if err != nil {
		return nil, 0, 0, err
	}
	return listings, totalPages, offset, nil
}

// ByCategory returns a category's listings, best rated first.
func (e *Engine) ByCategory(cat model.Category) ([]*model.Listing, error) {
	return e.store.ListingsByCategory(cat, categoryLimit)
}

// Search matches query against handle, description and features.
func (e *Engine) Search(query string) ([]*model.Listing, error) {
	return e.store.SearchListings(query, SearchLimit)
}
