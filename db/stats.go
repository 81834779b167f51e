package db

import "botlibrary/model"

// Stats are the aggregate numbers shown to admins.
type Stats struct {
	Accounts           int
	Listings           int
	PendingSubmissions int
	ByCategory         map[model.Category]int
}

// GetStats gathers account, listing and pending-submission counts plus the
// per-category listing breakdown.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{ByCategory: make(map[model.Category]int)}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&stats.Accounts); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM listings").Scan(&stats.Listings); err != nil {
		return nil, err
	}
	var err error
	stats.PendingSubmissions, err = s.CountPendingSubmissions()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT category, COUNT(*) FROM listings GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat model.Category
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		stats.ByCategory[cat] = n
	}
	return stats, rows.Err()
}

// CountListings counts approved listings.
func (s *Store) CountListings() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM listings").Scan(&n)
	return n, err
}

func (s *Store) queryListings(query string, args ...interface{}) ([]*model.Listing, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// TopRatedListings returns the best-rated listings, highest first.
func (s *Store) TopRatedListings(limit int) ([]*model.Listing, error) {
	return s.queryListings(
		"SELECT "+listingCols+" FROM listings ORDER BY rating DESC, vote_count DESC LIMIT ?",
		limit,
	)
}

// ListingsPage returns one page of the library ordered by rating.
func (s *Store) ListingsPage(offset, limit int) ([]*model.Listing, error) {
	return s.queryListings(
		"SELECT "+listingCols+" FROM listings ORDER BY rating DESC, vote_count DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
}

// ListingsByCategory returns listings in one category ordered by rating.
func (s *Store) ListingsByCategory(cat model.Category, limit int) ([]*model.Listing, error) {
	return s.queryListings(
		"SELECT "+listingCols+" FROM listings WHERE category = ? ORDER BY rating DESC LIMIT ?",
		cat, limit,
	)
}

// SearchListings matches the query against handle, description and features,
// best rated first.
func (s *Store) SearchListings(query string, limit int) ([]*model.Listing, error) {
	pattern := "%" + query + "%"
	return s.queryListings(
		`SELECT `+listingCols+` FROM listings
		 WHERE handle LIKE ? OR description LIKE ? OR features LIKE ?
		 ORDER BY rating DESC LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
}
