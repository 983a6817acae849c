package repository

import "github.com/freshcart/shopkit/domain"

// CartStore persists the local cart cache. The cache is process-durable but
// not authoritative: product data inside each line is a frozen snapshot.
type CartStore interface {
	// Put replaces the cached cart lines.
	Put(lines []domain.CartLine) error
	// Get returns the cached lines, or (nil, nil) when no cart was saved yet.
	Get() ([]domain.CartLine, error)
}
