package bolt

import (
	"encoding/json"

	"github.com/freshcart/shopkit/domain"
	"github.com/freshcart/shopkit/repository"
)

// CartStore persists the cart cache as a JSON sequence of lines under a
// fixed key.
type CartStore struct {
	db *DB
}

var _ repository.CartStore = (*CartStore)(nil)

func NewCartStore(db *DB) *CartStore {
	return &CartStore{db: db}
}

func (s *CartStore) Put(lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.db.put(cartBucket, cartKey, payload)
}

func (s *CartStore) Get() ([]domain.CartLine, error) {
	payload, err := s.db.get(cartBucket, cartKey)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
