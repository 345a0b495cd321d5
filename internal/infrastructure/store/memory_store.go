package store

import (
	"context"
	"sync"
)

type memoryCart struct {
	lists  map[List]map[string]LineItem
	recent []string
	promo  *AppliedPromo
}

// MemoryCartStore keeps cart state in process memory.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]*memoryCart // userID -> cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[string]*memoryCart),
	}
}

// cart returns the user's cart, creating it. Caller holds the write lock.
func (s *MemoryCartStore) cart(userID string) *memoryCart {
	c, ok := s.carts[userID]
	if !ok {
		c = &memoryCart{lists: map[List]map[string]LineItem{
			ListCart:  {},
			ListSaved: {},
		}}
		s.carts[userID] = c
	}
	return c
}

func (s *MemoryCartStore) GetItems(_ context.Context, userID string, list List) ([]LineItem, error) {
	if !list.Valid() {
		return nil, ErrUnknownList
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[userID]
	if !ok {
		return []LineItem{}, nil
	}
	items := make([]LineItem, 0, len(c.lists[list]))
	for _, item := range c.lists[list] {
		items = append(items, item)
	}
	SortItems(items)
	return items, nil
}

func (s *MemoryCartStore) PutItem(_ context.Context, userID string, list List, item LineItem) error {
	if !list.Valid() {
		return ErrUnknownList
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(userID).lists[list][item.Key] = item
	return nil
}

func (s *MemoryCartStore) DeleteItem(_ context.Context, userID string, list List, key string) error {
	if !list.Valid() {
		return ErrUnknownList
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cart(userID).lists[list], key)
	return nil
}

func (s *MemoryCartStore) ClearCart(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cart(userID)
	c.lists[ListCart] = map[string]LineItem{}
	c.promo = nil
	return nil
}

func (s *MemoryCartStore) MoveItem(_ context.Context, userID string, from, to List, item LineItem) error {
	if !from.Valid() || !to.Valid() {
		return ErrUnknownList
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cart(userID)
	delete(c.lists[from], item.Key)
	c.lists[to][item.Key] = item
	return nil
}

func (s *MemoryCartStore) GetRecentlyViewed(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, c.recent...), nil
}

func (s *MemoryCartStore) SetRecentlyViewed(_ context.Context, userID string, productIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart(userID).recent = append([]string{}, productIDs...)
	return nil
}

func (s *MemoryCartStore) GetAppliedPromo(_ context.Context, userID string) (*AppliedPromo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok || c.promo == nil {
		return nil, nil
	}
	p := *c.promo
	return &p, nil
}

func (s *MemoryCartStore) SetAppliedPromo(_ context.Context, userID string, promo *AppliedPromo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if promo == nil {
		s.cart(userID).promo = nil
		return nil
	}
	p := *promo
	s.cart(userID).promo = &p
	return nil
}

func (s *MemoryCartStore) Close() error { return nil }
