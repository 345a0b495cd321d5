package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// MockCartStore is a CartStore backed by memory that records writes and can
// be told to fail.
type MockCartStore struct {
	backing *store.MemoryCartStore

	mu         sync.Mutex
	WriteCalls []WriteCall
	ReadCalls  int

	// WriteErr fails every write when set.
	WriteErr error
	// ReadErr fails every read when set.
	ReadErr error
	// WriteCallback runs before each write; a non-nil result fails the write.
	WriteCallback func(call WriteCall) error
}

// WriteCall records one mutating call.
type WriteCall struct {
	Op     string
	UserID string
	List   store.List
	Key    string
}

func NewMockCartStore() *MockCartStore {
	return &MockCartStore{
		backing:    store.NewMemoryCartStore(),
		WriteCalls: make([]WriteCall, 0),
	}
}

func (m *MockCartStore) write(call WriteCall) error {
	m.mu.Lock()
	m.WriteCalls = append(m.WriteCalls, call)
	cb, err := m.WriteCallback, m.WriteErr
	m.mu.Unlock()

	if cb != nil {
		if err := cb(call); err != nil {
			return err
		}
	}
	return err
}

func (m *MockCartStore) read() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadCalls++
	return m.ReadErr
}

// Calls returns a copy of the recorded writes.
func (m *MockCartStore) Calls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WriteCall(nil), m.WriteCalls...)
}

// Reset clears recorded calls and injected errors.
func (m *MockCartStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls = make([]WriteCall, 0)
	m.ReadCalls = 0
	m.WriteErr = nil
	m.ReadErr = nil
	m.WriteCallback = nil
}

// Seed writes directly to the backing store without recording a call.
func (m *MockCartStore) Seed(userID string, list store.List, items ...store.LineItem) {
	for _, item := range items {
		_ = m.backing.PutItem(context.Background(), userID, list, item)
	}
}

// Backing exposes the underlying store for assertions.
func (m *MockCartStore) Backing() *store.MemoryCartStore {
	return m.backing
}

func (m *MockCartStore) GetItems(ctx context.Context, userID string, list store.List) ([]store.LineItem, error) {
	if err := m.read(); err != nil {
		return nil, err
	}
	return m.backing.GetItems(ctx, userID, list)
}

func (m *MockCartStore) PutItem(ctx context.Context, userID string, list store.List, item store.LineItem) error {
	if err := m.write(WriteCall{Op: "PutItem", UserID: userID, List: list, Key: item.Key}); err != nil {
		return err
	}
	return m.backing.PutItem(ctx, userID, list, item)
}

func (m *MockCartStore) DeleteItem(ctx context.Context, userID string, list store.List, key string) error {
	if err := m.write(WriteCall{Op: "DeleteItem", UserID: userID, List: list, Key: key}); err != nil {
		return err
	}
	return m.backing.DeleteItem(ctx, userID, list, key)
}

func (m *MockCartStore) ClearCart(ctx context.Context, userID string) error {
	if err := m.write(WriteCall{Op: "ClearCart", UserID: userID, List: store.ListCart}); err != nil {
		return err
	}
	return m.backing.ClearCart(ctx, userID)
}

func (m *MockCartStore) MoveItem(ctx context.Context, userID string, from, to store.List, item store.LineItem) error {
	if err := m.write(WriteCall{Op: "MoveItem", UserID: userID, List: to, Key: item.Key}); err != nil {
		return err
	}
	return m.backing.MoveItem(ctx, userID, from, to, item)
}

func (m *MockCartStore) GetRecentlyViewed(ctx context.Context, userID string) ([]string, error) {
	if err := m.read(); err != nil {
		return nil, err
	}
	return m.backing.GetRecentlyViewed(ctx, userID)
}

func (m *MockCartStore) SetRecentlyViewed(ctx context.Context, userID string, productIDs []string) error {
	if err := m.write(WriteCall{Op: "SetRecentlyViewed", UserID: userID}); err != nil {
		return err
	}
	return m.backing.SetRecentlyViewed(ctx, userID, productIDs)
}

func (m *MockCartStore) GetAppliedPromo(ctx context.Context, userID string) (*store.AppliedPromo, error) {
	if err := m.read(); err != nil {
		return nil, err
	}
	return m.backing.GetAppliedPromo(ctx, userID)
}

func (m *MockCartStore) SetAppliedPromo(ctx context.Context, userID string, promo *store.AppliedPromo) error {
	if err := m.write(WriteCall{Op: "SetAppliedPromo", UserID: userID}); err != nil {
		return err
	}
	return m.backing.SetAppliedPromo(ctx, userID, promo)
}

func (m *MockCartStore) Close() error { return nil }
