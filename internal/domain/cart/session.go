package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/ec-storefront/internal/domain/pricing"

	"github.com/example/ec-storefront/internal/infrastructure/cartsync"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

const MaxRecentlyViewed = 10

var (
	ErrInvalidQuantity      = fmt.Errorf("quantity must be between 1 and %d", pricing.MaxLineQuantity)
	ErrLineNotFound         = errors.New("cart line not found")
	ErrIncompleteSelection  = errors.New("color, material and size must all be selected")
	ErrUnknownVariant       = errors.New("selected variant does not exist")
	ErrIncompatibleVariants = errors.New("selected variants are incompatible")
)

type SyncStatus string

const (
	StatusIdle    SyncStatus = "idle"
	StatusSyncing SyncStatus = "syncing"
	StatusSynced  SyncStatus = "synced"
	StatusError   SyncStatus = "error"
)

// State is a shopper's cart as the session currently believes it to be.
type State struct {
	Items          []LineItem    `json:"items"`
	Saved          []LineItem    `json:"saved"`
	RecentlyViewed []string      `json:"recently_viewed"`
	Promo          *AppliedPromo `json:"promo,omitempty"`
}

func (s State) clone() State {
	c := State{
		Items:          cloneItems(s.Items),
		Saved:          cloneItems(s.Saved),
		RecentlyViewed: append([]string{}, s.RecentlyViewed...),
	}
	if s.Promo != nil {
		p := *s.Promo
		c.Promo = &p
	}
	return c
}

// writeFunc persists a change that has already been applied in memory.
type writeFunc func(ctx context.Context) error

// Session holds one shopper's cart and applies changes optimistically:
// memory first, then the store, restoring the previous state if the store
// write fails. Mutations are serialized; readers see the optimistic state
// while a write is in flight.
type Session struct {
	userID    string
	origin    string
	store     store.CartStore
	publisher cartsync.Publisher
	logger    *zap.Logger
	now       func() time.Time

	opMu sync.Mutex

	mu      sync.RWMutex
	state   State
	status  SyncStatus
	lastErr error
}

func newSession(userID, origin string, cartStore store.CartStore, publisher cartsync.Publisher, logger *zap.Logger, now func() time.Time) *Session {
	return &Session{
		userID:    userID,
		origin:    origin,
		store:     cartStore,
		publisher: publisher,
		logger:    logger.With(zap.String("user_id", userID)),
		now:       now,
		state:     State{Items: []LineItem{}, Saved: []LineItem{}, RecentlyViewed: []string{}},
		status:    StatusIdle,
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Status returns the sync status and, when it is StatusError, the cause.
func (s *Session) Status() (SyncStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.lastErr
}

// Reload replaces the in-memory state with what the store holds. On failure
// the previous state is kept.
func (s *Session) Reload(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	next := State{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.store.GetItems(gctx, s.userID, store.ListCart)
		next.Items = items
		return err
	})
	g.Go(func() error {
		saved, err := s.store.GetItems(gctx, s.userID, store.ListSaved)
		next.Saved = saved
		return err
	})
	g.Go(func() error {
		recent, err := s.store.GetRecentlyViewed(gctx, s.userID)
		next.RecentlyViewed = recent
		return err
	})
	g.Go(func() error {
		p, err := s.store.GetAppliedPromo(gctx, s.userID)
		next.Promo = p
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status, s.lastErr = StatusError, err
		return fmt.Errorf("failed to load cart: %w", err)
	}
	s.state = next.clone()
	s.status, s.lastErr = StatusSynced, nil
	return nil
}

// mutate runs one optimistic change. apply edits the state under the lock
// and returns the store write; a nil write means there is nothing to persist.
func (s *Session) mutate(ctx context.Context, kind string, apply func(st *State) (writeFunc, error)) error {
	s.opMu.Lock()

	s.mu.Lock()
	snapshot := s.state.clone()
	write, err := apply(&s.state)
	if err != nil || write == nil {
		s.state = snapshot
		s.mu.Unlock()
		s.opMu.Unlock()
		return err
	}
	s.status = StatusSyncing
	s.mu.Unlock()

	err = write(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = snapshot
		s.status, s.lastErr = StatusError, err
	} else {
		s.status, s.lastErr = StatusSynced, nil
	}
	s.mu.Unlock()
	s.opMu.Unlock()

	if err != nil {
		s.logger.Warn("cart write failed, rolled back", zap.String("kind", kind), zap.Error(err))
		return fmt.Errorf("failed to save cart: %w", err)
	}
	s.notify(ctx, kind)
	return nil
}

func (s *Session) notify(ctx context.Context, kind string) {
	if s.publisher == nil {
		return
	}
	n := cartsync.Notification{UserID: s.userID, Origin: s.origin, Kind: kind, At: s.now()}
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.Warn("failed to broadcast cart change", zap.String("kind", kind), zap.Error(err))
	}
}

// AddItem adds item to the cart, or increments the existing line with the
// same key. It returns the line key.
func (s *Session) AddItem(ctx context.Context, item LineItem) (string, error) {
	if !pricing.ValidQuantity(item.Quantity) {
		return "", ErrInvalidQuantity
	}
	err := s.mutate(ctx, EventItemAdded, func(st *State) (writeFunc, error) {
		line := item
		if i := findLine(st.Items, item.Key); i >= 0 {
			line = st.Items[i]
			line.Quantity += item.Quantity
			if !pricing.ValidQuantity(line.Quantity) {
				return nil, ErrInvalidQuantity
			}
			st.Items[i] = line
		} else {
			st.Items = append(st.Items, line)
			store.SortItems(st.Items)
		}
		return func(ctx context.Context) error {
			return s.store.PutItem(ctx, s.userID, store.ListCart, line)
		}, nil
	})
	if err != nil {
		return "", err
	}
	return item.Key, nil
}

// UpdateQuantity sets a line's quantity.
func (s *Session) UpdateQuantity(ctx context.Context, key string, quantity int) error {
	if !pricing.ValidQuantity(quantity) {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, EventItemUpdated, func(st *State) (writeFunc, error) {
		i := findLine(st.Items, key)
		if i < 0 {
			return nil, ErrLineNotFound
		}
		st.Items[i].Quantity = quantity
		line := st.Items[i]
		return func(ctx context.Context) error {
			return s.store.PutItem(ctx, s.userID, store.ListCart, line)
		}, nil
	})
}

func (s *Session) RemoveItem(ctx context.Context, key string) error {
	return s.removeFrom(ctx, store.ListCart, key, EventItemRemoved)
}

func (s *Session) RemoveSaved(ctx context.Context, key string) error {
	return s.removeFrom(ctx, store.ListSaved, key, EventSavedRemoved)
}

func (s *Session) removeFrom(ctx context.Context, list store.List, key, kind string) error {
	return s.mutate(ctx, kind, func(st *State) (writeFunc, error) {
		items := st.list(list)
		i := findLine(*items, key)
		if i < 0 {
			return nil, ErrLineNotFound
		}
		*items = slices.Delete(*items, i, i+1)
		return func(ctx context.Context) error {
			return s.store.DeleteItem(ctx, s.userID, list, key)
		}, nil
	})
}

// Clear empties the cart and drops the applied promo. Saved items stay.
func (s *Session) Clear(ctx context.Context) error {
	return s.mutate(ctx, EventCartCleared, func(st *State) (writeFunc, error) {
		st.Items = []LineItem{}
		st.Promo = nil
		return func(ctx context.Context) error {
			return s.store.ClearCart(ctx, s.userID)
		}, nil
	})
}

// SaveForLater moves a cart line to the saved list.
func (s *Session) SaveForLater(ctx context.Context, key string) error {
	return s.move(ctx, store.ListCart, store.ListSaved, key, EventItemSaved)
}

// MoveToCart moves a saved line back into the cart.
func (s *Session) MoveToCart(ctx context.Context, key string) error {
	return s.move(ctx, store.ListSaved, store.ListCart, key, EventItemMovedToCart)
}

// move transfers a line between lists. A line already present in the
// destination under the same key absorbs the moved quantity; otherwise the
// line is re-stamped and joins the destination as its newest entry.
func (s *Session) move(ctx context.Context, from, to store.List, key, kind string) error {
	return s.mutate(ctx, kind, func(st *State) (writeFunc, error) {
		src, dst := st.list(from), st.list(to)
		i := findLine(*src, key)
		if i < 0 {
			return nil, ErrLineNotFound
		}
		line := (*src)[i]
		*src = slices.Delete(*src, i, i+1)

		if j := findLine(*dst, key); j >= 0 {
			merged := (*dst)[j].Quantity + line.Quantity
			if !pricing.ValidQuantity(merged) {
				return nil, ErrInvalidQuantity
			}
			(*dst)[j].Quantity = merged
			line = (*dst)[j]
		} else {
			line.AddedAt = s.now()
			*dst = append(*dst, line)
			store.SortItems(*dst)
		}
		return func(ctx context.Context) error {
			return s.store.MoveItem(ctx, s.userID, from, to, line)
		}, nil
	})
}

// RecordView puts productID at the front of the recently viewed list.
func (s *Session) RecordView(ctx context.Context, productID string) error {
	return s.mutate(ctx, EventProductViewed, func(st *State) (writeFunc, error) {
		if len(st.RecentlyViewed) > 0 && st.RecentlyViewed[0] == productID {
			return nil, nil
		}
		recent := make([]string, 0, MaxRecentlyViewed)
		recent = append(recent, productID)
		for _, id := range st.RecentlyViewed {
			if id != productID && len(recent) < MaxRecentlyViewed {
				recent = append(recent, id)
			}
		}
		st.RecentlyViewed = recent
		return func(ctx context.Context) error {
			return s.store.SetRecentlyViewed(ctx, s.userID, recent)
		}, nil
	})
}

// SetPromo replaces the applied promo; nil removes it.
func (s *Session) SetPromo(ctx context.Context, p *AppliedPromo) error {
	kind := EventPromoApplied
	if p == nil {
		kind = EventPromoRemoved
	}
	return s.mutate(ctx, kind, func(st *State) (writeFunc, error) {
		if p == nil && st.Promo == nil {
			return nil, nil
		}
		var stored *AppliedPromo
		if p != nil {
			cp := *p
			stored = &cp
		}
		st.Promo = stored
		return func(ctx context.Context) error {
			return s.store.SetAppliedPromo(ctx, s.userID, stored)
		}, nil
	})
}

func (st *State) list(l store.List) *[]LineItem {
	if l == store.ListSaved {
		return &st.Saved
	}
	return &st.Items
}
