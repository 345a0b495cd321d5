package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/domain/bundle"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/promo"
	"github.com/example/ec-storefront/internal/infrastructure/cartsync"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// View is everything the storefront shows for a cart.
type View struct {
	Items     []LineItem     `json:"items"`
	Summary   Summary        `json:"summary"`
	Bundles   []bundle.Offer `json:"bundles"`
	Status    SyncStatus     `json:"sync_status"`
	SyncError string         `json:"sync_error,omitempty"`
}

const (
	DefaultSessionCacheSize = 10000
	DefaultSessionIdle      = 30 * time.Minute
)

// Service owns one Session per shopper and keeps them in step with other
// instances through the broadcaster. Sessions are cached up to a fixed
// number of shoppers and dropped after an idle window; a dropped shopper is
// loaded from the store again on the next request.
type Service struct {
	catalog     product.Catalog
	store       store.CartStore
	validator   PromoValidator
	detector    *bundle.Detector
	broadcaster cartsync.Broadcaster
	logger      *zap.Logger
	now         func() time.Time
	origin      string

	cacheSize int
	idle      time.Duration

	mu       sync.Mutex
	sessions *expirable.LRU[string, *Session]
}

type Option func(*Service)

func WithBroadcaster(b cartsync.Broadcaster) Option {
	return func(s *Service) { s.broadcaster = b }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithDetector(d *bundle.Detector) Option {
	return func(s *Service) { s.detector = d }
}

// WithSessionCache bounds the cached sessions. A non-positive idle window
// keeps sessions until they are pushed out by size.
func WithSessionCache(size int, idle time.Duration) Option {
	return func(s *Service) {
		s.cacheSize = size
		s.idle = idle
	}
}

// WithOrigin fixes the origin id stamped on outgoing notifications.
func WithOrigin(origin string) Option {
	return func(s *Service) { s.origin = origin }
}

func NewService(catalog product.Catalog, cartStore store.CartStore, validator PromoValidator, opts ...Option) *Service {
	s := &Service{
		catalog:   catalog,
		store:     cartStore,
		validator: validator,
		logger:    zap.NewNop(),
		now:       time.Now,
		origin:    uuid.NewString(),
		cacheSize: DefaultSessionCacheSize,
		idle:      DefaultSessionIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheSize <= 0 {
		s.cacheSize = DefaultSessionCacheSize
	}
	s.sessions = expirable.NewLRU[string, *Session](s.cacheSize, nil, s.idle)
	if s.detector == nil {
		s.detector = bundle.NewDetector(catalog)
	}
	s.logger = s.logger.With(zap.String("component", "cart"))
	return s
}

// Start subscribes to cart notifications from other instances.
func (s *Service) Start(ctx context.Context) error {
	if s.broadcaster == nil {
		return nil
	}
	return s.broadcaster.Subscribe(ctx, s.HandleNotification)
}

// HandleNotification reloads the shopper's session when another origin
// changed the cart. Shoppers without a live session are ignored; they load
// fresh on first use.
func (s *Service) HandleNotification(ctx context.Context, n cartsync.Notification) {
	if n.Origin == s.origin {
		return
	}
	sess, ok := s.sessions.Peek(n.UserID)
	if !ok {
		return
	}
	if err := sess.Reload(ctx); err != nil {
		s.logger.Warn("failed to reload cart after remote change",
			zap.String("user_id", n.UserID), zap.String("kind", n.Kind), zap.Error(err))
	}
}

// Session returns the shopper's session, loading it from the store when it
// is not cached. Each call restarts the idle window. A session whose load
// failed is not cached.
func (s *Service) Session(ctx context.Context, userID string) (*Session, error) {
	if sess, ok := s.touch(userID); ok {
		return sess, nil
	}

	var publisher cartsync.Publisher
	if s.broadcaster != nil {
		publisher = s.broadcaster
	}
	sess := newSession(userID, s.origin, s.store, publisher, s.logger, s.now)
	if err := sess.Reload(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions.Get(userID); ok {
		s.sessions.Add(userID, existing)
		return existing, nil
	}
	s.sessions.Add(userID, sess)
	return sess, nil
}

func (s *Service) touch(userID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions.Get(userID)
	if ok {
		s.sessions.Add(userID, sess)
	}
	return sess, ok
}

func (s *Service) cachedSessions() int {
	return s.sessions.Len()
}

// AddItem validates the configuration and adds it to the cart.
func (s *Service) AddItem(ctx context.Context, userID, productID string, sel product.Selection, quantity int) (string, error) {
	p, ok := s.catalog.GetProductByID(productID)
	if !ok {
		return "", product.ErrProductNotFound
	}
	if !pricing.ValidQuantity(quantity) {
		return "", ErrInvalidQuantity
	}
	if err := validateSelection(p, sel); err != nil {
		return "", err
	}

	sess, err := s.Session(ctx, userID)
	if err != nil {
		return "", err
	}
	return sess.AddItem(ctx, LineItem{
		Key:       LineKey(p.ID, sel),
		ProductID: p.ID,
		Selection: sel,
		Quantity:  quantity,
		AddedAt:   s.now(),
		Image:     lineImage(p, sel),
	})
}

func validateSelection(p *product.Product, sel product.Selection) error {
	if !sel.Complete() {
		return ErrIncompleteSelection
	}
	color, okColor := p.FindColor(sel.Color)
	material, okMaterial := p.FindMaterial(sel.Material)
	size, okSize := p.FindSize(sel.Size)
	if !okColor || !okMaterial || !okSize {
		return ErrUnknownVariant
	}
	for _, v := range []product.Variant{color, material, size} {
		if !product.CheckVariantCompatibility(v, sel) {
			return ErrIncompatibleVariants
		}
	}
	return nil
}

func (s *Service) UpdateItem(ctx context.Context, userID, key string, quantity int) error {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	return sess.UpdateQuantity(ctx, key, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, userID, key string) error {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	return sess.RemoveItem(ctx, key)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	return sess.Clear(ctx)
}

func (s *Service) SaveForLater(ctx context.Context, userID, key string) error {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	return sess.SaveForLater(ctx, key)
}

func (s *Service) MoveToCart(ctx context.Context, userID, key string) error {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	return sess.MoveToCart(ctx, key)
}

func (s *Service) RemoveSaved(ctx context.Context, userID, key string) error {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	return sess.RemoveSaved(ctx, key)
}

func (s *Service) Saved(ctx context.Context, userID string) ([]LineItem, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sess.State().Saved, nil
}

// RecordView adds a known product to the recently viewed list.
func (s *Service) RecordView(ctx context.Context, userID, productID string) error {
	if _, ok := s.catalog.GetProductByID(productID); !ok {
		return product.ErrProductNotFound
	}
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	return sess.RecordView(ctx, productID)
}

// RecentlyViewed resolves the recently viewed ids, skipping products that
// are no longer in the catalog.
func (s *Service) RecentlyViewed(ctx context.Context, userID string) ([]*product.Product, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	products := []*product.Product{}
	for _, id := range sess.State().RecentlyViewed {
		if p, ok := s.catalog.GetProductByID(id); ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// ApplyPromo validates code against the cart's post-tier total and, if it
// qualifies, replaces any applied promo. A rejected code leaves the cart
// untouched; the result says why.
func (s *Service) ApplyPromo(ctx context.Context, userID, code string) (promo.Result, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return promo.Result{}, err
	}
	st := sess.State()
	summary := Summarize(ctx, st.Items, s.catalog, nil, nil)

	result := s.validator.Validate(ctx, code, summary.AfterQuantityDiscount)
	if !result.Valid {
		return result, nil
	}
	if err := sess.SetPromo(ctx, &AppliedPromo{Code: result.Code, Discount: result.Discount}); err != nil {
		return promo.Result{}, err
	}
	return result, nil
}

func (s *Service) RemovePromo(ctx context.Context, userID string) error {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return err
	}
	return sess.SetPromo(ctx, nil)
}

// View summarizes the cart and detects bundle offers.
func (s *Service) View(ctx context.Context, userID string) (View, error) {
	sess, err := s.Session(ctx, userID)
	if err != nil {
		return View{}, err
	}
	st := sess.State()
	status, syncErr := sess.Status()

	lines := make([]bundle.Line, 0, len(st.Items))
	for _, item := range st.Items {
		lines = append(lines, bundle.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	v := View{
		Items:   st.Items,
		Summary: Summarize(ctx, st.Items, s.catalog, st.Promo, s.validator),
		Bundles: s.detector.Detect(lines),
		Status:  status,
	}
	if syncErr != nil {
		v.SyncError = syncErr.Error()
	}
	return v, nil
}
