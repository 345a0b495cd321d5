package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
)

type RouterConfig struct {
	Handlers         *Handlers
	SessionHandlers  *SessionHandlers
	CategoryHandlers *CategoryHandlers
	JWTService       *auth.JWTService
	Logger           *zap.Logger
	WebDir           string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := cfg.Handlers
	mux := http.NewServeMux()

	shopper := middleware.ShopperMiddleware(cfg.JWTService)
	optionalShopper := middleware.OptionalShopperMiddleware(cfg.JWTService)
	withShopper := func(fn http.HandlerFunc) http.Handler {
		return shopper(fn)
	}

	// Static files (web UI)
	if cfg.WebDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.WebDir)))
	}

	// Session
	mux.HandleFunc("POST /session", cfg.SessionHandlers.CreateSession)

	// Products
	mux.HandleFunc("GET /products", h.GetProducts)
	mux.HandleFunc("GET /products/search", cfg.CategoryHandlers.SearchProducts)
	mux.Handle("GET /products/{id}", optionalShopper(http.HandlerFunc(h.GetProduct)))
	mux.HandleFunc("POST /products/{id}/compatibility", h.CheckCompatibility)
	mux.HandleFunc("POST /products/{id}/quote", h.Quote)
	mux.HandleFunc("GET /stock/{n}", h.GetStock)

	// Categories
	mux.HandleFunc("GET /categories", cfg.CategoryHandlers.ListCategories)
	mux.HandleFunc("GET /categories/{name}/products", cfg.CategoryHandlers.GetProductsByCategory)

	// Promo
	mux.HandleFunc("POST /promo/validate", h.ValidatePromo)

	// Cart
	mux.Handle("GET /cart", withShopper(h.GetCart))
	mux.Handle("DELETE /cart", withShopper(h.ClearCart))
	mux.Handle("POST /cart/items", withShopper(h.AddToCart))
	mux.Handle("PATCH /cart/items/{key}", withShopper(h.UpdateCartItem))
	mux.Handle("DELETE /cart/items/{key}", withShopper(h.RemoveFromCart))
	mux.Handle("POST /cart/items/{key}/save", withShopper(h.SaveForLater))
	mux.Handle("GET /cart/saved", withShopper(h.GetSaved))
	mux.Handle("POST /cart/saved/{key}/move", withShopper(h.MoveToCart))
	mux.Handle("DELETE /cart/saved/{key}", withShopper(h.RemoveSaved))
	mux.Handle("POST /cart/promo", withShopper(h.ApplyPromo))
	mux.Handle("DELETE /cart/promo", withShopper(h.RemovePromo))
	mux.Handle("GET /recently-viewed", withShopper(h.RecentlyViewed))

	// Checkout
	mux.Handle("POST /checkout", withShopper(h.Checkout))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return middleware.Recover(logger)(middleware.AccessLog(logger)(mux))
}
