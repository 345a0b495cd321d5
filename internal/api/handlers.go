package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	logger       *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		logger:       logger,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListProducts())
}

// GetProduct also records the product as recently viewed when the shopper
// is known. A failure to record is logged, never returned.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	detail, ok := h.queryHandler.GetProduct(id)
	if !ok {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}

	if userID := middleware.GetUserID(r.Context()); userID != "" {
		cmd := command.RecordView{UserID: userID, ProductID: id}
		if err := h.cmdHandler.RecordView(r.Context(), cmd); err != nil {
			h.logger.Warn("failed to record product view",
				zap.String("user_id", userID),
				zap.String("product_id", id),
				zap.Error(err),
			)
		}
	}

	respondJSON(w, http.StatusOK, detail)
}

type compatibilityRequest struct {
	VariantID string            `json:"variant_id"`
	Selection product.Selection `json:"selection"`
}

func (h *Handlers) CheckCompatibility(w http.ResponseWriter, r *http.Request) {
	var req compatibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.queryHandler.CheckCompatibility(r.PathValue("id"), req.VariantID, req.Selection)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type quoteRequest struct {
	Selection product.Selection `json:"selection"`
	Quantity  int               `json:"quantity"`
}

func (h *Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.queryHandler.Quote(r.PathValue("id"), req.Selection, req.Quantity)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) GetStock(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		respondJSONError(w, "stock must be an integer", http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.Stock(n))
}

// Promo Handlers

type validatePromoRequest struct {
	Code      string `json:"code"`
	CartTotal int    `json:"cart_total"`
}

func (h *Handlers) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req validatePromoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.ValidatePromo(r.Context(), req.Code, req.CartTotal))
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK)
}

type addToCartRequest struct {
	ProductID string            `json:"product_id"`
	Selection product.Selection `json:"selection"`
	Quantity  int               `json:"quantity"`
}

type addToCartResponse struct {
	Key  string    `json:"key"`
	Cart cart.View `json:"cart"`
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req addToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cmd := command.AddToCart{
		UserID:    userID,
		ProductID: req.ProductID,
		Selection: req.Selection,
		Quantity:  req.Quantity,
	}
	key, err := h.cmdHandler.AddToCart(r.Context(), cmd)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	view, err := h.queryHandler.GetCart(r.Context(), userID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, addToCartResponse{Key: key, Cart: view})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cmd := command.UpdateCartItem{
		UserID:   middleware.GetUserID(r.Context()),
		Key:      r.PathValue("key"),
		Quantity: req.Quantity,
	}
	if err := h.cmdHandler.UpdateCartItem(r.Context(), cmd); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveFromCart{
		UserID: middleware.GetUserID(r.Context()),
		Key:    r.PathValue("key"),
	}
	if err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.ClearCart{UserID: middleware.GetUserID(r.Context())}
	if err := h.cmdHandler.ClearCart(r.Context(), cmd); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

// Saved For Later Handlers

func (h *Handlers) SaveForLater(w http.ResponseWriter, r *http.Request) {
	cmd := command.SaveForLater{
		UserID: middleware.GetUserID(r.Context()),
		Key:    r.PathValue("key"),
	}
	if err := h.cmdHandler.SaveForLater(r.Context(), cmd); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) GetSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.queryHandler.GetSaved(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if saved == nil {
		saved = []cart.LineItem{}
	}
	respondJSON(w, http.StatusOK, saved)
}

func (h *Handlers) MoveToCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.MoveToCart{
		UserID: middleware.GetUserID(r.Context()),
		Key:    r.PathValue("key"),
	}
	if err := h.cmdHandler.MoveToCart(r.Context(), cmd); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) RemoveSaved(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveSaved{
		UserID: middleware.GetUserID(r.Context()),
		Key:    r.PathValue("key"),
	}
	if err := h.cmdHandler.RemoveSaved(r.Context(), cmd); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cart Promo Handlers

type applyPromoRequest struct {
	Code string `json:"code"`
}

// ApplyPromo answers 200 for an applied code and 422 for a rejected one;
// both carry the validation result.
func (h *Handlers) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req applyPromoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cmd := command.ApplyPromo{UserID: middleware.GetUserID(r.Context()), Code: req.Code}
	result, err := h.cmdHandler.ApplyPromo(r.Context(), cmd)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

func (h *Handlers) RemovePromo(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemovePromo{UserID: middleware.GetUserID(r.Context())}
	if err := h.cmdHandler.RemovePromo(r.Context(), cmd); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handlers) RecentlyViewed(w http.ResponseWriter, r *http.Request) {
	items, err := h.queryHandler.RecentlyViewed(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Checkout Handlers

type validationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var form order.Form
	if !decodeJSON(w, r, &form) {
		return
	}
	cmd := command.PlaceOrder{UserID: middleware.GetUserID(r.Context()), Form: form}
	placed, err := h.cmdHandler.PlaceOrder(r.Context(), cmd)
	if err != nil {
		var verr order.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, validationErrorResponse{
				Error:  "invalid checkout form",
				Fields: verr,
			})
			return
		}
		h.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, placed)
}

// Helper functions

func (h *Handlers) respondCart(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.queryHandler.GetCart(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	respondJSON(w, status, view)
}

// respondErr maps domain errors to status codes. Anything unrecognised is a
// storage or broker failure and is logged.
func (h *Handlers) respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		respondJSONError(w, "internal error", status)
		return
	}
	respondJSONError(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrIncompleteSelection),
		errors.Is(err, cart.ErrUnknownVariant),
		errors.Is(err, cart.ErrIncompatibleVariants),
		errors.Is(err, order.ErrEmptyCart):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
