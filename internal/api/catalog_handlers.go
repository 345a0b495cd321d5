package api

import (
	"net/http"
)

// CategoryHandlers serves catalog browsing by category and keyword
type CategoryHandlers struct {
	handlers *Handlers
}

func NewCategoryHandlers(handlers *Handlers) *CategoryHandlers {
	return &CategoryHandlers{handlers: handlers}
}

// ListCategories returns all categories with product counts
func (h *CategoryHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.handlers.queryHandler.ListCategories())
}

// GetProductsByCategory returns the products in one category
func (h *CategoryHandlers) GetProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, ok := h.handlers.queryHandler.ProductsByCategory(r.PathValue("name"))
	if !ok {
		respondJSONError(w, "Category not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// SearchProducts matches ?q= against product name, brand and description
func (h *CategoryHandlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.handlers.queryHandler.SearchProducts(r.URL.Query().Get("q")))
}
