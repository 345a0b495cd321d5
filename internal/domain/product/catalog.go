package product

import "sync"

// Catalog is the read-only product lookup used by pricing and the cart.
type Catalog interface {
	GetProductByID(id string) (*Product, bool)
	ListProducts() []*Product
	// CategoryCounts maps each category name to its number of products.
	CategoryCounts() map[string]int
}

// StaticCatalog is an in-memory Catalog. Replace swaps the whole product set
// so readers never observe a partially loaded catalog.
type StaticCatalog struct {
	mu       sync.RWMutex
	products map[string]*Product
	order    []string
}

func NewStaticCatalog(products []Product) (*StaticCatalog, error) {
	c := &StaticCatalog{}
	if err := c.Replace(products); err != nil {
		return nil, err
	}
	return c, nil
}

// Replace installs a new product set.
func (c *StaticCatalog) Replace(products []Product) error {
	byID := make(map[string]*Product, len(products))
	order := make([]string, 0, len(products))
	for i := range products {
		p := products[i]
		if p.ID == "" {
			return ErrInvalidProduct
		}
		if _, exists := byID[p.ID]; exists {
			return ErrDuplicateID
		}
		byID[p.ID] = &p
		order = append(order, p.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = byID
	c.order = order
	return nil
}

// GetProductByID returns the product or false when the id is unknown.
func (c *StaticCatalog) GetProductByID(id string) (*Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

// ListProducts returns products in load order.
func (c *StaticCatalog) ListProducts() []*Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	products := make([]*Product, 0, len(c.order))
	for _, id := range c.order {
		products = append(products, c.products[id])
	}
	return products
}

// CategoryCounts skips products without a category.
func (c *StaticCatalog) CategoryCounts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	counts := make(map[string]int)
	for _, p := range c.products {
		if p.Category != "" {
			counts[p.Category]++
		}
	}
	return counts
}
