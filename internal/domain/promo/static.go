package promo

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed/promo_codes.yaml
var seedPromoCodes []byte

// StaticRegistry is an in-memory Registry. Each instance owns its codes, so
// tests build isolated fixtures instead of sharing a global list.
type StaticRegistry struct {
	mu    sync.RWMutex
	codes map[string]PromoCode
	order []string
}

func NewStaticRegistry(codes []PromoCode) (*StaticRegistry, error) {
	r := &StaticRegistry{}
	if err := r.Replace(codes); err != nil {
		return nil, err
	}
	return r, nil
}

// Replace installs a new code set atomically.
func (r *StaticRegistry) Replace(codes []PromoCode) error {
	byCode := make(map[string]PromoCode, len(codes))
	order := make([]string, 0, len(codes))
	for _, c := range codes {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("promo %q: %w", c.Code, err)
		}
		key := normalizeCode(c.Code)
		if _, exists := byCode[key]; !exists {
			order = append(order, key)
		}
		byCode[key] = c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = byCode
	r.order = order
	return nil
}

func (r *StaticRegistry) FindByCode(_ context.Context, code string) (*PromoCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codes[normalizeCode(code)]
	if !ok {
		return nil, ErrPromoNotFound
	}
	return &c, nil
}

// List returns the codes in load order.
func (r *StaticRegistry) List() []PromoCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PromoCode, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.codes[key])
	}
	return out
}

type promoFile struct {
	PromoCodes []promoEntry `yaml:"promo_codes"`
}

type promoEntry struct {
	Code          string  `yaml:"code"`
	DiscountType  string  `yaml:"discount_type"`
	DiscountValue float64 `yaml:"discount_value"`
	MinPurchase   int     `yaml:"min_purchase"`
	ValidUntil    string  `yaml:"valid_until"`
}

// ParseYAML decodes a promo code document. Dates are read as UTC calendar days.
func ParseYAML(data []byte) ([]PromoCode, error) {
	var f promoFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse promo codes: %w", err)
	}
	codes := make([]PromoCode, 0, len(f.PromoCodes))
	for _, e := range f.PromoCodes {
		validUntil, err := time.Parse(DateLayout, e.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("promo %q: invalid valid_until: %w", e.Code, err)
		}
		codes = append(codes, PromoCode{
			Code:         e.Code,
			DiscountType: DiscountType(e.DiscountType),
			Value:        decimal.NewFromFloat(e.DiscountValue),
			MinPurchase:  e.MinPurchase,
			ValidUntil:   validUntil,
		})
	}
	return codes, nil
}

// LoadFile reads promo codes from path. An empty path yields the embedded seed.
func LoadFile(path string) ([]PromoCode, error) {
	if path == "" {
		return SeedPromoCodes()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read promo codes %s: %w", path, err)
	}
	return ParseYAML(data)
}

// SeedPromoCodes returns the built-in storefront promo codes.
func SeedPromoCodes() ([]PromoCode, error) {
	return ParseYAML(seedPromoCodes)
}
