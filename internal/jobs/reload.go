package jobs

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/promo"
)

// CatalogReloader re-reads a catalog file into a StaticCatalog. A file that
// fails to parse or validate leaves the current catalog in place.
type CatalogReloader struct {
	path    string
	catalog *product.StaticCatalog
	logger  *zap.Logger
}

func NewCatalogReloader(path string, catalog *product.StaticCatalog, logger *zap.Logger) *CatalogReloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogReloader{path: path, catalog: catalog, logger: logger}
}

func (r *CatalogReloader) Reload() error {
	products, err := product.LoadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to load catalog %s: %w", r.path, err)
	}
	if err := r.catalog.Replace(products); err != nil {
		return fmt.Errorf("catalog %s rejected: %w", r.path, err)
	}
	LintCatalog(r.logger, products)
	r.logger.Info("catalog reloaded", zap.String("path", r.path), zap.Int("products", len(products)))
	return nil
}

// PromoReloader re-reads a promo code file into a StaticRegistry.
type PromoReloader struct {
	path     string
	registry *promo.StaticRegistry
	logger   *zap.Logger
}

func NewPromoReloader(path string, registry *promo.StaticRegistry, logger *zap.Logger) *PromoReloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromoReloader{path: path, registry: registry, logger: logger}
}

func (r *PromoReloader) Reload() error {
	codes, err := promo.LoadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to load promo codes %s: %w", r.path, err)
	}
	before := r.registry.List()
	if err := r.registry.Replace(codes); err != nil {
		return fmt.Errorf("promo codes %s rejected: %w", r.path, err)
	}
	added, removed := diffCodes(before, r.registry.List())
	r.logger.Info("promo codes reloaded",
		zap.String("path", r.path),
		zap.Int("codes", len(codes)),
		zap.Strings("added", added),
		zap.Strings("removed", removed),
	)
	return nil
}

// diffCodes names the codes only in after (added) and only in before
// (removed), sorted.
func diffCodes(before, after []promo.PromoCode) (added, removed []string) {
	old := make(map[string]bool, len(before))
	for _, c := range before {
		old[c.Code] = true
	}
	for _, c := range after {
		if !old[c.Code] {
			added = append(added, c.Code)
		}
		delete(old, c.Code)
	}
	for code := range old {
		removed = append(removed, code)
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// LintCatalog warns about incompatibilities declared on one side only and
// returns how many it found. The data is left as declared.
func LintCatalog(logger *zap.Logger, products []product.Product) int {
	n := 0
	for i := range products {
		for _, pair := range product.AsymmetricPairs(&products[i]) {
			logger.Warn("one-sided variant incompatibility",
				zap.String("product_id", pair.ProductID),
				zap.String("from", pair.From),
				zap.String("to", pair.To),
			)
			n++
		}
	}
	return n
}
