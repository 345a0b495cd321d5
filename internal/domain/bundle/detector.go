package bundle

import (
	"fmt"

	"github.com/example/ec-storefront/internal/domain/product"
)

const (
	ChairID      = "prod-001"
	DeskID       = "prod-002"
	MonitorArmID = "prod-003"
)

// Line is the part of a cart line the detector looks at.
type Line struct {
	ProductID string
	Quantity  int
}

// Offer is an informational bundle message. It never changes cart totals.
type Offer struct {
	ProductIDs []string `json:"product_ids"`
	Discount   int      `json:"discount"`
	Name       string   `json:"name"`
}

// Rule inspects the cart and returns any offers it qualifies for.
type Rule func(lines []Line, catalog product.Catalog) []Offer

type Detector struct {
	catalog product.Catalog
	rules   []Rule
}

// NewDetector builds a detector with the given rules. With no rules it uses
// DefaultRules.
func NewDetector(catalog product.Catalog, rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Detector{catalog: catalog, rules: rules}
}

// Detect runs every rule in order.
func (d *Detector) Detect(lines []Line) []Offer {
	offers := []Offer{}
	for _, rule := range d.rules {
		offers = append(offers, rule(lines, d.catalog)...)
	}
	return offers
}

func DefaultRules() []Rule {
	return []Rule{
		MultiBuyRule(3, 15),
		ComboRule([]string{ChairID, DeskID}, 10, "Office Setup Bundle - 10% Off"),
		ComboRule([]string{ChairID, DeskID, MonitorArmID}, 15, "Complete Workspace Bundle - 15% Off"),
	}
}

// MultiBuyRule fires per product whose summed quantity across all of its
// configurations reaches minQuantity. Unknown products are skipped.
func MultiBuyRule(minQuantity, discount int) Rule {
	return func(lines []Line, catalog product.Catalog) []Offer {
		totals := make(map[string]int)
		var order []string
		for _, l := range lines {
			if _, seen := totals[l.ProductID]; !seen {
				order = append(order, l.ProductID)
			}
			totals[l.ProductID] += l.Quantity
		}

		var offers []Offer
		for _, id := range order {
			if totals[id] < minQuantity {
				continue
			}
			p, ok := catalog.GetProductByID(id)
			if !ok {
				continue
			}
			offers = append(offers, Offer{
				ProductIDs: []string{id},
				Discount:   discount,
				Name:       fmt.Sprintf("Buy %d+ %s - Get %d%% Off", minQuantity, p.Name, discount),
			})
		}
		return offers
	}
}

// ComboRule fires once when every product in ids is present in the cart.
func ComboRule(ids []string, discount int, name string) Rule {
	return func(lines []Line, _ product.Catalog) []Offer {
		present := make(map[string]bool, len(lines))
		for _, l := range lines {
			present[l.ProductID] = true
		}
		for _, id := range ids {
			if !present[id] {
				return nil
			}
		}
		return []Offer{{ProductIDs: append([]string(nil), ids...), Discount: discount, Name: name}}
	}
}
