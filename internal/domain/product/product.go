package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrDuplicateID     = errors.New("duplicate product id")
)

// Variant is one selectable option on a product axis (color, material or size).
type Variant struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	PriceModifier    int      `json:"price_modifier" yaml:"price_modifier"`
	Stock            int      `json:"stock" yaml:"stock"`
	Hex              string   `json:"hex,omitempty" yaml:"hex,omitempty"`
	IncompatibleWith []string `json:"incompatible_with,omitempty" yaml:"incompatible_with,omitempty"`
	Image            string   `json:"image,omitempty" yaml:"image,omitempty"`
}

type Variants struct {
	Colors    []Variant `json:"colors" yaml:"colors"`
	Materials []Variant `json:"materials" yaml:"materials"`
	Sizes     []Variant `json:"sizes" yaml:"sizes"`
}

// Selection holds one chosen variant id per axis.
type Selection struct {
	Color    string `json:"color"`
	Material string `json:"material"`
	Size     string `json:"size"`
}

// IDs returns the selected ids, skipping empty axes.
func (s Selection) IDs() []string {
	ids := make([]string, 0, 3)
	for _, id := range []string{s.Color, s.Material, s.Size} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Complete reports whether every axis has a selection.
func (s Selection) Complete() bool {
	return s.Color != "" && s.Material != "" && s.Size != ""
}

type Product struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	BasePrice      int      `json:"base_price" yaml:"base_price"`
	Rating         float64  `json:"rating" yaml:"rating"`
	ReviewCount    int      `json:"review_count" yaml:"review_count"`
	Category       string   `json:"category,omitempty" yaml:"category,omitempty"`
	Brand          string   `json:"brand,omitempty" yaml:"brand,omitempty"`
	Images         []string `json:"images,omitempty" yaml:"images,omitempty"`
	ModelURL       string   `json:"model_url,omitempty" yaml:"model_url,omitempty"`
	BundleEligible []string `json:"bundle_eligible,omitempty" yaml:"bundle_eligible,omitempty"`
	Variants       Variants `json:"variants" yaml:"variants"`
}

// FindColor looks up a color variant by id.
func (p *Product) FindColor(id string) (Variant, bool) {
	return findVariant(p.Variants.Colors, id)
}

// FindMaterial looks up a material variant by id.
func (p *Product) FindMaterial(id string) (Variant, bool) {
	return findVariant(p.Variants.Materials, id)
}

// FindSize looks up a size variant by id.
func (p *Product) FindSize(id string) (Variant, bool) {
	return findVariant(p.Variants.Sizes, id)
}

// FindVariant searches all three axes.
func (p *Product) FindVariant(id string) (Variant, bool) {
	if v, ok := p.FindColor(id); ok {
		return v, true
	}
	if v, ok := p.FindMaterial(id); ok {
		return v, true
	}
	return p.FindSize(id)
}

// MinStock returns the smallest stock count across the selected variants.
// A selected id that does not resolve counts as zero stock.
func (p *Product) MinStock(sel Selection) int {
	color, _ := p.FindColor(sel.Color)
	material, _ := p.FindMaterial(sel.Material)
	size, _ := p.FindSize(sel.Size)
	return min(color.Stock, material.Stock, size.Stock)
}

func findVariant(variants []Variant, id string) (Variant, bool) {
	for _, v := range variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
