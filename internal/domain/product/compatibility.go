package product

import "slices"

// CheckVariantCompatibility reports whether candidate may be chosen alongside
// the current selection. Only the candidate's own IncompatibleWith list is
// consulted, so a one-sided declaration is compatible from the other side.
func CheckVariantCompatibility(candidate Variant, sel Selection) bool {
	if len(candidate.IncompatibleWith) == 0 {
		return true
	}
	for _, id := range sel.IDs() {
		if slices.Contains(candidate.IncompatibleWith, id) {
			return false
		}
	}
	return true
}

// AsymmetricPair is an exclusion declared by From but not mirrored by To.
type AsymmetricPair struct {
	ProductID string `json:"product_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// AsymmetricPairs lists one-sided incompatibility declarations. Targets that
// do not exist on the product are skipped.
func AsymmetricPairs(p *Product) []AsymmetricPair {
	var pairs []AsymmetricPair
	for _, axis := range [][]Variant{p.Variants.Colors, p.Variants.Materials, p.Variants.Sizes} {
		for _, v := range axis {
			for _, other := range v.IncompatibleWith {
				target, ok := p.FindVariant(other)
				if !ok {
					continue
				}
				if !slices.Contains(target.IncompatibleWith, v.ID) {
					pairs = append(pairs, AsymmetricPair{ProductID: p.ID, From: v.ID, To: target.ID})
				}
			}
		}
	}
	return pairs
}
