package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *StaticCatalog {
	t.Helper()
	products, err := SeedProducts()
	require.NoError(t, err)
	c, err := NewStaticCatalog(products)
	require.NoError(t, err)
	return c
}

// ============================================
// Catalog Lookup Tests
// ============================================

func TestStaticCatalog_GetProductByID(t *testing.T) {
	c := newTestCatalog(t)

	p, ok := c.GetProductByID("prod-001")
	require.True(t, ok)
	assert.Equal(t, "Premium Office Chair", p.Name)
	assert.Equal(t, 15999, p.BasePrice)
	assert.Len(t, p.Variants.Colors, 4)
	assert.Len(t, p.Variants.Materials, 4)
	assert.Len(t, p.Variants.Sizes, 4)
}

func TestStaticCatalog_GetProductByID_NotFound(t *testing.T) {
	c := newTestCatalog(t)

	p, ok := c.GetProductByID("prod-999")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestStaticCatalog_ListProducts_KeepsLoadOrder(t *testing.T) {
	c := newTestCatalog(t)

	products := c.ListProducts()
	require.Len(t, products, 5)
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"prod-001", "prod-002", "prod-003", "prod-004", "prod-005"}, ids)
}

func TestStaticCatalog_CategoryCounts(t *testing.T) {
	c := newTestCatalog(t)
	assert.Equal(t, map[string]int{"Furniture": 2, "Accessories": 1, "Electronics": 2}, c.CategoryCounts())
}

func TestStaticCatalog_Replace(t *testing.T) {
	c := newTestCatalog(t)

	err := c.Replace([]Product{{ID: "prod-100", Name: "Lamp", BasePrice: 999}})
	require.NoError(t, err)

	_, ok := c.GetProductByID("prod-001")
	assert.False(t, ok)
	p, ok := c.GetProductByID("prod-100")
	require.True(t, ok)
	assert.Equal(t, "Lamp", p.Name)
}

func TestStaticCatalog_Replace_RejectsBadData(t *testing.T) {
	c := newTestCatalog(t)

	err := c.Replace([]Product{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateID)

	err = c.Replace([]Product{{Name: "no id"}})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	// previous data survives a rejected replace
	_, ok := c.GetProductByID("prod-001")
	assert.True(t, ok)
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML([]byte("products: [::"))
	assert.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/catalog.yaml")
	assert.Error(t, err)
}

// ============================================
// Variant Lookup Tests
// ============================================

func TestProduct_FindVariant(t *testing.T) {
	c := newTestCatalog(t)
	p, _ := c.GetProductByID("prod-001")

	v, ok := p.FindVariant("material-wood")
	require.True(t, ok)
	assert.Equal(t, 2000, v.PriceModifier)

	_, ok = p.FindVariant("material-unobtainium")
	assert.False(t, ok)
}

func TestProduct_MinStock(t *testing.T) {
	c := newTestCatalog(t)
	p, _ := c.GetProductByID("prod-001")

	tests := []struct {
		name     string
		sel      Selection
		expected int
	}{
		{"all plentiful", Selection{Color: "color-black", Material: "material-mesh", Size: "size-m"}, 45},
		{"red color is the bottleneck", Selection{Color: "color-red", Material: "material-mesh", Size: "size-m"}, 3},
		{"unknown size counts as zero", Selection{Color: "color-black", Material: "material-mesh", Size: "size-xxl"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.MinStock(tt.sel))
		})
	}
}

func TestSelection_IDsAndComplete(t *testing.T) {
	sel := Selection{Color: "color-black", Size: "size-m"}
	assert.Equal(t, []string{"color-black", "size-m"}, sel.IDs())
	assert.False(t, sel.Complete())

	sel.Material = "material-mesh"
	assert.True(t, sel.Complete())
}

// ============================================
// Compatibility Tests
// ============================================

func TestCheckVariantCompatibility(t *testing.T) {
	blue := Variant{ID: "color-blue", IncompatibleWith: []string{"material-wood"}}
	black := Variant{ID: "color-black"}

	tests := []struct {
		name     string
		variant  Variant
		sel      Selection
		expected bool
	}{
		{"no exclusions is always compatible", black, Selection{Material: "material-wood"}, true},
		{"excluded material selected", blue, Selection{Material: "material-wood", Size: "size-m"}, false},
		{"other material selected", blue, Selection{Material: "material-mesh", Size: "size-m"}, true},
		{"empty selection", blue, Selection{}, true},
		{"exclusion matches any axis", Variant{ID: "x", IncompatibleWith: []string{"size-m"}}, Selection{Size: "size-m"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CheckVariantCompatibility(tt.variant, tt.sel))
		})
	}
}

func TestCheckVariantCompatibility_AsymmetricDeclaration(t *testing.T) {
	a := Variant{ID: "color-a", IncompatibleWith: []string{"material-b"}}
	b := Variant{ID: "material-b"}

	assert.False(t, CheckVariantCompatibility(a, Selection{Material: "material-b"}))
	assert.True(t, CheckVariantCompatibility(b, Selection{Color: "color-a"}))
}

func TestAsymmetricPairs(t *testing.T) {
	c := newTestCatalog(t)

	// chair: blue<->wood is mirrored, fabric->red is not
	chair, _ := c.GetProductByID("prod-001")
	assert.Equal(t, []AsymmetricPair{
		{ProductID: "prod-001", From: "material-fabric", To: "color-red"},
	}, AsymmetricPairs(chair))

	headset, _ := c.GetProductByID("prod-004")
	assert.Empty(t, AsymmetricPairs(headset))
}
