package product

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var seedCatalog []byte

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// ParseYAML decodes a catalog document.
func ParseYAML(data []byte) ([]Product, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return f.Products, nil
}

// LoadFile reads a catalog from path. An empty path yields the embedded seed.
func LoadFile(path string) ([]Product, error) {
	if path == "" {
		return SeedProducts()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseYAML(data)
}

// SeedProducts returns the built-in storefront catalog.
func SeedProducts() ([]Product, error) {
	return ParseYAML(seedCatalog)
}
