package inventory

import "fmt"

type StockLevel string

const (
	StockOut    StockLevel = "out"
	StockLow    StockLevel = "low"
	StockMedium StockLevel = "medium"
	StockHigh   StockLevel = "high"
)

const (
	lowStockMax    = 5
	mediumStockMax = 20
)

// GetStockLevel classifies a stock count. Negative counts are treated as out.
func GetStockLevel(stock int) StockLevel {
	switch {
	case stock <= 0:
		return StockOut
	case stock <= lowStockMax:
		return StockLow
	case stock <= mediumStockMax:
		return StockMedium
	default:
		return StockHigh
	}
}

// GetStockMessage returns the shopper-facing availability text.
func GetStockMessage(stock int) string {
	switch GetStockLevel(stock) {
	case StockOut:
		return "Out of stock"
	case StockLow:
		return fmt.Sprintf("Only %d left in stock!", stock)
	case StockMedium:
		return fmt.Sprintf("%d available", stock)
	default:
		return "In stock"
	}
}

// Availability bundles level and message for API responses.
type Availability struct {
	Stock   int        `json:"stock"`
	Level   StockLevel `json:"level"`
	Message string     `json:"message"`
}

func Describe(stock int) Availability {
	return Availability{
		Stock:   stock,
		Level:   GetStockLevel(stock),
		Message: GetStockMessage(stock),
	}
}
