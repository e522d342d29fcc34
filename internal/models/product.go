// internal/models/product.go
package models

import "time"

type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Unit              string    `json:"unit"`
	StockQuantity     float64   `json:"stockQuantity"`
	PricePerUnit      float64   `json:"pricePerUnit"`
	LowStockThreshold float64   `json:"lowStockThreshold"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// IsLowStock reports whether the product is at or below its threshold.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

// NewProduct holds the fields needed to create a product.
type NewProduct struct {
	Name              string
	Unit              string
	StockQuantity     float64
	PricePerUnit      float64
	LowStockThreshold float64
}
