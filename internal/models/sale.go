// internal/models/sale.go
package models

import "time"

type Sale struct {
	ID           string      `json:"id"`
	ProductID    string      `json:"productId"`
	Product      *ProductRef `json:"product,omitempty"` // set on reads joined with products
	Quantity     float64     `json:"quantity"`
	TotalPrice   float64     `json:"totalPrice"`
	CustomerName string      `json:"customerName,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// NewSale holds the fields needed to record a sale. The total is always
// computed by the store from the product price at the time of sale.
type NewSale struct {
	ProductID    string
	Quantity     float64
	CustomerName string
}

// SaleResult is a recorded sale together with the product state after it.
type SaleResult struct {
	Sale    Sale
	Product Product
}
