// Package repository persists products and sales.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-assistant/internal/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateProduct  = errors.New("duplicate product name")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNoFields          = errors.New("no product fields to save")
)

// ProductField names a product column that SaveProduct can write.
type ProductField string

const (
	FieldPricePerUnit      ProductField = "price_per_unit"
	FieldStockQuantity     ProductField = "stock_quantity"
	FieldLowStockThreshold ProductField = "low_stock_threshold"
)

// InsufficientStockError reports the stock seen when a sale was refused.
// It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	Available float64
	Requested float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %g, requested %g", e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Repository is the store contract used by the command interpreter and the
// REST handlers. Name lookups are case-insensitive exact matches.
type Repository interface {
	FindProductByName(ctx context.Context, name string) (*models.Product, error)
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.NewProduct) (*models.Product, error)
	// SaveProduct writes only the named fields of p, then refreshes p from
	// the stored row. Columns not named keep their current stored value.
	SaveProduct(ctx context.Context, p *models.Product, fields ...ProductField) error
	// CreateSale decrements stock and inserts the sale as one unit. The stock
	// is never reduced below zero.
	CreateSale(ctx context.Context, s models.NewSale) (*models.SaleResult, error)
	// FindSalesInRange returns sales with start <= createdAt < end, joined
	// with their product, newest first.
	FindSalesInRange(ctx context.Context, start, end time.Time) ([]models.Sale, error)
	FindLowStockProducts(ctx context.Context) ([]models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}
