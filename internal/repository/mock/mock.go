// Package mock provides an in-memory implementation of [repository.Repository]
// for use in unit tests.
//
// The store is safe for concurrent use. Sales are applied under a single lock,
// so the stock check and decrement happen together as they do in Postgres.
// Exported error fields force a method to fail.
//
// Example:
//
//	repo := mock.NewRepository(nil)
//	repo.Seed(models.Product{Name: "sugar", StockQuantity: 10, PricePerUnit: 50})
//	res, err := repo.CreateSale(ctx, models.NewSale{ProductID: id, Quantity: 2})
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-assistant/internal/models"
	"inventory-assistant/internal/repository"

	"github.com/shopspring/decimal"
)

// Repository is an in-memory [repository.Repository].
type Repository struct {
	mu       sync.Mutex
	now      func() time.Time
	nextID   int
	products []*models.Product
	sales    []models.Sale

	// FindError is returned by every read method when set.
	FindError error

	// CreateProductError is returned by [Repository.CreateProduct].
	CreateProductError error

	// SaveProductError is returned by [Repository.SaveProduct].
	SaveProductError error

	// CreateSaleError is returned by [Repository.CreateSale].
	CreateSaleError error

	// CallCountCreateSale records how many times CreateSale was called.
	CallCountCreateSale int

	// CallCountSaveProduct records how many times SaveProduct was called.
	CallCountSaveProduct int
}

var _ repository.Repository = (*Repository)(nil)

// NewRepository returns an empty store. A nil clock uses time.Now.
func NewRepository(now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}
	return &Repository{now: now}
}

func (r *Repository) id(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s-%d", prefix, r.nextID)
}

// Seed inserts p as-is, assigning an id and timestamps when missing, and
// returns the stored copy.
func (r *Repository) Seed(p models.Product) models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = r.id("product")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
		p.UpdatedAt = p.CreatedAt
	}
	stored := p
	r.products = append(r.products, &stored)
	return p
}

// SeedSale inserts a sale without touching stock.
func (r *Repository) SeedSale(s models.Sale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = r.id("sale")
	}
	if p := r.byID(s.ProductID); p != nil && s.Product == nil {
		s.Product = &models.ProductRef{ID: p.ID, Name: p.Name, Unit: p.Unit}
	}
	r.sales = append(r.sales, s)
}

// Sales returns a copy of all recorded sales in insertion order.
func (r *Repository) Sales() []models.Sale {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Sale(nil), r.sales...)
}

func (r *Repository) byName(name string) *models.Product {
	for _, p := range r.products {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

func (r *Repository) byID(id string) *models.Product {
	for _, p := range r.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Repository) FindProductByName(_ context.Context, name string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindError != nil {
		return nil, r.FindError
	}
	p := r.byName(name)
	if p == nil {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *Repository) FindProductByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindError != nil {
		return nil, r.FindError
	}
	p := r.byID(id)
	if p == nil {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *Repository) CreateProduct(_ context.Context, np models.NewProduct) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateProductError != nil {
		return nil, r.CreateProductError
	}
	if r.byName(np.Name) != nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrDuplicateProduct, np.Name)
	}
	now := r.now()
	p := &models.Product{
		ID:                r.id("product"),
		Name:              np.Name,
		Unit:              np.Unit,
		StockQuantity:     np.StockQuantity,
		PricePerUnit:      np.PricePerUnit,
		LowStockThreshold: np.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.products = append(r.products, p)
	cp := *p
	return &cp, nil
}

func (r *Repository) SaveProduct(_ context.Context, p *models.Product, fields ...repository.ProductField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CallCountSaveProduct++
	if r.SaveProductError != nil {
		return r.SaveProductError
	}
	if len(fields) == 0 {
		return repository.ErrNoFields
	}
	stored := r.byID(p.ID)
	if stored == nil {
		return repository.ErrProductNotFound
	}

	next := *stored
	for _, f := range fields {
		switch f {
		case repository.FieldPricePerUnit:
			next.PricePerUnit = p.PricePerUnit
		case repository.FieldStockQuantity:
			next.StockQuantity = p.StockQuantity
		case repository.FieldLowStockThreshold:
			next.LowStockThreshold = p.LowStockThreshold
		default:
			return fmt.Errorf("save product: unknown field %q", f)
		}
	}
	next.UpdatedAt = r.now()
	*stored = next
	*p = next
	return nil
}

func (r *Repository) CreateSale(_ context.Context, ns models.NewSale) (*models.SaleResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CallCountCreateSale++
	if r.CreateSaleError != nil {
		return nil, r.CreateSaleError
	}
	p := r.byID(ns.ProductID)
	if p == nil {
		return nil, repository.ErrProductNotFound
	}
	if p.StockQuantity < ns.Quantity {
		return nil, &repository.InsufficientStockError{Available: p.StockQuantity, Requested: ns.Quantity}
	}

	now := r.now()
	stock, _ := decimal.NewFromFloat(p.StockQuantity).Sub(decimal.NewFromFloat(ns.Quantity)).Float64()
	p.StockQuantity = stock
	p.UpdatedAt = now

	total, _ := decimal.NewFromFloat(p.PricePerUnit).Mul(decimal.NewFromFloat(ns.Quantity)).Round(2).Float64()
	sale := models.Sale{
		ID:           r.id("sale"),
		ProductID:    p.ID,
		Product:      &models.ProductRef{ID: p.ID, Name: p.Name, Unit: p.Unit},
		Quantity:     ns.Quantity,
		TotalPrice:   total,
		CustomerName: ns.CustomerName,
		CreatedAt:    now,
	}
	r.sales = append(r.sales, sale)
	return &models.SaleResult{Sale: sale, Product: *p}, nil
}

func (r *Repository) FindSalesInRange(_ context.Context, start, end time.Time) ([]models.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindError != nil {
		return nil, r.FindError
	}
	out := []models.Sale{}
	for _, s := range r.sales {
		if !s.CreatedAt.Before(start) && s.CreatedAt.Before(end) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Repository) FindLowStockProducts(_ context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindError != nil {
		return nil, r.FindError
	}
	out := []models.Product{}
	for _, p := range r.products {
		if p.IsLowStock() {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StockQuantity != out[j].StockQuantity {
			return out[i].StockQuantity < out[j].StockQuantity
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *Repository) ListProducts(_ context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindError != nil {
		return nil, r.FindError
	}
	out := make([]models.Product, 0, len(r.products))
	for i := len(r.products) - 1; i >= 0; i-- {
		out = append(out, *r.products[i])
	}
	return out, nil
}
