package interpreter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "inventory-assistant/internal/common/errors"
	"inventory-assistant/internal/common/logger"
	"inventory-assistant/internal/common/metrics"
	"inventory-assistant/internal/models"
	"inventory-assistant/internal/notify"
	"inventory-assistant/internal/repository"

	"github.com/shopspring/decimal"
)

// Executor performs validated commands against the repository.
type Executor struct {
	repo     repository.Repository
	notifier notify.Notifier
	logger   logger.Logger
	location *time.Location
	now      func() time.Time
}

func NewExecutor(repo repository.Repository, notifier notify.Notifier, cfg *Config, log logger.Logger) *Executor {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &Executor{
		repo:     repo,
		notifier: notifier,
		logger:   log,
		location: cfg.location(),
		now:      cfg.clock(),
	}
}

// Run executes cmd and builds the success envelope. Failures are returned as
// errors for the caller to render.
func (e *Executor) Run(ctx context.Context, cmd *Command) (*Envelope, error) {
	switch cmd.Intent {
	case IntentAddProduct:
		p, err := e.AddProduct(ctx, models.NewProduct{
			Name:              cmd.Name,
			Unit:              cmd.Unit,
			StockQuantity:     cmd.Stock,
			PricePerUnit:      cmd.Price,
			LowStockThreshold: cmd.Threshold,
		})
		if err != nil {
			return nil, err
		}
		return success(http.StatusCreated, TypeProductCreate, "Product created successfully via command", ProductData{Product: *p}), nil

	case IntentUpdateProductPrice, IntentChangePrice:
		p, err := e.updateProduct(ctx, cmd.Name, repository.FieldPricePerUnit, func(p *models.Product) { p.PricePerUnit = cmd.Price })
		if err != nil {
			return nil, err
		}
		return success(http.StatusOK, TypeProductUpdate, "Product price updated successfully via command", ProductData{Product: *p}), nil

	case IntentUpdateProductStock:
		p, err := e.updateProduct(ctx, cmd.Name, repository.FieldStockQuantity, func(p *models.Product) { p.StockQuantity = cmd.Stock })
		if err != nil {
			return nil, err
		}
		return success(http.StatusOK, TypeProductUpdate, "Product stock updated successfully via command", ProductData{Product: *p}), nil

	case IntentUpdateProductThreshold:
		p, err := e.updateProduct(ctx, cmd.Name, repository.FieldLowStockThreshold, func(p *models.Product) { p.LowStockThreshold = cmd.Threshold })
		if err != nil {
			return nil, err
		}
		return success(http.StatusOK, TypeProductUpdate, "Product low-stock threshold updated successfully via command", ProductData{Product: *p}), nil

	case IntentSellByName, IntentSellColloquial:
		return e.sellByName(ctx, cmd)

	case IntentTodaySummary:
		summary, err := e.TodaySummary(ctx)
		if err != nil {
			return nil, err
		}
		return success(http.StatusOK, TypeSummary, "Today's sales summary", summary), nil

	case IntentLowStock:
		products, err := e.LowStockProducts(ctx)
		if err != nil {
			return nil, err
		}
		return success(http.StatusOK, TypeLowStock, "Low stock products", LowStockData{Products: products}), nil
	}

	return nil, apperrors.NewUnrecognizedCommandError()
}

// AddProduct creates a product. Names are unique ignoring case.
func (e *Executor) AddProduct(ctx context.Context, np models.NewProduct) (*models.Product, error) {
	p, err := e.repo.CreateProduct(ctx, np)
	if err != nil {
		return nil, mapRepositoryError(err, np.Name)
	}
	e.logger.Info("product created", map[string]interface{}{
		"productId": p.ID,
		"name":      p.Name,
	})
	return p, nil
}

// updateProduct sets one field. Only that column is written, so a sale
// committed after the lookup keeps its stock decrement.
func (e *Executor) updateProduct(ctx context.Context, name string, field repository.ProductField, apply func(*models.Product)) (*models.Product, error) {
	p, err := e.repo.FindProductByName(ctx, name)
	if err != nil {
		return nil, mapRepositoryError(err, name)
	}
	apply(p)
	if err := e.repo.SaveProduct(ctx, p, field); err != nil {
		return nil, mapRepositoryError(err, name)
	}
	return p, nil
}

func (e *Executor) sellByName(ctx context.Context, cmd *Command) (*Envelope, error) {
	p, err := e.repo.FindProductByName(ctx, cmd.Name)
	if err != nil {
		return nil, mapRepositoryError(err, cmd.Name)
	}

	res, err := e.Sell(ctx, models.NewSale{ProductID: p.ID, Quantity: cmd.Quantity, CustomerName: cmd.Customer})
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeProductNotFound {
			return nil, apperrors.NewProductNotFoundError(cmd.Name)
		}
		return nil, err
	}

	return success(http.StatusCreated, TypeSale, "Sale recorded successfully via command", SaleData{
		Sale: res.Sale,
		Product: SoldProduct{
			ID:             res.Product.ID,
			Name:           res.Product.Name,
			RemainingStock: res.Product.StockQuantity,
			Unit:           res.Product.Unit,
		},
	}), nil
}

// Sell records a sale of a product by id. Stock is checked and decremented
// by the repository in one step.
func (e *Executor) Sell(ctx context.Context, ns models.NewSale) (*models.SaleResult, error) {
	res, err := e.repo.CreateSale(ctx, ns)
	if err != nil {
		return nil, mapRepositoryError(err, ns.ProductID)
	}
	metrics.SalesRecorded.Inc()

	e.logger.Info("sale recorded", map[string]interface{}{
		"saleId":         res.Sale.ID,
		"productId":      res.Product.ID,
		"quantity":       res.Sale.Quantity,
		"totalPrice":     res.Sale.TotalPrice,
		"remainingStock": res.Product.StockQuantity,
	})

	if res.Product.IsLowStock() {
		if err := e.notifier.LowStock(ctx, res.Product); err != nil {
			e.logger.Warn("low stock alert failed", map[string]interface{}{
				"productId": res.Product.ID,
				"error":     err,
			})
		}
	}
	return res, nil
}

// SellProduct records a sale for a caller that knows the product id. Unknown
// ids are reported as not found before any write is attempted.
func (e *Executor) SellProduct(ctx context.Context, ns models.NewSale) (*models.SaleResult, error) {
	if _, err := e.repo.FindProductByID(ctx, ns.ProductID); err != nil {
		return nil, mapRepositoryError(err, ns.ProductID)
	}
	return e.Sell(ctx, ns)
}

// TodayRange returns [local midnight, next local midnight) for the current
// day in the configured zone.
func (e *Executor) TodayRange() (time.Time, time.Time) {
	now := e.now().In(e.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.location)
	return start, start.AddDate(0, 0, 1)
}

// TodaySummary counts and totals the sales of the current day.
func (e *Executor) TodaySummary(ctx context.Context) (*SummaryData, error) {
	start, end := e.TodayRange()
	sales, err := e.repo.FindSalesInRange(ctx, start, end)
	if err != nil {
		return nil, apperrors.NewServerError(fmt.Errorf("find sales in range: %w", err))
	}

	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(decimal.NewFromFloat(s.TotalPrice))
	}
	return &SummaryData{
		Count:       len(sales),
		TotalEarned: total.Round(2).InexactFloat64(),
		Sales:       sales,
	}, nil
}

func (e *Executor) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	products, err := e.repo.FindLowStockProducts(ctx)
	if err != nil {
		return nil, apperrors.NewServerError(fmt.Errorf("find low stock products: %w", err))
	}
	return products, nil
}

func (e *Executor) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := e.repo.ListProducts(ctx)
	if err != nil {
		return nil, apperrors.NewServerError(fmt.Errorf("list products: %w", err))
	}
	return products, nil
}

// mapRepositoryError converts repository sentinels into user-facing errors.
// key names the product in not-found messages.
func mapRepositoryError(err error, key string) error {
	var stockErr *repository.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return apperrors.NewInsufficientStockError(stockErr.Available, stockErr.Requested)
	case errors.Is(err, repository.ErrProductNotFound):
		return apperrors.NewProductNotFoundError(key)
	case errors.Is(err, repository.ErrDuplicateProduct):
		return apperrors.NewDuplicateProductError(key)
	case errors.Is(err, repository.ErrInsufficientStock):
		return apperrors.NewInsufficientStockError(0, 0)
	}
	var se *apperrors.StandardError
	if errors.As(err, &se) {
		return se
	}
	return apperrors.NewServerError(err)
}
