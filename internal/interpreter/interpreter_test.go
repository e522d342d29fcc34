package interpreter

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"inventory-assistant/internal/common/logger"
	"inventory-assistant/internal/models"
	"inventory-assistant/internal/repository/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

var karachi = time.FixedZone("PKT", 5*60*60)

type recordingNotifier struct {
	mu       sync.Mutex
	products []models.Product
	err      error
}

func (n *recordingNotifier) LowStock(_ context.Context, p models.Product) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.products = append(n.products, p)
	return n.err
}

type memoryHistory struct {
	records []models.CommandRecord
	err     error
}

func (h *memoryHistory) Record(_ context.Context, rec models.CommandRecord) error {
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, rec)
	return nil
}

func (h *memoryHistory) Recent(_ context.Context, limit int) ([]models.CommandRecord, error) {
	return h.records, nil
}

type testEnv struct {
	interp   *Interpreter
	repo     *mock.Repository
	notifier *recordingNotifier
	history  *memoryHistory
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := time.Date(2024, 3, 10, 14, 0, 0, 0, karachi)
	clock := func() time.Time { return now }

	cfg := &Config{Location: karachi, DefaultUnit: "unit", DefaultLowThreshold: 5, Now: clock}
	repo := mock.NewRepository(clock)
	notifier := &recordingNotifier{}
	hist := &memoryHistory{}
	log := logger.NewTestLogger(t)

	exec := NewExecutor(repo, notifier, cfg, log)
	return &testEnv{
		interp:   New(cfg, exec, log, WithHistory(hist)),
		repo:     repo,
		notifier: notifier,
		history:  hist,
		now:      now,
	}
}

func (e *testEnv) seedSugar() models.Product {
	return e.repo.Seed(models.Product{
		Name: "sugar", Unit: "kg", StockQuantity: 10, PricePerUnit: 50, LowStockThreshold: 5,
	})
}

func (e *testEnv) product(t *testing.T, name string) *models.Product {
	t.Helper()
	p, err := e.repo.FindProductByName(context.Background(), name)
	require.NoError(t, err)
	return p
}

// ==========================
// Sales
// ==========================

func TestExecute_SellByName(t *testing.T) {
	env := newTestEnv(t)
	env.seedSugar()

	res := env.interp.Execute(context.Background(), "sell 2 sugar")

	require.True(t, res.Success, res.Message)
	assert.Equal(t, TypeSale, res.Type)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, "Sale recorded successfully via command", res.Message)

	data, ok := res.Data.(SaleData)
	require.True(t, ok)
	assert.Equal(t, 100.0, data.Sale.TotalPrice)
	assert.Equal(t, 2.0, data.Sale.Quantity)
	assert.Equal(t, 8.0, data.Product.RemainingStock)
	assert.Equal(t, "kg", data.Product.Unit)
	assert.Equal(t, 8.0, env.product(t, "sugar").StockQuantity)
}

func TestExecute_SellWithCustomerAndCaseInsensitiveName(t *testing.T) {
	env := newTestEnv(t)
	env.seedSugar()

	res := env.interp.Execute(context.Background(), "sell 2 kg SUGAR to Ali")

	require.True(t, res.Success, res.Message)
	data := res.Data.(SaleData)
	assert.Equal(t, "Ali", data.Sale.CustomerName)
	assert.Equal(t, "sugar", data.Product.Name)
}

func TestExecute_SellColloquialFromVoice(t *testing.T) {
	env := newTestEnv(t)
	env.seedSugar()

	res := env.interp.ExecuteFrom(context.Background(), "two kg sugar betch di", SourceVoice)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, TypeSale, res.Type)
	assert.Equal(t, 8.0, res.Data.(SaleData).Product.RemainingStock)

	require.Len(t, env.history.records, 1)
	rec := env.history.records[0]
	assert.Equal(t, "two kg sugar betch di", rec.Text)
	assert.Equal(t, SourceVoice, rec.Source)
	assert.Equal(t, string(IntentSellColloquial), rec.Intent)
	assert.True(t, rec.Success)
	assert.Equal(t, env.now, rec.ExecutedAt)
}

func TestExecute_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	env.seedSugar()

	res := env.interp.Execute(context.Background(), "sell 20 sugar")

	assert.False(t, res.Success)
	assert.Equal(t, TypeStock, res.Type)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Not enough stock for this product", res.Message)
	assert.Equal(t, StockData{Available: 10, Requested: 20}, res.Data)

	assert.Equal(t, 10.0, env.product(t, "sugar").StockQuantity)
	assert.Empty(t, env.repo.Sales())
}

func TestExecute_ProductNotFound(t *testing.T) {
	env := newTestEnv(t)

	res := env.interp.Execute(context.Background(), "sell 2 salt")

	assert.False(t, res.Success)
	assert.Equal(t, TypeNotFound, res.Type)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "Product not found for name: salt", res.Message)
	assert.Equal(t, 0, env.repo.CallCountCreateSale)
}

func TestExecute_LowStockAlertAfterSale(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Seed(models.Product{Name: "tea", Unit: "box", StockQuantity: 6, PricePerUnit: 300, LowStockThreshold: 5})
	env.notifier.err = errors.New("topic missing")

	res := env.interp.Execute(context.Background(), "sell 1 tea")
	require.True(t, res.Success, res.Message)
	require.Len(t, env.notifier.products, 1)
	assert.Equal(t, 5.0, env.notifier.products[0].StockQuantity)

	// an unrelated product well above its threshold does not alert
	env.seedSugar()
	res = env.interp.Execute(context.Background(), "sell 1 sugar")
	require.True(t, res.Success, res.Message)
	assert.Len(t, env.notifier.products, 1)
}

// ==========================
// Products
// ==========================

func TestExecute_AddProduct(t *testing.T) {
	env := newTestEnv(t)

	res := env.interp.Execute(context.Background(), "add product rice stock 5 price 80 unit kg low 2")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, TypeProductCreate, res.Type)
	assert.Equal(t, http.StatusCreated, res.Status)
	p := res.Data.(ProductData).Product
	assert.Equal(t, "kg", p.Unit)
	assert.Equal(t, 2.0, p.LowStockThreshold)

	res = env.interp.Execute(context.Background(), "add product flour stock 10 price 100")
	require.True(t, res.Success, res.Message)
	p = res.Data.(ProductData).Product
	assert.Equal(t, "unit", p.Unit)
	assert.Equal(t, 5.0, p.LowStockThreshold)

	// the stored product round-trips
	stored := env.product(t, "RICE")
	assert.Equal(t, 5.0, stored.StockQuantity)
	assert.Equal(t, 80.0, stored.PricePerUnit)
}

func TestExecute_AddDuplicateProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seedSugar()

	res := env.interp.Execute(context.Background(), "add product Sugar stock 1 price 2")

	assert.False(t, res.Success)
	assert.Equal(t, TypeValidation, res.Type)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestExecute_UpdateProduct(t *testing.T) {
	tests := []struct {
		text    string
		message string
		check   func(t *testing.T, p *models.Product)
	}{
		{
			text:    "update product sugar price 60",
			message: "Product price updated successfully via command",
			check: func(t *testing.T, p *models.Product) {
				assert.Equal(t, 60.0, p.PricePerUnit)
				assert.Equal(t, 10.0, p.StockQuantity)
				assert.Equal(t, 5.0, p.LowStockThreshold)
				assert.Equal(t, "kg", p.Unit)
			},
		},
		{
			text:    "update product sugar stock 30",
			message: "Product stock updated successfully via command",
			check: func(t *testing.T, p *models.Product) {
				assert.Equal(t, 30.0, p.StockQuantity)
				assert.Equal(t, 50.0, p.PricePerUnit)
			},
		},
		{
			text:    "update product Sugar low 2",
			message: "Product low-stock threshold updated successfully via command",
			check: func(t *testing.T, p *models.Product) {
				assert.Equal(t, 2.0, p.LowStockThreshold)
				assert.Equal(t, 10.0, p.StockQuantity)
			},
		},
		{
			text:    "change price sugar to 120",
			message: "Product price updated successfully via command",
			check: func(t *testing.T, p *models.Product) {
				assert.Equal(t, 120.0, p.PricePerUnit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			env := newTestEnv(t)
			env.seedSugar()

			res := env.interp.Execute(context.Background(), tt.text)
			require.True(t, res.Success, res.Message)
			assert.Equal(t, TypeProductUpdate, res.Type)
			assert.Equal(t, http.StatusOK, res.Status)
			assert.Equal(t, tt.message, res.Message)

			tt.check(t, env.product(t, "sugar"))
		})
	}
}

func TestExecute_ValidationShortCircuits(t *testing.T) {
	env := newTestEnv(t)
	env.seedSugar()

	res := env.interp.Execute(context.Background(), "update product sugar price 0")

	assert.False(t, res.Success)
	assert.Equal(t, TypeValidation, res.Type)
	assert.Equal(t, "Price per unit must be a positive number", res.Message)
	assert.Empty(t, res.Examples)
	assert.Equal(t, 0, env.repo.CallCountSaveProduct)
}

// racingRepository commits a sale right after each name lookup, so the
// product the executor holds is already stale when it saves.
type racingRepository struct {
	*mock.Repository
	sale models.NewSale
}

func (r *racingRepository) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	p, err := r.Repository.FindProductByName(ctx, name)
	if err != nil {
		return nil, err
	}
	r.sale.ProductID = p.ID
	if _, err := r.Repository.CreateSale(ctx, r.sale); err != nil {
		return nil, err
	}
	return p, nil
}

func TestExecute_UpdateKeepsConcurrentSale(t *testing.T) {
	env := newTestEnv(t)
	env.seedSugar()

	cfg := &Config{Location: karachi, DefaultUnit: "unit", DefaultLowThreshold: 5, Now: func() time.Time { return env.now }}
	log := logger.NewTestLogger(t)
	racing := &racingRepository{Repository: env.repo, sale: models.NewSale{Quantity: 2}}
	interp := New(cfg, NewExecutor(racing, nil, cfg, log), log)

	res := interp.Execute(context.Background(), "update product sugar price 60")
	require.True(t, res.Success, res.Message)

	stored := env.product(t, "sugar")
	assert.Equal(t, 8.0, stored.StockQuantity)
	assert.Equal(t, 60.0, stored.PricePerUnit)
	assert.Len(t, env.repo.Sales(), 1)

	data, ok := res.Data.(ProductData)
	require.True(t, ok)
	assert.Equal(t, 8.0, data.Product.StockQuantity)
}

// ==========================
// Queries
// ==========================

func TestExecute_TodaySummary(t *testing.T) {
	env := newTestEnv(t)
	sugar := env.seedSugar()

	midnight := time.Date(2024, 3, 10, 0, 0, 0, 0, karachi)
	env.repo.SeedSale(models.Sale{ProductID: sugar.ID, Quantity: 1, TotalPrice: 50, CreatedAt: midnight})
	env.repo.SeedSale(models.Sale{ProductID: sugar.ID, Quantity: 2, TotalPrice: 100.5, CreatedAt: env.now.Add(-time.Hour)})
	env.repo.SeedSale(models.Sale{ProductID: sugar.ID, Quantity: 3, TotalPrice: 150, CreatedAt: midnight.Add(-time.Second)})
	env.repo.SeedSale(models.Sale{ProductID: sugar.ID, Quantity: 4, TotalPrice: 200, CreatedAt: midnight.AddDate(0, 0, 1)})

	first := env.interp.Execute(context.Background(), "show today sales")
	require.True(t, first.Success, first.Message)
	assert.Equal(t, TypeSummary, first.Type)
	assert.Equal(t, "Today's sales summary", first.Message)

	summary := first.Data.(*SummaryData)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 150.5, summary.TotalEarned)
	assert.Equal(t, "sugar", summary.Sales[0].Product.Name)

	second := env.interp.Execute(context.Background(), "today sales")
	assert.Equal(t, first, second)
}

func TestExecute_LowStock(t *testing.T) {
	env := newTestEnv(t)
	env.seedSugar()
	env.repo.Seed(models.Product{Name: "tea", StockQuantity: 2, PricePerUnit: 300, LowStockThreshold: 5})
	env.repo.Seed(models.Product{Name: "salt", StockQuantity: 5, PricePerUnit: 30, LowStockThreshold: 5})

	first := env.interp.Execute(context.Background(), "show low stock")
	require.True(t, first.Success, first.Message)
	assert.Equal(t, TypeLowStock, first.Type)

	products := first.Data.(LowStockData).Products
	require.Len(t, products, 2)
	assert.Equal(t, "tea", products[0].Name)
	assert.Equal(t, "salt", products[1].Name)

	second := env.interp.Execute(context.Background(), "stock kam hai")
	assert.Equal(t, first, second)
}

// ==========================
// Help and failures
// ==========================

func TestExecute_HelpForUnrecognized(t *testing.T) {
	env := newTestEnv(t)

	res := env.interp.Execute(context.Background(), "gibberish text")

	assert.False(t, res.Success)
	assert.Equal(t, TypeHelp, res.Type)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Could not understand command. Supported examples:", res.Message)
	assert.Equal(t, Examples, res.Examples)
}

func TestExecute_EmptyInput(t *testing.T) {
	env := newTestEnv(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		res := env.interp.Execute(context.Background(), text)
		assert.False(t, res.Success)
		assert.Equal(t, TypeValidation, res.Type)
		assert.Equal(t, "Command text is required", res.Message)
		assert.NotEmpty(t, res.Examples)
	}
	assert.Empty(t, env.history.records)
}

func TestExecute_ParseFailure(t *testing.T) {
	env := newTestEnv(t)

	res := env.interp.Execute(context.Background(), "sell sugar")

	assert.False(t, res.Success)
	assert.Equal(t, TypeParse, res.Type)
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "Could not parse sell command. Use: sell <quantity> <productName> [to <customerName>]", res.Message)
	assert.NotEmpty(t, res.Examples)
}

func TestExecute_ServerFailure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.FindError = errors.New("connection refused")
	env.history.err = errors.New("redis down")

	res := env.interp.Execute(context.Background(), "sell 2 sugar")

	assert.False(t, res.Success)
	assert.Equal(t, TypeServer, res.Type)
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, "Server error while executing command", res.Message)
	assert.NotContains(t, res.Message, "connection refused")
}

func TestExecutor_TodayRange(t *testing.T) {
	justAfterMidnight := time.Date(2024, 3, 10, 0, 30, 0, 0, karachi)
	cfg := &Config{Location: karachi, Now: func() time.Time { return justAfterMidnight.UTC() }}
	exec := NewExecutor(mock.NewRepository(nil), nil, cfg, logger.NewNoOpLogger())

	start, end := exec.TodayRange()
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, karachi), start)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, karachi), end)
}

func TestInterpreter_Classify(t *testing.T) {
	env := newTestEnv(t)

	normalized, m, err := env.interp.Classify("  sell for sugar ")
	require.NoError(t, err)
	assert.Equal(t, "sell 4 sugar", normalized)
	assert.Equal(t, IntentSellByName, m.Intent)
}
