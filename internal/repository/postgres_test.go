package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventory-assistant/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

var (
	fixedNow    = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	productCols = []string{"id", "name", "unit", "stock_quantity", "price_per_unit", "low_stock_threshold", "created_at", "updated_at"}
)

const sugarID = "5f0c6f5e-8a43-4c2e-9a55-4d7f3b0f2a11"

func newTestRepository(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewPostgresRepository(db)
	repo.now = func() time.Time { return fixedNow }
	ids := []string{"id-1", "id-2", "id-3"}
	repo.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	return repo, mock
}

func sugarRow(stock float64) *sqlmock.Rows {
	return sqlmock.NewRows(productCols).
		AddRow(sugarID, "Sugar", "kg", stock, 50.0, 5.0, fixedNow, fixedNow)
}

// ==========================
// Product lookups
// ==========================

func TestFindProductByName(t *testing.T) {
	t.Run("found ignoring case", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(`SELECT .* FROM products WHERE lower\(name\) = lower\(\$1\)`).
			WithArgs("SUGAR").
			WillReturnRows(sugarRow(10))

		p, err := repo.FindProductByName(context.Background(), "SUGAR")
		require.NoError(t, err)
		assert.Equal(t, "Sugar", p.Name)
		assert.Equal(t, 10.0, p.StockQuantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(`SELECT .* FROM products WHERE lower\(name\) = lower\(\$1\)`).
			WithArgs("salt").
			WillReturnRows(sqlmock.NewRows(productCols))

		_, err := repo.FindProductByName(context.Background(), "salt")
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(`SELECT .* FROM products`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.FindProductByName(context.Background(), "sugar")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrProductNotFound)
	})
}

func TestFindProductByID_InvalidUUID(t *testing.T) {
	repo, mock := newTestRepository(t)

	_, err := repo.FindProductByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Product writes
// ==========================

func TestCreateProduct(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectExec(`INSERT INTO products`).
			WithArgs("id-1", "rice", "kg", 5.0, 80.0, 2.0, fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))

		p, err := repo.CreateProduct(context.Background(), models.NewProduct{
			Name: "rice", Unit: "kg", StockQuantity: 5, PricePerUnit: 80, LowStockThreshold: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, "id-1", p.ID)
		assert.Equal(t, fixedNow, p.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectExec(`INSERT INTO products`).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

		_, err := repo.CreateProduct(context.Background(), models.NewProduct{Name: "Sugar", PricePerUnit: 10})
		assert.ErrorIs(t, err, ErrDuplicateProduct)
	})
}

func TestSaveProduct(t *testing.T) {
	t.Run("writes only the named field", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		// The stored row carries stock 8 from a sale committed after p was read.
		mock.ExpectQuery(`UPDATE products SET updated_at = \$2, price_per_unit = \$3 WHERE id = \$1 RETURNING`).
			WithArgs(sugarID, fixedNow, 60.0).
			WillReturnRows(sqlmock.NewRows(productCols).
				AddRow(sugarID, "Sugar", "kg", 8.0, 60.0, 5.0, fixedNow, fixedNow))

		p := &models.Product{ID: sugarID, Name: "Sugar", Unit: "kg", StockQuantity: 10, PricePerUnit: 60, LowStockThreshold: 5}
		require.NoError(t, repo.SaveProduct(context.Background(), p, FieldPricePerUnit))
		assert.Equal(t, 8.0, p.StockQuantity)
		assert.Equal(t, 60.0, p.PricePerUnit)
		assert.Equal(t, fixedNow, p.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("threshold column", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(`SET updated_at = \$2, low_stock_threshold = \$3 WHERE`).
			WithArgs(sugarID, fixedNow, 2.0).
			WillReturnRows(sugarRow(10))

		p := &models.Product{ID: sugarID, LowStockThreshold: 2}
		require.NoError(t, repo.SaveProduct(context.Background(), p, FieldLowStockThreshold))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		mock.ExpectQuery(`UPDATE products`).
			WillReturnRows(sqlmock.NewRows(productCols))

		err := repo.SaveProduct(context.Background(), &models.Product{ID: sugarID}, FieldStockQuantity)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("no fields", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		err := repo.SaveProduct(context.Background(), &models.Product{ID: sugarID})
		assert.ErrorIs(t, err, ErrNoFields)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown field", func(t *testing.T) {
		repo, _ := newTestRepository(t)
		err := repo.SaveProduct(context.Background(), &models.Product{ID: sugarID}, ProductField("name"))
		assert.ErrorContains(t, err, "unknown field")
	})
}

// ==========================
// Sales
// ==========================

func TestCreateSale_Success(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE products SET stock_quantity = stock_quantity - \$2, updated_at = \$3 WHERE id = \$1 AND stock_quantity >= \$2 RETURNING`).
		WithArgs(sugarID, 2.0, fixedNow).
		WillReturnRows(sugarRow(8))
	mock.ExpectExec(`INSERT INTO sales`).
		WithArgs("id-1", sugarID, 2.0, 100.0, "Ali", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.CreateSale(context.Background(), models.NewSale{ProductID: sugarID, Quantity: 2, CustomerName: "Ali"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Sale.TotalPrice)
	assert.Equal(t, 8.0, res.Product.StockQuantity)
	assert.Equal(t, "Sugar", res.Sale.Product.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSale_FractionalTotal(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE products SET stock_quantity`).
		WithArgs(sugarID, 0.1, fixedNow).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(sugarID, "Sugar", "kg", 9.9, 0.3, 5.0, fixedNow, fixedNow))
	mock.ExpectExec(`INSERT INTO sales`).
		WithArgs("id-1", sugarID, 0.1, 0.03, nil, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.CreateSale(context.Background(), models.NewSale{ProductID: sugarID, Quantity: 0.1})
	require.NoError(t, err)
	assert.Equal(t, 0.03, res.Sale.TotalPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE products SET stock_quantity`).
		WithArgs(sugarID, 20.0, fixedNow).
		WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery(`SELECT stock_quantity FROM products WHERE id = \$1`).
		WithArgs(sugarID).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}).AddRow(10.0))
	mock.ExpectRollback()

	_, err := repo.CreateSale(context.Background(), models.NewSale{ProductID: sugarID, Quantity: 20})
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 10.0, stockErr.Available)
	assert.Equal(t, 20.0, stockErr.Requested)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSale_ProductVanished(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE products SET stock_quantity`).
		WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery(`SELECT stock_quantity FROM products`).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity"}))
	mock.ExpectRollback()

	_, err := repo.CreateSale(context.Background(), models.NewSale{ProductID: sugarID, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSalesInRange(t *testing.T) {
	repo, mock := newTestRepository(t)
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectQuery(`FROM sales s JOIN products p ON p.id = s.product_id WHERE s.created_at >= \$1 AND s.created_at < \$2`).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "quantity", "total_price", "customer_name", "created_at", "name", "unit"}).
			AddRow("s-2", sugarID, 1.0, 50.0, "", fixedNow.Add(time.Hour), "Sugar", "kg").
			AddRow("s-1", sugarID, 2.0, 100.0, "Ali", fixedNow, "Sugar", "kg"))

	sales, err := repo.FindSalesInRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "s-2", sales[0].ID)
	assert.Equal(t, "Sugar", sales[1].Product.Name)
	assert.Equal(t, sugarID, sales[1].Product.ID)
	assert.Equal(t, "Ali", sales[1].CustomerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLowStockProducts(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`WHERE stock_quantity <= low_stock_threshold`).
		WillReturnRows(sugarRow(3))

	products, err := repo.FindLowStockProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].IsLowStock())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_Empty(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(productCols))

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}
