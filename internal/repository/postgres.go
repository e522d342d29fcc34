package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-assistant/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

const productColumns = `id, name, unit, stock_quantity, price_per_unit, low_stock_threshold, created_at, updated_at`

// PostgresRepository implements Repository on database/sql with lib/pq.
type PostgresRepository struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Unit,
		&p.StockQuantity, &p.PricePerUnit, &p.LowStockThreshold,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE lower(name) = lower($1)`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product by name: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, np models.NewProduct) (*models.Product, error) {
	now := r.now()
	p := &models.Product{
		ID:                r.newID(),
		Name:              np.Name,
		Unit:              np.Unit,
		StockQuantity:     np.StockQuantity,
		PricePerUnit:      np.PricePerUnit,
		LowStockThreshold: np.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		p.ID, p.Name, p.Unit, p.StockQuantity, p.PricePerUnit, p.LowStockThreshold, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProduct, np.Name)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) SaveProduct(ctx context.Context, p *models.Product, fields ...ProductField) error {
	if len(fields) == 0 {
		return ErrNoFields
	}

	args := []interface{}{p.ID, r.now()}
	sets := []string{"updated_at = $2"}
	for _, f := range fields {
		v, err := fieldValue(p, f)
		if err != nil {
			return err
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}

	saved, err := scanProduct(r.db.QueryRowContext(ctx, `
		UPDATE products
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+productColumns, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	*p = *saved
	return nil
}

// fieldValue also acts as the column allowlist for SaveProduct.
func fieldValue(p *models.Product, f ProductField) (interface{}, error) {
	switch f {
	case FieldPricePerUnit:
		return p.PricePerUnit, nil
	case FieldStockQuantity:
		return p.StockQuantity, nil
	case FieldLowStockThreshold:
		return p.LowStockThreshold, nil
	}
	return nil, fmt.Errorf("save product: unknown field %q", f)
}

func (r *PostgresRepository) CreateSale(ctx context.Context, ns models.NewSale) (*models.SaleResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	now := r.now()
	product, err := scanProduct(tx.QueryRowContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = $3
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING `+productColumns, ns.ProductID, ns.Quantity, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.refusedSale(ctx, tx, ns)
	}
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	total, _ := decimal.NewFromFloat(product.PricePerUnit).
		Mul(decimal.NewFromFloat(ns.Quantity)).
		Round(2).
		Float64()

	sale := models.Sale{
		ID:           r.newID(),
		ProductID:    product.ID,
		Product:      &models.ProductRef{ID: product.ID, Name: product.Name, Unit: product.Unit},
		Quantity:     ns.Quantity,
		TotalPrice:   total,
		CustomerName: ns.CustomerName,
		CreatedAt:    now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, product_id, quantity, total_price, customer_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sale.ID, sale.ProductID, sale.Quantity, sale.TotalPrice, nullableString(sale.CustomerName), now)
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}
	return &models.SaleResult{Sale: sale, Product: *product}, nil
}

// refusedSale explains why the conditional decrement matched no row.
func (r *PostgresRepository) refusedSale(ctx context.Context, tx *sql.Tx, ns models.NewSale) error {
	var available float64
	err := tx.QueryRowContext(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, ns.ProductID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("read stock: %w", err)
	}
	return &InsufficientStockError{Available: available, Requested: ns.Quantity}
}

func (r *PostgresRepository) FindSalesInRange(ctx context.Context, start, end time.Time) ([]models.Sale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.product_id, s.quantity, s.total_price, COALESCE(s.customer_name, ''), s.created_at,
		       p.name, p.unit
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		ORDER BY s.created_at DESC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("find sales: %w", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		var s models.Sale
		ref := &models.ProductRef{}
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Quantity, &s.TotalPrice, &s.CustomerName, &s.CreatedAt,
			&ref.Name, &ref.Unit); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		ref.ID = s.ProductID
		s.Product = ref
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *PostgresRepository) FindLowStockProducts(ctx context.Context) ([]models.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity ASC, name ASC`)
}

func (r *PostgresRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC`)
}

func (r *PostgresRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
