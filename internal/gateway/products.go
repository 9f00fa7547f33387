package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// ProductInput carries the fields staff can set when creating or editing a
// product.
type ProductInput struct {
	Name              string          `json:"name"`
	Category          orders.Category `json:"category"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	StockQuantity     int             `json:"stock_quantity"`
	Unit              string          `json:"unit"`
	Active            bool            `json:"active"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

// ValidateProduct rejects bad input before anything reaches the network.
func ValidateProduct(in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return &orders.ValidationError{Field: "name", Reason: "product name is required"}
	}
	if len(name) < 3 {
		return &orders.ValidationError{Field: "name", Reason: "product name must be at least 3 characters"}
	}
	if !in.CurrentPrice.IsPositive() {
		return &orders.ValidationError{Field: "current_price", Reason: "price must be greater than 0"}
	}
	if in.StockQuantity < 0 {
		return &orders.ValidationError{Field: "stock_quantity", Reason: "stock quantity cannot be negative"}
	}
	if strings.TrimSpace(in.Unit) == "" {
		return &orders.ValidationError{Field: "unit", Reason: "unit is required"}
	}
	switch in.Category {
	case orders.CategoryFuel, orders.CategoryMotorOil, orders.CategoryEngineOil:
	default:
		return &orders.ValidationError{Field: "category", Reason: "unknown category"}
	}
	return nil
}

const productColumns = `id, name, category, current_price::text, stock_quantity,
       unit, active, low_stock_threshold, created_at, updated_at`

func (g *Gateway) FetchProducts(ctx context.Context) ([]orders.Product, error) {
	rows, err := g.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, &orders.FetchError{Op: "products", Err: err}
	}
	defer rows.Close()
	out, err := scanProducts(rows)
	if err != nil {
		return nil, &orders.FetchError{Op: "products", Err: err}
	}
	return out, nil
}

// FetchLowStock returns products strictly below the threshold, lowest first.
// A non-positive threshold falls back to the default.
func (g *Gateway) FetchLowStock(ctx context.Context, threshold int) ([]orders.Product, error) {
	if threshold <= 0 {
		threshold = orders.DefaultLowStockThreshold
	}
	rows, err := g.DB.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE stock_quantity < $1
		ORDER BY stock_quantity`, threshold)
	if err != nil {
		return nil, &orders.FetchError{Op: "low stock", Err: err}
	}
	defer rows.Close()
	out, err := scanProducts(rows)
	if err != nil {
		return nil, &orders.FetchError{Op: "low stock", Err: err}
	}
	return out, nil
}

func (g *Gateway) CreateProduct(ctx context.Context, in ProductInput) (orders.Product, error) {
	if err := ValidateProduct(in); err != nil {
		return orders.Product{}, err
	}
	if in.LowStockThreshold <= 0 {
		in.LowStockThreshold = orders.DefaultLowStockThreshold
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := g.DB.Exec(ctx, `
		INSERT INTO products (id, name, category, current_price, stock_quantity, unit, active, low_stock_threshold, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)`,
		id, strings.TrimSpace(in.Name), in.Category, in.CurrentPrice, in.StockQuantity,
		strings.TrimSpace(in.Unit), in.Active, in.LowStockThreshold, now)
	if err != nil {
		return orders.Product{}, &orders.WriteError{Op: "create product", Err: err}
	}
	return orders.Product{
		ID: id, Name: strings.TrimSpace(in.Name), Category: in.Category,
		CurrentPrice: in.CurrentPrice, StockQuantity: in.StockQuantity,
		Unit: strings.TrimSpace(in.Unit), Active: in.Active,
		LowStockThreshold: in.LowStockThreshold, CreatedAt: now, UpdatedAt: now,
	}, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, id string, in ProductInput) error {
	if err := ValidateProduct(in); err != nil {
		return err
	}
	if in.LowStockThreshold <= 0 {
		in.LowStockThreshold = orders.DefaultLowStockThreshold
	}

	ct, err := g.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, category=$3, current_price=$4, stock_quantity=$5, unit=$6,
		    active=$7, low_stock_threshold=$8, updated_at=now()
		WHERE id=$1`,
		id, strings.TrimSpace(in.Name), in.Category, in.CurrentPrice,
		in.StockQuantity, strings.TrimSpace(in.Unit), in.Active, in.LowStockThreshold)
	if err != nil {
		return &orders.WriteError{Op: "update product", Err: err}
	}
	if ct.RowsAffected() == 0 {
		return &orders.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func (g *Gateway) UpdateStock(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return &orders.ValidationError{Field: "stock_quantity", Reason: "stock quantity cannot be negative"}
	}
	ct, err := g.DB.Exec(ctx, `UPDATE products SET stock_quantity=$2, updated_at=now() WHERE id=$1`, id, quantity)
	if err != nil {
		return &orders.WriteError{Op: "update stock", Err: err}
	}
	if ct.RowsAffected() == 0 {
		return &orders.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func (g *Gateway) DeleteProduct(ctx context.Context, id string) error {
	ct, err := g.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return &orders.WriteError{Op: "delete product", Err: err}
	}
	if ct.RowsAffected() == 0 {
		return &orders.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]orders.Product, error) {
	var out []orders.Product
	for rows.Next() {
		var (
			p     orders.Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &price, &p.StockQuantity,
			&p.Unit, &p.Active, &p.LowStockThreshold, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		p.CurrentPrice = d
		out = append(out, p)
	}
	return out, rows.Err()
}
