package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

const orderColumns = `o.id, o.status, o.total_amount::text, o.delivery_address,
       o.payment_method, o.customer_id, o.created_at, o.updated_at,
       p.full_name, p.phone_number, p.address`

// FetchOrders returns all orders, newest first, joined with the minimal
// customer projection and line items.
func (g *Gateway) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		LEFT JOIN profiles p ON p.id = o.customer_id
		ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, &orders.FetchError{Op: "orders", Err: err}
	}
	defer rows.Close()

	out, err := scanOrders(rows)
	if err != nil {
		return nil, &orders.FetchError{Op: "orders", Err: err}
	}
	if err := g.attachItems(ctx, out); err != nil {
		return nil, &orders.FetchError{Op: "order items", Err: err}
	}
	return out, nil
}

// FetchOrdersInRange returns orders created inside [start, end], ascending,
// for report aggregation.
func (g *Gateway) FetchOrdersInRange(ctx context.Context, start, end time.Time) ([]orders.Order, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		LEFT JOIN profiles p ON p.id = o.customer_id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		ORDER BY o.created_at ASC`, start, end)
	if err != nil {
		return nil, &orders.FetchError{Op: "orders in range", Err: err}
	}
	defer rows.Close()

	out, err := scanOrders(rows)
	if err != nil {
		return nil, &orders.FetchError{Op: "orders in range", Err: err}
	}
	if err := g.attachItems(ctx, out); err != nil {
		return nil, &orders.FetchError{Op: "order items", Err: err}
	}
	return out, nil
}

func (g *Gateway) FetchOrderByID(ctx context.Context, id string) (orders.Order, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		LEFT JOIN profiles p ON p.id = o.customer_id
		WHERE o.id = $1`, id)
	if err != nil {
		return orders.Order{}, &orders.FetchError{Op: "order", Err: err}
	}
	defer rows.Close()

	found, err := scanOrders(rows)
	if err != nil {
		return orders.Order{}, &orders.FetchError{Op: "order", Err: err}
	}
	if len(found) == 0 {
		return orders.Order{}, &orders.NotFoundError{Entity: "order", ID: id}
	}
	o := found[0]
	batch := []orders.Order{o}
	if err := g.attachItems(ctx, batch); err != nil {
		return orders.Order{}, &orders.FetchError{Op: "order items", Err: err}
	}
	return batch[0], nil
}

// UpdateOrderStatus validates the transition against the stored status under
// a row lock, writes, commits, then emits an UPDATE change event. A rejected
// transition or backend failure leaves the row untouched.
func (g *Gateway) UpdateOrderStatus(ctx context.Context, id string, requested orders.Status) error {
	if !requested.Valid() {
		return &orders.ValidationError{Field: "status", Reason: "unknown status"}
	}

	tx, err := g.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &orders.WriteError{Op: "order status", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current orders.Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &orders.NotFoundError{Entity: "order", ID: id}
		}
		return &orders.WriteError{Op: "order status", Err: err}
	}
	if !orders.CanTransition(current, requested) {
		return &orders.InvalidTransitionError{From: current, To: requested}
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, id, requested, now); err != nil {
		return &orders.WriteError{Op: "order status", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &orders.WriteError{Op: "order status", Err: err}
	}

	g.publishChange(orders.ChangeUpdate, orders.ChangeRecord{
		ID:        id,
		Status:    &requested,
		UpdatedAt: &now,
	})
	return nil
}

func scanOrders(rows pgx.Rows) ([]orders.Order, error) {
	var out []orders.Order
	for rows.Next() {
		var (
			o        orders.Order
			total    string
			fullName *string
			phone    *string
			address  *string
		)
		if err := rows.Scan(&o.ID, &o.Status, &total, &o.DeliveryAddress,
			&o.PaymentMethod, &o.CustomerID, &o.CreatedAt, &o.UpdatedAt,
			&fullName, &phone, &address); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return nil, err
		}
		o.TotalAmount = amount
		if o.CustomerID != nil {
			o.Customer = &orders.CustomerRef{
				FullName:    deref(fullName),
				PhoneNumber: deref(phone),
				Address:     deref(address),
			}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// attachItems loads line items for the whole batch in one query and
// distributes them by order id.
func (g *Gateway) attachItems(ctx context.Context, batch []orders.Order) error {
	if len(batch) == 0 {
		return nil
	}
	ids := make([]string, len(batch))
	index := make(map[string]int, len(batch))
	for i, o := range batch {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := g.DB.Query(ctx, `
		SELECT i.order_id, i.id, i.product_id, i.quantity, i.price_at_order::text,
		       pr.name, pr.unit, pr.category
		FROM order_items i
		JOIN products pr ON pr.id = i.product_id
		WHERE i.order_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			li      orders.LineItem
			price   string
		)
		if err := rows.Scan(&orderID, &li.ID, &li.ProductID, &li.Quantity, &price,
			&li.ProductName, &li.Unit, &li.Category); err != nil {
			return err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return err
		}
		li.PriceAtOrder = p
		if i, ok := index[orderID]; ok {
			batch[i].Items = append(batch[i].Items, li)
		}
	}
	return rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
