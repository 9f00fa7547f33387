package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// AssignRider creates a delivery for an order that is out for delivery. One
// active delivery per order; assigning again while one is open is rejected.
func (g *Gateway) AssignRider(ctx context.Context, orderID, riderID string) (orders.Delivery, error) {
	tx, err := g.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return orders.Delivery{}, &orders.WriteError{Op: "assign rider", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status orders.Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return orders.Delivery{}, &orders.NotFoundError{Entity: "order", ID: orderID}
		}
		return orders.Delivery{}, &orders.WriteError{Op: "assign rider", Err: err}
	}
	if status != orders.StatusOutForDelivery {
		return orders.Delivery{}, &orders.ValidationError{Field: "order", Reason: "order is not out for delivery"}
	}

	var rider orders.Profile
	err = tx.QueryRow(ctx, `SELECT id, role, active FROM profiles WHERE id=$1`, riderID).
		Scan(&rider.ID, &rider.Role, &rider.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return orders.Delivery{}, &orders.NotFoundError{Entity: "rider", ID: riderID}
		}
		return orders.Delivery{}, &orders.WriteError{Op: "assign rider", Err: err}
	}
	if rider.Role != orders.RoleRider || !rider.Active {
		return orders.Delivery{}, &orders.ValidationError{Field: "rider", Reason: "profile is not an active rider"}
	}

	var open int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM deliveries
		WHERE order_id=$1 AND status IN ($2,$3)`,
		orderID, orders.DeliveryAssigned, orders.DeliveryPickedUp).Scan(&open)
	if err != nil {
		return orders.Delivery{}, &orders.WriteError{Op: "assign rider", Err: err}
	}
	if open > 0 {
		return orders.Delivery{}, &orders.ValidationError{Field: "order", Reason: "order already has an active delivery"}
	}

	d := orders.Delivery{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		RiderID:    riderID,
		Status:     orders.DeliveryAssigned,
		AssignedAt: time.Now().UTC(),
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO deliveries (id, order_id, rider_id, status, assigned_at)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.OrderID, d.RiderID, d.Status, d.AssignedAt)
	if err != nil {
		return orders.Delivery{}, &orders.WriteError{Op: "assign rider", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return orders.Delivery{}, &orders.WriteError{Op: "assign rider", Err: err}
	}
	return d, nil
}

// UpdateDeliveryStatus moves a delivery along its lifecycle; delivered_at is
// stamped on the delivered transition.
func (g *Gateway) UpdateDeliveryStatus(ctx context.Context, id string, requested orders.DeliveryStatus) error {
	tx, err := g.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &orders.WriteError{Op: "delivery status", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current orders.DeliveryStatus
	err = tx.QueryRow(ctx, `SELECT status FROM deliveries WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &orders.NotFoundError{Entity: "delivery", ID: id}
		}
		return &orders.WriteError{Op: "delivery status", Err: err}
	}
	if !orders.CanTransitionDelivery(current, requested) {
		return &orders.ValidationError{Field: "status", Reason: "invalid delivery transition"}
	}

	if requested == orders.DeliveryDelivered {
		_, err = tx.Exec(ctx, `UPDATE deliveries SET status=$2, delivered_at=now() WHERE id=$1`, id, requested)
	} else {
		_, err = tx.Exec(ctx, `UPDATE deliveries SET status=$2 WHERE id=$1`, id, requested)
	}
	if err != nil {
		return &orders.WriteError{Op: "delivery status", Err: err}
	}
	return tx.Commit(ctx)
}

func (g *Gateway) FetchDeliveries(ctx context.Context, riderID string) ([]orders.Delivery, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if riderID == "" {
		rows, err = g.DB.Query(ctx, `
			SELECT id, order_id, rider_id, status, assigned_at, delivered_at
			FROM deliveries ORDER BY assigned_at DESC`)
	} else {
		rows, err = g.DB.Query(ctx, `
			SELECT id, order_id, rider_id, status, assigned_at, delivered_at
			FROM deliveries WHERE rider_id=$1 ORDER BY assigned_at DESC`, riderID)
	}
	if err != nil {
		return nil, &orders.FetchError{Op: "deliveries", Err: err}
	}
	defer rows.Close()

	var out []orders.Delivery
	for rows.Next() {
		var d orders.Delivery
		if err := rows.Scan(&d.ID, &d.OrderID, &d.RiderID, &d.Status, &d.AssignedAt, &d.DeliveredAt); err != nil {
			return nil, &orders.FetchError{Op: "deliveries", Err: err}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &orders.FetchError{Op: "deliveries", Err: err}
	}
	return out, nil
}
