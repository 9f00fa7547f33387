package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

type DashboardStats struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TodayRevenue     decimal.Decimal `json:"today_revenue"`
	PendingOrders    int             `json:"pending_orders"`
	ProcessingOrders int             `json:"processing_orders"`
	CompletedOrders  int             `json:"completed_orders"`
	LowStock         int             `json:"low_stock"`
}

// Dashboard computes the landing-page tiles: lifetime and today's completed
// revenue, headline status counts, and how many products sit below their
// low-stock threshold. "Today" starts at local midnight of now.
func Dashboard(batch []orders.Order, products []orders.Product, now time.Time) DashboardStats {
	stats := DashboardStats{
		TotalRevenue: decimal.Zero,
		TodayRevenue: decimal.Zero,
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, o := range batch {
		switch o.Status {
		case orders.StatusPending:
			stats.PendingOrders++
		case orders.StatusProcessing:
			stats.ProcessingOrders++
		case orders.StatusCompleted:
			stats.CompletedOrders++
			stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
			if !o.CreatedAt.Before(midnight) {
				stats.TodayRevenue = stats.TodayRevenue.Add(o.TotalAmount)
			}
		}
	}

	for _, p := range products {
		if p.LowStock() {
			stats.LowStock++
		}
	}
	return stats
}

type RiderStats struct {
	RiderID    string `json:"rider_id"`
	Deliveries int    `json:"deliveries"`
	Delivered  int    `json:"delivered"`
	Failed     int    `json:"failed"`
	Active     int    `json:"active"` // assigned or picked up
}

// RiderSummary counts deliveries per rider, grouped from a fetched batch.
func RiderSummary(deliveries []orders.Delivery) map[string]RiderStats {
	out := map[string]RiderStats{}
	for _, d := range deliveries {
		s := out[d.RiderID]
		s.RiderID = d.RiderID
		s.Deliveries++
		switch d.Status {
		case orders.DeliveryDelivered:
			s.Delivered++
		case orders.DeliveryFailed:
			s.Failed++
		case orders.DeliveryAssigned, orders.DeliveryPickedUp:
			s.Active++
		}
		out[d.RiderID] = s
	}
	return out
}
