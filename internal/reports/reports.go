// Package reports derives summary statistics from already-fetched order
// batches. Everything here is pure: full recomputation over the batch, no
// I/O, no incremental state.
package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

type Summary struct {
	TotalRevenue      decimal.Decimal       `json:"total_revenue"`
	TotalOrders       int                   `json:"total_orders"`
	CompletedOrders   int                   `json:"completed_orders"`
	StatusCounts      map[orders.Status]int `json:"status_counts"`
	AverageOrderValue decimal.Decimal       `json:"average_order_value"`
	UniqueCustomers   int                   `json:"unique_customers"`
}

// Summarize computes revenue and per-status counts over a batch. Revenue
// counts Completed orders only; every status appears in StatusCounts even
// at zero; average order value is 0 when nothing completed (never a
// division by zero).
func Summarize(batch []orders.Order) Summary {
	sum := Summary{
		TotalOrders:  len(batch),
		TotalRevenue: decimal.Zero,
		StatusCounts: make(map[orders.Status]int, len(orders.AllStatuses)),
	}
	for _, st := range orders.AllStatuses {
		sum.StatusCounts[st] = 0
	}

	customers := map[string]bool{}
	for _, o := range batch {
		sum.StatusCounts[o.Status]++
		if o.CustomerID != nil {
			customers[*o.CustomerID] = true
		}
		if o.Status == orders.StatusCompleted {
			sum.CompletedOrders++
			sum.TotalRevenue = sum.TotalRevenue.Add(o.TotalAmount)
		}
	}
	sum.UniqueCustomers = len(customers)

	if sum.CompletedOrders > 0 {
		sum.AverageOrderValue = sum.TotalRevenue.Div(decimal.NewFromInt(int64(sum.CompletedOrders)))
	} else {
		sum.AverageOrderValue = decimal.Zero
	}
	return sum
}

type CategorySales struct {
	Category   orders.Category `json:"category"`
	Revenue    decimal.Decimal `json:"revenue"`
	Quantity   int             `json:"quantity"`
	OrderCount int             `json:"order_count"` // distinct orders containing the category
}

// CategoryBreakdown attributes quantity × price-at-order of every line item
// to its product category. Returned descending by revenue so the consumer
// has a defined iteration order.
func CategoryBreakdown(batch []orders.Order) []CategorySales {
	type acc struct {
		revenue  decimal.Decimal
		quantity int
		orderIDs map[string]bool
	}
	byCat := map[orders.Category]*acc{}

	for _, o := range batch {
		for _, li := range o.Items {
			a := byCat[li.Category]
			if a == nil {
				a = &acc{revenue: decimal.Zero, orderIDs: map[string]bool{}}
				byCat[li.Category] = a
			}
			a.revenue = a.revenue.Add(li.Subtotal())
			a.quantity += li.Quantity
			a.orderIDs[o.ID] = true
		}
	}

	out := make([]CategorySales, 0, len(byCat))
	for cat, a := range byCat {
		out = append(out, CategorySales{
			Category:   cat,
			Revenue:    a.revenue,
			Quantity:   a.quantity,
			OrderCount: len(a.orderIDs),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type Bucket struct {
	Start  time.Time       `json:"start"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// monthlyRange is the cutoff past which the series switches from daily to
// monthly buckets.
const monthlyRange = 365 * 24 * time.Hour

// TimeSeries buckets completed-order revenue by calendar day, or by month
// when the range spans roughly a year or more. Ascending by bucket start.
func TimeSeries(batch []orders.Order, start, end time.Time) []Bucket {
	monthly := end.Sub(start) >= monthlyRange

	byStart := map[time.Time]decimal.Decimal{}
	for _, o := range batch {
		if o.Status != orders.StatusCompleted {
			continue
		}
		t := o.CreatedAt.UTC()
		var key time.Time
		if monthly {
			key = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		} else {
			key = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		if cur, ok := byStart[key]; ok {
			byStart[key] = cur.Add(o.TotalAmount)
		} else {
			byStart[key] = o.TotalAmount
		}
	}

	out := make([]Bucket, 0, len(byStart))
	for k, v := range byStart {
		b := Bucket{Start: k, Amount: v}
		if monthly {
			b.Label = k.Format("Jan 2006")
		} else {
			b.Label = k.Format("2006-01-02")
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

type CustomerSpend struct {
	CustomerID string          `json:"customer_id"`
	Name       string          `json:"name"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	OrderCount int             `json:"order_count"`
}

// TopCustomers ranks customers by completed spend, descending, truncated to
// n. Guest orders (no customer reference) are skipped. Ties keep first-seen
// order, which is stable for a given batch.
func TopCustomers(batch []orders.Order, n int) []CustomerSpend {
	index := map[string]int{}
	var ranked []CustomerSpend

	for _, o := range batch {
		if o.Status != orders.StatusCompleted || o.CustomerID == nil {
			continue
		}
		id := *o.CustomerID
		i, ok := index[id]
		if !ok {
			name := "Unknown Customer"
			if o.Customer != nil && o.Customer.FullName != "" {
				name = o.Customer.FullName
			}
			index[id] = len(ranked)
			i = len(ranked)
			ranked = append(ranked, CustomerSpend{CustomerID: id, Name: name, TotalSpent: decimal.Zero})
		}
		ranked[i].TotalSpent = ranked[i].TotalSpent.Add(o.TotalAmount)
		ranked[i].OrderCount++
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSpent.Cmp(ranked[j].TotalSpent) > 0
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
