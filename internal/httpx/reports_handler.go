package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
	"github.com/rjdelacruz/go-fuel-console.git/internal/redisx"
	"github.com/rjdelacruz/go-fuel-console.git/internal/reports"
)

const defaultTopCustomers = 5

// ReportSource is what the aggregation pages read from the gateway.
type ReportSource interface {
	FetchOrders(ctx context.Context) ([]orders.Order, error)
	FetchOrdersInRange(ctx context.Context, start, end time.Time) ([]orders.Order, error)
	FetchProducts(ctx context.Context) ([]orders.Product, error)
	FetchDeliveries(ctx context.Context, riderID string) ([]orders.Delivery, error)
}

type ReportsHandler struct {
	Source ReportSource
	Redis  *redis.Client
}

func (h *ReportsHandler) Register(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/reports/summary", h.summary)
	r.Get("/reports/categories", h.categories)
	r.Get("/reports/timeseries", h.timeSeries)
	r.Get("/reports/top-customers", h.topCustomers)
	r.Get("/reports/riders", h.riderSummary)
}

// dashboard serves the landing-page tiles, cached briefly in Redis so a
// refresh-happy admin does not hammer Postgres.
func (h *ReportsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyDashboardStats).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	batch, err := h.Source.FetchOrders(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	products, err := h.Source.FetchProducts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	stats := reports.Dashboard(batch, products, time.Now())
	if h.Redis != nil {
		if b, err := json.Marshal(stats); err == nil {
			_ = h.Redis.Set(ctx, redisx.KeyDashboardStats, b, redisx.TTLDashboardStats).Err()
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ReportsHandler) summary(w http.ResponseWriter, r *http.Request) {
	h.withRange(w, r, func(batch []orders.Order, _, _ time.Time) any {
		return reports.Summarize(batch)
	})
}

func (h *ReportsHandler) categories(w http.ResponseWriter, r *http.Request) {
	h.withRange(w, r, func(batch []orders.Order, _, _ time.Time) any {
		return reports.CategoryBreakdown(batch)
	})
}

func (h *ReportsHandler) timeSeries(w http.ResponseWriter, r *http.Request) {
	h.withRange(w, r, func(batch []orders.Order, start, end time.Time) any {
		return reports.TimeSeries(batch, start, end)
	})
}

func (h *ReportsHandler) topCustomers(w http.ResponseWriter, r *http.Request) {
	n := defaultTopCustomers
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		n = v
	}
	h.withRange(w, r, func(batch []orders.Order, _, _ time.Time) any {
		return reports.TopCustomers(batch, n)
	})
}

func (h *ReportsHandler) riderSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ds, err := h.Source.FetchDeliveries(ctx, r.URL.Query().Get("rider_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports.RiderSummary(ds))
}

// withRange parses the report window, fetches the matching orders once, and
// hands the batch to the aggregator.
func (h *ReportsHandler) withRange(w http.ResponseWriter, r *http.Request, agg func(batch []orders.Order, start, end time.Time) any) {
	start, end, err := parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	batch, err := h.Source.FetchOrdersInRange(ctx, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg(batch, start, end))
}

// parseRange reads start/end query params as dates (2006-01-02) or RFC 3339
// timestamps. With no params the window is the last 30 days.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)

	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return time.Time{}, time.Time{}, &orders.ValidationError{Field: "start", Reason: "must be a date or RFC 3339 timestamp"}
		}
		start = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := parseTime(raw)
		if err != nil {
			return time.Time{}, time.Time{}, &orders.ValidationError{Field: "end", Reason: "must be a date or RFC 3339 timestamp"}
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, &orders.ValidationError{Field: "end", Reason: "must not be before start"}
	}
	return start, end, nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
