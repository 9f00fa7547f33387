package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rjdelacruz/go-fuel-console.git/internal/auth"
	"github.com/rjdelacruz/go-fuel-console.git/internal/gateway"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
	"github.com/rjdelacruz/go-fuel-console.git/internal/store"
)

type fakeFetcher struct {
	batch []orders.Order
}

func (f *fakeFetcher) FetchOrders(context.Context) ([]orders.Order, error) {
	return f.batch, nil
}

type fakeWriter struct {
	calls []orders.Status
	err   error
}

func (f *fakeWriter) UpdateOrderStatus(_ context.Context, _ string, requested orders.Status) error {
	f.calls = append(f.calls, requested)
	return f.err
}

type fakeReader struct {
	order orders.Order
	err   error
}

func (f *fakeReader) FetchOrderByID(context.Context, string) (orders.Order, error) {
	return f.order, f.err
}

func testOrder(id string, status orders.Status) orders.Order {
	return orders.Order{
		ID:              id,
		Status:          status,
		TotalAmount:     decimal.NewFromFloat(75.50),
		DeliveryAddress: "12 Rizal St",
		PaymentMethod:   orders.PaymentCOD,
		CreatedAt:       time.Now().Add(-time.Hour),
		UpdatedAt:       time.Now().Add(-time.Hour),
	}
}

func newTestStore(t *testing.T, batch ...orders.Order) *store.Store {
	t.Helper()
	s := store.New(&fakeFetcher{batch: batch}, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func newOrdersRouter(h *OrdersHandler) *chi.Mux {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestListOrdersServesSnapshot(t *testing.T) {
	s := newTestStore(t, testOrder("o-1", orders.StatusPending), testOrder("o-2", orders.StatusCompleted))
	r := newOrdersRouter(&OrdersHandler{Store: s, Writer: &fakeWriter{}, Gateway: &fakeReader{}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "o-1", got[0].ID)
}

func TestUpdateStatusAcceptedOnValidTransition(t *testing.T) {
	s := newTestStore(t, testOrder("o-1", orders.StatusPending))
	writer := &fakeWriter{}
	r := newOrdersRouter(&OrdersHandler{Store: s, Writer: writer, Gateway: &fakeReader{}})

	body := bytes.NewBufferString(`{"status":"Processing"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/orders/o-1/status", body))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []orders.Status{orders.StatusProcessing}, writer.calls)

	// The cache only moves when the change comes back over the feed.
	o, ok := s.Get("o-1")
	require.True(t, ok)
	assert.Equal(t, orders.StatusPending, o.Status)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	s := newTestStore(t, testOrder("o-1", orders.StatusCompleted))
	writer := &fakeWriter{}
	r := newOrdersRouter(&OrdersHandler{Store: s, Writer: writer, Gateway: &fakeReader{}})

	body := bytes.NewBufferString(`{"status":"Pending"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/orders/o-1/status", body))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, writer.calls)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	s := newTestStore(t)
	r := newOrdersRouter(&OrdersHandler{Store: s, Writer: &fakeWriter{}, Gateway: &fakeReader{}})

	body := bytes.NewBufferString(`{"status":"Processing"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/orders/ghost/status", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrderFallsBackToGateway(t *testing.T) {
	s := newTestStore(t)
	reader := &fakeReader{order: testOrder("o-9", orders.StatusProcessing)}
	r := newOrdersRouter(&OrdersHandler{Store: s, Writer: &fakeWriter{}, Gateway: reader})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/o-9", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "o-9", got.ID)
}

func TestSelectionLifecycle(t *testing.T) {
	s := newTestStore(t, testOrder("o-1", orders.StatusPending))
	r := newOrdersRouter(&OrdersHandler{Store: s, Writer: &fakeWriter{}, Gateway: &fakeReader{}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/ghost/select", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/o-1/select", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/selected", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "o-1", got.ID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/orders/selection", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/selected", nil))
	assert.Equal(t, "null\n", rec.Body.String())
}

type fakeCatalog struct {
	products []orders.Product
	created  *gateway.ProductInput
	err      error
}

func (f *fakeCatalog) FetchProducts(context.Context) ([]orders.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) FetchLowStock(context.Context, int) ([]orders.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) CreateProduct(_ context.Context, in gateway.ProductInput) (orders.Product, error) {
	if err := gateway.ValidateProduct(in); err != nil {
		return orders.Product{}, err
	}
	f.created = &in
	return orders.Product{ID: "p-1", Name: in.Name}, nil
}

func (f *fakeCatalog) UpdateProduct(context.Context, string, gateway.ProductInput) error { return f.err }
func (f *fakeCatalog) UpdateStock(context.Context, string, int) error                    { return f.err }
func (f *fakeCatalog) DeleteProduct(context.Context, string) error                       { return f.err }

func TestCreateProductValidationMapsTo400(t *testing.T) {
	r := chi.NewRouter()
	(&ProductsHandler{Catalog: &fakeCatalog{}}).Register(r)

	body := bytes.NewBufferString(`{"name":"","category":"Fuel","current_price":"10.00","unit":"liter"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProduct(t *testing.T) {
	catalog := &fakeCatalog{}
	r := chi.NewRouter()
	(&ProductsHandler{Catalog: catalog}).Register(r)

	body := bytes.NewBufferString(`{"name":"Diesel","category":"Fuel","current_price":"62.75","stock_quantity":500,"unit":"liter","active":true}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, catalog.created)
	assert.Equal(t, "Diesel", catalog.created.Name)
}

func TestLowStockRejectsBadThreshold(t *testing.T) {
	r := chi.NewRouter()
	(&ProductsHandler{Catalog: &fakeCatalog{}}).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/low-stock?threshold=-3", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeSource struct {
	batch []orders.Order
}

func (f *fakeSource) FetchOrders(context.Context) ([]orders.Order, error) { return f.batch, nil }

func (f *fakeSource) FetchOrdersInRange(context.Context, time.Time, time.Time) ([]orders.Order, error) {
	return f.batch, nil
}

func (f *fakeSource) FetchProducts(context.Context) ([]orders.Product, error) { return nil, nil }

func (f *fakeSource) FetchDeliveries(context.Context, string) ([]orders.Delivery, error) {
	return nil, nil
}

func TestSummaryReport(t *testing.T) {
	completed := testOrder("o-1", orders.StatusCompleted)
	completed.TotalAmount = decimal.NewFromInt(100)
	pending := testOrder("o-2", orders.StatusPending)

	r := chi.NewRouter()
	(&ReportsHandler{Source: &fakeSource{batch: []orders.Order{completed, pending}}}).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/summary?start=2026-01-01&end=2026-01-31", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		TotalRevenue    decimal.Decimal `json:"total_revenue"`
		TotalOrders     int             `json:"total_orders"`
		CompletedOrders int             `json:"completed_orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.TotalRevenue.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, got.TotalOrders)
	assert.Equal(t, 1, got.CompletedOrders)
}

func TestReportRangeValidation(t *testing.T) {
	r := chi.NewRouter()
	(&ReportsHandler{Source: &fakeSource{}}).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/summary?start=not-a-date", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/summary?start=2026-02-01&end=2026-01-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardWithoutRedis(t *testing.T) {
	completed := testOrder("o-1", orders.StatusCompleted)
	r := chi.NewRouter()
	(&ReportsHandler{Source: &fakeSource{batch: []orders.Order{completed}}}).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		CompletedOrders int `json:"completed_orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.CompletedOrders)
}

type fakeCreds struct {
	byEmail map[string]*gateway.Credentials
}

func (f *fakeCreds) FindCredentialsByEmail(_ context.Context, email string) (*gateway.Credentials, error) {
	return f.byEmail[email], nil
}

type memRevocations struct {
	revoked map[string]bool
}

func (m *memRevocations) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.revoked[jti] = true
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return m.revoked[jti], nil
}

func newAuthRouter(t *testing.T) (*chi.Mux, string) {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)

	creds := &fakeCreds{byEmail: map[string]*gateway.Credentials{
		"admin@example.com": {
			Profile: orders.Profile{
				ID: "admin-1", FullName: "Site Admin",
				Email: "admin@example.com", Role: orders.RoleAdmin, Active: true,
			},
			PasswordHash: hash,
		},
	}}
	svc := auth.NewService(creds, auth.NewTokenService("test-secret"), &memRevocations{revoked: map[string]bool{}})
	h := &AuthHandler{Auth: svc}

	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)
		h.RegisterProtected(r)
		r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"profile_id": ProfileID(r.Context())})
		})
	})

	sess, err := svc.SignIn(context.Background(), "admin@example.com", "secret123")
	require.NoError(t, err)
	return r, sess.Token
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignInThenAccessProtected(t *testing.T) {
	r, token := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "admin-1", got["profile_id"])
}

func TestSignOutRevokesToken(t *testing.T) {
	r, token := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)

	body := bytes.NewBufferString(`{"email":"admin@example.com","password":"wrong"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/sign-in", body))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeDirectory struct {
	assigned *AssignRiderReq
}

func (f *fakeDirectory) FetchProfiles(context.Context, orders.Role) ([]orders.Profile, error) {
	return nil, nil
}

func (f *fakeDirectory) CreateRider(_ context.Context, email string, in gateway.ProfileInput) (orders.Profile, error) {
	return orders.Profile{ID: "r-1", Email: email, FullName: in.FullName, Role: orders.RoleRider}, nil
}

func (f *fakeDirectory) UpdateProfile(context.Context, string, gateway.ProfileInput) error {
	return nil
}

func (f *fakeDirectory) AssignRider(_ context.Context, orderID, riderID string) (orders.Delivery, error) {
	f.assigned = &AssignRiderReq{OrderID: orderID, RiderID: riderID}
	return orders.Delivery{ID: "d-1", OrderID: orderID, RiderID: riderID, Status: orders.DeliveryAssigned}, nil
}

func (f *fakeDirectory) UpdateDeliveryStatus(context.Context, string, orders.DeliveryStatus) error {
	return nil
}

func (f *fakeDirectory) FetchDeliveries(context.Context, string) ([]orders.Delivery, error) {
	return nil, nil
}

func TestAssignRiderRequiresBothIDs(t *testing.T) {
	r := chi.NewRouter()
	(&PeopleHandler{Directory: &fakeDirectory{}}).Register(r)

	body := bytes.NewBufferString(`{"order_id":"o-1"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deliveries", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignRider(t *testing.T) {
	dir := &fakeDirectory{}
	r := chi.NewRouter()
	(&PeopleHandler{Directory: dir}).Register(r)

	body := bytes.NewBufferString(`{"order_id":"o-1","rider_id":"r-1"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deliveries", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, dir.assigned)
	assert.Equal(t, "o-1", dir.assigned.OrderID)
	assert.Equal(t, "r-1", dir.assigned.RiderID)
}

func TestHealthz(t *testing.T) {
	r := NewRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
