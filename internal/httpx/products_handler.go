package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rjdelacruz/go-fuel-console.git/internal/gateway"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// ProductCatalog is the slice of the gateway the inventory pages use.
type ProductCatalog interface {
	FetchProducts(ctx context.Context) ([]orders.Product, error)
	FetchLowStock(ctx context.Context, threshold int) ([]orders.Product, error)
	CreateProduct(ctx context.Context, in gateway.ProductInput) (orders.Product, error)
	UpdateProduct(ctx context.Context, id string, in gateway.ProductInput) error
	UpdateStock(ctx context.Context, id string, quantity int) error
	DeleteProduct(ctx context.Context, id string) error
}

type ProductsHandler struct {
	Catalog ProductCatalog
}

type UpdateStockReq struct {
	StockQuantity int `json:"stock_quantity"`
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/low-stock", h.lowStock)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Patch("/products/{id}/stock", h.updateStock)
	r.Delete("/products/{id}", h.deleteProduct)
}

func (h *ProductsHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.FetchProducts(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "threshold must be a positive integer"})
			return
		}
		threshold = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.FetchLowStock(ctx, threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in gateway.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Catalog.CreateProduct(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in gateway.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.UpdateProduct(ctx, id, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.StockQuantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock_quantity must not be negative"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.UpdateStock(ctx, id, req.StockQuantity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.DeleteProduct(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
