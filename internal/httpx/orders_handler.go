package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
	"github.com/rjdelacruz/go-fuel-console.git/internal/store"
)

// OrderReader serves single-order lookups when the cache misses.
type OrderReader interface {
	FetchOrderByID(ctx context.Context, id string) (orders.Order, error)
}

type OrdersHandler struct {
	Store   *store.Store
	Writer  store.StatusWriter
	Gateway OrderReader
}

type UpdateStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/selected", h.selectedOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/select", h.selectOrder)
	r.Delete("/orders/selection", h.clearSelection)
}

// listOrders serves the reconciled in-memory list, newest first.
func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Snapshot())
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if o, ok := h.Store.Get(id); ok {
		writeJSON(w, http.StatusOK, o)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Gateway.FetchOrderByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// updateStatus requests a transition; the cache reflects it once the change
// comes back over the feed, so a success here is Accepted rather than OK.
func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.ApplyStatusChange(ctx, h.Writer, id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "requested_status": string(req.Status)})
}

func (h *OrdersHandler) selectOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.Store.Select(id) {
		writeError(w, &orders.NotFoundError{Entity: "order", ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) clearSelection(w http.ResponseWriter, r *http.Request) {
	h.Store.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) selectedOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.Store.Selected()
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
