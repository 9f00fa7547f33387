package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rjdelacruz/go-fuel-console.git/internal/gateway"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// ProfileDirectory covers the riders and customers pages plus delivery
// assignment.
type ProfileDirectory interface {
	FetchProfiles(ctx context.Context, role orders.Role) ([]orders.Profile, error)
	CreateRider(ctx context.Context, email string, in gateway.ProfileInput) (orders.Profile, error)
	UpdateProfile(ctx context.Context, id string, in gateway.ProfileInput) error
	AssignRider(ctx context.Context, orderID, riderID string) (orders.Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, id string, requested orders.DeliveryStatus) error
	FetchDeliveries(ctx context.Context, riderID string) ([]orders.Delivery, error)
}

type PeopleHandler struct {
	Directory ProfileDirectory
}

type CreateRiderReq struct {
	Email string `json:"email"`
	gateway.ProfileInput
}

type AssignRiderReq struct {
	OrderID string `json:"order_id"`
	RiderID string `json:"rider_id"`
}

type UpdateDeliveryReq struct {
	Status orders.DeliveryStatus `json:"status"`
}

func (h *PeopleHandler) Register(r chi.Router) {
	r.Get("/riders", h.listRiders)
	r.Post("/riders", h.createRider)
	r.Get("/customers", h.listCustomers)
	r.Put("/profiles/{id}", h.updateProfile)
	r.Get("/deliveries", h.listDeliveries)
	r.Post("/deliveries", h.assignRider)
	r.Patch("/deliveries/{id}/status", h.updateDelivery)
}

func (h *PeopleHandler) listRiders(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, orders.RoleRider)
}

func (h *PeopleHandler) listCustomers(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, orders.RoleCustomer)
}

func (h *PeopleHandler) listByRole(w http.ResponseWriter, r *http.Request, role orders.Role) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Directory.FetchProfiles(ctx, role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *PeopleHandler) createRider(w http.ResponseWriter, r *http.Request) {
	var req CreateRiderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Directory.CreateRider(ctx, req.Email, req.ProfileInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PeopleHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in gateway.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Directory.UpdateProfile(ctx, id, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PeopleHandler) listDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ds, err := h.Directory.FetchDeliveries(ctx, r.URL.Query().Get("rider_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *PeopleHandler) assignRider(w http.ResponseWriter, r *http.Request) {
	var req AssignRiderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.OrderID == "" || req.RiderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_id and rider_id are required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := h.Directory.AssignRider(ctx, req.OrderID, req.RiderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *PeopleHandler) updateDelivery(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateDeliveryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Directory.UpdateDeliveryStatus(ctx, id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
