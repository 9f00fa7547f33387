package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rjdelacruz/go-fuel-console.git/internal/auth"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

type ctxKey string

const ctxKeyProfileID ctxKey = "profile_id"

// ProfileID returns the signed-in admin's profile id from the request
// context, set by RequireSession.
func ProfileID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyProfileID).(string)
	return id
}

type SignInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandler struct {
	Auth *auth.Service
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/sign-in", h.signIn)
}

// RegisterProtected mounts the endpoints that need an existing session.
func (h *AuthHandler) RegisterProtected(r chi.Router) {
	r.Post("/auth/sign-out", h.signOut)
	r.Get("/auth/session", h.session)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req SignInReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	sess, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if err := h.Auth.SignOut(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"profile_id": ProfileID(r.Context())})
}

// RequireSession rejects requests without a valid, unrevoked bearer token.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, &orders.AuthError{Reason: "missing bearer token"})
			return
		}
		profileID, err := h.Auth.CurrentSession(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyProfileID, profileID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
