package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rjdelacruz/go-fuel-console.git/internal/logger"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error types onto HTTP statuses in one place so
// every handler reports failures the same way.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *orders.ValidationError
		transition *orders.InvalidTransitionError
		notFound   *orders.NotFoundError
		authErr    *orders.AuthError
		fetchErr   *orders.FetchError
	)
	switch {
	case errors.As(err, &transition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": transition.Error()})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &authErr):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": authErr.Reason})
	case errors.As(err, &fetchErr):
		logger.Log.Error("upstream fetch failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream fetch failed"})
	default:
		logger.Log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
