// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeDomainError maps service errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrInvoiceNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, model.ErrDuplicateSKU):
		WriteJSONError(w, http.StatusConflict, "duplicate_sku", err.Error())
	case errors.Is(err, model.ErrEmptyCart):
		WriteJSONError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, model.ErrInvalidProduct):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		obs.Logger.Error("request_failed", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
