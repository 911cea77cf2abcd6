package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kaanchinar/petshop-storefront/internal/checkout"
	"github.com/kaanchinar/petshop-storefront/internal/client"
	"github.com/kaanchinar/petshop-storefront/internal/orders"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleServiceError converts errors from the coordinator and the remote
// clients to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, checkout.ErrMissingCheckoutData):
		respondError(w, http.StatusConflict, "missing_checkout_data", err.Error())
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, client.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, client.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "remote resource unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "remote call timed out")
	default:
		var remoteErr *client.RemoteError
		if errors.As(err, &remoteErr) {
			if remoteErr.StatusCode < http.StatusInternalServerError {
				respondError(w, remoteErr.StatusCode, remoteErr.Code, remoteErr.Message)
			} else {
				respondError(w, http.StatusBadGateway, "remote_error", "remote call failed")
			}
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
