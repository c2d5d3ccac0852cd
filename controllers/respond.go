package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront/middleware"
	"storefront/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON decodes the request body into v. Unknown fields are ignored.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	case errors.Is(err, services.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
		return
	case errors.Is(err, services.ErrConcurrentUpdate):
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, services.ErrStoreTimeout):
		status, message = http.StatusGatewayTimeout, "Database timeout"
	case errors.Is(err, services.ErrStoreUnavailable):
		status, message = http.StatusServiceUnavailable, "Database unavailable"
	}
	logger.Error("request failed",
		zap.String("request_id", middleware.RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	writeError(w, status, message)
}

// authorizeUser rejects requests whose token belongs to a different user
func authorizeUser(w http.ResponseWriter, r *http.Request, userID string) bool {
	if !middleware.CanActAs(r.Context(), userID) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

// hexID renders an inserted document id as the string handed to clients
func hexID(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}
