package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/technix/fittrack/internal/service"
)

// response is the bare envelope. Endpoints with a payload (user, workouts,
// notifications) build their own struct carrying the same success/message
// fields.
type response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondSuccess(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: true, Message: message})
}

func respondFailure(w http.ResponseWriter, status int, message string, fields ...string) {
	writeJSON(w, status, response{Success: false, Message: message, Fields: fields})
}

// respondError maps the error taxonomy to HTTP statuses. Internal details
// never cross the boundary; unknown errors are logged and flattened to a
// generic 500.
func respondError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		respondFailure(w, http.StatusBadRequest, validationErr.Message, validationErr.Fields...)
		return
	}

	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists):
		respondFailure(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondFailure(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, service.ErrUserNotFound):
		respondFailure(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrWorkoutNotFound):
		respondFailure(w, http.StatusNotFound, "No such workout")
	case errors.Is(err, service.ErrNotificationNotFound):
		respondFailure(w, http.StatusNotFound, "Notification not found")
	case errors.Is(err, service.ErrWorkoutForbidden):
		respondFailure(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrEmailDelivery):
		// Retryable: the token is already persisted, only the send failed.
		slog.Error("email delivery failure", "error", err)
		respondFailure(w, http.StatusBadGateway, "Failed to send email, please try again")
	case errors.Is(err, service.ErrPlanUnavailable):
		respondFailure(w, http.StatusInternalServerError, "Failed to generate workout plan")
	default:
		slog.Error("request failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Something went wrong")
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return service.NewValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
