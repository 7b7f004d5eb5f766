package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/centavohq/centavo/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError maps domain sentinels to HTTP status codes. Internal error
// detail never reaches the client; it goes to the log instead.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, common.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrDuplicateEntry):
		status, message = http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrInvalidInput):
		status, message = http.StatusBadRequest, userMessage(err)
	case errors.Is(err, common.ErrSweepInProgress):
		status, message = http.StatusConflict, "sweep already running"
	default:
		status, message = http.StatusInternalServerError, "internal error"
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	respondJSON(w, status, errorResponse{Error: message})
}

// userMessage surfaces the specific validation problem to the client.
func userMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

// invalidInput wraps a client-facing message around the input sentinel.
func invalidInput(msg string) error {
	return common.NewUserError(msg, common.ErrInvalidInput)
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidInput("malformed request body")
	}
	return nil
}
