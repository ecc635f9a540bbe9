package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-files/pkg/simplefiles"
)

// Error messages returned in response bodies.
const (
	msgUnauthorized   = "Unauthorized"
	msgNotFound       = "Not found"
	msgFolderNoData   = "A folder has no contents"
	msgInvalidJSON    = "Invalid JSON body"
	msgBodyTooLarge   = "Request body too large"
	msgInternalServer = "Internal server error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes {"error": message} with the given status.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

// statusFor maps a service error to its HTTP status and public message.
// Anything outside the domain taxonomy is a server fault.
func statusFor(err error) (int, string) {
	var validationErr *simplefiles.ValidationError
	switch {
	case errors.Is(err, simplefiles.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, simplefiles.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Reason
	case errors.Is(err, simplefiles.ErrFolderHasNoContent):
		return http.StatusBadRequest, msgFolderNoData
	}
	return http.StatusInternalServerError, msgInternalServer
}

// respondError logs server faults and writes the mapped response.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "op", op, "path", r.URL.Path, "error", err)
	}
	writeError(w, r, status, message)
}
