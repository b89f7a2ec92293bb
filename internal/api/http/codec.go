package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"library-rental-backend/internal/domain"
	"library-rental-backend/internal/logger"
)

const maxBodyBytes = 1 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// decodeJSON reads a single JSON object from the request body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalidf("request body is required")
		}
		return domain.Invalidf("malformed JSON body: %v", err)
	}
	return nil
}

// statusFor maps domain error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotBorrower), errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrBookUnavailable),
		errors.Is(err, domain.ErrAlreadyReturned),
		errors.Is(err, domain.ErrBookInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing text for err. Wrapping context added by the service
// layer is dropped; invalid input keeps its detail.
func errorMessage(err error) string {
	kinds := []error{
		domain.ErrNotFound, domain.ErrNotBorrower, domain.ErrForbidden,
		domain.ErrBookUnavailable, domain.ErrAlreadyReturned, domain.ErrBookInUse,
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		msg := err.Error()
		if i := strings.Index(msg, domain.ErrInvalidInput.Error()); i >= 0 {
			return msg[i:]
		}
		return domain.ErrInvalidInput.Error()
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errorMessage(err)})
}
