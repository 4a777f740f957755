package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/photolens/photolens/domain/photo"
	"github.com/photolens/photolens/infrastructure/imaging"
	"github.com/photolens/photolens/infrastructure/persistence"
	"github.com/photolens/photolens/infrastructure/provider"
)

// errorResponse is the JSON body returned for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps an error to an HTTP status and writes a JSON error body.
//
// Validation failures map to 400, unreadable query images to 422, provider
// failures to 502 and store failures to 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	} else {
		logger.Warn("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}

	WriteJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var provErr *provider.ProviderError
	var storeErr *persistence.StoreError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, photo.ErrNoQueryInput),
		errors.Is(err, photo.ErrEmptyEmbedding),
		errors.Is(err, io.EOF),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr):
		return http.StatusBadRequest
	case errors.Is(err, imaging.ErrUnreadableImage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, persistence.ErrDimensionMismatch):
		return http.StatusConflict
	case errors.As(err, &provErr):
		return http.StatusBadGateway
	case errors.As(err, &storeErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
