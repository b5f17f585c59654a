package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"c3ingest/internal/contextutil"
	"c3ingest/internal/ingest"
	"c3ingest/internal/rag"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	var execErr *ingest.ExecError
	switch {
	case ingest.IsValidation(err), errors.Is(err, rag.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.As(err, &execErr):
		return http.StatusBadGateway
	case errors.Is(err, ingest.ErrObjectStoreDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	logger := contextutil.LoggerFromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		logger.WarnContext(ctx, "request rejected", "status", status, "error", err)
	}
	writeJSON(ctx, w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
