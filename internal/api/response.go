package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linsalefe/pos-plataform/internal/domain"
)

// StatusClientClosedRequest is logged when the caller hung up before the
// reply was generated.
const StatusClientClosedRequest = 499

// upstreamRetryAfter is the hint, in seconds, sent with OpenAI and
// Google Calendar failures.
const upstreamRetryAfter = "5"

var statusByCode = map[string]int{
	domain.ErrCodeValidation:       http.StatusBadRequest,
	domain.ErrCodeNotFound:         http.StatusNotFound,
	domain.ErrCodeConflict:         http.StatusConflict,
	domain.ErrCodeUnauthorized:     http.StatusUnauthorized,
	domain.ErrCodeInvalidOperation: http.StatusUnprocessableEntity,
	domain.ErrCodeUpstream:         http.StatusBadGateway,
	domain.ErrCodeInternalError:    http.StatusInternalServerError,
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSON writes data with the given status. Nil data writes no body.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode response", slog.Any("error", err))
	}
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP maps an error to its HTTP status. Domain codes win over
// context errors; unknown codes and plain errors are internal errors.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *domain.DomainError
	switch {
	case errors.As(err, &domainErr):
		if status, ok := statusByCode[domainErr.Code]; ok {
			return status
		}
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes the response for err. Only domain error messages reach
// the client; anything else is logged and reported as an internal error.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status := DomainErrorToHTTP(err)

	switch status {
	case StatusClientClosedRequest:
		slog.InfoContext(r.Context(), "client closed request", slog.String("path", r.URL.Path))
		w.WriteHeader(status)
		return
	case http.StatusGatewayTimeout:
		slog.WarnContext(r.Context(), "request timed out", slog.String("path", r.URL.Path), slog.Any("error", err))
		Error(w, status, "upstream timed out")
		return
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		slog.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		Error(w, status, "internal server error")
		return
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	if status == http.StatusBadGateway {
		w.Header().Set("Retry-After", upstreamRetryAfter)
	}
	JSON(w, status, ErrorResponse{Error: domainErr.Message, Code: domainErr.Code})
}
