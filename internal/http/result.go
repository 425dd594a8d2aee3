package httpapi

import (
	"errors"
	"net/http"

	"deskhive/internal/domain"
)

// Result JSON envelope shared by every endpoint.
// - type: 'success' | 'error'
// - message: human-readable
// - result: payload
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// errorStatus maps the domain error taxonomy onto HTTP status codes.
// Everything unrecognized is an infrastructure failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrPastDate),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrInvalidGuest),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrAlreadyEnded),
		errors.Is(err, domain.ErrReservationInProgress):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
