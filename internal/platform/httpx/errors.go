// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("dependency unavailable")
)

type problemKind struct {
	sentinel error
	status   int
	slug     string
	title    string
}

var problemKinds = []problemKind{
	{ErrNotFound, http.StatusNotFound, "not-found", "Not Found"},
	{ErrValidation, http.StatusBadRequest, "validation", "Validation Failed"},
	{ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "Service Unavailable"},
}

func kindOf(err error) (problemKind, bool) {
	for _, k := range problemKinds {
		if errors.Is(err, k.sentinel) {
			return k, true
		}
	}
	return problemKind{}, false
}

// StatusOf returns the HTTP status RespondError would use for err.
func StatusOf(err error) int {
	if k, ok := kindOf(err); ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// RespondError maps domain errors to HTTP responses using RFC7807. Errors
// outside the sentinels become a 500 without detail.
func RespondError(w http.ResponseWriter, err error) {
	k, ok := kindOf(err)
	if !ok {
		Problem(w, http.StatusInternalServerError, "/problems/internal", "Internal Error", "")
		return
	}
	Problem(w, k.status, "/problems/"+k.slug, k.title, err.Error())
}
