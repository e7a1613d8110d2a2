package httpx

import (
	"errors"
	"net/http"

	"github.com/ragster/console/internal/authority"
	"github.com/ragster/console/internal/session"
)

// RespondError maps authority taxonomy errors to HTTP problem responses.
// The authority's own detail travels with the wrapped error and is surfaced
// verbatim so the console can show it next to the triggering form.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, authority.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthenticated", "session expired or missing; sign in again")
	case errors.Is(err, authority.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", detailOf(err, authority.ErrNotFound))
	case errors.Is(err, authority.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", detailOf(err, authority.ErrConflict))
	case errors.Is(err, authority.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", detailOf(err, authority.ErrValidation))
	case errors.Is(err, authority.ErrUnavailable):
		Problem(w, http.StatusBadGateway, "Service Unavailable", "the authority service could not be reached")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// detailOf strips the sentinel prefix from a wrapped taxonomy error,
// leaving only the authority's message.
func detailOf(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	if msg == sentinel.Error() {
		return ""
	}
	return msg
}
