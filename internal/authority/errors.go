package authority

import "errors"

// Failure taxonomy for authority calls. Console handlers dispatch on these
// with errors.Is; the wrapped message carries the authority's own detail.
var (
	// ErrUnauthenticated indicates a missing or rejected credential.
	ErrUnauthenticated = errors.New("authority: unauthenticated")
	// ErrValidation indicates the authority rejected the payload.
	ErrValidation = errors.New("authority: validation failed")
	// ErrConflict indicates a business key collision.
	ErrConflict = errors.New("authority: conflict")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("authority: not found")
	// ErrUnavailable indicates a transport failure or upstream outage.
	ErrUnavailable = errors.New("authority: service unavailable")
)
