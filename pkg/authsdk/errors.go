package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind is the coarse error category visible to clients.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindBadRequest      Kind = "bad_request"
	KindTooManyRequests Kind = "too_many_requests"
	KindInternal        Kind = "internal"
)

// APIError is the only error shape that leaves the server. It is used both
// by handlers (to write responses) and by Client (to report them).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Kind is derived from the status code and never serialized
	Kind Kind `json:"-"`

	// Message is the user-visible text
	Message string `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches on status and message so a decoded client error compares equal
// to the predefined value.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Message == t.Message
}

// WriteError writes {"error": Message} with no-store caching.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidCredentials is returned by login for an unknown user and a
	// wrong password alike.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Kind:       KindUnauthorized,
		Message:    "Invalid credentials",
	}

	// ErrAuthRequired is returned when no credential was presented.
	ErrAuthRequired = &APIError{
		StatusCode: http.StatusUnauthorized,
		Kind:       KindUnauthenticated,
		Message:    "Authentication required",
	}

	// ErrInvalidToken covers bad signatures, malformed and expired tokens.
	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Kind:       KindUnauthorized,
		Message:    "Invalid or expired token",
	}

	// ErrTokenRevoked is returned for a blacklisted token.
	ErrTokenRevoked = &APIError{
		StatusCode: http.StatusUnauthorized,
		Kind:       KindUnauthorized,
		Message:    "Token has been revoked",
	}

	ErrCSRFMissing = &APIError{
		StatusCode: http.StatusForbidden,
		Kind:       KindForbidden,
		Message:    "Missing CSRF token",
	}

	ErrCSRFMismatch = &APIError{
		StatusCode: http.StatusForbidden,
		Kind:       KindForbidden,
		Message:    "CSRF token mismatch",
	}

	ErrCSRFWrongAccount = &APIError{
		StatusCode: http.StatusForbidden,
		Kind:       KindForbidden,
		Message:    "CSRF token not issued for this account",
	}

	ErrCSRFInvalid = &APIError{
		StatusCode: http.StatusForbidden,
		Kind:       KindForbidden,
		Message:    "Invalid CSRF token",
	}

	ErrAdminRequired = &APIError{
		StatusCode: http.StatusForbidden,
		Kind:       KindForbidden,
		Message:    "Admin access required",
	}

	ErrInvalidRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Kind:       KindBadRequest,
		Message:    "Invalid request",
	}

	ErrLoginBlocked = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Kind:       KindTooManyRequests,
		Message:    "Too many failed login attempts",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Kind:       KindTooManyRequests,
		Message:    "Too many requests",
	}

	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Kind:       KindInternal,
		Message:    "Internal server error",
	}
)

// NewBadRequest returns a bad_request error with a custom message. Messages
// must never reveal whether a username exists.
func NewBadRequest(message string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		Kind:       KindBadRequest,
		Message:    message,
	}
}

// kindForStatus maps a status code to its coarse kind.
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	default:
		return KindInternal
	}
}

var predefined = []*APIError{
	ErrInvalidCredentials, ErrAuthRequired, ErrInvalidToken, ErrTokenRevoked,
	ErrCSRFMissing, ErrCSRFMismatch, ErrCSRFWrongAccount, ErrCSRFInvalid,
	ErrAdminRequired, ErrInvalidRequest, ErrLoginBlocked, ErrRateLimited, ErrInternal,
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	e := &APIError{StatusCode: resp.StatusCode, Kind: kindForStatus(resp.StatusCode)}
	if err := json.Unmarshal(body, e); err != nil || e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return e
	}

	for _, p := range predefined {
		if p.Is(e) {
			e.Kind = p.Kind
			break
		}
	}
	return e
}
