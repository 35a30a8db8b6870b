package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/ltcms/pkg/authsdk"
	"github.com/aussiebroadwan/ltcms/pkg/csrfx"
	"github.com/aussiebroadwan/ltcms/pkg/jwtx"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"
)

// Internal failure kinds raised by the request pipeline. They are logged
// with full detail and collapse to an authsdk.APIError before responding.
var (
	ErrNoCredential         = errors.New("httpx: no credential presented")
	ErrRevoked              = errors.New("httpx: token revoked")
	ErrNoIdentity           = errors.New("httpx: no authenticated identity")
	ErrCSRFMissing          = errors.New("httpx: csrf header or cookie missing")
	ErrCSRFMismatch         = errors.New("httpx: csrf header and cookie differ")
	ErrAdminRequired        = errors.New("httpx: admin role required")
	ErrBlacklistUnavailable = errors.New("httpx: blacklist lookup failed")
)

// ToAPIError maps an internal error onto the external surface. The mapping
// is one-way: nothing in the result identifies the internal cause beyond
// the coarse message.
func ToAPIError(err error) *authsdk.APIError {
	var apiErr *authsdk.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr

	case errors.Is(err, ErrNoCredential), errors.Is(err, ErrNoIdentity):
		return authsdk.ErrAuthRequired

	case errors.Is(err, ErrRevoked):
		return authsdk.ErrTokenRevoked
	case errors.Is(err, jwtx.ErrExpired),
		errors.Is(err, jwtx.ErrInvalidSig),
		errors.Is(err, jwtx.ErrMalformed):
		return authsdk.ErrInvalidToken

	case errors.Is(err, ErrCSRFMissing):
		return authsdk.ErrCSRFMissing
	case errors.Is(err, ErrCSRFMismatch):
		return authsdk.ErrCSRFMismatch
	case errors.Is(err, csrfx.ErrWrongSubject):
		return authsdk.ErrCSRFWrongAccount
	case errors.Is(err, csrfx.ErrMalformed),
		errors.Is(err, csrfx.ErrUnsupportedVersion),
		errors.Is(err, csrfx.ErrExpired),
		errors.Is(err, csrfx.ErrShortNonce),
		errors.Is(err, csrfx.ErrBadSignature):
		return authsdk.ErrCSRFInvalid

	case errors.Is(err, ErrAdminRequired):
		return authsdk.ErrAdminRequired
	case errors.Is(err, ErrBadBody):
		return authsdk.ErrInvalidRequest

	default:
		return authsdk.ErrInternal
	}
}

// Reason returns the short internal name of err for log attributes.
func Reason(err error) string {
	reasons := []struct {
		err  error
		name string
	}{
		{ErrNoCredential, "no_credential"},
		{ErrNoIdentity, "no_identity"},
		{ErrRevoked, "revoked"},
		{ErrBlacklistUnavailable, "blacklist_unavailable"},
		{jwtx.ErrExpired, "expired"},
		{jwtx.ErrInvalidSig, "bad_signature"},
		{jwtx.ErrMalformed, "malformed"},
		{jwtx.ErrClockArithmetic, "clock_arithmetic"},
		{ErrCSRFMissing, "csrf_missing"},
		{ErrCSRFMismatch, "csrf_mismatch"},
		{csrfx.ErrWrongSubject, "wrong_subject"},
		{csrfx.ErrExpired, "expired"},
		{csrfx.ErrBadSignature, "bad_signature"},
		{csrfx.ErrShortNonce, "short_nonce"},
		{csrfx.ErrUnsupportedVersion, "unsupported_version"},
		{csrfx.ErrMalformed, "malformed"},
		{ErrAdminRequired, "insufficient_role"},
		{ErrBadBody, "bad_body"},
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) {
		return string(apiErr.Kind)
	}
	return "internal"
}

// WriteError logs err against the request logger and writes its external
// form.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := ToAPIError(err)
	log := slogx.FromContext(r.Context())

	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.Log(r.Context(), level, "request rejected",
		"reason", Reason(err),
		"status", apiErr.StatusCode,
		"err", err,
	)

	if apiErr.StatusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="ltcms"`)
	}
	apiErr.WriteError(w)
}
