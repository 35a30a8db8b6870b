package httpx

import (
	"crypto/subtle"
	"net/http"
)

// CSRFValidator checks a CSRF token against the session subject.
// *csrfx.Manager implements it.
type CSRFValidator interface {
	Validate(token, username string) error
}

// CSRFChecked is the evidence that a request passed both the Authenticator
// and the CSRF guard.
type CSRFChecked struct {
	Authenticated
}

// CheckedHandlerFunc handles a request that passed the CSRF guard.
type CheckedHandlerFunc func(w http.ResponseWriter, c CSRFChecked)

// CSRFGuard enforces the double-submit check on state-changing requests.
type CSRFGuard struct {
	Validator CSRFValidator
}

// IsSafeMethod reports whether method is exempt from CSRF checks.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// Check runs the guard protocol for r on behalf of id. ok is false when no
// identity is available.
func (g *CSRFGuard) Check(r *http.Request, id Identity, ok bool) error {
	if IsSafeMethod(r.Method) {
		return nil
	}
	if !ok || id.subject == "" {
		return ErrNoIdentity
	}

	header := r.Header.Get(CSRFHeaderName)
	cookie, err := r.Cookie(CSRFCookieName)
	if header == "" || err != nil || cookie.Value == "" {
		return ErrCSRFMissing
	}

	if subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
		return ErrCSRFMismatch
	}

	return g.Validator.Validate(cookie.Value, id.subject)
}

// Protect adapts a CSRF-checked handler into an authenticated one.
func (g *CSRFGuard) Protect(next CheckedHandlerFunc) AuthenticatedHandlerFunc {
	return func(w http.ResponseWriter, a Authenticated) {
		if err := g.Check(a.r, a.id, true); err != nil {
			WriteError(w, a.r, err)
			return
		}
		next(w, CSRFChecked{Authenticated: a})
	}
}

// Middleware is the http.Handler form of Protect. It must run after
// Authenticator.Middleware.
func (g *CSRFGuard) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if err := g.Check(r, id, ok); err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
