package httpx

import "net/http"

// RequireAdmin gates a plain handler chain on the admin role. It must run
// after Authenticator.Middleware.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteError(w, r, ErrNoIdentity)
				return
			}
			if !id.IsAdmin() {
				WriteError(w, r, ErrAdminRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly is the typed form of RequireAdmin.
func AdminOnly(next AuthenticatedHandlerFunc) AuthenticatedHandlerFunc {
	return func(w http.ResponseWriter, a Authenticated) {
		if !a.id.IsAdmin() {
			WriteError(w, a.r, ErrAdminRequired)
			return
		}
		next(w, a)
	}
}
