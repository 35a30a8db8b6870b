package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/ltcms/pkg/cryptox"
	"github.com/aussiebroadwan/ltcms/pkg/jwtx"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"
)

// Verifier checks a bearer token. *jwtx.Service implements it.
type Verifier interface {
	Verify(token string) (jwtx.Claims, error)
}

// Blacklist reports whether a token fingerprint has been revoked.
type Blacklist interface {
	IsRevoked(ctx context.Context, fingerprint string) (bool, error)
}

// Authenticated is the evidence that a request passed the Authenticator.
// Values can only be constructed inside this package.
type Authenticated struct {
	r  *http.Request
	id Identity
}

// Request returns the request, whose context carries the identity.
func (a Authenticated) Request() *http.Request { return a.r }

// Identity returns the verified identity.
func (a Authenticated) Identity() Identity { return a.id }

// AuthenticatedHandlerFunc handles a request that has a verified identity.
type AuthenticatedHandlerFunc func(w http.ResponseWriter, a Authenticated)

// Authenticator locates, verifies and revocation-checks a request's bearer
// credential. A nil Blacklist skips the revocation check.
type Authenticator struct {
	Verifier  Verifier
	Blacklist Blacklist
}

// Resolve runs extraction for r. The Authorization header wins over the
// session cookie.
func (a *Authenticator) Resolve(r *http.Request) (Identity, error) {
	token, ok := bearerFromHeader(r.Header.Get("Authorization"))
	if !ok {
		token, ok = bearerFromCookie(r)
	}
	if !ok {
		return Identity{}, ErrNoCredential
	}

	claims, err := a.Verifier.Verify(token)
	if err != nil {
		return Identity{}, err
	}

	fp := cryptox.FingerprintToken(token)
	if a.Blacklist != nil {
		revoked, err := a.Blacklist.IsRevoked(r.Context(), fp)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %w", ErrBlacklistUnavailable, err)
		}
		if revoked {
			return Identity{}, ErrRevoked
		}
	}

	return Identity{
		subject:     claims.Subject,
		role:        claims.Role,
		expiresAt:   claims.Expiry(),
		fingerprint: fp,
	}, nil
}

// Require runs extraction and hands the result to next. The inner
// middlewares run after the identity is attached to the context and
// before next, so per-user rate limits can key on the subject.
func (a *Authenticator) Require(next AuthenticatedHandlerFunc, inner ...Middleware) http.Handler {
	final := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFromContext(r.Context())
		next(w, Authenticated{r: r, id: id})
	}), inner...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Resolve(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		final.ServeHTTP(w, withIdentity(r, id))
	})
}

// Middleware is the http.Handler form of Require for plain handler chains.
// Downstream handlers read the identity with IdentityFromContext.
func (a *Authenticator) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Resolve(r)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, withIdentity(r, id))
		})
	}
}

func withIdentity(r *http.Request, id Identity) *http.Request {
	ctx := contextWithAuth(r.Context(), id)
	ctx = slogx.With(ctx, "user", id.subject)
	return r.WithContext(ctx)
}

// bearerFromHeader accepts exactly "Bearer <token>" with a case-insensitive
// scheme.
func bearerFromHeader(h string) (string, bool) {
	if h == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func bearerFromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
