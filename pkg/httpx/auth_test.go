package httpx_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/ltcms/pkg/cryptox"
	"github.com/aussiebroadwan/ltcms/pkg/csrfx"
	"github.com/aussiebroadwan/ltcms/pkg/httpx"
	"github.com/aussiebroadwan/ltcms/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var (
	testBearerKey = []byte("kP3Zr9vQm2Lx8TnW4Yb6Hc1Jd5Fg7Sa0Ue-Ri_Oy9Wq")
	testCSRFKey   = []byte("Qw7Er2Ty9Ui4Op1As6Df3Gh8Jk5Lz0Xc")
)

type fakeBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
	err     error
}

func (b *fakeBlacklist) IsRevoked(_ context.Context, fp string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return false, b.err
	}
	return b.revoked[fp], nil
}

func (b *fakeBlacklist) revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.revoked == nil {
		b.revoked = map[string]bool{}
	}
	b.revoked[cryptox.FingerprintToken(token)] = true
}

type fixture struct {
	tokens    *jwtx.Service
	csrf      *csrfx.Manager
	blacklist *fakeBlacklist
	authn     *httpx.Authenticator
	guard     *httpx.CSRFGuard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := jwtx.NewService(testBearerKey)
	require.NoError(t, err)
	csrf, err := csrfx.NewManager(testCSRFKey)
	require.NoError(t, err)

	bl := &fakeBlacklist{}
	return &fixture{
		tokens:    tokens,
		csrf:      csrf,
		blacklist: bl,
		authn:     &httpx.Authenticator{Verifier: tokens, Blacklist: bl},
		guard:     &httpx.CSRFGuard{Validator: csrf},
	}
}

func (f *fixture) bearer(t *testing.T, user, role string) string {
	t.Helper()
	tok, err := f.tokens.Issue(user, role)
	require.NoError(t, err)
	return tok
}

func (f *fixture) csrfToken(t *testing.T, user string) string {
	t.Helper()
	tok, err := f.csrf.Issue(user)
	require.NoError(t, err)
	return tok
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return strings.TrimSpace(string(body))
}

func TestAuthenticatorResolve(t *testing.T) {
	f := newFixture(t)
	alice := f.bearer(t, "alice", jwtx.RoleUser)
	bob := f.bearer(t, "bob", jwtx.RoleAdmin)

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+alice)

		id, err := f.authn.Resolve(req)
		require.NoError(t, err)
		require.Equal(t, "alice", id.Subject())
		require.Equal(t, jwtx.RoleUser, id.Role())
		require.False(t, id.IsAdmin())
		require.Equal(t, cryptox.FingerprintToken(alice), id.Fingerprint())
		require.False(t, id.ExpiresAt().IsZero())
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bEaReR "+alice)

		id, err := f.authn.Resolve(req)
		require.NoError(t, err)
		require.Equal(t, "alice", id.Subject())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: bob})

		id, err := f.authn.Resolve(req)
		require.NoError(t, err)
		require.Equal(t, "bob", id.Subject())
		require.True(t, id.IsAdmin())
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+alice)
		req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: bob})

		id, err := f.authn.Resolve(req)
		require.NoError(t, err)
		require.Equal(t, "alice", id.Subject())
	})

	t.Run("malformed header falls back to cookie", func(t *testing.T) {
		for _, h := range []string{"Basic abc", "Bearer", "Bearer ", "Bearer a b", alice} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", h)
			req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: bob})

			id, err := f.authn.Resolve(req)
			require.NoError(t, err, h)
			require.Equal(t, "bob", id.Subject(), h)
		}
	})

	t.Run("no credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := f.authn.Resolve(req)
		require.ErrorIs(t, err, httpx.ErrNoCredential)

		req.Header.Set("Authorization", "Basic abc")
		_, err = f.authn.Resolve(req)
		require.ErrorIs(t, err, httpx.ErrNoCredential)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		_, err := f.authn.Resolve(req)
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("revoked", func(t *testing.T) {
		tok := f.bearer(t, "carol", jwtx.RoleUser)
		f.blacklist.revoke(tok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		_, err := f.authn.Resolve(req)
		require.ErrorIs(t, err, httpx.ErrRevoked)
	})

	t.Run("blacklist failure", func(t *testing.T) {
		authn := &httpx.Authenticator{
			Verifier:  f.tokens,
			Blacklist: &fakeBlacklist{err: errors.New("disk on fire")},
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+alice)

		_, err := authn.Resolve(req)
		require.ErrorIs(t, err, httpx.ErrBlacklistUnavailable)
		require.Equal(t, http.StatusInternalServerError, httpx.ToAPIError(err).StatusCode)
	})
}

func TestAuthenticatorRequire(t *testing.T) {
	f := newFixture(t)

	var seen string
	h := f.authn.Require(func(w http.ResponseWriter, a httpx.Authenticated) {
		seen = a.Identity().Subject()
		id, ok := httpx.IdentityFromContext(a.Request().Context())
		require.True(t, ok)
		require.Equal(t, seen, id.Subject())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("passes identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+f.bearer(t, "alice", jwtx.RoleUser))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "alice", seen)
	})

	t.Run("rejects with challenge", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, `Bearer realm="ltcms"`, rec.Header().Get("WWW-Authenticate"))
		require.JSONEq(t, `{"error":"Authentication required"}`, decodeError(t, rec))
	})

	t.Run("revoked", func(t *testing.T) {
		tok := f.bearer(t, "dave", jwtx.RoleUser)
		f.blacklist.revoke(tok)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"Token has been revoked"}`, decodeError(t, rec))
	})

	t.Run("inner middleware sees identity", func(t *testing.T) {
		var inner string
		probe := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inner, _ = r.Context().Value(httpx.CtxKeyUserID).(string)
				next.ServeHTTP(w, r)
			})
		}
		h := f.authn.Require(func(w http.ResponseWriter, a httpx.Authenticated) {}, probe)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+f.bearer(t, "erin", jwtx.RoleUser))
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, "erin", inner)
	})
}

func TestIdentityFromContextEmpty(t *testing.T) {
	_, ok := httpx.IdentityFromContext(context.Background())
	require.False(t, ok)
}
