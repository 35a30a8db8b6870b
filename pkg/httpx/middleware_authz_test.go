package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/ltcms/pkg/httpx"
	"github.com/aussiebroadwan/ltcms/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t)

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), f.authn.Middleware(), httpx.RequireAdmin())

	tests := []struct {
		name string
		role string
		code int
	}{
		{"admin", jwtx.RoleAdmin, http.StatusOK},
		{"user", jwtx.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+f.bearer(t, "alice", tt.role))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.code, rec.Code)
		})
	}

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.RequireAdmin()(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminOnly(t *testing.T) {
	f := newFixture(t)

	h := f.authn.Require(httpx.AdminOnly(func(w http.ResponseWriter, a httpx.Authenticated) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+f.bearer(t, "bob", jwtx.RoleAdmin))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+f.bearer(t, "alice", jwtx.RoleUser))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"Admin access required"}`, decodeError(t, rec))
}
