package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/ltcms/pkg/secretx"
	"github.com/stretchr/testify/require"
)

const (
	goodBearer = "kP3Zr9vQm2Lx8TnW4Yb6Hc1Jd5Fg7Sa0Ue-Ri_Oy9Wq"
	goodCSRF   = "Qw7Er2Ty9Ui4Op1As6Df3Gh8Jk5Lz0Xc"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		BearerSecret:         goodBearer,
		CSRFSecret:           goodCSRF,
		DatabaseFile:         filepath.Join(t.TempDir(), "ltcms.db"),
		DatabaseMaxConns:     2,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 0,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"JWT_SECRET", "CSRF_SECRET", "AUTH_COOKIE_SECURE", "DATABASE_FILE", "DATABASE_MAX_CONNS",
		"PORT", "ENV", "SHUTDOWN_GRACE_PERIOD", "HOUSEKEEPING_INTERVAL", "TRUST_PROXY_HEADERS",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.False(t, cfg.InsecureCookies)
	require.Equal(t, "ltcms.db", cfg.DatabaseFile)
	require.Equal(t, 5, cfg.DatabaseMaxConns)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.False(t, cfg.TrustProxyHeaders)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_COOKIE_SECURE", "FALSE")
	t.Setenv("DATABASE_MAX_CONNS", "9")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("HOUSEKEEPING_INTERVAL", "15m")

	cfg := LoadConfig()
	require.True(t, cfg.InsecureCookies)
	require.Equal(t, 9, cfg.DatabaseMaxConns)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 15*time.Minute, cfg.HousekeepingInterval)
}

func TestNewRejectsWeakSecrets(t *testing.T) {
	tests := []struct {
		name    string
		bearer  string
		csrf    string
		wantErr error
	}{
		{"missing bearer", "", goodCSRF, secretx.ErrMissing},
		{"placeholder bearer", "changeme", goodCSRF, secretx.ErrPlaceholder},
		{"short csrf", goodBearer, "tooShort-123", secretx.ErrTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.BearerSecret = tt.bearer
			cfg.CSRFSecret = tt.csrf

			app, err := New(cfg)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, app)

			// The database is never opened.
			require.NoFileExists(t, cfg.DatabaseFile)
		})
	}
}

func TestNewBootstrapsAdmin(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminUsername = "admin"
	cfg.AdminPassword = "correct horse"

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown() })

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"role":"admin"`)
	for _, c := range rec.Result().Cookies() {
		require.True(t, c.Secure, "cookies default to Secure")
	}
}

func TestNewRejectsInvalidAdmin(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminUsername = "bad admin"
	cfg.AdminPassword = "pw"

	_, err := New(cfg)
	require.Error(t, err)
}

func TestShutdownWithoutRun(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Shutdown() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown blocked without Run")
	}
}
