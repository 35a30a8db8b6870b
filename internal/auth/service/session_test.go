package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/domain"
	"github.com/aussiebroadwan/ltcms/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSessionMint(t *testing.T) {
	env := newTestEnv(t)

	sess, err := env.sessions.Mint("erin", domain.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, sess.Bearer)
	require.NotEmpty(t, sess.CSRF)

	claims, err := env.sessions.Tokens.Verify(sess.Bearer)
	require.NoError(t, err)
	require.Equal(t, "erin", claims.Subject)
	require.Equal(t, "user", claims.Role)

	require.NoError(t, env.sessions.CSRF.Validate(sess.CSRF, "erin"))

	_, err = env.sessions.Mint("", domain.RoleUser)
	require.Error(t, err)

	_, err = env.sessions.Mint("erin", domain.Role("root"))
	require.Error(t, err)
}

func TestSessionLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sess, err := env.sessions.Mint("frank", domain.RoleAdmin)
	require.NoError(t, err)
	claims, err := env.sessions.Tokens.Verify(sess.Bearer)
	require.NoError(t, err)

	fp := cryptox.FingerprintToken(sess.Bearer)
	require.NoError(t, env.sessions.Logout(ctx, "frank", fp, claims.Expiry()))

	revoked, err := env.store.Blacklist().IsRevoked(ctx, fp)
	require.NoError(t, err)
	require.True(t, revoked)

	// Revoking twice is harmless.
	require.NoError(t, env.sessions.Logout(ctx, "frank", fp, claims.Expiry()))
}

func TestSessionLogoutIgnoresCancellation(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fp := cryptox.FingerprintToken("some.bearer.token")
	require.NoError(t, env.sessions.Logout(ctx, "gina", fp, time.Now().Add(time.Hour)))

	revoked, err := env.store.Blacklist().IsRevoked(context.Background(), fp)
	require.NoError(t, err)
	require.True(t, revoked)
}
