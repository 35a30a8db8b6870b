package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/domain"
	"github.com/aussiebroadwan/ltcms/internal/auth/store"
	"github.com/aussiebroadwan/ltcms/pkg/csrfx"
	"github.com/aussiebroadwan/ltcms/pkg/jwtx"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"
)

// Session is a freshly minted bearer and CSRF token pair.
type Session struct {
	Bearer string
	CSRF   string
}

// SessionService mints session credentials and revokes them on logout.
type SessionService struct {
	Tokens *jwtx.Service
	CSRF   *csrfx.Manager
	Store  store.Store
	Now    func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Mint issues both tokens for username.
func (s *SessionService) Mint(username string, role domain.Role) (Session, error) {
	bearer, err := s.Tokens.Issue(username, role.String())
	if err != nil {
		return Session{}, fmt.Errorf("issue bearer: %w", err)
	}
	csrf, err := s.CSRF.Issue(username)
	if err != nil {
		return Session{}, fmt.Errorf("issue csrf: %w", err)
	}
	return Session{Bearer: bearer, CSRF: csrf}, nil
}

// Logout blacklists the token with fingerprint until its own expiry. The
// insert runs to completion even if the client goes away.
func (s *SessionService) Logout(ctx context.Context, subject, fingerprint string, expiresAt time.Time) error {
	err := s.Store.Blacklist().RevokeToken(context.WithoutCancel(ctx), domain.RevokedToken{
		TokenHash: fingerprint,
		Subject:   subject,
		ExpiresAt: expiresAt,
		RevokedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	slogx.FromContext(ctx).Info("session revoked", "user", subject)
	return nil
}
