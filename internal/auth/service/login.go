package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/domain"
	"github.com/aussiebroadwan/ltcms/internal/auth/store"
	"github.com/aussiebroadwan/ltcms/pkg/cryptox"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"
)

// LoginDelay is the pause inserted after credential verification on every
// path that reaches it.
const LoginDelay = 100 * time.Millisecond

var (
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	ErrLoginBlocked       = errors.New("service: login temporarily blocked")
)

// LoginResult is a successful login.
type LoginResult struct {
	User    domain.User
	Session Session
}

// LoginService verifies credentials with equalized timing and tracks
// failed attempts per username.
type LoginService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Sessions *SessionService
	Lockout  store.LockoutPolicy
	Delay    time.Duration
	Now      func() time.Time
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *LoginService) delay() time.Duration {
	if s.Delay > 0 {
		return s.Delay
	}
	return LoginDelay
}

// AttemptKey is the login-attempt counter key for username.
func AttemptKey(username string) string {
	return cryptox.FingerprintToken(strings.ToLower(username))
}

// Login checks username and password and mints a session on success.
//
// An unknown username still costs one bcrypt comparison against the dummy
// hash, and every verified attempt waits Delay before returning, so the
// caller cannot tell a missing account from a wrong password. Counter
// writes are detached from ctx and always complete.
func (s *LoginService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return nil, err
	}
	l := slogx.FromContext(ctx)
	key := AttemptKey(username)

	attempt, err := s.Store.LoginAttempts().GetLoginAttempt(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load login attempts: %w", err)
	case attempt.Blocked(s.now()):
		l.Warn("login refused while blocked", "fail_count", attempt.FailCount)
		if err := s.pause(ctx); err != nil {
			return nil, err
		}
		return nil, ErrLoginBlocked
	}

	user, verr := s.verify(ctx, username, password)

	if errors.Is(verr, ErrInvalidCredentials) {
		if err := s.recordFailure(ctx, key); err != nil {
			return nil, err
		}
	}

	if err := s.pause(ctx); err != nil {
		return nil, err
	}
	if verr != nil {
		return nil, verr
	}

	if err := s.Store.LoginAttempts().ResetLoginAttempts(context.WithoutCancel(ctx), key); err != nil {
		return nil, fmt.Errorf("reset login attempts: %w", err)
	}

	sess, err := s.Sessions.Mint(user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	l.Info("login succeeded", "user", user.Username, "role", user.Role)
	return &LoginResult{User: user, Session: sess}, nil
}

// verify always performs exactly one bcrypt comparison.
func (s *LoginService) verify(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		s.Hasher.VerifyDummy(password)
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		s.Hasher.VerifyDummy(password)
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	switch err := s.Hasher.Verify(password, user.PasswordHash); {
	case errors.Is(err, cryptox.ErrMismatch):
		return domain.User{}, ErrInvalidCredentials
	case err != nil:
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	return user, nil
}

func (s *LoginService) recordFailure(ctx context.Context, key string) error {
	policy := s.Lockout
	if policy == (store.LockoutPolicy{}) {
		policy = store.DefaultLockout
	}

	attempt, err := s.Store.LoginAttempts().RecordFailure(context.WithoutCancel(ctx), key, s.now(), policy)
	if err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}

	l := slogx.FromContext(ctx)
	if attempt.Blocked(s.now()) {
		l.Warn("login blocked after repeated failures",
			"fail_count", attempt.FailCount,
			"blocked_until", attempt.BlockedUntil,
		)
	} else {
		l.Info("login failed", "fail_count", attempt.FailCount)
	}
	return nil
}

// pause sleeps for the login delay unless the client goes away first.
func (s *LoginService) pause(ctx context.Context) error {
	t := time.NewTimer(s.delay())
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
