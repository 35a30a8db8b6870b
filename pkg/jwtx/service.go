package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed       = errors.New("jwtx: malformed token")
	ErrInvalidSig      = errors.New("jwtx: invalid signature")
	ErrExpired         = errors.New("jwtx: token expired")
	ErrInvalidClaim    = errors.New("jwtx: invalid claims")
	ErrEmptySubject    = errors.New("jwtx: empty subject")
	ErrInvalidRole     = errors.New("jwtx: invalid role")
	ErrClockArithmetic = errors.New("jwtx: expiry computation overflowed")
	ErrNoKey           = errors.New("jwtx: signing key is empty")
)

// Service issues and verifies HS256 bearer tokens.
type Service struct {
	key []byte

	// TTL is the token lifetime; zero means DefaultTTL, values above
	// DefaultTTL are clamped to it.
	TTL time.Duration

	// Leeway is the clock skew tolerated on exp.
	Leeway time.Duration

	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// NewService creates a Service signing with key.
func NewService(key []byte) (*Service, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	return &Service{
		key:    key,
		TTL:    DefaultTTL,
		Leeway: DefaultLeeway,
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 || s.TTL > DefaultTTL {
		return DefaultTTL
	}
	return s.TTL
}

// Issue mints a token for username carrying role.
func (s *Service) Issue(username, role string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", ErrEmptySubject
	}
	if !ValidRole(role) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	now := s.now()
	ttl := s.ttl()
	exp := now.Add(ttl)
	// time.Add saturates and Unix() can wrap near the int64 limits.
	if exp.Sub(now) != ttl || exp.Unix() <= now.Unix() {
		return "", ErrClockArithmetic
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, NewClaims(username, role, exp))
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// Failures wrap exactly one of ErrMalformed, ErrInvalidSig or ErrExpired.
func (s *Service) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	// The signature is compared by the library with hmac.Equal.
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	if err := claims.validate(s.now(), s.ttl(), s.Leeway); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

// classify collapses the library's error tree into our three kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
