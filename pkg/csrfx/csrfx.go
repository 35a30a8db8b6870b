// Package csrfx issues and validates the signed, subject-bound tokens used
// for the double-submit CSRF check.
//
// A token is five pipe-delimited fields:
//
//	v1|base64url(username)|expiry|nonce|base64url(hmac)
//
// where the HMAC-SHA256 is computed over the first four fields joined by
// '|'. The nonce is a canonical UUIDv4.
package csrfx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Version is the only token version this package issues or accepts.
	Version = "v1"

	// DefaultTTL is the lifetime of a CSRF token.
	DefaultTTL = 6 * time.Hour

	// MinNonceLength is the shortest nonce Validate accepts.
	MinNonceLength = 16

	sep    = "|"
	fields = 5
)

var (
	ErrEmptySubject       = errors.New("csrfx: empty subject")
	ErrNoSecret           = errors.New("csrfx: signing secret is empty")
	ErrMalformed          = errors.New("csrfx: malformed token")
	ErrUnsupportedVersion = errors.New("csrfx: unsupported version")
	ErrWrongSubject       = errors.New("csrfx: wrong subject")
	ErrExpired            = errors.New("csrfx: token expired")
	ErrShortNonce         = errors.New("csrfx: nonce too short")
	ErrBadSignature       = errors.New("csrfx: bad signature")
)

// Strict so that a token has exactly one valid encoding.
var b64 = base64.RawURLEncoding.Strict()

// Manager mints and checks CSRF tokens under one secret.
type Manager struct {
	secret []byte

	TTL time.Duration
	Now func() time.Time
}

// NewManager returns a Manager signing with secret.
func NewManager(secret []byte) (*Manager, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &Manager{secret: secret, TTL: DefaultTTL}, nil
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Issue creates a token bound to username.
func (m *Manager) Issue(username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", ErrEmptySubject
	}

	ttl := m.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	nonce, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("csrfx: nonce: %w", err)
	}

	payload := strings.Join([]string{
		Version,
		b64.EncodeToString([]byte(username)),
		strconv.FormatInt(m.now().Add(ttl).Unix(), 10),
		nonce.String(),
	}, sep)

	return payload + sep + b64.EncodeToString(m.sign(payload)), nil
}

// Validate checks token against expected, the subject of the current
// session. Checks run in a fixed order and the first failure is returned.
func (m *Manager) Validate(token, expected string) error {
	parts := strings.Split(token, sep)
	if len(parts) != fields {
		return ErrMalformed
	}
	version, subject, expiry, nonce, sig := parts[0], parts[1], parts[2], parts[3], parts[4]

	if version != Version {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}

	username, err := b64.DecodeString(subject)
	if err != nil {
		return fmt.Errorf("%w: subject encoding", ErrMalformed)
	}
	if string(username) != expected {
		return ErrWrongSubject
	}

	exp, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: expiry", ErrMalformed)
	}
	if exp < m.now().Unix() {
		return ErrExpired
	}

	if len(nonce) < MinNonceLength {
		return ErrShortNonce
	}

	got, err := b64.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("%w: signature encoding", ErrMalformed)
	}
	want := m.sign(strings.Join(parts[:4], sep))
	if !hmac.Equal(got, want) {
		return ErrBadSignature
	}
	return nil
}

func (m *Manager) sign(payload string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

