package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTTL is the lifetime of a session bearer token. It is also the
	// upper bound: tokens are never minted further ahead than this.
	DefaultTTL = 24 * time.Hour

	// DefaultLeeway tolerates client/server clock skew on exp.
	DefaultLeeway = 60 * time.Second
)

// Roles carried in the role claim.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var validRoles = []string{RoleAdmin, RoleUser}

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	return slices.Contains(validRoles, role)
}

// Claims are the bearer claims: sub, role and exp. Only Subject and
// ExpiresAt of the registered claims are ever populated, so the payload
// serializes as {"sub":...,"exp":...,"role":...}.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

// NewClaims builds claims for subject expiring at exp.
func NewClaims(subject, role string, exp time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	}
}

// Expiry returns exp as a time, or the zero time if unset.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IsAdmin reports whether the claims carry the admin role.
func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// validate checks the invariants jwt.Parser does not know about.
func (c *Claims) validate(now time.Time, ttl, leeway time.Duration) error {
	if c.Subject == "" {
		return ErrInvalidClaim
	}
	if !ValidRole(c.Role) {
		return ErrInvalidClaim
	}
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	// A token claiming to live longer than we ever mint was not minted by us.
	if c.ExpiresAt.After(now.Add(ttl + leeway)) {
		return ErrInvalidClaim
	}
	return nil
}
