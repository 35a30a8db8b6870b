package domain

import "time"

// RevokedToken is a blacklist entry. Only the fingerprint of the bearer
// token is stored.
type RevokedToken struct {
	TokenHash string // base64url SHA-256 of the compact token
	Subject   string
	ExpiresAt time.Time // the token's own exp; the row can be swept after it
	RevokedAt time.Time
}

// LoginAttempt is the failed-login counter for one username.
type LoginAttempt struct {
	UsernameHash string // fingerprint of the lowercased username
	FailCount    int
	BlockedUntil *time.Time
	UpdatedAt    time.Time
}

// Blocked reports whether logins are refused at now.
func (a LoginAttempt) Blocked(now time.Time) bool {
	return a.BlockedUntil != nil && now.Before(*a.BlockedUntil)
}
