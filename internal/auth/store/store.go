package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a Tx-scoped Store can never open a nested transaction.
type Store interface {
	Users() Users
	LoginAttempts() LoginAttempts
	Blacklist() Blacklist

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByUsername looks a user up case-insensitively.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists if the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

// LockoutPolicy decides how long a username is blocked after repeated
// failures. A failure count at or above a threshold blocks for the longest
// matching duration.
type LockoutPolicy struct {
	ShortThreshold int
	ShortBlock     time.Duration
	LongThreshold  int
	LongBlock      time.Duration
}

// DefaultLockout blocks for a minute at 3 failures and 15 minutes at 5.
var DefaultLockout = LockoutPolicy{
	ShortThreshold: 3,
	ShortBlock:     time.Minute,
	LongThreshold:  5,
	LongBlock:      15 * time.Minute,
}

type LoginAttempts interface {
	// GetLoginAttempt returns the counter for usernameHash or ErrNotFound.
	GetLoginAttempt(ctx context.Context, usernameHash string) (domain.LoginAttempt, error)

	// RecordFailure increments the counter and applies the policy in one
	// statement, so concurrent failures never lose an increment.
	RecordFailure(ctx context.Context, usernameHash string, now time.Time, p LockoutPolicy) (domain.LoginAttempt, error)

	// ResetLoginAttempts removes the counter after a successful login.
	ResetLoginAttempts(ctx context.Context, usernameHash string) error

	// DeleteStaleLoginAttempts removes counters that are not blocked at now
	// and were last touched before cutoff.
	DeleteStaleLoginAttempts(ctx context.Context, now, cutoff time.Time) (int64, error)
}

type Blacklist interface {
	// RevokeToken inserts a blacklist entry. Revoking an already revoked
	// token is a no-op.
	RevokeToken(ctx context.Context, t domain.RevokedToken) error

	// IsRevoked reports whether tokenHash is blacklisted.
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)

	// DeleteExpiredRevocations removes entries whose token expired before cutoff.
	DeleteExpiredRevocations(ctx context.Context, cutoff time.Time) (int64, error)
}
