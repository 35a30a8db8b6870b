package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so repositories run
// unchanged inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	getUserByUsername = `
SELECT id, username, password_hash, role, created_at, updated_at
FROM users
WHERE username = ?1 COLLATE NOCASE`

	createUser = `
INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
VALUES (?1, ?2, ?3, ?4, ?5, ?5)`

	countUsers = `SELECT COUNT(*) FROM users`

	getLoginAttempt = `
SELECT username_hash, fail_count, blocked_until, updated_at
FROM login_attempts
WHERE username_hash = ?1`

	// ?3/?4 are the long threshold and block, ?5/?6 the short ones.
	recordLoginFailure = `
INSERT INTO login_attempts (username_hash, fail_count, blocked_until, updated_at)
VALUES (
    ?1, 1,
    CASE WHEN 1 >= ?3 THEN ?2 + ?4 WHEN 1 >= ?5 THEN ?2 + ?6 ELSE NULL END,
    ?2
)
ON CONFLICT (username_hash) DO UPDATE SET
    fail_count    = login_attempts.fail_count + 1,
    blocked_until = CASE
        WHEN login_attempts.fail_count + 1 >= ?3 THEN ?2 + ?4
        WHEN login_attempts.fail_count + 1 >= ?5 THEN ?2 + ?6
        ELSE login_attempts.blocked_until
    END,
    updated_at    = ?2
RETURNING username_hash, fail_count, blocked_until, updated_at`

	resetLoginAttempts = `DELETE FROM login_attempts WHERE username_hash = ?1`

	deleteStaleLoginAttempts = `
DELETE FROM login_attempts
WHERE (blocked_until IS NULL OR blocked_until <= ?1)
  AND updated_at < ?2`

	revokeToken = `
INSERT INTO token_blacklist (token_hash, subject, expires_at, revoked_at)
VALUES (?1, ?2, ?3, ?4)
ON CONFLICT (token_hash) DO NOTHING`

	isTokenRevoked = `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token_hash = ?1)`

	deleteExpiredRevocations = `DELETE FROM token_blacklist WHERE expires_at < ?1`
)

// Times are stored as unix milliseconds.
func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func fromNullMillis(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := fromMillis(ms.Int64)
	return &t
}
