package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/domain"
	"github.com/aussiebroadwan/ltcms/internal/auth/store"
)

type loginAttemptsRepo struct {
	db DBTX
}

func scanLoginAttempt(row *sql.Row) (domain.LoginAttempt, error) {
	var (
		a            domain.LoginAttempt
		blockedUntil sql.NullInt64
		updatedAt    int64
	)
	if err := row.Scan(&a.UsernameHash, &a.FailCount, &blockedUntil, &updatedAt); err != nil {
		return domain.LoginAttempt{}, mapNotFound(err)
	}
	a.BlockedUntil = fromNullMillis(blockedUntil)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}

func (r *loginAttemptsRepo) GetLoginAttempt(ctx context.Context, usernameHash string) (domain.LoginAttempt, error) {
	return scanLoginAttempt(r.db.QueryRowContext(ctx, getLoginAttempt, usernameHash))
}

func (r *loginAttemptsRepo) RecordFailure(
	ctx context.Context,
	usernameHash string,
	now time.Time,
	p store.LockoutPolicy,
) (domain.LoginAttempt, error) {
	return scanLoginAttempt(r.db.QueryRowContext(ctx, recordLoginFailure,
		usernameHash,
		toMillis(now),
		p.LongThreshold, p.LongBlock.Milliseconds(),
		p.ShortThreshold, p.ShortBlock.Milliseconds(),
	))
}

func (r *loginAttemptsRepo) ResetLoginAttempts(ctx context.Context, usernameHash string) error {
	_, err := r.db.ExecContext(ctx, resetLoginAttempts, usernameHash)
	return err
}

func (r *loginAttemptsRepo) DeleteStaleLoginAttempts(ctx context.Context, now, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteStaleLoginAttempts, toMillis(now), toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
