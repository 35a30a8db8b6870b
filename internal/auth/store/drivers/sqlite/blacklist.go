package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/domain"
)

type blacklistRepo struct {
	db DBTX
}

func (r *blacklistRepo) RevokeToken(ctx context.Context, t domain.RevokedToken) error {
	_, err := r.db.ExecContext(ctx, revokeToken,
		t.TokenHash, t.Subject, toMillis(t.ExpiresAt), toMillis(t.RevokedAt),
	)
	return err
}

func (r *blacklistRepo) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	var revoked bool
	if err := r.db.QueryRowContext(ctx, isTokenRevoked, tokenHash).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

func (r *blacklistRepo) DeleteExpiredRevocations(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredRevocations, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
