package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/domain"
	"github.com/aussiebroadwan/ltcms/internal/auth/store"
	"github.com/aussiebroadwan/ltcms/pkg/cryptox"
	"github.com/aussiebroadwan/ltcms/pkg/idx"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"
)

var ErrBootstrapFailedToCreateAdmin = errors.New("service: failed to create admin user")

var errAdminExists = errors.New("service: admin exists")

type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// EnsureAdmin creates the configured admin account if it does not exist.
// An existing account is never modified. Any error should abort startup.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, req domain.BootstrapData) error {
	l := slogx.FromContext(ctx)

	if !req.Enabled() {
		empty, err := s.Store.Users().IsEmpty(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if empty {
			l.Warn("admin bootstrap skipped and no users exist; set ADMIN_USERNAME and ADMIN_PASSWORD")
		} else {
			l.Debug("admin bootstrap skipped")
		}
		return nil
	}

	if err := ValidateCredentials(req.AdminUsername, req.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	hash, err := s.Hasher.Hash(req.AdminPassword)
	if err != nil {
		l.Error("failed to hash admin password", "error", err)
		return ErrBootstrapFailedToCreateAdmin
	}

	// Lookup and insert share a transaction so a concurrent instance cannot
	// slip an account in between.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Users().GetUserByUsername(ctx, req.AdminUsername)
		switch {
		case err == nil:
			l.Info("admin user already exists, leaving it untouched",
				"user", existing.Username,
				"role", existing.Role,
			)
			return errAdminExists
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("lookup admin: %w", err)
		}

		now := time.Now()
		return tx.Users().CreateUser(ctx, domain.User{
			ID:           idx.New().String(),
			Username:     req.AdminUsername,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	switch {
	case errors.Is(err, errAdminExists), errors.Is(err, store.ErrAlreadyExists):
		// Already provisioned, possibly by another instance.
		return nil
	case err != nil:
		l.Error("failed to create admin user", "error", err)
		return fmt.Errorf("%w: %w", ErrBootstrapFailedToCreateAdmin, err)
	}

	l.Info("created admin user", "user", req.AdminUsername)
	return nil
}
