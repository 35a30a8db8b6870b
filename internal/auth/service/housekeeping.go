package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/store"
	"github.com/aussiebroadwan/ltcms/pkg/jwtx"
)

// StaleAttemptAge is how long an unblocked login-attempt counter is kept
// after its last failure.
const StaleAttemptAge = 24 * time.Hour

// RevocationGrace keeps a blacklist row past its token's exp for as long
// as verification still accepts the token.
const RevocationGrace = jwtx.DefaultLeeway

// HousekeepingService periodically cleans up expired database records
// to prevent unbounded growth of token_blacklist and login_attempts.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup. Stop is
// a no-op if Start was never called, and safe to call more than once.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started.Load() {
			<-s.doneCh
			s.Logger.Info("housekeeping service stopped")
		}
	})
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual deletion of expired records.
// Each deletion is independent - failures in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := s.now()

	revocations, err := s.Store.Blacklist().DeleteExpiredRevocations(ctx, now.Add(-RevocationGrace))
	if err != nil {
		s.Logger.Error("failed to delete expired revocations", "error", err)
	}

	attempts, err := s.Store.LoginAttempts().DeleteStaleLoginAttempts(ctx, now, now.Add(-StaleAttemptAge))
	if err != nil {
		s.Logger.Error("failed to delete stale login attempts", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"revocations_deleted", revocations,
		"login_attempts_deleted", attempts,
	)
}
