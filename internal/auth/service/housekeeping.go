package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bodhivana/storefront/internal/auth/store"
)

// HousekeepingService periodically clears expired OTP challenges and
// deletes expired refresh tokens so neither accumulates without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
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
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs a single housekeeping pass. Each step is independent,
// a failure in one won't stop the others.
func (s *HousekeepingService) Cleanup() {
	ctx := context.Background()
	now := time.Now().UTC()

	// Clear expired OTP challenges. Only the challenge state is wiped;
	// accounts keep their two-factor setting and credentials.
	if cleared, err := s.Store.Users().ClearExpiredOTPChallenges(ctx, now); err != nil {
		s.Logger.Error("failed to clear expired otp challenges", "error", err)
	} else if cleared > 0 {
		s.Logger.Info("cleared expired otp challenges", "count", cleared)
	}

	// Delete expired and revoked refresh tokens
	if deleted, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now); err != nil {
		s.Logger.Error("failed to delete stale refresh tokens", "error", err)
	} else if deleted > 0 {
		s.Logger.Info("deleted stale refresh tokens", "count", deleted)
	}
}
