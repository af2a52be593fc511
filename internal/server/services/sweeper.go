package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/server/audit"
	"github.com/dmitrijs2005/userservice/internal/server/metrics"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userservice/internal/timex"
)

const sweeperComponent = "ExpirationSweeper"

// SweepLockKey names the lock that keeps one sweep running across replicas.
const SweepLockKey = "userservice:sweeper"

// Locker grants a best-effort exclusive lease. ok is false when another
// holder has it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

// Sweeper removes unverified accounts whose confirmation window has lapsed.
type Sweeper struct {
	repomanager repomanager.RepositoryManager
	audit       *audit.ComponentLogger
	metrics     *metrics.Metrics
	clock       timex.Clock
	locker      Locker
	hour        int
}

// NewSweeper returns a sweeper that runs daily at the given hour (local
// time). locker may be nil for single-instance deployments.
func NewSweeper(rm repomanager.RepositoryManager, a *audit.Logger, m *metrics.Metrics, clock timex.Clock, locker Locker, hour int) *Sweeper {
	if clock == nil {
		clock = timex.SystemClock
	}
	return &Sweeper{
		repomanager: rm,
		audit:       a.Component(sweeperComponent),
		metrics:     m,
		clock:       clock,
		locker:      locker,
		hour:        hour,
	}
}

// SweepOnce deletes every unverified account whose token expired at or
// before now and returns how many rows it removed. Accounts verified while
// the sweep runs are left alone.
func (s *Sweeper) SweepOnce(ctx context.Context, rqid string) (int, error) {
	now := s.clock()
	deleted := 0

	err := s.repomanager.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		expired, err := repo.FindExpiredUnverified(ctx, now)
		if err != nil {
			return err
		}

		for _, a := range expired {
			ok, err := repo.DeleteUnverified(ctx, a.ID)
			if err != nil {
				return err
			}
			if ok {
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		s.audit.Error(ctx, rqid, "Expired account cleanup failed", "error", err)
		return 0, fmt.Errorf("sweep: %w", err)
	}

	s.metrics.AddSwept(deleted)
	s.audit.Info(ctx, rqid, fmt.Sprintf("Deleted %d expired unverified accounts", deleted))

	return deleted, nil
}

// NextRun returns the first instant strictly after now at hour:00 in now's
// location.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run sweeps once a day until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		wait := NextRun(s.clock(), s.hour).Sub(s.clock())
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	rqid := audit.NewCorrelationID()

	if s.locker == nil {
		_, _ = s.SweepOnce(ctx, rqid)
		return
	}

	unlock, ok, err := s.locker.TryLock(ctx, SweepLockKey, time.Hour)
	if err != nil {
		s.audit.Warn(ctx, rqid, "Sweep lock unavailable, skipping run", "error", err)
		return
	}
	if !ok {
		s.audit.Debug(ctx, rqid, "Sweep already running elsewhere")
		return
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.audit.Warn(ctx, rqid, "Sweep lock release failed", "error", err)
		}
	}()

	_, _ = s.SweepOnce(ctx, rqid)
}
