package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/model"
	"github.com/iliyamo/nightclub-booking/internal/queue"
)

// sweepBatch bounds how many stale bookings one sweep locks.
const sweepBatch = 500

// CleanupResult reports what a cleanup run removed.
type CleanupResult struct {
	ExpiredBookings int64 `json:"expired_bookings"`
	OldAuditLogs    int64 `json:"old_audit_logs"`
}

// MaintenanceService expires pending bookings that were never paid and
// prunes the audit log.
type MaintenanceService struct {
	p     Property
	audit *AuditService
}

func NewMaintenanceService(p Property) *MaintenanceService {
	return &MaintenanceService{p: p, audit: NewAuditService(p)}
}

// ExpireStale cancels pending bookings older than the pending TTL.
// Their transactions stay pending so the unpaid attempt remains on
// record.
func (s *MaintenanceService) ExpireStale(ctx context.Context, actor authz.Actor) (int64, error) {
	if s.p.PendingBookingTTL <= 0 {
		return 0, nil
	}
	now := s.p.now()
	cutoff := now.Add(-s.p.PendingBookingTTL)

	var expired []model.Booking
	err := s.p.Tx.WithTx(ctx, func(ctx context.Context) error {
		stale, err := s.p.Bookings.LockStalePending(ctx, cutoff, sweepBatch)
		if err != nil {
			return err
		}
		for _, b := range stale {
			ok, err := s.p.Bookings.UpdateStatus(ctx, b.ID, model.BookingPending, model.BookingCancelled)
			if err != nil {
				return err
			}
			if ok {
				b.Status = model.BookingCancelled
				expired = append(expired, b)
			}
		}
		return nil
	})
	if err != nil {
		return 0, s.p.fail(ctx, err, "expire stale bookings", logrus.Fields{"cutoff": stamp(cutoff)})
	}

	for i := range expired {
		s.p.notify(ctx, queue.KeyBookingExpired, bookingMessage(&expired[i], actor.UserID, now))
	}
	return int64(len(expired)), nil
}

// Cleanup expires stale bookings and prunes old audit entries.
func (s *MaintenanceService) Cleanup(ctx context.Context, actor authz.Actor) (*CleanupResult, error) {
	if err := authz.Require(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	expired, err := s.ExpireStale(ctx, actor)
	if err != nil {
		return nil, err
	}
	pruned, err := s.audit.Prune(ctx)
	if err != nil {
		return nil, err
	}
	res := &CleanupResult{ExpiredBookings: expired, OldAuditLogs: pruned}
	s.p.Audit.Record(ctx, actor.UserID, "system_cleanup", map[string]any{
		"expired_bookings": res.ExpiredBookings,
		"old_audit_logs":   res.OldAuditLogs,
	})
	return res, nil
}

// Run sweeps stale bookings every interval until ctx is done.
func (s *MaintenanceService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	log := s.p.Logger.WithField("component", "sweeper")
	log.WithField("interval", interval.String()).Info("stale booking sweeper started")
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("stale booking sweeper stopped")
			return
		case <-t.C:
			n, err := s.ExpireStale(ctx, authz.System)
			if err != nil {
				log.WithError(err).Warn("sweep failed")
				continue
			}
			if n > 0 {
				s.p.Audit.Record(ctx, authz.System.UserID, "system_cleanup", map[string]any{"expired_bookings": n})
				log.WithField("expired_bookings", n).Info("expired stale bookings")
			}
		}
	}
}
