package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/clock"
	"github.com/iliyamo/nightclub-booking/internal/repository"
)

// Property bundles what the services need.  Publisher and Cache are
// optional; every other field is required.
type Property struct {
	Tx           TxRunner
	Zones        ZoneStore
	Seats        SeatStore
	Categories   CategoryStore
	Events       EventStore
	Bookings     BookingStore
	Transactions TransactionStore
	Audit        AuditSink
	AuditLog     AuditStore
	Publisher    Publisher
	Cache        CachePurger
	Clock        clock.Clock
	Logger       *logrus.Logger

	PendingBookingTTL time.Duration
	AuditRetention    time.Duration
}

func (p Property) now() time.Time { return p.Clock.Now() }

// fail classifies err for the caller.  Errors already carrying a kind
// pass through; anything else is logged and wrapped as Internal.
func (p Property) fail(ctx context.Context, err error, op string, fields logrus.Fields) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	p.Logger.WithContext(ctx).WithError(err).WithFields(fields).Errorf("%s failed", op)
	return apperr.Internal(err, op)
}

// notify publishes msg and drops cached listings once a change has
// committed.  Failures are logged; the change itself stands.
func (p Property) notify(ctx context.Context, routingKey string, msg any) {
	if p.Publisher != nil {
		if err := p.Publisher.Publish(ctx, routingKey, msg); err != nil {
			p.Logger.WithContext(ctx).WithError(err).WithField("routing_key", routingKey).Warn("publish lifecycle message")
		}
	}
	p.purge(ctx)
}

func (p Property) purge(ctx context.Context) {
	if p.Cache == nil {
		return
	}
	if err := p.Cache.Purge(ctx); err != nil {
		p.Logger.WithContext(ctx).WithError(err).Warn("purge listing cache")
	}
}

func isNotFound(err error) bool  { return errors.Is(err, repository.ErrNotFound) }
func isDuplicate(err error) bool { return errors.Is(err, repository.ErrDuplicate) }

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }
