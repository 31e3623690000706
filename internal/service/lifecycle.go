package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/model"
	"github.com/iliyamo/nightclub-booking/internal/queue"
)

// UpdateStatus moves an event to status.  Allowed moves are
// planned -> active, planned -> cancelled and active -> cancelled.
// Cancelling cascades into the ledgers within the same transaction:
// pending bookings are cancelled, completed payments of confirmed
// bookings are refunded, then confirmed bookings are cancelled.
func (s *EventService) UpdateStatus(ctx context.Context, actor authz.Actor, id uint64, status model.EventStatus) (*model.CascadeResult, error) {
	if err := authz.Require(actor, authz.Staff...); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.Validation("unknown status %q", status)
	}

	var res *model.CascadeResult
	err := s.p.Tx.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.p.Events.GetForUpdate(ctx, id)
		if isNotFound(err) {
			return apperr.NotFound("event %d not found", id)
		}
		if err != nil {
			return err
		}
		res, err = s.transition(ctx, actor, ev, status)
		return err
	})
	if err != nil {
		return nil, s.p.fail(ctx, err, "update event status", logrus.Fields{"event_id": id, "status": status})
	}

	s.p.Logger.WithContext(ctx).WithFields(logrus.Fields{
		"event_id":            id,
		"old_status":          res.OldStatus,
		"new_status":          res.NewStatus,
		"cancelled_pending":   res.CancelledPending,
		"cancelled_confirmed": res.CancelledConfirmed,
		"refunded":            res.Refunded,
	}).Info("event status changed")
	s.p.notify(ctx, queue.KeyEventStatusChanged, statusMessage(res, actor.UserID, false, s.p.now()))
	return res, nil
}

// transition applies one status change to ev, which the caller has
// locked FOR UPDATE inside the current transaction.
func (s *EventService) transition(ctx context.Context, actor authz.Actor, ev *model.Event, to model.EventStatus) (*model.CascadeResult, error) {
	if !ev.Status.CanTransitionTo(to) {
		return nil, apperr.InvalidTransition("event %d cannot move from %s to %s", ev.ID, ev.Status, to)
	}
	if err := s.p.Events.UpdateStatus(ctx, ev.ID, to); err != nil {
		return nil, err
	}
	res := &model.CascadeResult{EventID: ev.ID, OldStatus: ev.Status, NewStatus: to}

	if to == model.EventCancelled {
		var err error
		if res.CancelledPending, err = s.p.Bookings.CancelByEvent(ctx, ev.ID, model.BookingPending); err != nil {
			return nil, err
		}
		// Refunds match on confirmed bookings, so they run before those
		// bookings are cancelled.
		if res.Refunded, err = s.p.Transactions.RefundByEvent(ctx, ev.ID); err != nil {
			return nil, err
		}
		if res.CancelledConfirmed, err = s.p.Bookings.CancelByEvent(ctx, ev.ID, model.BookingConfirmed); err != nil {
			return nil, err
		}
	}

	s.p.Audit.Record(ctx, actor.UserID, "update_event_status", map[string]any{
		"event_id":              ev.ID,
		"old_status":            res.OldStatus,
		"new_status":            res.NewStatus,
		"cancelled_pending":     res.CancelledPending,
		"cancelled_confirmed":   res.CancelledConfirmed,
		"refunded_transactions": res.Refunded,
	})
	ev.Status = to
	return res, nil
}

func statusMessage(res *model.CascadeResult, actorID uint64, deleted bool, at time.Time) queue.EventStatusMessage {
	return queue.EventStatusMessage{
		EventID:            res.EventID,
		ActorID:            actorID,
		OldStatus:          string(res.OldStatus),
		NewStatus:          string(res.NewStatus),
		Deleted:            deleted,
		CancelledPending:   res.CancelledPending,
		CancelledConfirmed: res.CancelledConfirmed,
		Refunded:           res.Refunded,
		OccurredAt:         stamp(at),
	}
}
