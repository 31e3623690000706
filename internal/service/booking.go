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

// BookingService owns the booking ledger: creation, reads, cancellation
// and the staff-only manual confirmation.  Payment lives in
// PaymentService.
type BookingService struct {
	p Property
}

func NewBookingService(p Property) *BookingService { return &BookingService{p: p} }

// Create reserves seatID for eventID on behalf of actor.  The checks
// run in a fixed order: event exists, event is bookable and has not
// started, seat is sold for the event, seat is free.  The booking and
// its pending transaction are written in one transaction; the unique
// active-seat key turns a lost race into Conflict.
func (s *BookingService) Create(ctx context.Context, actor authz.Actor, eventID, seatID uint64) (*model.Booking, error) {
	if eventID == 0 || seatID == 0 {
		return nil, apperr.Validation("event_id and seat_id are required")
	}
	now := s.p.now()
	var booking *model.Booking

	err := s.p.Tx.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.p.Events.GetForShare(ctx, eventID)
		if isNotFound(err) {
			return apperr.NotFound("event %d not found", eventID)
		}
		if err != nil {
			return err
		}
		if !ev.Status.Bookable() {
			return apperr.InvalidState("event %d is %s and not open for booking", eventID, ev.Status)
		}
		if ev.Started(now) {
			return apperr.InvalidState("event %d has already started", eventID)
		}

		zoneID, price, err := s.p.Events.SeatZonePrice(ctx, eventID, seatID)
		if isNotFound(err) {
			return apperr.NotFound("seat %d is not on sale for event %d", seatID, eventID)
		}
		if err != nil {
			return err
		}

		held, err := s.p.Bookings.CountActiveForSeat(ctx, eventID, seatID)
		if err != nil {
			return err
		}
		if held > 0 {
			return apperr.Conflict("seat %d is already booked for event %d", seatID, eventID)
		}

		b := &model.Booking{
			EventID:    eventID,
			UserID:     actor.UserID,
			SeatID:     seatID,
			Status:     model.BookingPending,
			PriceCents: price,
		}
		if err := s.p.Bookings.Create(ctx, b); err != nil {
			if isDuplicate(err) {
				return apperr.Conflict("seat %d is already booked for event %d", seatID, eventID)
			}
			return err
		}
		t := &model.Transaction{
			BookingID:       b.ID,
			UserID:          actor.UserID,
			AmountCents:     price,
			PaymentMethod:   model.PaymentMethodPending,
			Status:          model.TransactionPending,
			TransactionDate: now,
		}
		if err := s.p.Transactions.Create(ctx, t); err != nil {
			return err
		}
		b.TransactionID = &t.ID

		s.p.Audit.Record(ctx, actor.UserID, "create_booking", map[string]any{
			"booking_id":  b.ID,
			"event_id":    eventID,
			"seat_id":     seatID,
			"zone_id":     zoneID,
			"price_cents": price,
		})
		booking = b
		return nil
	})
	if err != nil {
		return nil, s.p.fail(ctx, err, "create booking", logrus.Fields{"event_id": eventID, "seat_id": seatID})
	}

	s.p.notify(ctx, queue.KeyBookingCreated, bookingMessage(booking, actor.UserID, now))
	return booking, nil
}

// Get returns a booking with its event, seat and payment details.  Only
// the owner and staff may read it.
func (s *BookingService) Get(ctx context.Context, actor authz.Actor, id uint64) (*model.BookingDetail, error) {
	d, err := s.p.Bookings.GetDetail(ctx, id)
	if isNotFound(err) {
		return nil, apperr.NotFound("booking %d not found", id)
	}
	if err != nil {
		return nil, s.p.fail(ctx, err, "load booking", logrus.Fields{"booking_id": id})
	}
	if err := authz.RequireOwnerOr(actor, d.UserID, authz.Staff...); err != nil {
		return nil, apperr.Forbidden("booking %d belongs to another user", id)
	}
	return d, nil
}

// ListMine returns the actor's bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, actor authz.Actor) ([]model.BookingDetail, error) {
	out, err := s.p.Bookings.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, s.p.fail(ctx, err, "list bookings", logrus.Fields{"user_id": actor.UserID})
	}
	return out, nil
}

// Cancel soft-cancels a booking and refunds its completed transaction
// in the same transaction.  The owner and staff may cancel; nobody may
// cancel once the event has started.
func (s *BookingService) Cancel(ctx context.Context, actor authz.Actor, id uint64) (*model.Booking, error) {
	now := s.p.now()
	var (
		booking  *model.Booking
		refunded int64
	)
	err := s.p.Tx.WithTx(ctx, func(ctx context.Context) error {
		b, ev, err := lockBooking(ctx, s.p, id)
		if err != nil {
			return err
		}
		if err := authz.RequireOwnerOr(actor, b.UserID, authz.Staff...); err != nil {
			return apperr.Forbidden("booking %d belongs to another user", id)
		}
		if b.Status == model.BookingCancelled {
			return apperr.InvalidState("booking %d is already cancelled", id)
		}
		if ev.Started(now) {
			return apperr.InvalidState("event %d has already started; booking %d can no longer be cancelled", ev.ID, id)
		}

		prev := b.Status
		ok, err := s.p.Bookings.UpdateStatus(ctx, b.ID, prev, model.BookingCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InvalidState("booking %d changed concurrently", id)
		}
		if refunded, err = s.p.Transactions.RefundByBooking(ctx, b.ID); err != nil {
			return err
		}
		b.Status = model.BookingCancelled

		s.p.Audit.Record(ctx, actor.UserID, "cancel_booking", map[string]any{
			"booking_id":      b.ID,
			"event_id":        b.EventID,
			"previous_status": prev,
			"refunded":        refunded > 0,
		})
		booking = b
		return nil
	})
	if err != nil {
		return nil, s.p.fail(ctx, err, "cancel booking", logrus.Fields{"booking_id": id})
	}

	msg := bookingMessage(booking, actor.UserID, now)
	msg.Refunded = refunded > 0
	s.p.notify(ctx, queue.KeyBookingCancelled, msg)
	return booking, nil
}

// Confirm lets staff settle a pending booking on site, without the
// owner paying online.  The transaction is completed with the on_site
// method and the booking becomes confirmed.
func (s *BookingService) Confirm(ctx context.Context, actor authz.Actor, id uint64) (*model.Transaction, error) {
	if err := authz.Require(actor, authz.Staff...); err != nil {
		return nil, err
	}
	return settle(ctx, s.p, settlement{
		actor:     actor,
		bookingID: id,
		method:    model.PaymentMethodOnSite,
		action:    "confirm_booking",
		key:       queue.KeyBookingConfirmed,
	})
}

// lockBooking loads a booking and takes the event and booking row locks
// in the order shared by every writer: event, booking, transaction.
func lockBooking(ctx context.Context, p Property, id uint64) (*model.Booking, *model.Event, error) {
	peek, err := p.Bookings.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, nil, apperr.NotFound("booking %d not found", id)
	}
	if err != nil {
		return nil, nil, err
	}
	ev, err := p.Events.GetForShare(ctx, peek.EventID)
	if isNotFound(err) {
		return nil, nil, apperr.NotFound("event %d not found", peek.EventID)
	}
	if err != nil {
		return nil, nil, err
	}
	b, err := p.Bookings.GetForUpdate(ctx, id)
	if isNotFound(err) {
		return nil, nil, apperr.NotFound("booking %d not found", id)
	}
	if err != nil {
		return nil, nil, err
	}
	b.TransactionID = peek.TransactionID
	return b, ev, nil
}

func bookingMessage(b *model.Booking, actorID uint64, at time.Time) queue.BookingMessage {
	return queue.BookingMessage{
		BookingID:  b.ID,
		EventID:    b.EventID,
		SeatID:     b.SeatID,
		UserID:     b.UserID,
		ActorID:    actorID,
		Status:     string(b.Status),
		PriceCents: b.PriceCents,
		OccurredAt: stamp(at),
	}
}
