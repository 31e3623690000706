package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/model"
	"github.com/iliyamo/nightclub-booking/internal/queue"
)

// PaymentService settles bookings.  Payment is simulated: settlement
// is authoritative and synchronous and no gateway is called.
type PaymentService struct {
	p Property
}

func NewPaymentService(p Property) *PaymentService { return &PaymentService{p: p} }

// Pay completes the booking's transaction with method and confirms the
// booking.  Only the booking's owner may pay.
func (s *PaymentService) Pay(ctx context.Context, actor authz.Actor, bookingID uint64, method string) (*model.Transaction, error) {
	method = strings.TrimSpace(method)
	if method == "" || method == model.PaymentMethodPending {
		return nil, apperr.Validation("payment_method is required")
	}
	return settle(ctx, s.p, settlement{
		actor:     actor,
		bookingID: bookingID,
		method:    method,
		action:    "process_payment",
		key:       queue.KeyBookingPaid,
		ownerOnly: true,
	})
}

type settlement struct {
	actor     authz.Actor
	bookingID uint64
	method    string
	action    string
	key       string
	ownerOnly bool
}

// settle moves a pending booking to confirmed and its transaction to
// completed in one storage transaction.  Any failed precondition
// rolls everything back.
func settle(ctx context.Context, p Property, st settlement) (*model.Transaction, error) {
	now := p.now()
	var (
		booking *model.Booking
		txn     *model.Transaction
	)
	err := p.Tx.WithTx(ctx, func(ctx context.Context) error {
		b, ev, err := lockBooking(ctx, p, st.bookingID)
		if err != nil {
			return err
		}
		if st.ownerOnly && b.UserID != st.actor.UserID {
			return apperr.Forbidden("booking %d belongs to another user", b.ID)
		}
		if b.Status != model.BookingPending {
			return apperr.InvalidState("booking %d is %s, not pending", b.ID, b.Status)
		}
		if ev.Status == model.EventCancelled {
			return apperr.InvalidState("event %d is cancelled", ev.ID)
		}
		if ev.Started(now) {
			return apperr.InvalidState("event %d has already started", ev.ID)
		}

		t, err := p.Transactions.GetByBookingForUpdate(ctx, b.ID)
		switch {
		case isNotFound(err):
			// Bookings written before transactions were paired with them
			// get their transaction here.
			t = &model.Transaction{
				BookingID:       b.ID,
				UserID:          b.UserID,
				AmountCents:     b.PriceCents,
				PaymentMethod:   model.PaymentMethodPending,
				Status:          model.TransactionPending,
				TransactionDate: now,
			}
			if err := p.Transactions.Create(ctx, t); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		if t.Status != model.TransactionPending {
			return apperr.InvalidState("payment for booking %d is already %s", b.ID, t.Status)
		}

		ref := uuid.NewString()
		ok, err := p.Transactions.Settle(ctx, t.ID, st.method, ref, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InvalidState("payment for booking %d changed concurrently", b.ID)
		}
		ok, err = p.Bookings.UpdateStatus(ctx, b.ID, model.BookingPending, model.BookingConfirmed)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InvalidState("booking %d changed concurrently", b.ID)
		}

		t.Status = model.TransactionCompleted
		t.PaymentMethod = st.method
		t.PaymentRef = &ref
		t.TransactionDate = now
		b.Status = model.BookingConfirmed
		b.TransactionID = &t.ID

		p.Audit.Record(ctx, st.actor.UserID, st.action, map[string]any{
			"booking_id":     b.ID,
			"transaction_id": t.ID,
			"amount_cents":   t.AmountCents,
			"payment_method": st.method,
			"payment_ref":    ref,
		})
		booking, txn = b, t
		return nil
	})
	if err != nil {
		return nil, p.fail(ctx, err, st.action, logrus.Fields{"booking_id": st.bookingID})
	}

	msg := bookingMessage(booking, st.actor.UserID, now)
	msg.PaymentMethod = txn.PaymentMethod
	msg.PaymentRef = *txn.PaymentRef
	p.notify(ctx, st.key, msg)
	return txn, nil
}
