package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/model"
)

// AvailabilityService answers seat availability questions.
type AvailabilityService struct {
	p Property
}

func NewAvailabilityService(p Property) *AvailabilityService { return &AvailabilityService{p: p} }

// IsSeatAvailable reports whether no pending or confirmed booking holds
// the seat for the event.  It does not check that either exists; the
// answer for unknown ids is true.  Booking creation repeats this check
// inside its transaction, so the answer is advisory only.
func (s *AvailabilityService) IsSeatAvailable(ctx context.Context, eventID, seatID uint64) (bool, error) {
	n, err := s.p.Bookings.CountActiveForSeat(ctx, eventID, seatID)
	if err != nil {
		return false, s.p.fail(ctx, err, "check seat availability", logrus.Fields{"event_id": eventID, "seat_id": seatID})
	}
	return n == 0, nil
}

// EventSeats lists the seats of the zones sold for an event with their
// price and booked flag.  zoneID narrows the list to one zone.
func (s *AvailabilityService) EventSeats(ctx context.Context, eventID uint64, zoneID *uint64) ([]model.EventSeat, error) {
	if _, err := s.p.Events.GetByID(ctx, eventID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("event %d not found", eventID)
		}
		return nil, s.p.fail(ctx, err, "load event", logrus.Fields{"event_id": eventID})
	}
	seats, err := s.p.Events.ListSeats(ctx, eventID, zoneID)
	if err != nil {
		return nil, s.p.fail(ctx, err, "list event seats", logrus.Fields{"event_id": eventID})
	}
	return seats, nil
}
