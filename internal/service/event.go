package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/model"
	"github.com/iliyamo/nightclub-booking/internal/queue"
	"github.com/iliyamo/nightclub-booking/internal/repository"
)

// MinEventDuration is the shortest event the club schedules.
const MinEventDuration = 30

// EventInput is the editable part of an event.  Zones replaces the
// whole zone configuration.  An empty Status means "planned" on create
// and "unchanged" on update.
type EventInput struct {
	CategoryID      *uint64
	Title           string
	Description     string
	EventDate       time.Time
	DurationMinutes uint32
	Status          model.EventStatus
	Zones           []model.EventZoneConfig
}

func (in *EventInput) validate(now time.Time) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Validation("title is required")
	}
	if !in.EventDate.After(now) {
		return apperr.Validation("event_date must be in the future")
	}
	if in.DurationMinutes < MinEventDuration {
		return apperr.Validation("duration must be at least %d minutes", MinEventDuration)
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperr.Validation("unknown status %q", in.Status)
	}
	return validateZones(in.Zones)
}

// DeleteResult tells whether an event was removed or, because it has
// bookings, kept as cancelled.  Cascade is nil when nothing changed.
type DeleteResult struct {
	Deleted bool                 `json:"deleted"`
	Cascade *model.CascadeResult `json:"cascade,omitempty"`
}

// EventService manages the event catalog and drives event lifecycle
// transitions (see lifecycle.go).
type EventService struct {
	p Property
}

func NewEventService(p Property) *EventService { return &EventService{p: p} }

// Create validates in and stores a new event with its zone
// configuration and derived capacity and price.  Validation happens
// before anything is written.
func (s *EventService) Create(ctx context.Context, actor authz.Actor, in EventInput) (*model.Event, error) {
	if err := authz.Require(actor, authz.Staff...); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.EventPlanned
	}
	if err := in.validate(s.p.now()); err != nil {
		return nil, err
	}
	if in.Status == model.EventCancelled {
		return nil, apperr.Validation("an event cannot be created as cancelled")
	}

	ev := &model.Event{
		CategoryID:      in.CategoryID,
		Title:           in.Title,
		Description:     in.Description,
		EventDate:       in.EventDate.UTC(),
		DurationMinutes: in.DurationMinutes,
		Status:          in.Status,
		CreatedBy:       actor.UserID,
	}
	ev.Capacity, ev.TicketPriceCents = DeriveCapacityAndPrice(in.Zones)

	err := s.p.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, in); err != nil {
			return err
		}
		if err := s.p.Events.Create(ctx, ev); err != nil {
			return err
		}
		if err := s.p.Events.ReplaceZones(ctx, ev.ID, in.Zones); err != nil {
			return err
		}
		s.p.Audit.Record(ctx, actor.UserID, "create_event", map[string]any{
			"event_id":           ev.ID,
			"title":              ev.Title,
			"capacity":           ev.Capacity,
			"ticket_price_cents": ev.TicketPriceCents,
			"zones":              len(in.Zones),
		})
		return nil
	})
	if err != nil {
		return nil, s.p.fail(ctx, err, "create event", logrus.Fields{"title": in.Title})
	}
	s.p.purge(ctx)

	ev.Zones = withEventID(in.Zones, ev.ID)
	return ev, nil
}

// Update replaces the editable fields and the zone configuration, then
// recomputes capacity and price.  A zone that still has active bookings
// cannot be dropped.  A status change in the input is applied through
// the lifecycle rules within the same transaction.
func (s *EventService) Update(ctx context.Context, actor authz.Actor, id uint64, in EventInput) (*model.Event, *model.CascadeResult, error) {
	if err := authz.Require(actor, authz.Staff...); err != nil {
		return nil, nil, err
	}
	if err := in.validate(s.p.now()); err != nil {
		return nil, nil, err
	}

	var (
		ev      *model.Event
		cascade *model.CascadeResult
	)
	err := s.p.Tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		ev, err = s.p.Events.GetForUpdate(ctx, id)
		if isNotFound(err) {
			return apperr.NotFound("event %d not found", id)
		}
		if err != nil {
			return err
		}
		if ev.Status == model.EventCancelled {
			return apperr.InvalidState("event %d is cancelled and can no longer be edited", id)
		}

		old, err := s.p.Events.ListZones(ctx, id)
		if err != nil {
			return err
		}
		if removed := removedZones(old, in.Zones); len(removed) > 0 {
			n, err := s.p.Bookings.CountActiveInZones(ctx, id, removed)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperr.Conflict("zones %v still have %d active bookings for event %d", removed, n, id)
			}
		}
		if err := s.checkReferences(ctx, in); err != nil {
			return err
		}
		if err := s.p.Events.ReplaceZones(ctx, id, in.Zones); err != nil {
			return err
		}

		ev.CategoryID = in.CategoryID
		ev.Title = in.Title
		ev.Description = in.Description
		ev.EventDate = in.EventDate.UTC()
		ev.DurationMinutes = in.DurationMinutes
		ev.Capacity, ev.TicketPriceCents = DeriveCapacityAndPrice(in.Zones)
		if err := s.p.Events.Update(ctx, ev); err != nil {
			return err
		}
		s.p.Audit.Record(ctx, actor.UserID, "update_event", map[string]any{
			"event_id":           id,
			"capacity":           ev.Capacity,
			"ticket_price_cents": ev.TicketPriceCents,
			"zones":              len(in.Zones),
		})

		if in.Status != "" && in.Status != ev.Status {
			if cascade, err = s.transition(ctx, actor, ev, in.Status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, s.p.fail(ctx, err, "update event", logrus.Fields{"event_id": id})
	}

	if cascade != nil {
		s.p.notify(ctx, queue.KeyEventStatusChanged, statusMessage(cascade, actor.UserID, false, s.p.now()))
	} else {
		s.p.purge(ctx)
	}
	ev.Zones = withEventID(in.Zones, id)
	return ev, cascade, nil
}

// Get returns an event with its zone configuration.
func (s *EventService) Get(ctx context.Context, id uint64) (*model.Event, error) {
	ev, err := s.p.Events.GetByID(ctx, id)
	if isNotFound(err) {
		return nil, apperr.NotFound("event %d not found", id)
	}
	if err != nil {
		return nil, s.p.fail(ctx, err, "load event", logrus.Fields{"event_id": id})
	}
	if ev.Zones, err = s.p.Events.ListZones(ctx, id); err != nil {
		return nil, s.p.fail(ctx, err, "load event zones", logrus.Fields{"event_id": id})
	}
	return ev, nil
}

// List returns events matching f.  Callers that are not staff only see
// bookable events, whatever statuses they ask for.
func (s *EventService) List(ctx context.Context, actor *authz.Actor, f model.EventFilter) ([]model.Event, error) {
	f.Now = s.p.now()
	if actor == nil || !actor.Has(authz.Staff...) {
		f.Statuses = bookableOnly(f.Statuses)
		if len(f.Statuses) == 0 {
			return []model.Event{}, nil
		}
	}
	events, err := s.p.Events.List(ctx, f)
	if err != nil {
		return nil, s.p.fail(ctx, err, "list events", nil)
	}
	return events, nil
}

// Delete removes an event that has never been booked.  An event with
// bookings of any status is cancelled through the lifecycle cascade
// instead, or left as it is when already cancelled, so booking and
// payment records are never lost.
func (s *EventService) Delete(ctx context.Context, actor authz.Actor, id uint64) (*DeleteResult, error) {
	if err := authz.Require(actor, authz.Staff...); err != nil {
		return nil, err
	}
	res := &DeleteResult{}
	var title string
	err := s.p.Tx.WithTx(ctx, func(ctx context.Context) error {
		ev, err := s.p.Events.GetForUpdate(ctx, id)
		if isNotFound(err) {
			return apperr.NotFound("event %d not found", id)
		}
		if err != nil {
			return err
		}
		title = ev.Title
		total, err := s.p.Bookings.CountByEvent(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case total == 0:
			if err := s.p.Events.Delete(ctx, id); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return apperr.Conflict("event %d has bookings and cannot be deleted", id)
				}
				return err
			}
			res.Deleted = true
		case ev.Status != model.EventCancelled:
			if res.Cascade, err = s.transition(ctx, actor, ev, model.EventCancelled); err != nil {
				return err
			}
		}
		s.p.Audit.Record(ctx, actor.UserID, "delete_event", map[string]any{
			"event_id": id,
			"title":    title,
			"deleted":  res.Deleted,
			"bookings": total,
		})
		return nil
	})
	if err != nil {
		return nil, s.p.fail(ctx, err, "delete event", logrus.Fields{"event_id": id})
	}

	switch {
	case res.Deleted:
		s.p.notify(ctx, queue.KeyEventDeleted, queue.EventStatusMessage{
			EventID:    id,
			ActorID:    actor.UserID,
			Deleted:    true,
			OccurredAt: stamp(s.p.now()),
		})
	case res.Cascade != nil:
		s.p.notify(ctx, queue.KeyEventStatusChanged, statusMessage(res.Cascade, actor.UserID, false, s.p.now()))
	}
	return res, nil
}

// Statistics reports booking, revenue and occupancy figures for an
// event.
func (s *EventService) Statistics(ctx context.Context, actor authz.Actor, id uint64) (*model.EventStatistics, error) {
	if err := authz.Require(actor, authz.Staff...); err != nil {
		return nil, err
	}
	ev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := s.p.Events.Statistics(ctx, id)
	if err != nil {
		return nil, s.p.fail(ctx, err, "event statistics", logrus.Fields{"event_id": id})
	}
	st.Event = *ev
	if st.PaidTransactions > 0 {
		st.AverageTicket = st.RevenueCents / st.PaidTransactions
	}
	if ev.Capacity > 0 {
		st.OccupancyRate = float64(st.ConfirmedBookings) / float64(ev.Capacity)
	}
	return st, nil
}

func (s *EventService) checkReferences(ctx context.Context, in EventInput) error {
	if in.CategoryID != nil {
		ok, err := s.p.Categories.Exists(ctx, *in.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation("category %d does not exist", *in.CategoryID)
		}
	}
	ids := make([]uint64, len(in.Zones))
	for i, z := range in.Zones {
		ids[i] = z.ZoneID
	}
	found, err := s.p.Zones.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !found[id] {
			return apperr.Validation("zone %d does not exist", id)
		}
	}
	return nil
}

func removedZones(old, next []model.EventZoneConfig) []uint64 {
	keep := make(map[uint64]bool, len(next))
	for _, z := range next {
		keep[z.ZoneID] = true
	}
	var removed []uint64
	for _, z := range old {
		if !keep[z.ZoneID] {
			removed = append(removed, z.ZoneID)
		}
	}
	return removed
}

func withEventID(zones []model.EventZoneConfig, eventID uint64) []model.EventZoneConfig {
	out := make([]model.EventZoneConfig, len(zones))
	for i, z := range zones {
		z.EventID = eventID
		out[i] = z
	}
	return out
}

func bookableOnly(statuses []model.EventStatus) []model.EventStatus {
	if len(statuses) == 0 {
		return []model.EventStatus{model.EventPlanned, model.EventActive}
	}
	out := make([]model.EventStatus, 0, len(statuses))
	for _, st := range statuses {
		if st.Bookable() {
			out = append(out, st)
		}
	}
	return out
}
