package model

import "time"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventPlanned   EventStatus = "planned"
	EventActive    EventStatus = "active"
	EventCancelled EventStatus = "cancelled"
)

// eventTransitions lists the statuses reachable from each status.
// cancelled is terminal.
var eventTransitions = map[EventStatus][]EventStatus{
	EventPlanned:   {EventActive, EventCancelled},
	EventActive:    {EventCancelled},
	EventCancelled: {},
}

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	_, ok := eventTransitions[s]
	return ok
}

// CanTransitionTo reports whether an event may move from s to next.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	for _, t := range eventTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Bookable reports whether new bookings may be placed for an event in
// this status.
func (s EventStatus) Bookable() bool {
	return s == EventPlanned || s == EventActive
}

// Event represents a scheduled night at the club.  Capacity and
// TicketPriceCents are derived from the event's zone configuration
// and stored on the row for listing queries; the zone configuration
// remains the source of truth.
//
// Fields:
//  ID               – primary key identifier.
//  CategoryID       – optional category reference.
//  CategoryName     – category display name (read only, joined).
//  Title            – event title.
//  Description      – free text description.
//  EventDate        – when the event starts (UTC).
//  DurationMinutes  – length of the event in minutes.
//  Capacity         – sum of available seats over the zone configuration.
//  TicketPriceCents – lowest zone price over the zone configuration.
//  Status           – lifecycle state (planned, active, cancelled).
//  CreatedBy        – user id of the creator.
//  BookedSeats      – number of active bookings (read only).
//  Zones            – per-zone configuration, filled on detail reads.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Event struct {
	ID               uint64            `json:"event_id"`                // events.id
	CategoryID       *uint64           `json:"category_id,omitempty"`   // events.category_id (nullable)
	CategoryName     *string           `json:"category_name,omitempty"` // event_categories.name
	Title            string            `json:"title"`                   // events.title
	Description      string            `json:"description"`             // events.description
	EventDate        time.Time         `json:"event_date"`              // events.event_date
	DurationMinutes  uint32            `json:"duration_minutes"`        // events.duration_minutes
	Capacity         uint32            `json:"capacity"`                // events.capacity
	TicketPriceCents int64             `json:"ticket_price_cents"`      // events.ticket_price_cents
	Status           EventStatus       `json:"status"`                  // events.status
	CreatedBy        uint64            `json:"created_by"`              // events.created_by
	BookedSeats      uint32            `json:"booked_seats"`
	Zones            []EventZoneConfig `json:"zones,omitempty"`
	CreatedAt        time.Time         `json:"created_at"` // events.created_at
	UpdatedAt        time.Time         `json:"updated_at"` // events.updated_at
}

// Started reports whether the event has begun at the given instant.
func (e *Event) Started(now time.Time) bool {
	return !e.EventDate.After(now)
}

// EventZoneConfig sells one zone for one event with its own seat
// allowance and price.
//
// Fields:
//  EventID        – event being configured.
//  ZoneID         – zone sold for the event.
//  ZoneName       – zone display name (read only, joined).
//  AvailableSeats – seats offered in this zone for the event (>= 0).
//  ZonePriceCents – price of one seat in this zone (>= 0).
type EventZoneConfig struct {
	EventID        uint64 `json:"event_id"`            // event_zones.event_id
	ZoneID         uint64 `json:"zone_id"`             // event_zones.zone_id
	ZoneName       string `json:"zone_name,omitempty"` // club_zones.name
	AvailableSeats int64  `json:"available_seats"`     // event_zones.available_seats
	ZonePriceCents int64  `json:"zone_price_cents"`    // event_zones.zone_price_cents
}

// EventFilter narrows event listings.
type EventFilter struct {
	CategoryID  *uint64
	Statuses    []EventStatus
	From        *time.Time
	To          *time.Time
	IncludePast bool
	Now         time.Time
}

// CascadeResult reports what an event status change touched.
type CascadeResult struct {
	EventID            uint64      `json:"event_id"`
	OldStatus          EventStatus `json:"old_status"`
	NewStatus          EventStatus `json:"new_status"`
	CancelledPending   int64       `json:"cancelled_pending"`
	CancelledConfirmed int64       `json:"cancelled_confirmed"`
	Refunded           int64       `json:"refunded_transactions"`
}

// EventStatistics aggregates booking and revenue figures for one event.
type EventStatistics struct {
	Event             Event       `json:"event"`
	TotalBookings     int64       `json:"total_bookings"`
	PendingBookings   int64       `json:"pending_bookings"`
	ConfirmedBookings int64       `json:"confirmed_bookings"`
	CancelledBookings int64       `json:"cancelled_bookings"`
	RevenueCents      int64       `json:"revenue_cents"`
	PaidTransactions  int64       `json:"paid_transactions"`
	AverageTicket     int64       `json:"average_ticket_cents"`
	OccupancyRate     float64     `json:"occupancy_rate"`
	Zones             []ZoneStats `json:"zones"`
}

// ZoneStats is the per-zone slice of EventStatistics.
type ZoneStats struct {
	ZoneID            uint64 `json:"zone_id"`
	ZoneName          string `json:"zone_name"`
	Capacity          int64  `json:"zone_capacity"`
	ZonePriceCents    int64  `json:"zone_price_cents"`
	ConfirmedBookings int64  `json:"bookings_count"`
	RevenueCents      int64  `json:"zone_revenue_cents"`
}
