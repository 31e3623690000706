package model

import "time"

// BookingStatus is the state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Active reports whether a booking in this status holds its seat.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// CanTransitionTo reports whether a booking may move from s to next.
// Bookings never go backwards: pending -> confirmed, pending ->
// cancelled and confirmed -> cancelled are the only moves.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled
	}
	return false
}

// Booking reserves one seat for one event on behalf of one user.
// PriceCents is a snapshot of the zone price at booking time.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event being attended.
//  UserID        – user who owns the booking.
//  SeatID        – seat being held.
//  Status        – pending, confirmed or cancelled.
//  PriceCents    – price charged for the seat.
//  TransactionID – companion transaction, when loaded.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
	ID            uint64        `json:"booking_id"`               // bookings.id
	EventID       uint64        `json:"event_id"`                 // bookings.event_id
	UserID        uint64        `json:"user_id"`                  // bookings.user_id
	SeatID        uint64        `json:"seat_id"`                  // bookings.seat_id
	Status        BookingStatus `json:"status"`                   // bookings.status
	PriceCents    int64         `json:"price_cents"`              // bookings.price_cents
	TransactionID *uint64       `json:"transaction_id,omitempty"` // transactions.id
	CreatedAt     time.Time     `json:"created_at"`               // bookings.created_at
	UpdatedAt     time.Time     `json:"updated_at"`               // bookings.updated_at
}

// BookingDetail is a booking joined with the event, seat and payment
// information shown to its owner.
type BookingDetail struct {
	Booking
	EventTitle        string             `json:"event_title"`
	EventDate         time.Time          `json:"event_date"`
	EventStatus       EventStatus        `json:"event_status"`
	SeatNumber        uint32             `json:"seat_number"`
	ZoneID            uint64             `json:"zone_id"`
	ZoneName          string             `json:"zone_name"`
	TransactionStatus *TransactionStatus `json:"transaction_status,omitempty"`
	PaymentMethod     *string            `json:"payment_method,omitempty"`
}
