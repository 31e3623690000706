package model

import "time"

// Seat describes one physical place inside a club zone.  A seat is
// permanently owned by exactly one zone and is identified within the
// zone by its seat number.
//
// Fields:
//  ID         – primary key identifier.
//  ZoneID     – zone to which this seat belongs.
//  SeatNumber – number of the seat, unique within its zone.
//  CreatedAt  – creation timestamp.
type Seat struct {
	ID         uint64    `json:"seat_id"`     // seats.id
	ZoneID     uint64    `json:"zone_id"`     // seats.zone_id
	SeatNumber uint32    `json:"seat_number"` // seats.seat_number
	CreatedAt  time.Time `json:"created_at"`  // seats.created_at
}

// EventSeat is a seat as seen from a particular event: the price the
// event charges for the seat's zone and whether an active booking
// already holds it.
type EventSeat struct {
	SeatID         uint64 `json:"seat_id"`
	SeatNumber     uint32 `json:"seat_number"`
	ZoneID         uint64 `json:"zone_id"`
	ZoneName       string `json:"zone_name"`
	ZonePriceCents int64  `json:"zone_price_cents"`
	IsBooked       bool   `json:"is_booked"`
}
