package model

import "time"

// Zone is a priced seating area of the venue (dance floor, VIP
// lounge, balcony).  Zones are created by administrators and are
// never deleted while an event configuration or seat refers to them.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique display name.
//  Description – free text shown to guests.
//  Capacity    – nominal number of places in the zone.
//  TotalSeats  – number of seat rows registered for the zone (read only).
//  CreatedAt   – creation timestamp.
type Zone struct {
	ID          uint64    `json:"zone_id"`     // club_zones.id
	Name        string    `json:"name"`        // club_zones.name
	Description string    `json:"description"` // club_zones.description
	Capacity    uint32    `json:"capacity"`    // club_zones.capacity
	TotalSeats  uint32    `json:"total_seats"` // COUNT(seats.id)
	CreatedAt   time.Time `json:"created_at"`  // club_zones.created_at
}

// Category groups events for browsing (e.g. "Live", "DJ night").
type Category struct {
	ID          uint64 `json:"category_id"` // event_categories.id
	Name        string `json:"name"`        // event_categories.name
	Description string `json:"description"` // event_categories.description
}
