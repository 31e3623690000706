// Package queue defines the lifecycle messages exchanged over RabbitMQ
// and the publisher and consumer that carry them.
package queue

// Routing keys on the topic exchange.  Consumers bind with patterns
// such as "booking.*" or "#".
const (
	KeyBookingCreated     = "booking.created"
	KeyBookingPaid        = "booking.paid"
	KeyBookingConfirmed   = "booking.confirmed"
	KeyBookingCancelled   = "booking.cancelled"
	KeyBookingExpired     = "booking.expired"
	KeyEventStatusChanged = "event.status_changed"
	KeyEventDeleted       = "event.deleted"
)

// BookingMessage is published whenever a booking changes state.  It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type BookingMessage struct {
	BookingID     uint64 `json:"booking_id"`
	EventID       uint64 `json:"event_id"`
	SeatID        uint64 `json:"seat_id"`
	UserID        uint64 `json:"user_id"`
	ActorID       uint64 `json:"actor_id"`
	Status        string `json:"status"`
	PriceCents    int64  `json:"price_cents"`
	PaymentMethod string `json:"payment_method,omitempty"`
	PaymentRef    string `json:"payment_ref,omitempty"`
	Refunded      bool   `json:"refunded,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// EventStatusMessage is published after an event status change or
// deletion, together with the cascade it caused.
type EventStatusMessage struct {
	EventID            uint64 `json:"event_id"`
	ActorID            uint64 `json:"actor_id"`
	OldStatus          string `json:"old_status"`
	NewStatus          string `json:"new_status"`
	Deleted            bool   `json:"deleted,omitempty"`
	CancelledPending   int64  `json:"cancelled_pending"`
	CancelledConfirmed int64  `json:"cancelled_confirmed"`
	Refunded           int64  `json:"refunded_transactions"`
	OccurredAt         string `json:"occurred_at"`
}
