package service

import (
	"context"
	"time"

	"github.com/iliyamo/nightclub-booking/internal/model"
)

// The interfaces below are the storage and side-channel ports of the
// booking core.  The MySQL repositories satisfy them in production and
// an in-memory store satisfies them in tests.  Stores report missing
// rows with repository.ErrNotFound and unique-key violations with
// repository.ErrDuplicate.

// TxRunner runs fn inside one storage transaction carried by ctx.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ZoneStore interface {
	List(ctx context.Context) ([]model.Zone, error)
	GetByID(ctx context.Context, id uint64) (*model.Zone, error)
	Create(ctx context.Context, z *model.Zone) error
	ExistingIDs(ctx context.Context, ids []uint64) (map[uint64]bool, error)
}

type SeatStore interface {
	CreateBulk(ctx context.Context, zoneID uint64, numbers []uint32) ([]model.Seat, error)
	ListByZone(ctx context.Context, zoneID uint64) ([]model.Seat, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, c *model.Category) error
	Exists(ctx context.Context, id uint64) (bool, error)
}

type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	GetForShare(ctx context.Context, id uint64) (*model.Event, error)
	GetForUpdate(ctx context.Context, id uint64) (*model.Event, error)
	List(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, e *model.Event) error
	UpdateStatus(ctx context.Context, id uint64, status model.EventStatus) error
	Delete(ctx context.Context, id uint64) error
	ReplaceZones(ctx context.Context, eventID uint64, zones []model.EventZoneConfig) error
	ListZones(ctx context.Context, eventID uint64) ([]model.EventZoneConfig, error)
	SeatZonePrice(ctx context.Context, eventID, seatID uint64) (zoneID uint64, priceCents int64, err error)
	ListSeats(ctx context.Context, eventID uint64, zoneID *uint64) ([]model.EventSeat, error)
	Statistics(ctx context.Context, eventID uint64) (*model.EventStatistics, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	GetForUpdate(ctx context.Context, id uint64) (*model.Booking, error)
	GetDetail(ctx context.Context, id uint64) (*model.BookingDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	CountActiveForSeat(ctx context.Context, eventID, seatID uint64) (int64, error)
	CountByEvent(ctx context.Context, eventID uint64) (int64, error)
	CountActiveByEvent(ctx context.Context, eventID uint64) (int64, error)
	CountActiveInZones(ctx context.Context, eventID uint64, zoneIDs []uint64) (int64, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error)
	CancelByEvent(ctx context.Context, eventID uint64, from model.BookingStatus) (int64, error)
	LockStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error)
}

type TransactionStore interface {
	Create(ctx context.Context, t *model.Transaction) error
	GetByBookingForUpdate(ctx context.Context, bookingID uint64) (*model.Transaction, error)
	Settle(ctx context.Context, id uint64, method, ref string, at time.Time) (bool, error)
	RefundByBooking(ctx context.Context, bookingID uint64) (int64, error)
	RefundByEvent(ctx context.Context, eventID uint64) (int64, error)
}

// AuditSink appends to the action log.  It is fire-and-forget.
type AuditSink interface {
	Record(ctx context.Context, userID uint64, action string, details map[string]any)
}

type AuditStore interface {
	List(ctx context.Context, f model.AuditFilter) ([]model.AuditEntry, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Publisher emits lifecycle messages after a change has committed.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// CachePurger drops cached listing responses after catalog or booking
// writes.
type CachePurger interface {
	Purge(ctx context.Context) error
}
