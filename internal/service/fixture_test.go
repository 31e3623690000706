package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/clock"
	"github.com/iliyamo/nightclub-booking/internal/model"
)

var (
	admin     = authz.Actor{UserID: 1, Role: authz.RoleAdmin}
	moderator = authz.Actor{UserID: 2, Role: authz.RoleModerator}
	alice     = authz.Actor{UserID: 10, Role: authz.RoleUser}
	bob       = authz.Actor{UserID: 11, Role: authz.RoleUser}
)

type fixture struct {
	ctx   context.Context
	clk   *clock.Fixed
	db    *memDB
	pub   *recordingPublisher
	cache *countingPurger

	events   *EventService
	bookings *BookingService
	payments *PaymentService
	avail    *AvailabilityService
	catalog  *CatalogService
	audit    *AuditService
	maint    *MaintenanceService

	vip, general           model.Zone
	vipSeats, generalSeats []model.Seat
}

// newFixture builds the services over an in-memory store seeded with
// a VIP zone of two seats and a General zone of three.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	db := newMemDB(clk)
	f := &fixture{
		ctx:   context.Background(),
		clk:   clk,
		db:    db,
		pub:   &recordingPublisher{},
		cache: &countingPurger{},
	}
	p := newMemProperty(db, clk, f.pub, f.cache)
	f.events = NewEventService(p)
	f.bookings = NewBookingService(p)
	f.payments = NewPaymentService(p)
	f.avail = NewAvailabilityService(p)
	f.catalog = NewCatalogService(p)
	f.audit = NewAuditService(p)
	f.maint = NewMaintenanceService(p)

	vip, err := f.catalog.CreateZone(f.ctx, admin, model.Zone{Name: "VIP", Capacity: 2})
	require.NoError(t, err)
	general, err := f.catalog.CreateZone(f.ctx, admin, model.Zone{Name: "General", Capacity: 3})
	require.NoError(t, err)
	f.vip, f.general = *vip, *general

	f.vipSeats, err = f.catalog.AddSeats(f.ctx, admin, vip.ID, []uint32{1, 2})
	require.NoError(t, err)
	f.generalSeats, err = f.catalog.AddSeats(f.ctx, admin, general.ID, []uint32{1, 2, 3})
	require.NoError(t, err)
	return f
}

// eventInput returns a valid input one week ahead selling both zones:
// VIP at 50.00 and General at 20.00.
func (f *fixture) eventInput() EventInput {
	return EventInput{
		Title:           "Friday Techno",
		Description:     "Resident DJs until late",
		EventDate:       f.clk.Now().Add(7 * 24 * time.Hour),
		DurationMinutes: 240,
		Zones: []model.EventZoneConfig{
			{ZoneID: f.vip.ID, AvailableSeats: 2, ZonePriceCents: 5000},
			{ZoneID: f.general.ID, AvailableSeats: 3, ZonePriceCents: 2000},
		},
	}
}

func (f *fixture) createEvent(t *testing.T) *model.Event {
	t.Helper()
	ev, err := f.events.Create(f.ctx, admin, f.eventInput())
	require.NoError(t, err)
	return ev
}

func (f *fixture) book(t *testing.T, actor authz.Actor, eventID uint64, seat model.Seat) *model.Booking {
	t.Helper()
	b, err := f.bookings.Create(f.ctx, actor, eventID, seat.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) pay(t *testing.T, actor authz.Actor, bookingID uint64) *model.Transaction {
	t.Helper()
	txn, err := f.payments.Pay(f.ctx, actor, bookingID, "card")
	require.NoError(t, err)
	return txn
}
