package handler

import (
	"context"

	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/model"
	"github.com/iliyamo/nightclub-booking/internal/service"
)

// The interfaces below are implemented by the service package and by
// function-field fakes in the handler tests.

type EventService interface {
	Create(ctx context.Context, actor authz.Actor, in service.EventInput) (*model.Event, error)
	Update(ctx context.Context, actor authz.Actor, id uint64, in service.EventInput) (*model.Event, *model.CascadeResult, error)
	Get(ctx context.Context, id uint64) (*model.Event, error)
	List(ctx context.Context, actor *authz.Actor, f model.EventFilter) ([]model.Event, error)
	Delete(ctx context.Context, actor authz.Actor, id uint64) (*service.DeleteResult, error)
	Statistics(ctx context.Context, actor authz.Actor, id uint64) (*model.EventStatistics, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, id uint64, status model.EventStatus) (*model.CascadeResult, error)
}

type AvailabilityService interface {
	IsSeatAvailable(ctx context.Context, eventID, seatID uint64) (bool, error)
	EventSeats(ctx context.Context, eventID uint64, zoneID *uint64) ([]model.EventSeat, error)
}

type BookingService interface {
	Create(ctx context.Context, actor authz.Actor, eventID, seatID uint64) (*model.Booking, error)
	Get(ctx context.Context, actor authz.Actor, id uint64) (*model.BookingDetail, error)
	ListMine(ctx context.Context, actor authz.Actor) ([]model.BookingDetail, error)
	Cancel(ctx context.Context, actor authz.Actor, id uint64) (*model.Booking, error)
	Confirm(ctx context.Context, actor authz.Actor, id uint64) (*model.Transaction, error)
}

type PaymentService interface {
	Pay(ctx context.Context, actor authz.Actor, bookingID uint64, method string) (*model.Transaction, error)
}

type CatalogService interface {
	ListZones(ctx context.Context) ([]model.Zone, error)
	CreateZone(ctx context.Context, actor authz.Actor, z model.Zone) (*model.Zone, error)
	AddSeats(ctx context.Context, actor authz.Actor, zoneID uint64, numbers []uint32) ([]model.Seat, error)
	ListZoneSeats(ctx context.Context, zoneID uint64) ([]model.Seat, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, actor authz.Actor, c model.Category) (*model.Category, error)
}

type AuditService interface {
	List(ctx context.Context, actor authz.Actor, f model.AuditFilter) ([]model.AuditEntry, error)
}

type MaintenanceService interface {
	Cleanup(ctx context.Context, actor authz.Actor) (*service.CleanupResult, error)
}

var (
	_ EventService        = (*service.EventService)(nil)
	_ AvailabilityService = (*service.AvailabilityService)(nil)
	_ BookingService      = (*service.BookingService)(nil)
	_ PaymentService      = (*service.PaymentService)(nil)
	_ CatalogService      = (*service.CatalogService)(nil)
	_ AuditService        = (*service.AuditService)(nil)
	_ MaintenanceService  = (*service.MaintenanceService)(nil)
)
