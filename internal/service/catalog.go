package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/model"
)

// MaxSeatsPerRequest caps one bulk seat insert.
const MaxSeatsPerRequest = 1000

// CatalogService administers the venue inventory: zones, their seats
// and event categories.
type CatalogService struct {
	p Property
}

func NewCatalogService(p Property) *CatalogService { return &CatalogService{p: p} }

func (s *CatalogService) ListZones(ctx context.Context) ([]model.Zone, error) {
	zones, err := s.p.Zones.List(ctx)
	if err != nil {
		return nil, s.p.fail(ctx, err, "list zones", nil)
	}
	return zones, nil
}

// CreateZone adds a zone.  Zone names are unique.
func (s *CatalogService) CreateZone(ctx context.Context, actor authz.Actor, z model.Zone) (*model.Zone, error) {
	if err := authz.Require(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	z.Name = strings.TrimSpace(z.Name)
	if z.Name == "" {
		return nil, apperr.Validation("zone name is required")
	}
	if z.Capacity == 0 {
		return nil, apperr.Validation("zone capacity must be positive")
	}
	if err := s.p.Zones.Create(ctx, &z); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("zone %q already exists", z.Name)
		}
		return nil, s.p.fail(ctx, err, "create zone", logrus.Fields{"name": z.Name})
	}
	s.p.Audit.Record(ctx, actor.UserID, "create_zone", map[string]any{"zone_id": z.ID, "name": z.Name, "capacity": z.Capacity})
	s.p.purge(ctx)
	return &z, nil
}

// AddSeats registers seat numbers in a zone.  A number already used in
// the zone fails the whole request with Conflict.
func (s *CatalogService) AddSeats(ctx context.Context, actor authz.Actor, zoneID uint64, numbers []uint32) ([]model.Seat, error) {
	if err := authz.Require(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, apperr.Validation("at least one seat number is required")
	}
	if len(numbers) > MaxSeatsPerRequest {
		return nil, apperr.Validation("at most %d seats can be added at once", MaxSeatsPerRequest)
	}
	seen := make(map[uint32]bool, len(numbers))
	for _, n := range numbers {
		if n == 0 {
			return nil, apperr.Validation("seat numbers start at 1")
		}
		if seen[n] {
			return nil, apperr.Validation("seat number %d is listed twice", n)
		}
		seen[n] = true
	}

	if _, err := s.p.Zones.GetByID(ctx, zoneID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("zone %d not found", zoneID)
		}
		return nil, s.p.fail(ctx, err, "load zone", logrus.Fields{"zone_id": zoneID})
	}
	seats, err := s.p.Seats.CreateBulk(ctx, zoneID, numbers)
	switch {
	case isDuplicate(err):
		return nil, apperr.Conflict("zone %d already has one of the requested seat numbers", zoneID)
	case isNotFound(err):
		return nil, apperr.NotFound("zone %d not found", zoneID)
	case err != nil:
		return nil, s.p.fail(ctx, err, "create seats", logrus.Fields{"zone_id": zoneID, "count": len(numbers)})
	}
	s.p.Audit.Record(ctx, actor.UserID, "create_seats", map[string]any{"zone_id": zoneID, "count": len(seats)})
	s.p.purge(ctx)
	return seats, nil
}

func (s *CatalogService) ListZoneSeats(ctx context.Context, zoneID uint64) ([]model.Seat, error) {
	if _, err := s.p.Zones.GetByID(ctx, zoneID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("zone %d not found", zoneID)
		}
		return nil, s.p.fail(ctx, err, "load zone", logrus.Fields{"zone_id": zoneID})
	}
	seats, err := s.p.Seats.ListByZone(ctx, zoneID)
	if err != nil {
		return nil, s.p.fail(ctx, err, "list seats", logrus.Fields{"zone_id": zoneID})
	}
	return seats, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := s.p.Categories.List(ctx)
	if err != nil {
		return nil, s.p.fail(ctx, err, "list categories", nil)
	}
	return cats, nil
}

// CreateCategory adds an event category.  Category names are unique.
func (s *CatalogService) CreateCategory(ctx context.Context, actor authz.Actor, c model.Category) (*model.Category, error) {
	if err := authz.Require(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, apperr.Validation("category name is required")
	}
	if err := s.p.Categories.Create(ctx, &c); err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("category %q already exists", c.Name)
		}
		return nil, s.p.fail(ctx, err, "create category", logrus.Fields{"name": c.Name})
	}
	s.p.Audit.Record(ctx, actor.UserID, "create_category", map[string]any{"category_id": c.ID, "name": c.Name})
	s.p.purge(ctx)
	return &c, nil
}
