package service

import (
	"math"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/model"
)

// DeriveCapacityAndPrice computes the denormalised event figures from a
// zone configuration: capacity is the sum of available seats and the
// headline price is the cheapest zone.  An empty configuration yields
// zeros.
func DeriveCapacityAndPrice(zones []model.EventZoneConfig) (capacity uint32, priceCents int64) {
	if len(zones) == 0 {
		return 0, 0
	}
	var total int64
	priceCents = math.MaxInt64
	for _, z := range zones {
		total += z.AvailableSeats
		if z.ZonePriceCents < priceCents {
			priceCents = z.ZonePriceCents
		}
	}
	if total > math.MaxUint32 {
		total = math.MaxUint32
	}
	return uint32(total), priceCents
}

// validateZones checks a zone configuration in isolation.  Existence of
// the referenced zones is checked against storage by the caller.
func validateZones(zones []model.EventZoneConfig) error {
	if len(zones) == 0 {
		return apperr.Validation("at least one zone must be configured")
	}
	seen := make(map[uint64]bool, len(zones))
	for _, z := range zones {
		if z.ZoneID == 0 {
			return apperr.Validation("zone_id is required")
		}
		if seen[z.ZoneID] {
			return apperr.Validation("zone %d is configured more than once", z.ZoneID)
		}
		seen[z.ZoneID] = true
		if z.AvailableSeats < 0 {
			return apperr.Validation("available_seats for zone %d must not be negative", z.ZoneID)
		}
		if z.ZonePriceCents < 0 {
			return apperr.Validation("zone_price for zone %d must not be negative", z.ZoneID)
		}
	}
	return nil
}
