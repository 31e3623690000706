package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/model"
)

// CatalogHandler serves zones, seats and event categories.
type CatalogHandler struct {
	Catalog CatalogService
}

func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	notNil("NewCatalogHandler", catalog)
	return &CatalogHandler{Catalog: catalog}
}

func (h *CatalogHandler) ListZones(c echo.Context) error {
	zones, err := h.Catalog.ListZones(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"zones": zones})
}

// CreateZone handles POST /v1/admin/zones.
func (h *CatalogHandler) CreateZone(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var req struct {
		Name        string `json:"name" validate:"required,max=100"`
		Description string `json:"description" validate:"max=1000"`
		Capacity    uint32 `json:"capacity" validate:"required,gt=0"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	z, err := h.Catalog.CreateZone(c.Request().Context(), actor, model.Zone{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, z)
}

// AddSeats handles POST /v1/admin/zones/:id/seats.  The body lists
// seat_numbers explicitly, or asks for count seats numbered from
// "from" (default 1).
func (h *CatalogHandler) AddSeats(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		SeatNumbers []uint32 `json:"seat_numbers" validate:"omitempty,dive,gt=0"`
		From        uint32   `json:"from"`
		Count       uint32   `json:"count" validate:"lte=1000"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	numbers := req.SeatNumbers
	if len(numbers) == 0 {
		if req.Count == 0 {
			return apperr.Validation("seat_numbers or count is required")
		}
		from := req.From
		if from == 0 {
			from = 1
		}
		numbers = make([]uint32, req.Count)
		for i := range numbers {
			numbers[i] = from + uint32(i)
		}
	}
	seats, err := h.Catalog.AddSeats(c.Request().Context(), actor, zoneID, numbers)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"zone_id": zoneID, "seats": seats, "count": len(seats)})
}

// ListZoneSeats handles GET /v1/zones/:id/seats.
func (h *CatalogHandler) ListZoneSeats(c echo.Context) error {
	zoneID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	seats, err := h.Catalog.ListZoneSeats(c.Request().Context(), zoneID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"zone_id": zoneID, "seats": seats})
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	cats, err := h.Catalog.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}

// CreateCategory handles POST /v1/admin/categories.
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var req struct {
		Name        string `json:"name" validate:"required,max=100"`
		Description string `json:"description" validate:"max=1000"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.Catalog.CreateCategory(c.Request().Context(), actor, model.Category{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}
