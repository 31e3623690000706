package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/model"
	"github.com/iliyamo/nightclub-booking/internal/service"
)

// EventHandler serves the event catalog, seat maps and the staff event
// management endpoints.
type EventHandler struct {
	Events EventService
	Seats  AvailabilityService
}

func NewEventHandler(events EventService, seats AvailabilityService) *EventHandler {
	notNil("NewEventHandler", events, seats)
	return &EventHandler{Events: events, Seats: seats}
}

type zoneConfigRequest struct {
	ZoneID         uint64 `json:"zone_id" validate:"required"`
	AvailableSeats int64  `json:"available_seats" validate:"gte=0"`
	ZonePriceCents int64  `json:"zone_price_cents" validate:"gte=0"`
}

type eventRequest struct {
	CategoryID      *uint64             `json:"category_id" validate:"omitempty,gt=0"`
	Title           string              `json:"title" validate:"required,max=200"`
	Description     string              `json:"description" validate:"max=4000"`
	EventDate       time.Time           `json:"event_date"`
	DurationMinutes uint32              `json:"duration_minutes" validate:"gte=30"`
	Status          string              `json:"status" validate:"omitempty,oneof=planned active cancelled"`
	Zones           []zoneConfigRequest `json:"zones" validate:"required,min=1,dive"`
}

func (r eventRequest) input() service.EventInput {
	in := service.EventInput{
		CategoryID:      r.CategoryID,
		Title:           r.Title,
		Description:     r.Description,
		EventDate:       r.EventDate,
		DurationMinutes: r.DurationMinutes,
		Status:          model.EventStatus(r.Status),
		Zones:           make([]model.EventZoneConfig, len(r.Zones)),
	}
	for i, z := range r.Zones {
		in.Zones[i] = model.EventZoneConfig{ZoneID: z.ZoneID, AvailableSeats: z.AvailableSeats, ZonePriceCents: z.ZonePriceCents}
	}
	return in
}

// List handles GET /v1/events.  Only planned and active events are
// visible here.
func (h *EventHandler) List(c echo.Context) error {
	f, err := eventFilter(c)
	if err != nil {
		return err
	}
	events, err := h.Events.List(c.Request().Context(), nil, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events, "count": len(events)})
}

// AdminList handles GET /v1/admin/events, which includes cancelled
// events.
func (h *EventHandler) AdminList(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	f, err := eventFilter(c)
	if err != nil {
		return err
	}
	events, err := h.Events.List(c.Request().Context(), &actor, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events, "count": len(events)})
}

// eventFilter reads category_id, status (comma separated), date_from,
// date_to and include_past.
func eventFilter(c echo.Context) (model.EventFilter, error) {
	var f model.EventFilter
	var err error
	if f.CategoryID, err = queryID(c, "category_id"); err != nil {
		return f, err
	}
	if f.From, err = queryTime(c, "date_from", false); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "date_to", true); err != nil {
		return f, err
	}
	if f.IncludePast, err = queryBool(c, "include_past"); err != nil {
		return f, err
	}
	for _, s := range strings.Split(c.QueryParam("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.Statuses = append(f.Statuses, model.EventStatus(s))
		}
	}
	return f, nil
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ev, err := h.Events.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

// EventSeats handles GET /v1/events/:id/seats?zone_id=.
func (h *EventHandler) EventSeats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	zoneID, err := queryID(c, "zone_id")
	if err != nil {
		return err
	}
	seats, err := h.Seats.EventSeats(c.Request().Context(), id, zoneID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "seats": seats})
}

// Availability handles GET /v1/events/:id/seats/:seat_id/availability.
func (h *EventHandler) Availability(c echo.Context) error {
	eventID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	seatID, err := parseID(c, "seat_id")
	if err != nil {
		return err
	}
	ok, err := h.Seats.IsSeatAvailable(c.Request().Context(), eventID, seatID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": eventID, "seat_id": seatID, "available": ok})
}

// Create handles POST /v1/events.
func (h *EventHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var req eventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ev, err := h.Events.Create(c.Request().Context(), actor, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ev)
}

// Update handles PUT /v1/events/:id.
func (h *EventHandler) Update(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req eventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ev, cascade, err := h.Events.Update(c.Request().Context(), actor, id, req.input())
	if err != nil {
		return err
	}
	resp := echo.Map{"event": ev}
	if cascade != nil {
		resp["cascade"] = cascade
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateStatus handles PATCH /v1/events/:id/status.
func (h *EventHandler) UpdateStatus(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.Events.UpdateStatus(c.Request().Context(), actor, id, model.EventStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/events/:id.
func (h *EventHandler) Delete(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.Events.Delete(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Statistics handles GET /v1/events/:id/statistics.
func (h *EventHandler) Statistics(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	st, err := h.Events.Statistics(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}
