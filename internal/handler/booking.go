package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
)

// BookingHandler serves the booking ledger: reserve, read, pay, cancel
// and the staff on-site confirmation.
type BookingHandler struct {
	Bookings BookingService
	Payments PaymentService
}

func NewBookingHandler(bookings BookingService, payments PaymentService) *BookingHandler {
	notNil("NewBookingHandler", bookings, payments)
	return &BookingHandler{Bookings: bookings, Payments: payments}
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var req struct {
		EventID uint64 `json:"event_id" validate:"required"`
		SeatID  uint64 `json:"seat_id" validate:"required"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.Bookings.Create(c.Request().Context(), actor, req.EventID, req.SeatID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

// Mine handles GET /v1/bookings/my.
func (h *BookingHandler) Mine(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	list, err := h.Bookings.ListMine(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list, "count": len(list)})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.Bookings.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Pay handles POST /v1/bookings/pay with booking_id in the body, and
// POST /v1/bookings/:id/pay.
func (h *BookingHandler) Pay(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var req struct {
		BookingID     uint64 `json:"booking_id"`
		PaymentMethod string `json:"payment_method" validate:"required,max=50"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	id := req.BookingID
	if c.Param("id") != "" {
		if id, err = parseID(c, "id"); err != nil {
			return err
		}
	}
	if id == 0 {
		return apperr.Validation("booking_id is required")
	}
	txn, err := h.Payments.Pay(c.Request().Context(), actor, id, req.PaymentMethod)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txn)
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.Bookings.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// Confirm handles POST /v1/bookings/:id/confirm (staff only).
func (h *BookingHandler) Confirm(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	txn, err := h.Bookings.Confirm(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txn)
}
