package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/middleware"
	"github.com/iliyamo/nightclub-booking/internal/model"
	"github.com/iliyamo/nightclub-booking/internal/service"
)

// --- fakes ---

type fakeEvents struct {
	EventService
	listFn         func(ctx context.Context, actor *authz.Actor, f model.EventFilter) ([]model.Event, error)
	createFn       func(ctx context.Context, actor authz.Actor, in service.EventInput) (*model.Event, error)
	updateStatusFn func(ctx context.Context, actor authz.Actor, id uint64, status model.EventStatus) (*model.CascadeResult, error)
	deleteFn       func(ctx context.Context, actor authz.Actor, id uint64) (*service.DeleteResult, error)
}

func (f *fakeEvents) List(ctx context.Context, actor *authz.Actor, fl model.EventFilter) ([]model.Event, error) {
	return f.listFn(ctx, actor, fl)
}
func (f *fakeEvents) Create(ctx context.Context, actor authz.Actor, in service.EventInput) (*model.Event, error) {
	return f.createFn(ctx, actor, in)
}
func (f *fakeEvents) UpdateStatus(ctx context.Context, actor authz.Actor, id uint64, st model.EventStatus) (*model.CascadeResult, error) {
	return f.updateStatusFn(ctx, actor, id, st)
}
func (f *fakeEvents) Delete(ctx context.Context, actor authz.Actor, id uint64) (*service.DeleteResult, error) {
	return f.deleteFn(ctx, actor, id)
}

type fakeSeats struct {
	AvailabilityService
	availableFn func(ctx context.Context, eventID, seatID uint64) (bool, error)
	seatsFn     func(ctx context.Context, eventID uint64, zoneID *uint64) ([]model.EventSeat, error)
}

func (f *fakeSeats) EventSeats(ctx context.Context, eventID uint64, zoneID *uint64) ([]model.EventSeat, error) {
	return f.seatsFn(ctx, eventID, zoneID)
}

func (f *fakeSeats) IsSeatAvailable(ctx context.Context, eventID, seatID uint64) (bool, error) {
	return f.availableFn(ctx, eventID, seatID)
}

type fakeBookings struct {
	BookingService
	createFn func(ctx context.Context, actor authz.Actor, eventID, seatID uint64) (*model.Booking, error)
	cancelFn func(ctx context.Context, actor authz.Actor, id uint64) (*model.Booking, error)
}

func (f *fakeBookings) Create(ctx context.Context, actor authz.Actor, eventID, seatID uint64) (*model.Booking, error) {
	return f.createFn(ctx, actor, eventID, seatID)
}
func (f *fakeBookings) Cancel(ctx context.Context, actor authz.Actor, id uint64) (*model.Booking, error) {
	return f.cancelFn(ctx, actor, id)
}

type fakePayments struct {
	payFn func(ctx context.Context, actor authz.Actor, bookingID uint64, method string) (*model.Transaction, error)
}

func (f *fakePayments) Pay(ctx context.Context, actor authz.Actor, bookingID uint64, method string) (*model.Transaction, error) {
	return f.payFn(ctx, actor, bookingID, method)
}

type fakeCatalog struct {
	CatalogService
	addSeatsFn func(ctx context.Context, actor authz.Actor, zoneID uint64, numbers []uint32) ([]model.Seat, error)
}

func (f *fakeCatalog) AddSeats(ctx context.Context, actor authz.Actor, zoneID uint64, numbers []uint32) ([]model.Seat, error) {
	return f.addSeatsFn(ctx, actor, zoneID, numbers)
}

type fakeAudit struct {
	listFn func(ctx context.Context, actor authz.Actor, f model.AuditFilter) ([]model.AuditEntry, error)
}

func (f *fakeAudit) List(ctx context.Context, actor authz.Actor, fl model.AuditFilter) ([]model.AuditEntry, error) {
	return f.listFn(ctx, actor, fl)
}

type fakeMaintenance struct{}

func (fakeMaintenance) Cleanup(context.Context, authz.Actor) (*service.CleanupResult, error) {
	return &service.CleanupResult{ExpiredBookings: 2, OldAuditLogs: 7}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

// --- helpers ---

var user = authz.Actor{UserID: 10, Role: authz.RoleUser}

func newEcho() *echo.Echo {
	log := logrus.New()
	log.SetOutput(io.Discard)
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)
	return e
}

func as(actor authz.Actor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetActor(c, actor)
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// --- tests ---

func TestCreateBookingHandler(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"created", `{"event_id":3,"seat_id":9}`, nil, http.StatusCreated, ""},
		{"missing seat", `{"event_id":3}`, nil, http.StatusBadRequest, "validation_error"},
		{"malformed", `{"event_id":`, nil, http.StatusBadRequest, "validation_error"},
		{"seat taken", `{"event_id":3,"seat_id":9}`, apperr.Conflict("seat 9 is already booked"), http.StatusConflict, "conflict"},
		{"event closed", `{"event_id":3,"seat_id":9}`, apperr.InvalidState("event 3 is cancelled"), http.StatusConflict, "invalid_state"},
		{"unknown event", `{"event_id":3,"seat_id":9}`, apperr.NotFound("event 3 not found"), http.StatusNotFound, "not_found"},
		{"storage failure", `{"event_id":3,"seat_id":9}`, apperr.Internal(errors.New("connection reset"), "create booking"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &fakeBookings{createFn: func(_ context.Context, actor authz.Actor, eventID, seatID uint64) (*model.Booking, error) {
				assert.Equal(t, user, actor)
				if tt.err != nil {
					return nil, tt.err
				}
				return &model.Booking{ID: 1, EventID: eventID, SeatID: seatID, UserID: actor.UserID, Status: model.BookingPending, PriceCents: 5000}, nil
			}}
			e := newEcho()
			h := NewBookingHandler(bookings, &fakePayments{})
			e.POST("/v1/bookings", h.Create, as(user))

			rec := do(e, http.MethodPost, "/v1/bookings", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			if tt.code == "" {
				assert.Equal(t, "pending", body["status"])
				assert.EqualValues(t, 5000, body["price_cents"])
				return
			}
			assert.Equal(t, tt.code, body["code"])
			if tt.code == "internal" {
				assert.Equal(t, "internal error", body["error"])
			}
		})
	}
}

func TestBookingHandler_RequiresActor(t *testing.T) {
	e := newEcho()
	h := NewBookingHandler(&fakeBookings{}, &fakePayments{})
	e.POST("/v1/bookings", h.Create)

	rec := do(e, http.MethodPost, "/v1/bookings", `{"event_id":1,"seat_id":1}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode(t, rec)["code"])
}

func TestPayHandler(t *testing.T) {
	var gotMethod string
	payments := &fakePayments{payFn: func(_ context.Context, _ authz.Actor, id uint64, method string) (*model.Transaction, error) {
		gotMethod = method
		if id == 2 {
			return nil, apperr.InvalidState("booking 2 is confirmed, not pending")
		}
		ref := "ref-1"
		return &model.Transaction{ID: 5, BookingID: id, Status: model.TransactionCompleted, PaymentMethod: method, PaymentRef: &ref}, nil
	}}
	e := newEcho()
	h := NewBookingHandler(&fakeBookings{}, payments)
	e.POST("/v1/bookings/:id/pay", h.Pay, as(user))
	e.POST("/v1/bookings/pay", h.Pay, as(user))

	rec := do(e, http.MethodPost, "/v1/bookings/1/pay", `{"payment_method":"card"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "card", gotMethod)
	assert.Equal(t, "completed", decode(t, rec)["status"])

	rec = do(e, http.MethodPost, "/v1/bookings/pay", `{"booking_id":1,"payment_method":"cash"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cash", gotMethod)

	rec = do(e, http.MethodPost, "/v1/bookings/pay", `{"payment_method":"cash"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/bookings/2/pay", `{"payment_method":"card"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_state", decode(t, rec)["code"])

	rec = do(e, http.MethodPost, "/v1/bookings/abc/pay", `{"payment_method":"card"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/bookings/1/pay", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "payment_method")
}

func TestCancelHandler_Forbidden(t *testing.T) {
	bookings := &fakeBookings{cancelFn: func(context.Context, authz.Actor, uint64) (*model.Booking, error) {
		return nil, apperr.Forbidden("booking 4 belongs to another user")
	}}
	e := newEcho()
	h := NewBookingHandler(bookings, &fakePayments{})
	e.POST("/v1/bookings/:id/cancel", h.Cancel, as(user))

	rec := do(e, http.MethodPost, "/v1/bookings/4/cancel", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode(t, rec)["code"])
}

func TestEventListHandler(t *testing.T) {
	var got model.EventFilter
	var gotActor *authz.Actor
	events := &fakeEvents{listFn: func(_ context.Context, actor *authz.Actor, f model.EventFilter) ([]model.Event, error) {
		got, gotActor = f, actor
		return []model.Event{{ID: 1, Title: "Friday Techno", Status: model.EventPlanned}}, nil
	}}
	e := newEcho()
	h := NewEventHandler(events, &fakeSeats{})
	e.GET("/v1/events", h.List)
	e.GET("/v1/admin/events", h.AdminList, as(authz.Actor{UserID: 1, Role: authz.RoleAdmin}))

	rec := do(e, http.MethodGet, "/v1/events?category_id=2&status=planned,active&date_from=2026-03-01&date_to=2026-03-31&include_past=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])
	assert.Nil(t, gotActor)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, uint64(2), *got.CategoryID)
	assert.Equal(t, []model.EventStatus{model.EventPlanned, model.EventActive}, got.Statuses)
	assert.True(t, got.IncludePast)
	require.NotNil(t, got.To)
	assert.Equal(t, 23, got.To.Hour())

	rec = do(e, http.MethodGet, "/v1/events?date_from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/v1/admin/events", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotActor)
	assert.Equal(t, authz.RoleAdmin, gotActor.Role)
}

func TestCreateEventHandler(t *testing.T) {
	var got service.EventInput
	events := &fakeEvents{createFn: func(_ context.Context, _ authz.Actor, in service.EventInput) (*model.Event, error) {
		got = in
		return &model.Event{ID: 8, Title: in.Title, Status: model.EventPlanned, Capacity: 12, TicketPriceCents: 1500}, nil
	}}
	e := newEcho()
	h := NewEventHandler(events, &fakeSeats{})
	e.POST("/v1/events", h.Create, as(authz.Actor{UserID: 2, Role: authz.RoleModerator}))

	rec := do(e, http.MethodPost, "/v1/events", `{
		"title": "Saturday House",
		"event_date": "2026-04-04T22:00:00Z",
		"duration_minutes": 300,
		"zones": [{"zone_id": 1, "available_seats": 2, "zone_price_cents": 5000},
		          {"zone_id": 2, "available_seats": 10, "zone_price_cents": 1500}]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Saturday House", got.Title)
	require.Len(t, got.Zones, 2)
	assert.Equal(t, int64(1500), got.Zones[1].ZonePriceCents)

	rec = do(e, http.MethodPost, "/v1/events", `{"title":"x","duration_minutes":300,"zones":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/events", `{"title":"x","duration_minutes":300,"zones":[{"zone_id":1,"zone_price_cents":-1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "zone_price_cents")
}

func TestUpdateStatusHandler(t *testing.T) {
	events := &fakeEvents{updateStatusFn: func(_ context.Context, _ authz.Actor, id uint64, st model.EventStatus) (*model.CascadeResult, error) {
		if st == model.EventPlanned {
			return nil, apperr.InvalidTransition("event %d cannot move from active to planned", id)
		}
		return &model.CascadeResult{EventID: id, OldStatus: model.EventActive, NewStatus: st, CancelledPending: 3, CancelledConfirmed: 2, Refunded: 2}, nil
	}}
	e := newEcho()
	h := NewEventHandler(events, &fakeSeats{})
	e.PATCH("/v1/events/:id/status", h.UpdateStatus, as(authz.Actor{UserID: 1, Role: authz.RoleAdmin}))

	rec := do(e, http.MethodPatch, "/v1/events/4/status", `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 3, body["cancelled_pending"])
	assert.EqualValues(t, 2, body["refunded_transactions"])

	rec = do(e, http.MethodPatch, "/v1/events/4/status", `{"status":"planned"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decode(t, rec)["code"])
}

func TestDeleteEventHandler(t *testing.T) {
	events := &fakeEvents{deleteFn: func(context.Context, authz.Actor, uint64) (*service.DeleteResult, error) {
		return &service.DeleteResult{Deleted: true}, nil
	}}
	e := newEcho()
	h := NewEventHandler(events, &fakeSeats{})
	e.DELETE("/v1/events/:id", h.Delete, as(authz.Actor{UserID: 1, Role: authz.RoleAdmin}))

	rec := do(e, http.MethodDelete, "/v1/events/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["deleted"])
}

func TestAvailabilityHandler(t *testing.T) {
	seats := &fakeSeats{availableFn: func(_ context.Context, eventID, seatID uint64) (bool, error) {
		return seatID != 9, nil
	}}
	e := newEcho()
	h := NewEventHandler(&fakeEvents{}, seats)
	e.GET("/v1/events/:id/seats/:seat_id/availability", h.Availability, as(user))

	rec := do(e, http.MethodGet, "/v1/events/3/seats/9/availability", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["available"])

	rec = do(e, http.MethodGet, "/v1/events/3/seats/8/availability", "")
	assert.Equal(t, true, decode(t, rec)["available"])
}

func TestEventSeatsHandler(t *testing.T) {
	var gotZone *uint64
	seats := &fakeSeats{seatsFn: func(_ context.Context, eventID uint64, zoneID *uint64) ([]model.EventSeat, error) {
		gotZone = zoneID
		return []model.EventSeat{
			{SeatID: 1, SeatNumber: 1, ZoneID: 2, ZoneName: "VIP", ZonePriceCents: 5000, IsBooked: true},
			{SeatID: 2, SeatNumber: 2, ZoneID: 2, ZoneName: "VIP", ZonePriceCents: 5000},
		}, nil
	}}
	e := newEcho()
	h := NewEventHandler(&fakeEvents{}, seats)
	e.GET("/v1/events/:id/seats", h.EventSeats)

	rec := do(e, http.MethodGet, "/v1/events/3/seats?zone_id=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotZone)
	assert.Equal(t, uint64(2), *gotZone)
	body := decode(t, rec)
	assert.EqualValues(t, 3, body["event_id"])
	assert.Len(t, body["seats"], 2)

	rec = do(e, http.MethodGet, "/v1/events/3/seats?zone_id=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddSeatsHandler(t *testing.T) {
	var got []uint32
	catalog := &fakeCatalog{addSeatsFn: func(_ context.Context, _ authz.Actor, zoneID uint64, numbers []uint32) ([]model.Seat, error) {
		got = numbers
		out := make([]model.Seat, len(numbers))
		for i, n := range numbers {
			out[i] = model.Seat{ID: uint64(i + 1), ZoneID: zoneID, SeatNumber: n}
		}
		return out, nil
	}}
	e := newEcho()
	h := NewCatalogHandler(catalog)
	e.POST("/v1/admin/zones/:id/seats", h.AddSeats, as(authz.Actor{UserID: 1, Role: authz.RoleAdmin}))

	rec := do(e, http.MethodPost, "/v1/admin/zones/2/seats", `{"from":11,"count":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []uint32{11, 12, 13}, got)

	rec = do(e, http.MethodPost, "/v1/admin/zones/2/seats", `{"seat_numbers":[4,7]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []uint32{4, 7}, got)

	rec = do(e, http.MethodPost, "/v1/admin/zones/2/seats", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandlers(t *testing.T) {
	var got model.AuditFilter
	audit := &fakeAudit{listFn: func(_ context.Context, _ authz.Actor, f model.AuditFilter) ([]model.AuditEntry, error) {
		got = f
		return []model.AuditEntry{{ID: 1, Action: "cancel_booking"}}, nil
	}}
	e := newEcho()
	h := NewAdminHandler(audit, fakeMaintenance{})
	admin := as(authz.Actor{UserID: 1, Role: authz.RoleAdmin})
	e.GET("/v1/admin/audit-logs", h.AuditLogs, admin)
	e.POST("/v1/admin/cleanup", h.Cleanup, admin)

	rec := do(e, http.MethodGet, "/v1/admin/audit-logs?user_id=10&action=cancel_booking&limit=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.UserID)
	assert.Equal(t, uint64(10), *got.UserID)
	assert.Equal(t, "cancel_booking", got.Action)
	assert.Equal(t, 50, got.Limit)

	rec = do(e, http.MethodGet, "/v1/admin/audit-logs?limit=many", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/admin/cleanup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 2, body["expired_bookings"])
	assert.EqualValues(t, 7, body["old_audit_logs"])
}

func TestHealthHandler(t *testing.T) {
	e := newEcho()
	up := NewHealthHandler(fakePinger{})
	down := NewHealthHandler(fakePinger{err: errors.New("dial tcp: refused")})
	e.GET("/health", up.Live)
	e.GET("/ready", up.Ready)
	e.GET("/ready-down", down.Ready)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/ready-down", "").Code)
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	e := newEcho()
	rec := do(e, http.MethodGet, "/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["code"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(apperr.KindNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(apperr.KindConflict))
	assert.Equal(t, http.StatusConflict, statusFor(apperr.KindInvalidState))
	assert.Equal(t, http.StatusConflict, statusFor(apperr.KindInvalidTransition))
	assert.Equal(t, http.StatusForbidden, statusFor(apperr.KindForbidden))
	assert.Equal(t, http.StatusBadRequest, statusFor(apperr.KindValidation))
	assert.Equal(t, http.StatusInternalServerError, statusFor(apperr.KindInternal))
}
