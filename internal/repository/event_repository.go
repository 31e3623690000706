package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/nightclub-booking/internal/model"
)

// EventRepo manages events, their zone configuration and the
// read-side queries built on top of them (seat maps, statistics).
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to db.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const activeStatuses = `('pending', 'confirmed')`

const eventSelect = `SELECT e.id, e.category_id, c.name, e.title, COALESCE(e.description, ''), e.event_date,
	e.duration_minutes, e.capacity, e.ticket_price_cents, e.status, e.created_by, e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM bookings b WHERE b.event_id = e.id AND b.status IN ` + activeStatuses + `)
	FROM events e
	LEFT JOIN event_categories c ON c.id = e.category_id`

// eventLockSelect reads only the events row so the lock does not
// spread to categories or bookings.
const eventLockSelect = `SELECT e.id, e.category_id, NULL, e.title, COALESCE(e.description, ''), e.event_date,
	e.duration_minutes, e.capacity, e.ticket_price_cents, e.status, e.created_by, e.created_at, e.updated_at, 0
	FROM events e WHERE e.id = ?`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var (
		e       model.Event
		catID   sql.NullInt64
		catName sql.NullString
		status  string
	)
	err := row.Scan(&e.ID, &catID, &catName, &e.Title, &e.Description, &e.EventDate,
		&e.DurationMinutes, &e.Capacity, &e.TicketPriceCents, &status, &e.CreatedBy,
		&e.CreatedAt, &e.UpdatedAt, &e.BookedSeats)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		id := uint64(catID.Int64)
		e.CategoryID = &id
	}
	if catName.Valid {
		name := catName.String
		e.CategoryName = &name
	}
	e.Status = model.EventStatus(status)
	return &e, nil
}

func (r *EventRepo) getOne(ctx context.Context, query string, id uint64) (*model.Event, error) {
	e, err := scanEvent(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// GetByID fetches an event without locking.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	return r.getOne(ctx, eventSelect+` WHERE e.id = ?`, id)
}

// GetForShare fetches an event and holds a shared lock on its row until
// the surrounding transaction ends.  Concurrent bookings may share the
// lock; status changes wait for them.
func (r *EventRepo) GetForShare(ctx context.Context, id uint64) (*model.Event, error) {
	return r.getOne(ctx, eventLockSelect+` FOR SHARE`, id)
}

// GetForUpdate fetches an event and holds an exclusive lock on its row
// until the surrounding transaction ends.
func (r *EventRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Event, error) {
	return r.getOne(ctx, eventLockSelect+` FOR UPDATE`, id)
}

// List returns events matching f ordered by date.
func (r *EventRepo) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludePast {
		where = append(where, "e.event_date >= ?")
		args = append(args, f.Now)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "e.status IN ("+placeholders(len(f.Statuses))+")")
		for _, s := range f.Statuses {
			args = append(args, string(s))
		}
	}
	if f.CategoryID != nil {
		where = append(where, "e.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.From != nil {
		where = append(where, "e.event_date >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, "e.event_date <= ?")
		args = append(args, *f.To)
	}
	query := eventSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.event_date, e.id"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Create inserts an event and fills its ID and timestamps.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx, `INSERT INTO events
		(category_id, title, description, event_date, duration_minutes, capacity, ticket_price_cents, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(e.CategoryID), e.Title, e.Description, e.EventDate.UTC(), e.DurationMinutes,
		e.Capacity, e.TicketPriceCents, string(e.Status), e.CreatedBy)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return q.QueryRowContext(ctx, `SELECT created_at, updated_at FROM events WHERE id = ?`, e.ID).
		Scan(&e.CreatedAt, &e.UpdatedAt)
}

// Update writes the editable columns and the derived capacity/price.
// Status is changed only through UpdateStatus.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE events
		SET category_id = ?, title = ?, description = ?, event_date = ?, duration_minutes = ?,
		    capacity = ?, ticket_price_cents = ?
		WHERE id = ?`,
		nullableID(e.CategoryID), e.Title, e.Description, e.EventDate.UTC(), e.DurationMinutes,
		e.Capacity, e.TicketPriceCents, e.ID)
	if err != nil {
		return translate(err)
	}
	return requireRow(res)
}

// UpdateStatus sets the status column.
func (r *EventRepo) UpdateStatus(ctx context.Context, id uint64, status model.EventStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE events SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes an event and its zone configuration.  An event that
// any booking references yields ErrConflict.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	return requireRow(res)
}

// ReplaceZones swaps the event's zone configuration for zones.
func (r *EventRepo) ReplaceZones(ctx context.Context, eventID uint64, zones []model.EventZoneConfig) error {
	q := conn(ctx, r.db)
	if _, err := q.ExecContext(ctx, `DELETE FROM event_zones WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	if len(zones) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO event_zones (event_id, zone_id, available_seats, zone_price_cents) VALUES `)
	args := make([]any, 0, len(zones)*4)
	for i, z := range zones {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, eventID, z.ZoneID, z.AvailableSeats, z.ZonePriceCents)
	}
	_, err := q.ExecContext(ctx, b.String(), args...)
	return translate(err)
}

// ListZones returns the zone configuration of an event.
func (r *EventRepo) ListZones(ctx context.Context, eventID uint64) ([]model.EventZoneConfig, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT ez.event_id, ez.zone_id, z.name, ez.available_seats, ez.zone_price_cents
		FROM event_zones ez
		JOIN club_zones z ON z.id = ez.zone_id
		WHERE ez.event_id = ?
		ORDER BY z.name`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	zones := []model.EventZoneConfig{}
	for rows.Next() {
		var z model.EventZoneConfig
		if err := rows.Scan(&z.EventID, &z.ZoneID, &z.ZoneName, &z.AvailableSeats, &z.ZonePriceCents); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// SeatZonePrice resolves the zone of seatID and the price the event
// charges for it.  ErrNotFound covers both an unknown seat and a seat
// whose zone is not sold for the event.
func (r *EventRepo) SeatZonePrice(ctx context.Context, eventID, seatID uint64) (zoneID uint64, priceCents int64, err error) {
	err = conn(ctx, r.db).QueryRowContext(ctx, `SELECT s.zone_id, ez.zone_price_cents
		FROM seats s
		JOIN event_zones ez ON ez.zone_id = s.zone_id AND ez.event_id = ?
		WHERE s.id = ?`, eventID, seatID).Scan(&zoneID, &priceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	return zoneID, priceCents, err
}

// ListSeats returns every seat in the zones sold for the event, with
// its price and whether an active booking holds it.  zoneID narrows
// the result to one zone.
func (r *EventRepo) ListSeats(ctx context.Context, eventID uint64, zoneID *uint64) ([]model.EventSeat, error) {
	query := `SELECT s.id, s.seat_number, s.zone_id, z.name, ez.zone_price_cents,
		EXISTS (SELECT 1 FROM bookings b WHERE b.event_id = ez.event_id AND b.seat_id = s.id AND b.status IN ` + activeStatuses + `)
		FROM seats s
		JOIN club_zones z ON z.id = s.zone_id
		JOIN event_zones ez ON ez.zone_id = s.zone_id AND ez.event_id = ?`
	args := []any{eventID}
	if zoneID != nil {
		query += ` WHERE s.zone_id = ?`
		args = append(args, *zoneID)
	}
	query += ` ORDER BY s.zone_id, s.seat_number`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := []model.EventSeat{}
	for rows.Next() {
		var s model.EventSeat
		if err := rows.Scan(&s.SeatID, &s.SeatNumber, &s.ZoneID, &s.ZoneName, &s.ZonePriceCents, &s.IsBooked); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// Statistics aggregates booking counts, revenue and per-zone figures.
// The Event and derived rates are left for the caller to fill.
func (r *EventRepo) Statistics(ctx context.Context, eventID uint64) (*model.EventStatistics, error) {
	q := conn(ctx, r.db)
	st := &model.EventStatistics{Zones: []model.ZoneStats{}}

	err := q.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(status = 'pending'), 0),
		COALESCE(SUM(status = 'confirmed'), 0),
		COALESCE(SUM(status = 'cancelled'), 0)
		FROM bookings WHERE event_id = ?`, eventID).
		Scan(&st.TotalBookings, &st.PendingBookings, &st.ConfirmedBookings, &st.CancelledBookings)
	if err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, `SELECT COALESCE(SUM(t.amount_cents), 0), COUNT(t.id)
		FROM transactions t
		JOIN bookings b ON b.id = t.booking_id
		WHERE b.event_id = ? AND t.status = 'completed'`, eventID).
		Scan(&st.RevenueCents, &st.PaidTransactions)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, `SELECT ez.zone_id, z.name, ez.available_seats, ez.zone_price_cents,
		COUNT(b.id), COALESCE(SUM(b.price_cents), 0)
		FROM event_zones ez
		JOIN club_zones z ON z.id = ez.zone_id
		LEFT JOIN seats s ON s.zone_id = ez.zone_id
		LEFT JOIN bookings b ON b.seat_id = s.id AND b.event_id = ez.event_id AND b.status = 'confirmed'
		WHERE ez.event_id = ?
		GROUP BY ez.zone_id, z.name, ez.available_seats, ez.zone_price_cents
		ORDER BY z.name`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var z model.ZoneStats
		if err := rows.Scan(&z.ZoneID, &z.ZoneName, &z.Capacity, &z.ZonePriceCents, &z.ConfirmedBookings, &z.RevenueCents); err != nil {
			return nil, err
		}
		st.Zones = append(st.Zones, z)
	}
	return st, rows.Err()
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// requireRow turns a zero-row UPDATE/DELETE into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
