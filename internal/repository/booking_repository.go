package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/nightclub-booking/internal/model"
)

// BookingRepo provides access to the booking ledger.  Bookings are
// never deleted; status changes go through guarded UPDATEs that only
// match rows still in the expected status.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingSelect = `SELECT b.id, b.event_id, b.user_id, b.seat_id, b.status, b.price_cents,
	(SELECT MAX(t.id) FROM transactions t WHERE t.booking_id = b.id), b.created_at, b.updated_at
	FROM bookings b`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var (
		b      model.Booking
		status string
		txID   sql.NullInt64
	)
	if err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.SeatID, &status, &b.PriceCents, &txID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if txID.Valid {
		id := uint64(txID.Int64)
		b.TransactionID = &id
	}
	return &b, nil
}

func (r *BookingRepo) getOne(ctx context.Context, query string, args ...any) (*model.Booking, error) {
	b, err := scanBooking(conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// Create inserts a booking and fills its ID and timestamps.  A second
// active booking for the same seat and event violates
// uq_bookings_event_active_seat and yields ErrDuplicate.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO bookings (event_id, user_id, seat_id, status, price_cents) VALUES (?, ?, ?, ?, ?)`,
		b.EventID, b.UserID, b.SeatID, string(b.Status), b.PriceCents)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return q.QueryRowContext(ctx, `SELECT created_at, updated_at FROM bookings WHERE id = ?`, b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

// GetByID fetches a booking without locking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return r.getOne(ctx, bookingSelect+` WHERE b.id = ?`, id)
}

// GetForUpdate fetches a booking and locks its row for the rest of the
// transaction.
func (r *BookingRepo) GetForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return r.getOne(ctx, `SELECT b.id, b.event_id, b.user_id, b.seat_id, b.status, b.price_cents, NULL, b.created_at, b.updated_at
		FROM bookings b WHERE b.id = ? FOR UPDATE`, id)
}

const bookingDetailSelect = `SELECT b.id, b.event_id, b.user_id, b.seat_id, b.status, b.price_cents, b.created_at, b.updated_at,
	e.title, e.event_date, e.status, s.seat_number, z.id, z.name,
	t.id, t.status, t.payment_method
	FROM bookings b
	JOIN events e ON e.id = b.event_id
	JOIN seats s ON s.id = b.seat_id
	JOIN club_zones z ON z.id = s.zone_id
	LEFT JOIN transactions t ON t.id = (SELECT MAX(t2.id) FROM transactions t2 WHERE t2.booking_id = b.id)`

func scanBookingDetail(row interface{ Scan(...any) error }) (*model.BookingDetail, error) {
	var (
		d                   model.BookingDetail
		status, eventStatus string
		txID                sql.NullInt64
		txStatus, txMethod  sql.NullString
	)
	err := row.Scan(&d.ID, &d.EventID, &d.UserID, &d.SeatID, &status, &d.PriceCents, &d.CreatedAt, &d.UpdatedAt,
		&d.EventTitle, &d.EventDate, &eventStatus, &d.SeatNumber, &d.ZoneID, &d.ZoneName,
		&txID, &txStatus, &txMethod)
	if err != nil {
		return nil, err
	}
	d.Status = model.BookingStatus(status)
	d.EventStatus = model.EventStatus(eventStatus)
	if txID.Valid {
		id := uint64(txID.Int64)
		d.TransactionID = &id
	}
	if txStatus.Valid {
		ts := model.TransactionStatus(txStatus.String)
		d.TransactionStatus = &ts
	}
	if txMethod.Valid {
		m := txMethod.String
		d.PaymentMethod = &m
	}
	return &d, nil
}

// GetDetail fetches a booking joined with its event, seat, zone and
// latest transaction.
func (r *BookingRepo) GetDetail(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	d, err := scanBookingDetail(conn(ctx, r.db).QueryRowContext(ctx, bookingDetailSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// ListByUser returns a user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, bookingDetailSelect+` WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BookingDetail{}
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// CountActiveForSeat counts pending or confirmed bookings holding the
// seat for the event.
func (r *BookingRepo) CountActiveForSeat(ctx context.Context, eventID, seatID uint64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = ? AND seat_id = ? AND status IN `+activeStatuses,
		eventID, seatID).Scan(&n)
	return n, err
}

// CountByEvent counts every booking of an event, cancelled ones
// included.
func (r *BookingRepo) CountByEvent(ctx context.Context, eventID uint64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// CountActiveByEvent counts pending or confirmed bookings of an event.
func (r *BookingRepo) CountActiveByEvent(ctx context.Context, eventID uint64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = ? AND status IN `+activeStatuses, eventID).Scan(&n)
	return n, err
}

// CountActiveInZones counts active bookings of an event whose seat lies
// in one of zoneIDs.
func (r *BookingRepo) CountActiveInZones(ctx context.Context, eventID uint64, zoneIDs []uint64) (int64, error) {
	if len(zoneIDs) == 0 {
		return 0, nil
	}
	args := append([]any{eventID}, uint64Args(zoneIDs)...)
	var n int64
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*)
		FROM bookings b
		JOIN seats s ON s.id = b.seat_id
		WHERE b.event_id = ? AND b.status IN `+activeStatuses+`
		  AND s.zone_id IN (`+placeholders(len(zoneIDs))+`)`, args...).Scan(&n)
	return n, err
}

// UpdateStatus moves a booking from one status to another.  It reports
// false when the booking was no longer in status from.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`, string(to), id, string(from))
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// CancelByEvent cancels every booking of the event currently in status
// from and returns how many rows changed.
func (r *BookingRepo) CancelByEvent(ctx context.Context, eventID uint64, from model.BookingStatus) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled' WHERE event_id = ? AND status = ?`, eventID, string(from))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LockStalePending locks up to limit pending bookings created before
// cutoff, oldest first.
func (r *BookingRepo) LockStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT b.id, b.event_id, b.user_id, b.seat_id, b.status, b.price_cents, NULL, b.created_at, b.updated_at
		FROM bookings b
		WHERE b.status = 'pending' AND b.created_at < ?
		ORDER BY b.created_at, b.id
		LIMIT ?
		FOR UPDATE`, cutoff.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
