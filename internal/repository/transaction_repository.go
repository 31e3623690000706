package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/nightclub-booking/internal/model"
)

// TransactionRepo provides access to the transaction ledger.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo returns a TransactionRepo bound to db.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionSelect = `SELECT id, booking_id, user_id, amount_cents, payment_method, status, payment_ref, transaction_date
	FROM transactions`

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var (
		t      model.Transaction
		status string
		ref    sql.NullString
	)
	if err := row.Scan(&t.ID, &t.BookingID, &t.UserID, &t.AmountCents, &t.PaymentMethod, &status, &ref, &t.TransactionDate); err != nil {
		return nil, err
	}
	t.Status = model.TransactionStatus(status)
	if ref.Valid {
		r := ref.String
		t.PaymentRef = &r
	}
	return &t, nil
}

// Create inserts a transaction and fills its ID.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `INSERT INTO transactions
		(booking_id, user_id, amount_cents, payment_method, status, transaction_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.BookingID, t.UserID, t.AmountCents, t.PaymentMethod, string(t.Status), t.TransactionDate.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByBookingForUpdate locks and returns the latest transaction of a
// booking.
func (r *TransactionRepo) GetByBookingForUpdate(ctx context.Context, bookingID uint64) (*model.Transaction, error) {
	t, err := scanTransaction(conn(ctx, r.db).QueryRowContext(ctx,
		transactionSelect+` WHERE booking_id = ? ORDER BY id DESC LIMIT 1 FOR UPDATE`, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// Settle completes a pending transaction.  It reports false when the
// transaction was not pending.
func (r *TransactionRepo) Settle(ctx context.Context, id uint64, method, ref string, at time.Time) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE transactions
		SET status = 'completed', payment_method = ?, payment_ref = ?, transaction_date = ?
		WHERE id = ? AND status = 'pending'`, method, ref, at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// RefundByBooking marks the completed transactions of a booking as
// refunded.
func (r *TransactionRepo) RefundByBooking(ctx context.Context, bookingID uint64) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE transactions SET status = 'refunded' WHERE booking_id = ? AND status = 'completed'`, bookingID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RefundByEvent marks as refunded the completed transactions of the
// event's confirmed bookings.  It must run before those bookings are
// cancelled.
func (r *TransactionRepo) RefundByEvent(ctx context.Context, eventID uint64) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE transactions t
		JOIN bookings b ON b.id = t.booking_id
		SET t.status = 'refunded'
		WHERE b.event_id = ? AND b.status = 'confirmed' AND t.status = 'completed'`, eventID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
