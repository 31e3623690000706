package model

import "time"

// TransactionStatus is the state of a payment record.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// PaymentMethodPending is stored until a payment method is known.
const PaymentMethodPending = "pending"

// PaymentMethodOnSite marks a booking settled manually by staff.
const PaymentMethodOnSite = "on_site"

// Transaction is the payment record of a booking.  There is one per
// booking; it is created together with the booking and moves
// pending -> completed on payment and completed -> refunded when its
// booking is cancelled.
//
// Fields:
//  ID              – primary key identifier.
//  BookingID       – booking being paid for.
//  UserID          – payer.
//  AmountCents     – amount charged.
//  PaymentMethod   – method used ("pending" until settled).
//  Status          – pending, completed or refunded.
//  PaymentRef      – reference issued at settlement.
//  TransactionDate – creation time, overwritten with the settlement time.
type Transaction struct {
	ID              uint64            `json:"transaction_id"`        // transactions.id
	BookingID       uint64            `json:"booking_id"`            // transactions.booking_id
	UserID          uint64            `json:"user_id"`               // transactions.user_id
	AmountCents     int64             `json:"amount_cents"`          // transactions.amount_cents
	PaymentMethod   string            `json:"payment_method"`        // transactions.payment_method
	Status          TransactionStatus `json:"status"`                // transactions.status
	PaymentRef      *string           `json:"payment_ref,omitempty"` // transactions.payment_ref (nullable)
	TransactionDate time.Time         `json:"transaction_date"`      // transactions.transaction_date
}
