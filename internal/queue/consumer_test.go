package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatJournalLine_Booking(t *testing.T) {
	body, err := json.Marshal(BookingMessage{
		BookingID: 9, EventID: 2, SeatID: 1, UserID: 5, ActorID: 5,
		Status: "confirmed", PriceCents: 5000, PaymentMethod: "card", PaymentRef: "ref-1",
		OccurredAt: "2026-10-16T20:00:00Z",
	})
	require.NoError(t, err)

	line, err := FormatJournalLine(KeyBookingPaid, body)
	require.NoError(t, err)
	assert.Equal(t,
		"[2026-10-16T20:00:00Z] booking.paid | booking_id=9 | event_id=2 | seat_id=1 | user_id=5 | actor_id=5 | status=confirmed | price=5000 cents | method=card | ref=ref-1\n",
		line)
}

func TestFormatJournalLine_Event(t *testing.T) {
	body, err := json.Marshal(EventStatusMessage{
		EventID: 2, ActorID: 1, OldStatus: "active", NewStatus: "cancelled",
		CancelledPending: 3, CancelledConfirmed: 2, Refunded: 2, OccurredAt: "t",
	})
	require.NoError(t, err)

	line, err := FormatJournalLine(KeyEventStatusChanged, body)
	require.NoError(t, err)
	assert.Contains(t, line, "active -> cancelled")
	assert.Contains(t, line, "cancelled_pending=3 | cancelled_confirmed=2 | refunded=2")
}

func TestFormatJournalLine_Rejects(t *testing.T) {
	_, err := FormatJournalLine("booking.created", []byte("{not json"))
	assert.Error(t, err)

	_, err = FormatJournalLine("user.created", []byte("{}"))
	assert.Error(t, err)
}

func TestJournalConsumerHandleAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	j := &JournalConsumer{Path: path, Log: logrus.New()}

	body, _ := json.Marshal(BookingMessage{BookingID: 1, Status: "pending", OccurredAt: "t1"})
	require.NoError(t, j.handle(KeyBookingCreated, body))
	body, _ = json.Marshal(BookingMessage{BookingID: 1, Status: "cancelled", OccurredAt: "t2"})
	require.NoError(t, j.handle(KeyBookingCancelled, body))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[t1] booking.created")
	assert.Contains(t, string(data), "[t2] booking.cancelled")
}
