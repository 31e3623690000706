package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/clock"
	"github.com/iliyamo/nightclub-booking/internal/model"
	"github.com/iliyamo/nightclub-booking/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL schema.  WithTx holds a
// single mutex for the whole callback and restores a snapshot when the
// callback fails, which is enough to exercise rollback and the unique
// active-seat key.
type memDB struct {
	mu  sync.Mutex
	clk clock.Clock
	st  memState
}

type memState struct {
	seq        uint64
	zones      map[uint64]model.Zone
	seats      map[uint64]model.Seat
	categories map[uint64]model.Category
	events     map[uint64]model.Event
	eventZones map[uint64][]model.EventZoneConfig
	bookings   map[uint64]model.Booking
	txns       map[uint64]model.Transaction
	audit      []model.AuditEntry
}

func newMemDB(clk clock.Clock) *memDB {
	return &memDB{clk: clk, st: memState{
		zones:      map[uint64]model.Zone{},
		seats:      map[uint64]model.Seat{},
		categories: map[uint64]model.Category{},
		events:     map[uint64]model.Event{},
		eventZones: map[uint64][]model.EventZoneConfig{},
		bookings:   map[uint64]model.Booking{},
		txns:       map[uint64]model.Transaction{},
	}}
}

func (s memState) clone() memState {
	c := s
	c.zones = cloneMap(s.zones)
	c.seats = cloneMap(s.seats)
	c.categories = cloneMap(s.categories)
	c.events = cloneMap(s.events)
	c.bookings = cloneMap(s.bookings)
	c.txns = cloneMap(s.txns)
	c.eventZones = make(map[uint64][]model.EventZoneConfig, len(s.eventZones))
	for k, v := range s.eventZones {
		c.eventZones[k] = append([]model.EventZoneConfig(nil), v...)
	}
	c.audit = append([]model.AuditEntry(nil), s.audit...)
	return c
}

func cloneMap[V any](m map[uint64]V) map[uint64]V {
	out := make(map[uint64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memTxKey struct{}

func (db *memDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	snap := db.st.clone()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		db.st = snap
		return err
	}
	return nil
}

// lock takes the mutex unless ctx already runs inside WithTx.
func (db *memDB) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *memDB) nextID() uint64 {
	db.st.seq++
	return db.st.seq
}

// helpers below expect the mutex to be held

func (db *memDB) activeFor(eventID, seatID uint64) int64 {
	var n int64
	for _, b := range db.st.bookings {
		if b.EventID == eventID && b.SeatID == seatID && b.Status.Active() {
			n++
		}
	}
	return n
}

func (db *memDB) txnFor(bookingID uint64) (model.Transaction, bool) {
	for _, t := range db.st.txns {
		if t.BookingID == bookingID {
			return t, true
		}
	}
	return model.Transaction{}, false
}

func (db *memDB) eventView(e model.Event) *model.Event {
	for _, b := range db.st.bookings {
		if b.EventID == e.ID && b.Status.Active() {
			e.BookedSeats++
		}
	}
	if e.CategoryID != nil {
		if c, ok := db.st.categories[*e.CategoryID]; ok {
			name := c.Name
			e.CategoryName = &name
		}
	}
	return &e
}

func (db *memDB) bookingView(b model.Booking) *model.Booking {
	if t, ok := db.txnFor(b.ID); ok {
		id := t.ID
		b.TransactionID = &id
	}
	return &b
}

func (db *memDB) zoneConfig(eventID, zoneID uint64) (model.EventZoneConfig, bool) {
	for _, z := range db.st.eventZones[eventID] {
		if z.ZoneID == zoneID {
			return z, true
		}
	}
	return model.EventZoneConfig{}, false
}

// zones

type memZones struct{ db *memDB }

func (r memZones) List(ctx context.Context) ([]model.Zone, error) {
	defer r.db.lock(ctx)()
	out := []model.Zone{}
	for _, z := range r.db.st.zones {
		out = append(out, r.withTotals(z))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memZones) withTotals(z model.Zone) model.Zone {
	for _, s := range r.db.st.seats {
		if s.ZoneID == z.ID {
			z.TotalSeats++
		}
	}
	return z
}

func (r memZones) GetByID(ctx context.Context, id uint64) (*model.Zone, error) {
	defer r.db.lock(ctx)()
	z, ok := r.db.st.zones[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	z = r.withTotals(z)
	return &z, nil
}

func (r memZones) Create(ctx context.Context, z *model.Zone) error {
	defer r.db.lock(ctx)()
	for _, other := range r.db.st.zones {
		if other.Name == z.Name {
			return repository.ErrDuplicate
		}
	}
	z.ID = r.db.nextID()
	z.CreatedAt = r.db.clk.Now()
	r.db.st.zones[z.ID] = *z
	return nil
}

func (r memZones) ExistingIDs(ctx context.Context, ids []uint64) (map[uint64]bool, error) {
	defer r.db.lock(ctx)()
	found := map[uint64]bool{}
	for _, id := range ids {
		if _, ok := r.db.st.zones[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

// seats

type memSeats struct{ db *memDB }

func (r memSeats) CreateBulk(ctx context.Context, zoneID uint64, numbers []uint32) ([]model.Seat, error) {
	defer r.db.lock(ctx)()
	if _, ok := r.db.st.zones[zoneID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, s := range r.db.st.seats {
		for _, n := range numbers {
			if s.ZoneID == zoneID && s.SeatNumber == n {
				return nil, repository.ErrDuplicate
			}
		}
	}
	out := make([]model.Seat, 0, len(numbers))
	for _, n := range numbers {
		s := model.Seat{ID: r.db.nextID(), ZoneID: zoneID, SeatNumber: n, CreatedAt: r.db.clk.Now()}
		r.db.st.seats[s.ID] = s
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (r memSeats) ListByZone(ctx context.Context, zoneID uint64) ([]model.Seat, error) {
	defer r.db.lock(ctx)()
	out := []model.Seat{}
	for _, s := range r.db.st.seats {
		if s.ZoneID == zoneID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

// categories

type memCategories struct{ db *memDB }

func (r memCategories) List(ctx context.Context) ([]model.Category, error) {
	defer r.db.lock(ctx)()
	out := []model.Category{}
	for _, c := range r.db.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategories) Create(ctx context.Context, c *model.Category) error {
	defer r.db.lock(ctx)()
	for _, other := range r.db.st.categories {
		if other.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = r.db.nextID()
	r.db.st.categories[c.ID] = *c
	return nil
}

func (r memCategories) Exists(ctx context.Context, id uint64) (bool, error) {
	defer r.db.lock(ctx)()
	_, ok := r.db.st.categories[id]
	return ok, nil
}

// events

type memEvents struct{ db *memDB }

func (r memEvents) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	defer r.db.lock(ctx)()
	e, ok := r.db.st.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.db.eventView(e), nil
}

func (r memEvents) GetForShare(ctx context.Context, id uint64) (*model.Event, error) {
	return r.GetByID(ctx, id)
}

func (r memEvents) GetForUpdate(ctx context.Context, id uint64) (*model.Event, error) {
	return r.GetByID(ctx, id)
}

func (r memEvents) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	defer r.db.lock(ctx)()
	out := []model.Event{}
	for _, e := range r.db.st.events {
		if f.CategoryID != nil && (e.CategoryID == nil || *e.CategoryID != *f.CategoryID) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, e.Status) {
			continue
		}
		if !f.IncludePast && e.EventDate.Before(f.Now) {
			continue
		}
		if f.From != nil && e.EventDate.Before(*f.From) {
			continue
		}
		if f.To != nil && e.EventDate.After(*f.To) {
			continue
		}
		out = append(out, *r.db.eventView(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out, nil
}

func containsStatus(list []model.EventStatus, s model.EventStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r memEvents) Create(ctx context.Context, e *model.Event) error {
	defer r.db.lock(ctx)()
	e.ID = r.db.nextID()
	e.CreatedAt = r.db.clk.Now()
	e.UpdatedAt = e.CreatedAt
	stored := *e
	stored.Zones = nil
	r.db.st.events[e.ID] = stored
	return nil
}

func (r memEvents) Update(ctx context.Context, e *model.Event) error {
	defer r.db.lock(ctx)()
	cur, ok := r.db.st.events[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.CategoryID = e.CategoryID
	cur.Title = e.Title
	cur.Description = e.Description
	cur.EventDate = e.EventDate
	cur.DurationMinutes = e.DurationMinutes
	cur.Capacity = e.Capacity
	cur.TicketPriceCents = e.TicketPriceCents
	cur.UpdatedAt = r.db.clk.Now()
	r.db.st.events[e.ID] = cur
	return nil
}

func (r memEvents) UpdateStatus(ctx context.Context, id uint64, status model.EventStatus) error {
	defer r.db.lock(ctx)()
	cur, ok := r.db.st.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Status = status
	r.db.st.events[id] = cur
	return nil
}

func (r memEvents) Delete(ctx context.Context, id uint64) error {
	defer r.db.lock(ctx)()
	if _, ok := r.db.st.events[id]; !ok {
		return repository.ErrNotFound
	}
	for _, b := range r.db.st.bookings {
		if b.EventID == id {
			return repository.ErrConflict
		}
	}
	delete(r.db.st.events, id)
	delete(r.db.st.eventZones, id)
	return nil
}

func (r memEvents) ReplaceZones(ctx context.Context, eventID uint64, zones []model.EventZoneConfig) error {
	defer r.db.lock(ctx)()
	out := make([]model.EventZoneConfig, len(zones))
	for i, z := range zones {
		z.EventID = eventID
		out[i] = z
	}
	r.db.st.eventZones[eventID] = out
	return nil
}

func (r memEvents) ListZones(ctx context.Context, eventID uint64) ([]model.EventZoneConfig, error) {
	defer r.db.lock(ctx)()
	out := []model.EventZoneConfig{}
	for _, z := range r.db.st.eventZones[eventID] {
		z.ZoneName = r.db.st.zones[z.ZoneID].Name
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZoneID < out[j].ZoneID })
	return out, nil
}

func (r memEvents) SeatZonePrice(ctx context.Context, eventID, seatID uint64) (uint64, int64, error) {
	defer r.db.lock(ctx)()
	s, ok := r.db.st.seats[seatID]
	if !ok {
		return 0, 0, repository.ErrNotFound
	}
	z, ok := r.db.zoneConfig(eventID, s.ZoneID)
	if !ok {
		return 0, 0, repository.ErrNotFound
	}
	return z.ZoneID, z.ZonePriceCents, nil
}

func (r memEvents) ListSeats(ctx context.Context, eventID uint64, zoneID *uint64) ([]model.EventSeat, error) {
	defer r.db.lock(ctx)()
	out := []model.EventSeat{}
	for _, s := range r.db.st.seats {
		if zoneID != nil && s.ZoneID != *zoneID {
			continue
		}
		z, ok := r.db.zoneConfig(eventID, s.ZoneID)
		if !ok {
			continue
		}
		out = append(out, model.EventSeat{
			SeatID:         s.ID,
			SeatNumber:     s.SeatNumber,
			ZoneID:         s.ZoneID,
			ZoneName:       r.db.st.zones[s.ZoneID].Name,
			ZonePriceCents: z.ZonePriceCents,
			IsBooked:       r.db.activeFor(eventID, s.ID) > 0,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZoneID != out[j].ZoneID {
			return out[i].ZoneID < out[j].ZoneID
		}
		return out[i].SeatNumber < out[j].SeatNumber
	})
	return out, nil
}

func (r memEvents) Statistics(ctx context.Context, eventID uint64) (*model.EventStatistics, error) {
	defer r.db.lock(ctx)()
	st := &model.EventStatistics{}
	perZone := map[uint64]*model.ZoneStats{}
	for _, z := range r.db.st.eventZones[eventID] {
		perZone[z.ZoneID] = &model.ZoneStats{
			ZoneID:         z.ZoneID,
			ZoneName:       r.db.st.zones[z.ZoneID].Name,
			Capacity:       z.AvailableSeats,
			ZonePriceCents: z.ZonePriceCents,
		}
	}
	for _, b := range r.db.st.bookings {
		if b.EventID != eventID {
			continue
		}
		st.TotalBookings++
		switch b.Status {
		case model.BookingPending:
			st.PendingBookings++
		case model.BookingConfirmed:
			st.ConfirmedBookings++
		case model.BookingCancelled:
			st.CancelledBookings++
		}
		zs := perZone[r.db.st.seats[b.SeatID].ZoneID]
		if zs != nil && b.Status == model.BookingConfirmed {
			zs.ConfirmedBookings++
		}
		if t, ok := r.db.txnFor(b.ID); ok && t.Status == model.TransactionCompleted {
			st.RevenueCents += t.AmountCents
			st.PaidTransactions++
			if zs != nil {
				zs.RevenueCents += t.AmountCents
			}
		}
	}
	st.Zones = []model.ZoneStats{}
	for _, zs := range perZone {
		st.Zones = append(st.Zones, *zs)
	}
	sort.Slice(st.Zones, func(i, j int) bool { return st.Zones[i].ZoneID < st.Zones[j].ZoneID })
	return st, nil
}

// bookings

type memBookings struct{ db *memDB }

func (r memBookings) Create(ctx context.Context, b *model.Booking) error {
	defer r.db.lock(ctx)()
	if b.Status.Active() && r.db.activeFor(b.EventID, b.SeatID) > 0 {
		return repository.ErrDuplicate
	}
	b.ID = r.db.nextID()
	b.CreatedAt = r.db.clk.Now()
	b.UpdatedAt = b.CreatedAt
	stored := *b
	stored.TransactionID = nil
	r.db.st.bookings[b.ID] = stored
	return nil
}

func (r memBookings) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	defer r.db.lock(ctx)()
	b, ok := r.db.st.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.db.bookingView(b), nil
}

func (r memBookings) GetForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r memBookings) detail(b model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: *r.db.bookingView(b)}
	e := r.db.st.events[b.EventID]
	d.EventTitle, d.EventDate, d.EventStatus = e.Title, e.EventDate, e.Status
	s := r.db.st.seats[b.SeatID]
	d.SeatNumber, d.ZoneID, d.ZoneName = s.SeatNumber, s.ZoneID, r.db.st.zones[s.ZoneID].Name
	if t, ok := r.db.txnFor(b.ID); ok {
		status, method := t.Status, t.PaymentMethod
		d.TransactionStatus, d.PaymentMethod = &status, &method
	}
	return d
}

func (r memBookings) GetDetail(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	defer r.db.lock(ctx)()
	b, ok := r.db.st.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d := r.detail(b)
	return &d, nil
}

func (r memBookings) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	defer r.db.lock(ctx)()
	out := []model.BookingDetail{}
	for _, b := range r.db.st.bookings {
		if b.UserID == userID {
			out = append(out, r.detail(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memBookings) CountActiveForSeat(ctx context.Context, eventID, seatID uint64) (int64, error) {
	defer r.db.lock(ctx)()
	return r.db.activeFor(eventID, seatID), nil
}

func (r memBookings) CountByEvent(ctx context.Context, eventID uint64) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for _, b := range r.db.st.bookings {
		if b.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r memBookings) CountActiveByEvent(ctx context.Context, eventID uint64) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for _, b := range r.db.st.bookings {
		if b.EventID == eventID && b.Status.Active() {
			n++
		}
	}
	return n, nil
}

func (r memBookings) CountActiveInZones(ctx context.Context, eventID uint64, zoneIDs []uint64) (int64, error) {
	defer r.db.lock(ctx)()
	in := map[uint64]bool{}
	for _, id := range zoneIDs {
		in[id] = true
	}
	var n int64
	for _, b := range r.db.st.bookings {
		if b.EventID == eventID && b.Status.Active() && in[r.db.st.seats[b.SeatID].ZoneID] {
			n++
		}
	}
	return n, nil
}

func (r memBookings) UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (bool, error) {
	defer r.db.lock(ctx)()
	b, ok := r.db.st.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	if to.Active() && !from.Active() && r.db.activeFor(b.EventID, b.SeatID) > 0 {
		return false, repository.ErrDuplicate
	}
	b.Status = to
	b.UpdatedAt = r.db.clk.Now()
	r.db.st.bookings[id] = b
	return true, nil
}

func (r memBookings) CancelByEvent(ctx context.Context, eventID uint64, from model.BookingStatus) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for id, b := range r.db.st.bookings {
		if b.EventID == eventID && b.Status == from {
			b.Status = model.BookingCancelled
			b.UpdatedAt = r.db.clk.Now()
			r.db.st.bookings[id] = b
			n++
		}
	}
	return n, nil
}

func (r memBookings) LockStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Booking, error) {
	defer r.db.lock(ctx)()
	out := []model.Booking{}
	for _, b := range r.db.st.bookings {
		if b.Status == model.BookingPending && b.CreatedAt.Before(cutoff) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// transactions

type memTransactions struct{ db *memDB }

func (r memTransactions) Create(ctx context.Context, t *model.Transaction) error {
	defer r.db.lock(ctx)()
	if _, ok := r.db.st.bookings[t.BookingID]; !ok {
		return repository.ErrNotFound
	}
	t.ID = r.db.nextID()
	r.db.st.txns[t.ID] = *t
	return nil
}

func (r memTransactions) GetByBookingForUpdate(ctx context.Context, bookingID uint64) (*model.Transaction, error) {
	defer r.db.lock(ctx)()
	t, ok := r.db.txnFor(bookingID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r memTransactions) Settle(ctx context.Context, id uint64, method, ref string, at time.Time) (bool, error) {
	defer r.db.lock(ctx)()
	t, ok := r.db.st.txns[id]
	if !ok || t.Status != model.TransactionPending {
		return false, nil
	}
	t.Status = model.TransactionCompleted
	t.PaymentMethod = method
	t.PaymentRef = &ref
	t.TransactionDate = at
	r.db.st.txns[id] = t
	return true, nil
}

func (r memTransactions) RefundByBooking(ctx context.Context, bookingID uint64) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for id, t := range r.db.st.txns {
		if t.BookingID == bookingID && t.Status == model.TransactionCompleted {
			t.Status = model.TransactionRefunded
			r.db.st.txns[id] = t
			n++
		}
	}
	return n, nil
}

func (r memTransactions) RefundByEvent(ctx context.Context, eventID uint64) (int64, error) {
	defer r.db.lock(ctx)()
	var n int64
	for id, t := range r.db.st.txns {
		b := r.db.st.bookings[t.BookingID]
		if b.EventID == eventID && b.Status == model.BookingConfirmed && t.Status == model.TransactionCompleted {
			t.Status = model.TransactionRefunded
			r.db.st.txns[id] = t
			n++
		}
	}
	return n, nil
}

// audit

type memAudit struct{ db *memDB }

func (r memAudit) Record(ctx context.Context, userID uint64, action string, details map[string]any) {
	defer r.db.lock(ctx)()
	r.db.st.audit = append(r.db.st.audit, model.AuditEntry{
		ID:         r.db.nextID(),
		UserID:     userID,
		Action:     action,
		Details:    details,
		ActionDate: r.db.clk.Now(),
	})
}

func (r memAudit) List(ctx context.Context, f model.AuditFilter) ([]model.AuditEntry, error) {
	defer r.db.lock(ctx)()
	out := []model.AuditEntry{}
	for i := len(r.db.st.audit) - 1; i >= 0 && len(out) < f.Limit; i-- {
		e := r.db.st.audit[i]
		if f.UserID != nil && e.UserID != *f.UserID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.From != nil && e.ActionDate.Before(*f.From) {
			continue
		}
		if f.To != nil && e.ActionDate.After(*f.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r memAudit) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	defer r.db.lock(ctx)()
	kept := r.db.st.audit[:0:0]
	var n int64
	for _, e := range r.db.st.audit {
		if e.ActionDate.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.db.st.audit = kept
	return n, nil
}

func (db *memDB) actions() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]string, len(db.st.audit))
	for i, e := range db.st.audit {
		out[i] = e.Action
	}
	return out
}

func (db *memDB) transaction(bookingID uint64) (model.Transaction, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.txnFor(bookingID)
}

func (db *memDB) booking(id uint64) (model.Booking, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	b, ok := db.st.bookings[id]
	return b, ok
}

// side channels

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	msgs []any
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, payload)
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type countingPurger struct {
	mu sync.Mutex
	n  int
}

func (c *countingPurger) Purge(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func (c *countingPurger) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newMemProperty(db *memDB, clk clock.Clock, pub Publisher, cache CachePurger) Property {
	return Property{
		Tx:                db,
		Zones:             memZones{db},
		Seats:             memSeats{db},
		Categories:        memCategories{db},
		Events:            memEvents{db},
		Bookings:          memBookings{db},
		Transactions:      memTransactions{db},
		Audit:             memAudit{db},
		AuditLog:          memAudit{db},
		Publisher:         pub,
		Cache:             cache,
		Clock:             clk,
		Logger:            quietLogger(),
		PendingBookingTTL: 30 * time.Minute,
		AuditRetention:    90 * 24 * time.Hour,
	}
}
