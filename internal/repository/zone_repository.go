package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/nightclub-booking/internal/model"
)

// ZoneRepo manages club zones.
type ZoneRepo struct {
	db *sql.DB
}

// NewZoneRepo returns a ZoneRepo bound to db.
func NewZoneRepo(db *sql.DB) *ZoneRepo { return &ZoneRepo{db: db} }

const zoneSelect = `SELECT z.id, z.name, COALESCE(z.description, ''), z.capacity, COUNT(s.id), z.created_at
	FROM club_zones z
	LEFT JOIN seats s ON s.zone_id = z.id`

func scanZone(row interface{ Scan(...any) error }, z *model.Zone) error {
	return row.Scan(&z.ID, &z.Name, &z.Description, &z.Capacity, &z.TotalSeats, &z.CreatedAt)
}

// List returns all zones with their registered seat counts.
func (r *ZoneRepo) List(ctx context.Context) ([]model.Zone, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, zoneSelect+` GROUP BY z.id ORDER BY z.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	zones := []model.Zone{}
	for rows.Next() {
		var z model.Zone
		if err := scanZone(rows, &z); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// GetByID fetches one zone or ErrNotFound.
func (r *ZoneRepo) GetByID(ctx context.Context, id uint64) (*model.Zone, error) {
	var z model.Zone
	err := scanZone(conn(ctx, r.db).QueryRowContext(ctx, zoneSelect+` WHERE z.id = ? GROUP BY z.id`, id), &z)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// Create inserts a zone and fills its ID and CreatedAt.  A duplicate
// name yields ErrDuplicate.
func (r *ZoneRepo) Create(ctx context.Context, z *model.Zone) error {
	q := conn(ctx, r.db)
	res, err := q.ExecContext(ctx,
		`INSERT INTO club_zones (name, description, capacity) VALUES (?, ?, ?)`,
		z.Name, z.Description, z.Capacity)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	z.ID = uint64(id)
	return q.QueryRowContext(ctx, `SELECT created_at FROM club_zones WHERE id = ?`, z.ID).Scan(&z.CreatedAt)
}

// ExistingIDs reports which of ids exist.
func (r *ZoneRepo) ExistingIDs(ctx context.Context, ids []uint64) (map[uint64]bool, error) {
	found := make(map[uint64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	query := `SELECT id FROM club_zones WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, uint64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	return found, rows.Err()
}

// SeatRepo manages physical seats.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to db.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulk inserts one seat per number into the zone in a single
// statement and returns the created seats ordered by number.  A seat
// number already used in the zone yields ErrDuplicate; an unknown zone
// yields ErrNotFound.
func (r *SeatRepo) CreateBulk(ctx context.Context, zoneID uint64, numbers []uint32) ([]model.Seat, error) {
	if len(numbers) == 0 {
		return []model.Seat{}, nil
	}
	q := conn(ctx, r.db)
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (zone_id, seat_number) VALUES `)
	args := make([]any, 0, len(numbers)*2)
	for i, n := range numbers {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?)")
		args = append(args, zoneID, n)
	}
	if _, err := q.ExecContext(ctx, b.String(), args...); err != nil {
		return nil, translate(err)
	}

	sel := `SELECT id, zone_id, seat_number, created_at FROM seats
		WHERE zone_id = ? AND seat_number IN (` + placeholders(len(numbers)) + `) ORDER BY seat_number`
	selArgs := append([]any{zoneID}, uint32Args(numbers)...)
	return r.query(ctx, sel, selArgs...)
}

// ListByZone returns the seats of a zone ordered by number.
func (r *SeatRepo) ListByZone(ctx context.Context, zoneID uint64) ([]model.Seat, error) {
	return r.query(ctx, `SELECT id, zone_id, seat_number, created_at FROM seats WHERE zone_id = ? ORDER BY seat_number`, zoneID)
}

func (r *SeatRepo) query(ctx context.Context, query string, args ...any) ([]model.Seat, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ZoneID, &s.SeatNumber, &s.CreatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// CategoryRepo manages event categories.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo returns a CategoryRepo bound to db.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, name, COALESCE(description, '') FROM event_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cats := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Create inserts a category.  A duplicate name yields ErrDuplicate.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO event_categories (name, description) VALUES (?, ?)`, c.Name, c.Description)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Exists reports whether a category with id exists.
func (r *CategoryRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM event_categories WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func uint64Args(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func uint32Args(ns []uint32) []any {
	out := make([]any, len(ns))
	for i, n := range ns {
		out[i] = n
	}
	return out
}
