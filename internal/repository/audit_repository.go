package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/model"
)

// AuditRepo is the audit_logs sink.  Record writes through the
// transaction carried by ctx so an entry commits or rolls back with the
// change it describes.
type AuditRepo struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewAuditRepo returns an AuditRepo bound to db.
func NewAuditRepo(db *sql.DB, log *logrus.Logger) *AuditRepo { return &AuditRepo{db: db, log: log} }

// Record appends an entry.  Failures are logged and never returned:
// losing an audit line must not undo a booking.
func (r *AuditRepo) Record(ctx context.Context, userID uint64, action string, details map[string]any) {
	body, err := json.Marshal(details)
	if err != nil {
		r.log.WithContext(ctx).WithError(err).WithField("action", action).Error("audit: marshal details")
		body = []byte("{}")
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO audit_logs (user_id, action, details) VALUES (?, ?, ?)`, userID, action, string(body)); err != nil {
		r.log.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"user_id": userID,
		}).Error("audit: insert entry")
	}
}

// List returns entries matching f, newest first.
func (r *AuditRepo) List(ctx context.Context, f model.AuditFilter) ([]model.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *f.UserID)
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	if f.From != nil {
		where = append(where, "action_date >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, "action_date <= ?")
		args = append(args, f.To.UTC())
	}
	query := `SELECT id, user_id, action, details, action_date FROM audit_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY action_date DESC, id DESC LIMIT ?"
	args = append(args, f.Limit)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AuditEntry{}
	for rows.Next() {
		var (
			e       model.AuditEntry
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &details, &e.ActionDate); err != nil {
			return nil, err
		}
		e.Details = map[string]any{}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				r.log.WithContext(ctx).WithError(err).WithField("log_id", e.ID).Warn("audit: undecodable details")
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteBefore removes entries older than cutoff and returns how many
// were removed.
func (r *AuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM audit_logs WHERE action_date < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
