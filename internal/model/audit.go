package model

import "time"

// AuditEntry is one row of the append-only action log.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – actor who performed the action.
//  Action     – action name (create_booking, process_payment, ...).
//  Details    – JSON document describing the action.
//  ActionDate – when the action was recorded.
type AuditEntry struct {
	ID         uint64         `json:"log_id"`      // audit_logs.id
	UserID     uint64         `json:"user_id"`     // audit_logs.user_id
	Action     string         `json:"action"`      // audit_logs.action
	Details    map[string]any `json:"details"`     // audit_logs.details
	ActionDate time.Time      `json:"action_date"` // audit_logs.action_date
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	UserID *uint64
	Action string
	From   *time.Time
	To     *time.Time
	Limit  int
}
