package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/apperr"
	"github.com/iliyamo/nightclub-booking/internal/authz"
	"github.com/iliyamo/nightclub-booking/internal/model"
)

const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 1000
)

// AuditService exposes the action log to administrators.
type AuditService struct {
	p Property
}

func NewAuditService(p Property) *AuditService { return &AuditService{p: p} }

// List returns audit entries matching f, newest first.  A zero limit
// means DefaultAuditLimit and larger limits are capped at MaxAuditLimit.
func (s *AuditService) List(ctx context.Context, actor authz.Actor, f model.AuditFilter) ([]model.AuditEntry, error) {
	if err := authz.Require(actor, authz.RoleAdmin); err != nil {
		return nil, err
	}
	switch {
	case f.Limit < 0:
		return nil, apperr.Validation("limit must not be negative")
	case f.Limit == 0:
		f.Limit = DefaultAuditLimit
	case f.Limit > MaxAuditLimit:
		f.Limit = MaxAuditLimit
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, apperr.Validation("to must not be before from")
	}
	out, err := s.p.AuditLog.List(ctx, f)
	if err != nil {
		return nil, s.p.fail(ctx, err, "list audit logs", nil)
	}
	return out, nil
}

// Prune deletes entries older than the configured retention window.
// A zero retention keeps everything.
func (s *AuditService) Prune(ctx context.Context) (int64, error) {
	if s.p.AuditRetention <= 0 {
		return 0, nil
	}
	cutoff := s.p.now().Add(-s.p.AuditRetention)
	n, err := s.p.AuditLog.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, s.p.fail(ctx, err, "prune audit logs", logrus.Fields{"cutoff": stamp(cutoff)})
	}
	return n, nil
}
