package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/nightclub-booking/internal/model"
)

// AdminHandler serves the audit log and maintenance endpoints.
type AdminHandler struct {
	Audit       AuditService
	Maintenance MaintenanceService
}

func NewAdminHandler(audit AuditService, maintenance MaintenanceService) *AdminHandler {
	notNil("NewAdminHandler", audit, maintenance)
	return &AdminHandler{Audit: audit, Maintenance: maintenance}
}

// AuditLogs handles GET /v1/admin/audit-logs with the optional filters
// user_id, action, from, to and limit.
func (h *AdminHandler) AuditLogs(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var f model.AuditFilter
	if f.UserID, err = queryID(c, "user_id"); err != nil {
		return err
	}
	if f.From, err = queryTime(c, "from", false); err != nil {
		return err
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return err
	}
	if f.Limit, err = queryInt(c, "limit"); err != nil {
		return err
	}
	f.Action = c.QueryParam("action")

	logs, err := h.Audit.List(c.Request().Context(), actor, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"logs": logs, "count": len(logs)})
}

// Cleanup handles POST /v1/admin/cleanup.
func (h *AdminHandler) Cleanup(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	res, err := h.Maintenance.Cleanup(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
