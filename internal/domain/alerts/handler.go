package alerts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neocare/neocare/internal/platform/auth"
	"github.com/neocare/neocare/internal/platform/middleware"
	"github.com/neocare/neocare/pkg/filters"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the alert feeds under api. mw runs after the role
// check.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	g := api.Group("/alerts", append([]echo.MiddlewareFunc{auth.RequireRole(auth.DashboardRoles...)}, mw...)...)
	g.GET("/critical", h.GetCritical)
	g.GET("/clinical", h.GetClinical)
}

func (h *Handler) GetCritical(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	limit, err := filters.Limit(c, DefaultCriticalLimit)
	if err != nil {
		return err
	}
	feed := h.svc.Critical(c.Request().Context(), facilityID, limit)
	middleware.MarkDegraded(c, feed.Degraded)
	return c.JSON(http.StatusOK, feed)
}

func (h *Handler) GetClinical(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	feed := h.svc.Clinical(c.Request().Context(), facilityID)
	middleware.MarkDegraded(c, feed.Degraded)
	return c.JSON(http.StatusOK, feed)
}
