package patients

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

// RegisterRoutes mounts patient monitoring under api. mw runs after the role
// check.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	g := api.Group("/patients", append([]echo.MiddlewareFunc{auth.RequireRole(auth.DashboardRoles...)}, mw...)...)
	g.GET("/monitoring", h.GetMonitoring)
	g.GET("/vitals/live", h.GetLiveVitals)
	g.GET("/distribution", h.GetDistribution)
}

func (h *Handler) GetMonitoring(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	limit, err := filters.Limit(c, DefaultMonitoringLimit)
	if err != nil {
		return err
	}
	m := h.svc.Monitoring(c.Request().Context(), MonitoringQuery{
		FacilityID: facilityID,
		Ward:       c.QueryParam("ward"),
		Status:     c.QueryParam("status"),
		Limit:      limit,
	})
	middleware.MarkDegraded(c, m.Degraded)
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetLiveVitals(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	limit, err := filters.Limit(c, DefaultLiveLimit)
	if err != nil {
		return err
	}
	v := h.svc.LiveVitals(c.Request().Context(), facilityID, limit)
	middleware.MarkDegraded(c, v.Degraded)
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) GetDistribution(c echo.Context) error {
	scope, err := filters.FromContext(c)
	if err != nil {
		return err
	}
	d := h.svc.Distribution(c.Request().Context(), scope.FacilityID, scope.CountyID)
	middleware.MarkDegraded(c, d.Degraded)
	return c.JSON(http.StatusOK, d)
}
