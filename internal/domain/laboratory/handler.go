package laboratory

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

// RegisterRoutes mounts laboratory metrics under api. mw runs after the role
// check.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	g := api.Group("/laboratory", append([]echo.MiddlewareFunc{auth.RequireRole(auth.DashboardRoles...)}, mw...)...)
	g.GET("/metrics", h.GetMetrics)
}

func (h *Handler) GetMetrics(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	m := h.svc.Metrics(c.Request().Context(), facilityID, c.QueryParam("timeframe"))
	middleware.MarkDegraded(c, m.Degraded)
	return c.JSON(http.StatusOK, m)
}
