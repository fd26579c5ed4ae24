package overview

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

// RegisterRoutes mounts the overview under api. mw runs after the role check.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	g := api.Group("/overview", append([]echo.MiddlewareFunc{auth.RequireRole(auth.DashboardRoles...)}, mw...)...)
	g.GET("/dashboard", h.GetDashboard)
}

func (h *Handler) GetDashboard(c echo.Context) error {
	scope, err := filters.FromContext(c)
	if err != nil {
		return err
	}
	d := h.svc.Dashboard(c.Request().Context(), Query{
		FacilityID: scope.FacilityID,
		CountyID:   scope.CountyID,
		Timeframe:  c.QueryParam("timeframe"),
	})
	middleware.MarkDegraded(c, d.Degraded)
	return c.JSON(http.StatusOK, d)
}
