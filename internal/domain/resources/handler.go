package resources

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

// RegisterRoutes mounts the resource endpoints under api. mw runs after the
// role check.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	chain := append([]echo.MiddlewareFunc{auth.RequireRole(auth.DashboardRoles...)}, mw...)
	g := api.Group("/resources", chain...)
	g.GET("/beds", h.GetBeds)
	g.GET("/staff", h.GetStaff)
	g.GET("/supplies", h.GetSupplies)
}

func (h *Handler) GetBeds(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	b := h.svc.Beds(c.Request().Context(), facilityID)
	middleware.MarkDegraded(c, b.Degraded)
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) GetStaff(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	s := h.svc.Staff(c.Request().Context(), facilityID)
	middleware.MarkDegraded(c, s.Degraded)
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) GetSupplies(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	s := h.svc.Supplies(c.Request().Context(), facilityID)
	middleware.MarkDegraded(c, s.Degraded)
	return c.JSON(http.StatusOK, s)
}
