package icu

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

// RegisterRoutes mounts the command center under api. ICU data is limited to
// clinical staff.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	g := api.Group("/icu", append([]echo.MiddlewareFunc{auth.RequireRole(auth.ClinicalRoles...)}, mw...)...)
	g.GET("/command-center", h.GetCommandCenter)
}

func (h *Handler) GetCommandCenter(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	cc := h.svc.CommandCenter(c.Request().Context(), facilityID)
	middleware.MarkDegraded(c, cc.Degraded)
	return c.JSON(http.StatusOK, cc)
}
