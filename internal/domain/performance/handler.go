package performance

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/neocare/neocare/internal/platform/auth"
	"github.com/neocare/neocare/internal/platform/middleware"
	"github.com/neocare/neocare/pkg/filters"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts clinical KPIs and department performance under api.
// mw runs after the role check.
func (h *Handler) RegisterRoutes(api *echo.Group, mw ...echo.MiddlewareFunc) {
	pre := []echo.MiddlewareFunc{auth.RequireRole(auth.DashboardRoles...)}

	kpis := api.Group("/kpis", append(pre, mw...)...)
	kpis.GET("/clinical", h.GetClinicalKPIs)

	deps := api.Group("/departments", append(pre, mw...)...)
	deps.GET("/performance", h.GetDepartments)
	// Exports are downloads and bypass the response cache.
	api.GET("/departments/performance/export", h.ExportDepartments, pre...)
}

func (h *Handler) GetClinicalKPIs(c echo.Context) error {
	facilityID, err := filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return err
	}
	k := h.svc.ClinicalKPIs(c.Request().Context(), facilityID, c.QueryParam("timeframe"))
	middleware.MarkDegraded(c, k.Degraded)
	return c.JSON(http.StatusOK, k)
}

func (h *Handler) GetDepartments(c echo.Context) error {
	facilityID, days, err := departmentParams(c)
	if err != nil {
		return err
	}
	d := h.svc.Departments(c.Request().Context(), facilityID, days)
	middleware.MarkDegraded(c, d.Degraded)
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ExportDepartments(c echo.Context) error {
	facilityID, days, err := departmentParams(c)
	if err != nil {
		return err
	}
	d := h.svc.Departments(c.Request().Context(), facilityID, days)
	data, err := Workbook(d)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build workbook")
	}
	middleware.MarkDegraded(c, d.Degraded)
	filename := fmt.Sprintf("department-performance-%s.xlsx", d.Timestamp.Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func departmentParams(c echo.Context) (facilityID *uuid.UUID, days int, err error) {
	facilityID, err = filters.OptionalUUID(c, "hospital_id")
	if err != nil {
		return nil, 0, err
	}
	days, err = filters.Days(c, DefaultDays)
	if err != nil {
		return nil, 0, err
	}
	return facilityID, days, nil
}
