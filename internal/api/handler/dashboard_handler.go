package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bst-contable/invoice-api/internal/core/ports"
)

// DashboardHandler exposes the read-only aggregate views.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats handles GET /v1/dashboard/stats: the composite payload the back
// office renders on its landing page.
//
// @Summary      Full dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.DashboardStats
// @Router       /v1/dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Basic handles GET /v1/dashboard/basic.
//
// @Summary      Headline totals
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.BasicStats
// @Router       /v1/dashboard/basic [get]
func (h *DashboardHandler) Basic(c echo.Context) error {
	stats, err := h.service.BasicStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Trends handles GET /v1/dashboard/trends?months=N.
//
// @Summary      Monthly invoice volume
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        months  query     int  false  "Months to look back (1-24, default 6)"
// @Success      200     {array}   ports.TrendPoint
// @Router       /v1/dashboard/trends [get]
func (h *DashboardHandler) Trends(c echo.Context) error {
	points, err := h.service.Trends(c.Request().Context(), queryInt(c, "months", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, points)
}

// Users handles GET /v1/dashboard/users?limit=N.
//
// @Summary      Top spenders
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Rows to return (default 10)"
// @Success      200    {array}   ports.UserStat
// @Router       /v1/dashboard/users [get]
func (h *DashboardHandler) Users(c echo.Context) error {
	stats, err := h.service.UserStats(c.Request().Context(), queryInt(c, "limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Categories handles GET /v1/dashboard/categories.
//
// @Summary      Spending by expense category
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ports.DistributionSlice
// @Router       /v1/dashboard/categories [get]
func (h *DashboardHandler) Categories(c echo.Context) error {
	slices, err := h.service.CategoryDistribution(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slices)
}

// PaymentMethods handles GET /v1/dashboard/payment-methods.
//
// @Summary      Spending by payment method
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ports.DistributionSlice
// @Router       /v1/dashboard/payment-methods [get]
func (h *DashboardHandler) PaymentMethods(c echo.Context) error {
	slices, err := h.service.PaymentDistribution(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, slices)
}

// Validation handles GET /v1/dashboard/validation.
//
// @Summary      Validation throughput
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ValidationPerformance
// @Router       /v1/dashboard/validation [get]
func (h *DashboardHandler) Validation(c echo.Context) error {
	perf, err := h.service.ValidationPerformance(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, perf)
}

// Activity handles GET /v1/dashboard/activity?limit=N.
//
// @Summary      Recent invoice activity
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Rows to return (default 10)"
// @Success      200    {array}   ports.ActivityItem
// @Router       /v1/dashboard/activity [get]
func (h *DashboardHandler) Activity(c echo.Context) error {
	items, err := h.service.RecentActivity(c.Request().Context(), queryInt(c, "limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
