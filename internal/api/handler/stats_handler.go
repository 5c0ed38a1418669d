package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dealerhub/dealer-admin/internal/api/metrics"
	"github.com/dealerhub/dealer-admin/internal/api/response"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

type StatsHandler struct {
	service ports.StatsService
}

func NewStatsHandler(service ports.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Dealers handles GET /api/dealers/stats.
//
// @Summary      Dealer statistics
// @Tags         dealers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=domain.DealerStats}
// @Failure      401  {object}  response.Envelope
// @Router       /api/dealers/stats [get]
func (h *StatsHandler) Dealers(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.StatsDuration.WithLabelValues("dealers"))
	defer timer.ObserveDuration()

	stats, err := h.service.DealerStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.OK(stats, ""))
}

// Dashboard handles GET /api/dashboard/stats.
//
// @Summary      Dashboard statistics
// @Description  Dealer statistics plus the five most recently created dealers.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=domain.DashboardStats}
// @Failure      401  {object}  response.Envelope
// @Router       /api/dashboard/stats [get]
func (h *StatsHandler) Dashboard(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.StatsDuration.WithLabelValues("dashboard"))
	defer timer.ObserveDuration()

	stats, err := h.service.DashboardStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.OK(stats, ""))
}
