package api

import (
	"MedGuard/internal/api/response"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DashboardHandler 数据看板
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *logrus.Logger
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboard *service.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Overview GET /api/dashboard/overview
func (h *DashboardHandler) Overview(c *gin.Context) {
	res, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// FeeTrend GET /api/dashboard/fee-trend?type=month|quarter|year
func (h *DashboardHandler) FeeTrend(c *gin.Context) {
	response.OK(c, msgOK, h.dashboard.FeeTrend(c.Query("type")))
}

// RiskDistribution GET /api/dashboard/risk-distribution
func (h *DashboardHandler) RiskDistribution(c *gin.Context) {
	res, err := h.dashboard.RiskDistribution(c.Request.Context())
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}
