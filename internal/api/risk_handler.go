package api

import (
	"MedGuard/internal/api/response"
	"MedGuard/internal/export"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RiskHandler 风险事件与费用预警
type RiskHandler struct {
	risks    *service.RiskService
	warnings *service.WarningService
	logger   *logrus.Logger
}

// NewRiskHandler 创建 RiskHandler
func NewRiskHandler(risks *service.RiskService, warnings *service.WarningService, logger *logrus.Logger) *RiskHandler {
	return &RiskHandler{risks: risks, warnings: warnings, logger: logger}
}

func riskFilter(c *gin.Context) repository.RiskFilter {
	return repository.RiskFilter{Search: c.Query("search"), Level: c.Query("level"), Status: c.Query("status")}
}

// ListEvents 风险事件列表 + 概览
// GET /api/risk/events?search=&level=high&status=&page=1&pageSize=10
func (h *RiskHandler) ListEvents(c *gin.Context) {
	res, err := h.risks.List(c.Request.Context(), riskFilter(c), pageParams(c))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// ExportEvents GET /api/risk/events/export
func (h *RiskHandler) ExportEvents(c *gin.Context) {
	file, err := h.risks.Export(c.Request.Context(), riskFilter(c))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	sendFile(c, file, export.ContentType)
}

// GetEvent GET /api/risk/events/:id
func (h *RiskHandler) GetEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.risks.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// CreateEvent POST /api/risk/events
func (h *RiskHandler) CreateEvent(c *gin.Context) {
	var in service.RiskInput
	if !bindJSON(c, &in) {
		return
	}
	id, err := h.risks.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "创建成功", gin.H{"id": id})
}

// UpdateEvent PUT /api/risk/events/:id
func (h *RiskHandler) UpdateEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.RiskInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.risks.Update(c.Request.Context(), id, in); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "更新成功", nil)
}

// DeleteEvent DELETE /api/risk/events/:id
func (h *RiskHandler) DeleteEvent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.risks.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// TypeDistribution 风险类型分布
// GET /api/risk/type-distribution
func (h *RiskHandler) TypeDistribution(c *gin.Context) {
	res, err := h.risks.TypeDistribution(c.Request.Context())
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// LevelDistribution 风险等级分布（高、中、低）
// GET /api/risk/level-distribution
func (h *RiskHandler) LevelDistribution(c *gin.Context) {
	res, err := h.risks.LevelDistribution(c.Request.Context())
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// ListWarnings GET /api/risk/warnings?search=&status=&type=
func (h *RiskHandler) ListWarnings(c *gin.Context) {
	filter := repository.WarningFilter{Search: c.Query("search"), Status: c.Query("status"), Type: c.Query("type")}
	res, err := h.warnings.List(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// GetWarning GET /api/risk/warnings/:id
func (h *RiskHandler) GetWarning(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.warnings.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// CreateWarning POST /api/risk/warnings
func (h *RiskHandler) CreateWarning(c *gin.Context) {
	var in service.WarningInput
	if !bindJSON(c, &in) {
		return
	}
	id, err := h.warnings.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "创建成功", gin.H{"id": id})
}

// UpdateWarning PUT /api/risk/warnings/:id
func (h *RiskHandler) UpdateWarning(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.WarningInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.warnings.Update(c.Request.Context(), id, in); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "更新成功", nil)
}

// DeleteWarning DELETE /api/risk/warnings/:id
func (h *RiskHandler) DeleteWarning(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.warnings.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "删除成功", nil)
}
