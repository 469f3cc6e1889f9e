package api

import (
	"MedGuard/internal/api/response"
	"MedGuard/internal/export"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DRGHandler DRG 支付政策接口
type DRGHandler struct {
	drg    *service.DRGService
	logger *logrus.Logger
}

// NewDRGHandler 创建 DRGHandler
func NewDRGHandler(drg *service.DRGService, logger *logrus.Logger) *DRGHandler {
	return &DRGHandler{drg: drg, logger: logger}
}

func drgFilter(c *gin.Context) repository.DRGFilter {
	return repository.DRGFilter{Search: c.Query("search"), Status: intQuery(c, "status")}
}

// List 政策列表
// GET /api/drg?search=MDC&status=1&page=1&pageSize=10
func (h *DRGHandler) List(c *gin.Context) {
	res, err := h.drg.List(c.Request.Context(), drgFilter(c), pageParams(c))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// Statistics 按编码统计
// GET /api/drg/statistics
func (h *DRGHandler) Statistics(c *gin.Context) {
	res, err := h.drg.Statistics(c.Request.Context())
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// Export 按当前筛选条件导出 xlsx
// GET /api/drg/export
func (h *DRGHandler) Export(c *gin.Context) {
	file, err := h.drg.Export(c.Request.Context(), drgFilter(c))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	sendFile(c, file, export.ContentType)
}

// Get 详情
// GET /api/drg/:id
func (h *DRGHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.drg.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// Create 新增
// POST /api/drg
func (h *DRGHandler) Create(c *gin.Context) {
	var in service.DRGInput
	if !bindJSON(c, &in) {
		return
	}
	id, err := h.drg.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "创建成功", gin.H{"id": id})
}

// Update 修改
// PUT /api/drg/:id
func (h *DRGHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.DRGInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.drg.Update(c.Request.Context(), id, in); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "更新成功", nil)
}

// Delete 删除
// DELETE /api/drg/:id
func (h *DRGHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.drg.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "删除成功", nil)
}
