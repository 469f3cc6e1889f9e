package api

import (
	"MedGuard/internal/api/response"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RehabilitationHandler 康复机构与康复转院审批（管理端）
type RehabilitationHandler struct {
	institutions *service.InstitutionService
	transfers    *service.TransferService
	logger       *logrus.Logger
}

// NewRehabilitationHandler 创建 RehabilitationHandler
func NewRehabilitationHandler(institutions *service.InstitutionService, transfers *service.TransferService, logger *logrus.Logger) *RehabilitationHandler {
	return &RehabilitationHandler{institutions: institutions, transfers: transfers, logger: logger}
}

// ListInstitutions 机构列表
// GET /api/rehabilitation/institutions?search=&status=营业中&page=1&pageSize=10
func (h *RehabilitationHandler) ListInstitutions(c *gin.Context) {
	filter := repository.InstitutionFilter{Search: c.Query("search"), Status: c.Query("status")}
	res, err := h.institutions.List(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// GetInstitution 机构详情
// GET /api/rehabilitation/institutions/:id
func (h *RehabilitationHandler) GetInstitution(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.institutions.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// CreateInstitution 新增机构
// POST /api/rehabilitation/institutions
func (h *RehabilitationHandler) CreateInstitution(c *gin.Context) {
	var in service.InstitutionInput
	if !bindJSON(c, &in) {
		return
	}
	id, err := h.institutions.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "创建成功", gin.H{"id": id})
}

// UpdateInstitution 修改机构
// PUT /api/rehabilitation/institutions/:id
func (h *RehabilitationHandler) UpdateInstitution(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.InstitutionInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.institutions.Update(c.Request.Context(), id, in); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "更新成功", nil)
}

// DeleteInstitution 删除机构
// DELETE /api/rehabilitation/institutions/:id
func (h *RehabilitationHandler) DeleteInstitution(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.institutions.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// ListTransfers 转院申请列表 + 今日/近7天/近30天统计
// GET /api/rehabilitation/transfers?status=pending
func (h *RehabilitationHandler) ListTransfers(c *gin.Context) {
	res, err := h.transfers.Board(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// TransferStats 申请状态分布
// GET /api/rehabilitation/transfer-stats
func (h *RehabilitationHandler) TransferStats(c *gin.Context) {
	res, err := h.transfers.StatusDistribution(c.Request.Context())
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}
