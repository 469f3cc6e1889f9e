package api

import (
	"MedGuard/internal/api/response"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TransferHandler 转院医院目录、评价与转院申请
type TransferHandler struct {
	hospitals *service.HospitalService
	transfers *service.TransferService
	logger    *logrus.Logger
}

// NewTransferHandler 创建 TransferHandler
func NewTransferHandler(hospitals *service.HospitalService, transfers *service.TransferService, logger *logrus.Logger) *TransferHandler {
	return &TransferHandler{hospitals: hospitals, transfers: transfers, logger: logger}
}

// ListHospitals 营业中的医院
// GET /api/transfer/hospitals?search=&specialty=&level=&sortBy=rating|cost|name
func (h *TransferHandler) ListHospitals(c *gin.Context) {
	filter := repository.HospitalFilter{
		Search:    c.Query("search"),
		Specialty: c.Query("specialty"),
		Level:     c.Query("level"),
		SortBy:    c.Query("sortBy"),
	}
	res, err := h.hospitals.List(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// GetHospital 医院详情及全部评价
// GET /api/transfer/hospitals/:id
func (h *TransferHandler) GetHospital(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.hospitals.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// CreateHospital POST /api/transfer/hospitals
func (h *TransferHandler) CreateHospital(c *gin.Context) {
	var in service.HospitalInput
	if !bindJSON(c, &in) {
		return
	}
	id, err := h.hospitals.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "创建成功", gin.H{"id": id})
}

// UpdateHospital PUT /api/transfer/hospitals/:id
func (h *TransferHandler) UpdateHospital(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.HospitalInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.hospitals.Update(c.Request.Context(), id, in); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "更新成功", nil)
}

// DeleteHospital DELETE /api/transfer/hospitals/:id
func (h *TransferHandler) DeleteHospital(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.hospitals.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "删除成功", nil)
}

// AddReview 评价医院并重算评分
// POST /api/transfer/hospitals/:id/reviews
func (h *TransferHandler) AddReview(c *gin.Context) {
	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.ReviewInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.hospitals.AddReview(c.Request.Context(), id, cl.ID, in)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "评价成功", res)
}

// Submit 提交转院申请
// POST /api/transfer/applications
func (h *TransferHandler) Submit(c *gin.Context) {
	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var in service.TransferInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.transfers.Submit(c.Request.Context(), cl, in)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "申请提交成功", res)
}

// ListApplications 申请列表，普通用户只看自己的
// GET /api/transfer/applications?status=pending
func (h *TransferHandler) ListApplications(c *gin.Context) {
	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	res, err := h.transfers.List(c.Request.Context(), cl, c.Query("status"))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// ApplicationStats GET /api/transfer/applications/stats
func (h *TransferHandler) ApplicationStats(c *gin.Context) {
	res, err := h.transfers.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// GetApplication 申请详情
// GET /api/transfer/applications/:id
func (h *TransferHandler) GetApplication(c *gin.Context) {
	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.transfers.Get(c.Request.Context(), cl, id)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

type reviewDecision struct {
	AdminComment string `json:"adminComment"`
}

// Approve 批准
// PUT /api/transfer/applications/:id/approve
func (h *TransferHandler) Approve(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req reviewDecision
	// 批准意见可为空，请求体也可省略
	_ = c.ShouldBindJSON(&req)
	res, err := h.transfers.Approve(c.Request.Context(), id, req.AdminComment)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "已批准", res)
}

// Reject 拒绝，adminComment 必填
// PUT /api/transfer/applications/:id/reject
func (h *TransferHandler) Reject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req reviewDecision
	_ = c.ShouldBindJSON(&req)
	res, err := h.transfers.Reject(c.Request.Context(), id, req.AdminComment)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "已拒绝", res)
}
