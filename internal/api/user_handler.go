package api

import (
	"strconv"

	"MedGuard/internal/api/response"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHandler 普通用户端：康复医院浏览与转院申请
type UserHandler struct {
	institutions *service.InstitutionService
	transfers    *service.TransferService
	logger       *logrus.Logger
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(institutions *service.InstitutionService, transfers *service.TransferService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{institutions: institutions, transfers: transfers, logger: logger}
}

// ListHospitals 营业中的康复医院
// GET /api/user/hospitals?search=&specialty=&priceLevel=&minRating=
func (h *UserHandler) ListHospitals(c *gin.Context) {
	minRating, _ := strconv.ParseFloat(c.Query("minRating"), 64)
	filter := repository.InstitutionFilter{
		Search:     c.Query("search"),
		Specialty:  c.Query("specialty"),
		PriceLevel: c.Query("priceLevel"),
		MinRating:  minRating,
	}
	res, err := h.institutions.ListOpen(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// GetHospital GET /api/user/hospitals/:id
func (h *UserHandler) GetHospital(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.institutions.GetOpen(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}

// TransferApply 提交转院申请
// POST /api/user/transfer-apply
func (h *UserHandler) TransferApply(c *gin.Context) {
	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	var in service.TransferInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.transfers.SubmitToInstitution(c.Request.Context(), cl, in)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "申请提交成功", res)
}

// MyApplications 我的申请
// GET /api/user/my-applications
func (h *UserHandler) MyApplications(c *gin.Context) {
	cl, ok := mustCaller(c)
	if !ok {
		return
	}
	// 管理员在用户端也只看自己提交的申请
	cl.Role = ""
	res, err := h.transfers.List(c.Request.Context(), cl, c.Query("status"))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res.List)
}
