package api

import (
	"MedGuard/internal/api/response"
	"MedGuard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AssistantHandler AI 助手
type AssistantHandler struct {
	assistant *service.AssistantService
	logger    *logrus.Logger
}

// NewAssistantHandler 创建 AssistantHandler
func NewAssistantHandler(assistant *service.AssistantService, logger *logrus.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, logger: logger}
}

// Chat 对话
// POST /api/ai-assistant/chat {"message": "...", "context": {"userRole": "admin", ...}}
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req service.ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.assistant.Chat(c.Request.Context(), caller(c), req)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "回复成功", res)
}

type analyzeRequest struct {
	Data interface{} `json:"data"`
}

// Analyze 数据分析
// POST /api/ai-assistant/analyze {"data": {...}}
func (h *AssistantHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.assistant.Analyze(c.Request.Context(), caller(c), req.Data)
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, "分析完成", res)
}

// Health GET /api/ai-assistant/health
func (h *AssistantHandler) Health(c *gin.Context) {
	response.OK(c, "AI助手服务运行正常", h.assistant.Health())
}

// History 对话记录
// GET /api/ai-assistant/history?userId=&page=1&pageSize=10
func (h *AssistantHandler) History(c *gin.Context) {
	var userID *uint64
	if n := intQuery(c, "userId"); n != nil && *n > 0 {
		id := uint64(*n)
		userID = &id
	}
	res, err := h.assistant.History(c.Request.Context(), userID, pageParams(c))
	if err != nil {
		response.Fail(c, h.logger, err)
		return
	}
	response.OK(c, msgOK, res)
}
