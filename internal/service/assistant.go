package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/assistant"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Assistant 大模型网关
type Assistant interface {
	Converse(ctx context.Context, message string, c assistant.Context) (*assistant.Reply, error)
	Analyze(ctx context.Context, data interface{}) (*assistant.Reply, error)
	Health() assistant.Health
}

// ChatRequest 对话参数
type ChatRequest struct {
	Message string            `json:"message"`
	Context assistant.Context `json:"context"`
}

// ChatResult 对话结果
type ChatResult struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// AnalysisResult 分析结果
type AnalysisResult struct {
	Analysis  string `json:"analysis"`
	Timestamp string `json:"timestamp"`
}

// AssistantService AI 助手：转发大模型并记录对话
type AssistantService struct {
	gateway       Assistant
	conversations repository.ConversationRepository
	logger        *logrus.Logger
	now           func() time.Time
}

// NewAssistantService 创建 AssistantService
func NewAssistantService(gateway Assistant, conversations repository.ConversationRepository, logger *logrus.Logger) *AssistantService {
	return &AssistantService{gateway: gateway, conversations: conversations, logger: logger, now: time.Now}
}

func (s *AssistantService) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// Chat 对话。caller 为空表示匿名调用，角色取自请求上下文
func (s *AssistantService) Chat(ctx context.Context, caller *Caller, req ChatRequest) (*ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperr.Validation("请输入有效的问题")
	}
	if caller != nil {
		req.Context.UserRole = caller.Role
	}

	reply, err := s.gateway.Converse(ctx, message, req.Context)
	if err != nil {
		return nil, err
	}
	s.record(ctx, caller, req.Context.UserRole, message, reply, req.Context)
	return &ChatResult{Response: reply.Content, Timestamp: s.timestamp()}, nil
}

// Analyze 数据深度分析
func (s *AssistantService) Analyze(ctx context.Context, caller *Caller, data interface{}) (*AnalysisResult, error) {
	if isEmptyData(data) {
		return nil, apperr.Validation("请提供要分析的数据")
	}
	reply, err := s.gateway.Analyze(ctx, data)
	if err != nil {
		return nil, err
	}
	role := ""
	if caller != nil {
		role = caller.Role
	}
	s.record(ctx, caller, role, "[analyze]", reply, data)
	return &AnalysisResult{Analysis: reply.Content, Timestamp: s.timestamp()}, nil
}

// Health 助手配置状态
func (s *AssistantService) Health() assistant.Health {
	return s.gateway.Health()
}

// History 对话记录（管理端）
func (s *AssistantService) History(ctx context.Context, userID *uint64, page repository.Page) (*ListResult[*model.AIConversation], error) {
	list, total, err := s.conversations.List(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return newListResult(list, total, page), nil
}

// record 写入对话记录，失败只记日志
func (s *AssistantService) record(ctx context.Context, caller *Caller, role, message string, reply *assistant.Reply, extra interface{}) {
	conv := &model.AIConversation{
		UserRole: role,
		Persona:  string(reply.Persona),
		Mode:     string(reply.Mode),
		Message:  message,
		Response: reply.Content,
	}
	if caller != nil {
		id := caller.ID
		conv.UserID = &id
	}
	if extra != nil {
		if raw, err := json.Marshal(extra); err == nil {
			conv.Context = datatypes.JSON(raw)
		}
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		s.logger.WithError(err).Warn("保存对话记录失败")
	}
}

func isEmptyData(data interface{}) bool {
	switch v := data.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case map[string]interface{}:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	}
	return false
}
