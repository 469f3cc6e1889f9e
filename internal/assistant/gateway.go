// Package assistant 转发问题到大模型 chat/completions 接口，按角色选择人设，失败时重试或降级为模拟回复
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/config"
	"MedGuard/internal/utils/httpclient"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Mode 回复来源
type Mode string

const (
	ModeLive     Mode = "live"     // 大模型返回
	ModeMock     Mode = "mock"     // 未配置 API Key
	ModeFallback Mode = "fallback" // 调用失败后降级
)

const (
	maxRetries     = 2
	retryStep      = 2 * time.Second
	rateLimitWait  = 5 * time.Second
	temperature    = 0.7
	maxTokens      = 2000
	msgInvalidKey  = "API密钥无效，请检查配置"
	msgRateLimited = "请求频率过高，请稍后重试"
)

// Context 随问题附带的结构化上下文
type Context struct {
	UserRole    string        `json:"userRole"`
	PatientData interface{}   `json:"patientData,omitempty"`
	RiskEvents  interface{}   `json:"riskEvents,omitempty"`
	Hospitals   []interface{} `json:"hospitals,omitempty"`
}

// Reply 助手回复
type Reply struct {
	Content string
	Mode    Mode
	Persona Persona
}

// Health 助手配置状态
type Health struct {
	Status    string `json:"status"`
	HasAPIKey bool   `json:"hasApiKey"`
	APIURL    string `json:"apiUrl"`
	Model     string `json:"model"`
	Mode      string `json:"mode"`
}

// Observer 回复结果观测（指标）
type Observer interface {
	ObserveReply(persona, mode string, d time.Duration)
}

// Gateway 大模型调用网关
type Gateway struct {
	cfg      config.AIConfig
	client   *resty.Client
	logger   *logrus.Logger
	observer Observer
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewGateway 创建 Gateway
func NewGateway(cfg config.AIConfig, logger *logrus.Logger) *Gateway {
	client := resty.NewWithClient(httpclient.NewHTTPClient(&cfg, logger)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Gateway{cfg: cfg, client: client, logger: logger, sleep: sleepCtx}
}

// WithObserver 设置指标观测
func (g *Gateway) WithObserver(o Observer) *Gateway {
	g.observer = o
	return g
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Health 当前配置
func (g *Gateway) Health() Health {
	h := Health{Status: "ok", HasAPIKey: g.cfg.HasAPIKey(), APIURL: g.cfg.APIURL, Model: g.cfg.Model, Mode: "mock"}
	if h.HasAPIKey {
		h.Mode = "production"
	}
	return h
}

// Analyze 以欺诈分析人设对数据做深度分析
func (g *Gateway) Analyze(ctx context.Context, data interface{}) (*Reply, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, apperr.Validation("分析数据无法序列化")
	}
	prompt := "请对以下医保数据进行深度分析，识别潜在的欺诈风险：\n\n" + string(body) +
		"\n\n请提供：\n1. 风险识别结果\n2. 风险等级评估\n3. 异常模式分析\n4. 处理建议"
	return g.Converse(ctx, prompt, Context{})
}

// Converse 发送问题并返回回复
func (g *Gateway) Converse(ctx context.Context, message string, c Context) (*Reply, error) {
	start := time.Now()
	persona := PersonaFor(c.UserRole)
	reply, err := g.converse(ctx, message, c, persona)
	if g.observer != nil {
		mode := "error"
		if err == nil {
			mode = string(reply.Mode)
		}
		g.observer.ObserveReply(string(persona), mode, time.Since(start))
	}
	return reply, err
}

func (g *Gateway) converse(ctx context.Context, message string, c Context, persona Persona) (*Reply, error) {
	if !g.cfg.HasAPIKey() {
		g.logger.Debug("未配置API密钥，使用模拟响应")
		return &Reply{Content: MockAnswer(message, false, ""), Mode: ModeMock, Persona: persona}, nil
	}

	prompt, err := BuildPrompt(message, c, persona)
	if err != nil {
		return nil, apperr.Validation("上下文数据无法序列化")
	}

	retries, rateLimited := 0, false
	for attempt := 1; ; attempt++ {
		log := g.logger.WithFields(logrus.Fields{"attempt": attempt, "model": g.cfg.Model, "persona": persona})
		log.Info("发送大模型请求")

		content, cerr := g.call(ctx, persona, prompt)
		if cerr == nil {
			log.WithField("length", len(content)).Info("大模型请求成功")
			return &Reply{Content: content, Mode: ModeLive, Persona: persona}, nil
		}
		log = log.WithError(cerr).WithField("status", cerr.status)
		log.Warn("大模型请求失败")

		switch cerr.kind {
		case failAuth:
			return nil, apperr.Upstream(msgInvalidKey).Wrap(cerr)

		case failBadRequest:
			if g.unstableModel() {
				reason := fmt.Sprintf("模型 %s 可能不可用，建议检查模型名称或使用模拟响应模式。", g.cfg.Model)
				return g.fallback(message, persona, reason), nil
			}
			msg := fmt.Sprintf("API请求参数错误: %s。请检查模型名称是否正确，当前模型: %s", cerr.message, g.cfg.Model)
			return nil, apperr.Upstream(msg).Wrap(cerr)

		case failRateLimited:
			if rateLimited {
				return nil, apperr.Upstream(msgRateLimited).Wrap(cerr)
			}
			rateLimited = true
			log.WithField("wait", rateLimitWait).Info("请求频率过高，等待后重试")
			if err := g.sleep(ctx, rateLimitWait); err != nil {
				return nil, apperr.Upstream("请求已取消").Wrap(err)
			}

		default:
			if retries >= maxRetries {
				reason := ""
				if cerr.network {
					reason = "网络连接失败，已切换到模拟响应模式。"
				}
				log.Error("重试次数已用完，返回模拟响应")
				return g.fallback(message, persona, reason), nil
			}
			retries++
			wait := time.Duration(retries) * retryStep
			log.WithField("wait", wait).Info("等待后重试")
			if err := g.sleep(ctx, wait); err != nil {
				return nil, apperr.Upstream("请求已取消").Wrap(err)
			}
		}
	}
}

func (g *Gateway) fallback(message string, persona Persona, reason string) *Reply {
	return &Reply{Content: MockAnswer(message, true, reason), Mode: ModeFallback, Persona: persona}
}

func (g *Gateway) unstableModel() bool {
	for _, marker := range g.cfg.UnstableModels {
		if marker != "" && strings.Contains(g.cfg.Model, marker) {
			return true
		}
	}
	return false
}

// BuildPrompt 问题后追加结构化上下文（缩进 JSON）；医院列表仅对转院顾问生效
func BuildPrompt(message string, c Context, persona Persona) (string, error) {
	var b strings.Builder
	b.WriteString(message)
	sections := []struct {
		title string
		data  interface{}
		skip  bool
	}{
		{"相关数据", c.PatientData, c.PatientData == nil},
		{"风险事件", c.RiskEvents, c.RiskEvents == nil},
		{"可选医院列表", c.Hospitals, persona != PersonaTransferAdvisor || len(c.Hospitals) == 0},
	}
	for _, s := range sections {
		if s.skip {
			continue
		}
		raw, err := json.MarshalIndent(s.data, "", "  ")
		if err != nil {
			return "", err
		}
		b.WriteString("\n\n" + s.title + "：\n")
		b.Write(raw)
	}
	return b.String(), nil
}

type failKind int

const (
	failTransient failKind = iota // 超时、网络错误、5xx、格式异常
	failAuth
	failBadRequest
	failRateLimited
)

// callError 单次调用失败
type callError struct {
	kind    failKind
	status  int
	network bool
	message string
	err     error
}

func (e *callError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *callError) Unwrap() error { return e.err }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func (g *Gateway) call(ctx context.Context, persona Persona, prompt string) (string, *callError) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(g.cfg.APIKey).
		SetBody(chatRequest{
			Model: g.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: persona.SystemPrompt()},
				{Role: "user", Content: prompt},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
		}).
		Post(g.cfg.APIURL)
	if err != nil {
		return "", &callError{kind: failTransient, network: !isTimeout(err), message: "请求发送失败", err: err}
	}

	status := resp.StatusCode()
	body := resp.Body()
	switch {
	case status >= 200 && status < 300:
		content := gjson.GetBytes(body, "choices.0.message.content")
		if !content.Exists() || content.Type != gjson.String {
			return "", &callError{kind: failTransient, status: status, message: "AI服务返回格式异常"}
		}
		return content.String(), nil
	case status == 401 || status == 403:
		return "", &callError{kind: failAuth, status: status, message: msgInvalidKey}
	case status == 400:
		return "", &callError{kind: failBadRequest, status: status, message: providerMessage(body)}
	case status == 429:
		return "", &callError{kind: failRateLimited, status: status, message: msgRateLimited}
	}
	return "", &callError{kind: failTransient, status: status, message: fmt.Sprintf("AI服务返回状态码 %d", status)}
}

func providerMessage(body []byte) string {
	for _, path := range []string{"error.message", "message"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return "请求参数错误"
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
