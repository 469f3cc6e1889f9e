package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MedGuard/internal/assistant"
	"MedGuard/internal/auth"
	"MedGuard/internal/config"
	"MedGuard/internal/repository"
	"MedGuard/internal/service"
	"MedGuard/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: gin.TestMode, CORSOrigins: []string{"*"}},
		Auth:      config.AuthConfig{JWTSecret: "test-secret", TokenExpire: time.Hour, Issuer: "medguard"},
		AI:        config.AIConfig{Model: "glm-4", RateLimitRPS: 100, RateLimitBurst: 100},
		Dashboard: config.DashboardConfig{DemoFallback: true},
	}
	st := testutil.NewStore(t)
	logger := testutil.Logger()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpire, cfg.Auth.Issuer)
	require.NoError(t, service.NewAuthService(repository.NewUserRepository(st), tokens, logger).Bootstrap(context.Background()))

	gateway := assistant.NewGateway(cfg.AI, logger)
	return &testServer{t: t, handler: NewRouter(cfg, st, gateway, nil, logger)}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, gjson.Result) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w.Code, gjson.Parse(w.Body.String())
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	code, res := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, code, res.Raw)
	return res.Get("data.token").String()
}

func TestRouter_HealthAndNoRoute(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", res.Get("status").String())

	code, res = s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.EqualValues(t, 404, res.Get("code").Int())
	assert.Equal(t, "接口不存在", res.Get("message").String())
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "bad-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "用户名或密码错误", res.Get("message").String())

	code, res = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "用户名和密码不能为空", res.Get("message").String())

	token := s.login("admin", "admin123")
	code, res = s.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin", res.Get("data.role").String())
}

func TestRouter_DRGAccessControl(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(http.MethodGet, "/api/drg?search=MDC01", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, res.Get("data.total").Int())
	assert.Equal(t, "¥32,500", res.Get("data.list.0.paymentStandardText").String())

	policy := gin.H{"drgCode": "MDC10", "drgName": "新增分组", "paymentStandard": 12000}
	code, _ = s.do(http.MethodPost, "/api/drg", "", policy)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res = s.do(http.MethodPost, "/api/drg", s.login("user", "user123"), policy)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "无权限操作", res.Get("message").String())

	admin := s.login("admin", "admin123")
	code, res = s.do(http.MethodPost, "/api/drg", admin, policy)
	require.Equal(t, http.StatusOK, code, res.Raw)
	assert.NotZero(t, res.Get("data.id").Int())

	code, res = s.do(http.MethodPost, "/api/drg", admin, policy)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "DRG编码已存在", res.Get("message").String())

	code, _ = s.do(http.MethodGet, "/api/drg/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_TransferLifecycle(t *testing.T) {
	s := newTestServer(t)
	user := s.login("user", "user123")
	admin := s.login("admin", "admin123")

	code, res := s.do(http.MethodPost, "/api/transfer/applications", user, gin.H{
		"patientName": "测试患者", "toHospitalId": 1, "fromHospital": "社区医院", "expectedCost": 30000,
	})
	require.Equal(t, http.StatusOK, code, res.Raw)
	id := res.Get("data.id").Int()

	code, res = s.do(http.MethodGet, "/api/user/my-applications", user, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, res.Get("data").Array(), 1)

	assert.EqualValues(t, id, res.Get("data.0.id").Int())
	path := fmt.Sprintf("/api/transfer/applications/%d/approve", id)

	code, _ = s.do(http.MethodPut, path, user, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, res = s.do(http.MethodPut, path, admin, nil)
	require.Equal(t, http.StatusOK, code, res.Raw)
	assert.Equal(t, "approved", res.Get("data.status").String())

	code, res = s.do(http.MethodPut, path, admin, gin.H{"adminComment": "再次批准"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "该申请已处理，当前状态：已批准", res.Get("message").String())
}

func TestRouter_AssistantChat(t *testing.T) {
	s := newTestServer(t)

	code, res := s.do(http.MethodPost, "/api/ai-assistant/chat", "", gin.H{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "请输入有效的问题", res.Get("message").String())

	code, res = s.do(http.MethodPost, "/api/ai-assistant/chat", "", gin.H{"message": "帮我分析欺诈风险"})
	require.Equal(t, http.StatusOK, code, res.Raw)
	assert.Equal(t, assistant.MockAnswer("帮我分析欺诈风险", false, ""), res.Get("data.response").String())
	assert.NotEmpty(t, res.Get("data.timestamp").String())

	code, res = s.do(http.MethodPost, "/api/ai-assistant/analyze", "", gin.H{"data": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "请提供要分析的数据", res.Get("message").String())

	code, res = s.do(http.MethodGet, "/api/ai-assistant/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mock", res.Get("data.mode").String())

	code, res = s.do(http.MethodGet, "/api/ai-assistant/history", s.login("admin", "admin123"), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, res.Get("data.total").Int())
}

func TestRouter_DashboardFeeTrend(t *testing.T) {
	s := newTestServer(t)

	_, month := s.do(http.MethodGet, "/api/dashboard/fee-trend", "", nil)
	_, quarter := s.do(http.MethodGet, "/api/dashboard/fee-trend?type=quarter", "", nil)
	_, year := s.do(http.MethodGet, "/api/dashboard/fee-trend?type=bogus", "", nil)

	assert.Len(t, month.Get("data.months").Array(), 9)
	assert.NotEqual(t, month.Get("data.months").Raw, quarter.Get("data.months").Raw)
	assert.NotEqual(t, quarter.Get("data.months").Raw, year.Get("data.months").Raw)
}
