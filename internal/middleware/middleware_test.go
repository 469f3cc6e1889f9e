package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"MedGuard/internal/auth"
	"MedGuard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

type stubVerifier map[string]*auth.Claims

func (s stubVerifier) VerifyToken(token string) (*auth.Claims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func init() { gin.SetMode(gin.TestMode) }

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAndRequireAdmin(t *testing.T) {
	v := stubVerifier{
		"admin-token": {ID: 1, Username: "admin", Role: model.RoleAdmin},
		"user-token":  {ID: 2, Username: "user", Role: model.RoleUser},
	}
	r := gin.New()
	r.Use(RequestID())
	r.GET("/admin", JWTAuth(v), RequireAdmin(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/me", OptionalAuth(v), func(c *gin.Context) {
		if cl, ok := CurrentClaims(c); ok {
			c.String(http.StatusOK, cl.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	w := do(r, http.MethodGet, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "未授权，请先登录", gjson.Get(w.Body.String(), "message").String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(r, http.MethodGet, "/admin", "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.ErrInvalidToken.Error(), gjson.Get(w.Body.String(), "message").String())

	w = do(r, http.MethodGet, "/admin", "user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.EqualValues(t, 403, gjson.Get(w.Body.String(), "code").Int())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin", "admin-token").Code)

	assert.Equal(t, "user", do(r, http.MethodGet, "/me", "user-token").Body.String())
	assert.Equal(t, "anonymous", do(r, http.MethodGet, "/me", "forged").Body.String())
}

func TestRateLimiter_PerCaller(t *testing.T) {
	v := stubVerifier{"a": {ID: 1, Role: model.RoleUser}, "b": {ID: 2, Role: model.RoleUser}}
	rl := NewRateLimiter(0, 1, quietLogger())
	r := gin.New()
	r.POST("/chat", OptionalAuth(v), rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/chat", "a").Code)
	w := do(r, http.MethodPost, "/chat", "a")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "请求过于频繁，请稍后再试", gjson.Get(w.Body.String(), "message").String())
	assert.EqualValues(t, http.StatusTooManyRequests, gjson.Get(w.Body.String(), "code").Int())

	// 不同用户独立计数
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/chat", "b").Code)
	// 匿名请求按 IP
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/chat", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/chat", "").Code)
}

func TestCORS_AllowAll(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	// 令牌走 Authorization 头，不放行 cookie 凭据
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
