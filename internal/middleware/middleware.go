package middleware

import (
	"strings"
	"time"

	"MedGuard/internal/api/response"
	"MedGuard/internal/apperr"
	"MedGuard/internal/auth"
	"MedGuard/internal/model"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	keyRequestID = "request_id"
	keyClaims    = "claims"
)

var (
	errUnauthorized = apperr.Auth("未授权，请先登录")
	errForbidden    = apperr.Forbidden("无权限操作")
)

// TokenVerifier 令牌校验
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

// RequestID 请求ID中间件
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(keyRequestID, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger 访问日志
func Logger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency":    time.Since(start).String(),
			"request_id": c.GetString(keyRequestID),
		}
		if claims, ok := CurrentClaims(c); ok {
			fields["user_id"] = claims.ID
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request")
		}
	}
}

// CORS 跨域；origins 含 "*" 时允许全部来源
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// JWTAuth 必须携带有效令牌
func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, errUnauthorized)
			return
		}
		claims, err := verifier.VerifyToken(token)
		if err != nil {
			response.AbortError(c, apperr.Auth(auth.ErrInvalidToken.Error()))
			return
		}
		c.Set(keyClaims, claims)
		c.Next()
	}
}

// OptionalAuth 有令牌时解析，无令牌或令牌无效时按匿名继续
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := verifier.VerifyToken(token); err == nil {
				c.Set(keyClaims, claims)
			}
		}
		c.Next()
	}
}

// RequireAdmin 仅管理员，需放在 JWTAuth 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok || claims.Role != model.RoleAdmin {
			response.AbortError(c, errForbidden)
			return
		}
		c.Next()
	}
}

// CurrentClaims 当前请求的令牌声明
func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(keyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
